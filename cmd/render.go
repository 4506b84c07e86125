package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/sells-group/hardware-cli/internal/model"
	"github.com/sells-group/hardware-cli/internal/orchestrator"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// isTerminal reports whether f is an interactive terminal.
func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func candidatesTable(cands []model.ResolveCandidate) string {
	rows := make([][]string, 0, len(cands))
	for i, c := range cands {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			c.Canonical.Brand,
			c.Canonical.Model,
			c.Canonical.PartNumber,
			formatScore(c.Score),
			c.SourceName,
		})
	}
	return renderTable(
		[]string{"#", "Brand", "Model", "Part number", "Score", "Source"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func specsTable(specs []model.SpecField) string {
	rows := make([][]string, 0, len(specs))
	for _, s := range specs {
		value := s.Value
		if s.Unit != "" {
			value += " " + s.Unit
		}
		rows = append(rows, []string{
			s.Key,
			value,
			string(s.Provenance.Status()),
			string(s.Provenance.Tier()),
			formatScore(s.Confidence),
			s.SourceName,
		})
	}
	return renderTable(
		[]string{"Key", "Value", "Status", "Tier", "Conf", "Source"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func componentsTable(records []model.ComponentRecord) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			string(r.Type),
			r.Canonical.DisplayName(),
			string(r.SourceTier),
			r.SourceName,
			strconv.Itoa(len(r.Specs)),
		})
	}
	return renderTable(
		[]string{"Type", "Component", "Tier", "Source", "Specs"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	)
}

// printEvent writes one progress line.
func printEvent(w io.Writer, ev model.Event) {
	line := fmt.Sprintf("[%3d%%] %s", ev.Progress, ev.Message)
	if ev.Source != "" {
		line += " (" + ev.Source + ")"
	}
	fmt.Fprintln(w, line)
}

// printOutcome renders an outcome as text, or as indented JSON when asJSON
// is set.
func printOutcome(w io.Writer, out orchestrator.Outcome, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	switch out.Status {
	case model.OutcomeNeedsSelection:
		fmt.Fprintln(w, out.Message)
		fmt.Fprintln(w, candidatesTable(out.Candidates))
	case model.OutcomeReady:
		rec := out.Record
		fmt.Fprintf(w, "%s  %s\n", rec.Type, rec.Canonical.DisplayName())
		fmt.Fprintf(w, "source: %s (%s, %s)\n", rec.SourceName, rec.SourceTier, formatScore(rec.SourceConfidence))
		if rec.SourceURL != "" {
			fmt.Fprintf(w, "url: %s\n", rec.SourceURL)
		}
		fmt.Fprintln(w, specsTable(rec.Specs))
	default:
		fmt.Fprintf(w, "error: %s\n", out.Message)
	}
	return nil
}
