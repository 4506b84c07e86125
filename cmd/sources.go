package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/hardware-cli/internal/allowlist"
	"github.com/sells-group/hardware-cli/internal/model"
	"github.com/sells-group/hardware-cli/internal/sourcechain"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources [type]",
	Short: "List the fallback source chain per component type",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		types := model.ComponentTypes
		if len(args) == 1 {
			ct, err := model.ParseComponentType(args[0])
			if err != nil {
				return err
			}
			types = []model.ComponentType{ct}
		}
		allow := allowlist.New(cfg.Allowlist.ExtraOfficial, cfg.Allowlist.ExtraReference)
		writeSources(cmd.OutOrStdout(), sourcechain.NewManager(nil), allow, types)
		return nil
	},
}

func writeSources(w io.Writer, m *sourcechain.Manager, allow *allowlist.List, types []model.ComponentType) {
	for _, ct := range types {
		chain := m.Chain(ct)
		rows := make([][]string, 0, len(chain))
		for _, s := range chain {
			rows = append(rows, []string{
				strconv.Itoa(s.Priority),
				s.Name,
				string(s.Tier),
				string(s.Kind),
				string(s.Engine),
				s.SpiderID,
				strings.Join(s.Domains, ", "),
			})
		}
		fmt.Fprintf(w, "%s\n", ct)
		fmt.Fprintln(w, renderTable(
			[]string{"Prio", "Name", "Tier", "Kind", "Engine", "Spider", "Domains"},
			rows,
			[]columnAlignment{alignRight},
		))
	}
	official, reference := allow.Domains()
	fmt.Fprintf(w, "allowlist: %d official, %d reference domains\n", len(official), len(reference))
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
