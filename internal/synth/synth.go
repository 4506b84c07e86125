// Package synth derives minimal spec sheets from catalog identity alone:
// brand, model and part number, plus whatever the naming conventions of the
// part number and model string reveal.
package synth

import (
	"math"
	"strconv"
	"strings"

	"github.com/sells-group/hardware-cli/internal/model"
)

// MinFields is the smallest synthesized sheet worth returning.
const MinFields = 4

const defaultSourceName = "catalog"

// builder accumulates calculated fields, keeping the first value per key.
type builder struct {
	sourceName string
	sourceURL  string
	seen       map[string]bool
	fields     []model.SpecField
}

func newBuilder(c model.ResolveCandidate) *builder {
	name := c.SourceName
	if name == "" {
		name = defaultSourceName
	}
	return &builder{sourceName: name, sourceURL: c.SourceURL, seen: make(map[string]bool)}
}

func (b *builder) add(key, label, value, unit, notes string) {
	value = strings.TrimSpace(value)
	if value == "" || b.seen[key] {
		return
	}
	b.seen[key] = true
	b.fields = append(b.fields, model.SpecField{
		Key:        key,
		Label:      label,
		Value:      value,
		Unit:       unit,
		Provenance: model.Calculated(model.TierCatalog),
		SourceName: b.sourceName,
		SourceURL:  b.sourceURL,
		Confidence: model.TierCatalog.Confidence(),
		Notes:      notes,
	})
}

func (b *builder) addInt(key, label string, v int, unit, notes string) {
	if v > 0 {
		b.add(key, label, strconv.Itoa(v), unit, notes)
	}
}

func (b *builder) addFloat(key, label string, v float64, unit, notes string) {
	if v > 0 {
		b.add(key, label, strconv.FormatFloat(v, 'f', -1, 64), unit, notes)
	}
}

// FromCandidate synthesizes CATALOG-tier fields for c. Callers treat fewer
// than MinFields fields as no data.
func FromCandidate(ct model.ComponentType, c model.ResolveCandidate) []model.SpecField {
	b := newBuilder(c)
	b.add("brand", "Brand", c.Canonical.Brand, "", "")
	b.add("model", "Model", c.Canonical.Model, "", "")
	b.add("part_number", "Part Number", c.Canonical.PartNumber, "", "")

	switch ct {
	case model.ComponentRAM:
		ramFields(b, c.Canonical)
	case model.ComponentCPU:
		cpuFields(b, c.Canonical)
	case model.ComponentGPU:
		gpuFields(b, c.Canonical)
	case model.ComponentMainboard:
		mainboardFields(b, c.Canonical)
	case model.ComponentDisk:
		diskFields(b, c.Canonical)
	}
	return b.fields
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func itoa(n int) string { return strconv.Itoa(n) }

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
