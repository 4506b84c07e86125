package crossval

import (
	"fmt"
	"strings"

	"github.com/sells-group/hardware-cli/internal/catalog"
	"github.com/sells-group/hardware-cli/internal/model"
)

// SourceName labels candidates and catalog entries built from consensus.
const SourceName = "cross_validation"

// SpecFields converts the validated keys into REFERENCE-tier fields carrying
// their consensus confidence.
func (r *Result) SpecFields() []model.SpecField {
	out := make([]model.SpecField, 0, len(r.Specs))
	for _, s := range r.Specs {
		notes := fmt.Sprintf("validated from %d sources", len(s.Sources))
		if s.SingleSource {
			notes = "reported by a single source"
		}
		out = append(out, model.SpecField{
			Key:        s.Key,
			Label:      s.Label,
			Value:      s.Value,
			Unit:       s.Unit,
			Provenance: model.Reference(),
			SourceName: strings.Join(s.Sources, ", "),
			SourceURL:  r.sourceURL(s.Sources[0]),
			Confidence: s.Confidence,
			Notes:      notes,
		})
	}
	return out
}

func (r *Result) sourceURL(name string) string {
	for _, s := range r.Sources {
		if s.SourceName == name {
			return s.URL
		}
	}
	return ""
}

// Canonical infers brand, model and part number from the reported fields,
// falling back to part-number prefixes and the raw input.
func (r *Result) Canonical() model.Canonical {
	c := model.Canonical{
		Brand:      r.reported("brand"),
		Model:      r.reported("model"),
		PartNumber: r.reported("part_number"),
	}
	input := strings.TrimSpace(r.Input)
	if c.PartNumber == "" && input != "" && !strings.ContainsAny(input, " \t") {
		c.PartNumber = input
	}
	if c.Brand == "" {
		c.Brand = BrandFromPartNumber(c.PartNumber)
	}
	if c.Brand == "" {
		c.Brand = BrandFromPartNumber(input)
	}
	if c.Model == "" {
		c.Model = input
		if c.Brand != "" && strings.HasPrefix(strings.ToLower(input), strings.ToLower(c.Brand)+" ") {
			c.Model = strings.TrimSpace(input[len(c.Brand):])
		}
	}
	return c
}

// reported returns the agreed value for key, else the first value any
// successful source reported.
func (r *Result) reported(key string) string {
	for _, s := range r.Specs {
		if s.Key == key {
			return s.Value
		}
	}
	for _, s := range r.Sources {
		if !s.Success() {
			continue
		}
		if v := model.SpecValue(s.Specs, key); v != "" {
			return v
		}
	}
	return ""
}

// Candidate returns the consensus as a REFERENCE-tier candidate with the
// validated fields attached.
func (r *Result) Candidate() model.ResolveCandidate {
	score := r.MeanConfidence()
	if score == 0 {
		score = SingleSourceConfidence
	}
	var url string
	if ok := r.SuccessfulSources(); len(ok) > 0 {
		url = r.sourceURL(ok[0])
	}
	return model.ResolveCandidate{
		Canonical:  r.Canonical(),
		Score:      score,
		SourceURL:  url,
		SourceName: SourceName,
		Tier:       model.TierReference,
		Specs:      r.SpecFields(),
	}
}

// Entry returns the validated catalog entry for the result.
func (r *Result) Entry() catalog.Entry {
	c := r.Candidate()
	return catalog.Entry{
		Type:       r.Type,
		Canonical:  c.Canonical,
		SourceName: SourceName,
		SourceURL:  c.SourceURL,
		Tier:       model.TierReference,
		Specs:      c.Specs,
	}
}

type brandPrefix struct {
	prefix string
	brand  string
}

// Longer prefixes first.
var brandPrefixes = []brandPrefix{
	{"BX80", "Intel"},
	{"100-", "AMD"},
	{"CMK", "Corsair"},
	{"CMW", "Corsair"},
	{"CMH", "Corsair"},
	{"CMT", "Corsair"},
	{"CMS", "Corsair"},
	{"CMP", "Corsair"},
	{"KVR", "Kingston"},
	{"KF", "Kingston"},
	{"SFYR", "Kingston"},
	{"SNV", "Kingston"},
	{"F3-", "G.Skill"},
	{"F4-", "G.Skill"},
	{"F5-", "G.Skill"},
	{"CT", "Crucial"},
	{"BLS", "Crucial"},
	{"BLT", "Crucial"},
	{"BLM", "Crucial"},
	{"MZ-", "Samsung"},
	{"WDS", "Western Digital"},
	{"WD", "Western Digital"},
	{"ST", "Seagate"},
	{"ZP", "Seagate"},
	{"RTX", "NVIDIA"},
	{"GTX", "NVIDIA"},
	{"RX", "AMD"},
	{"RYZEN", "AMD"},
	{"CORE", "Intel"},
	{"I3-", "Intel"},
	{"I5-", "Intel"},
	{"I7-", "Intel"},
	{"I9-", "Intel"},
}

// BrandFromPartNumber guesses a brand from well-known part-number prefixes.
// Two-letter prefixes must not run into another letter, so "STRIX" is not
// read as Seagate.
func BrandFromPartNumber(pn string) string {
	pn = strings.ToUpper(strings.TrimSpace(pn))
	if pn == "" {
		return ""
	}
	for _, p := range brandPrefixes {
		if !strings.HasPrefix(pn, p.prefix) {
			continue
		}
		if len(p.prefix) <= 2 && len(pn) > len(p.prefix) {
			if next := pn[len(p.prefix)]; next >= 'A' && next <= 'Z' {
				continue
			}
		}
		return p.brand
	}
	return ""
}
