package model

import "strings"

// Canonical holds the identifying attributes of a catalog entry.
type Canonical struct {
	Brand      string `json:"brand" yaml:"brand"`
	Model      string `json:"model" yaml:"model"`
	PartNumber string `json:"part_number,omitempty" yaml:"part_number"`
}

// DisplayName returns "Brand Model".
func (c Canonical) DisplayName() string {
	return strings.TrimSpace(c.Brand + " " + c.Model)
}

// ResolveCandidate is a proposed identity for an input.
type ResolveCandidate struct {
	Canonical  Canonical   `json:"canonical"`
	Score      float64     `json:"score"`
	SourceURL  string      `json:"source_url,omitempty"`
	SourceName string      `json:"source_name,omitempty"`
	SpiderID   string      `json:"spider_id,omitempty"`
	Tier       SourceTier  `json:"tier"`
	Specs      []SpecField `json:"specs,omitempty"`
}

// HasSpecs reports whether the candidate already carries fetched specs.
func (c ResolveCandidate) HasSpecs() bool { return len(c.Specs) > 0 }

// ResolveResult is the resolver output.
type ResolveResult struct {
	Exact      bool               `json:"exact"`
	Candidates []ResolveCandidate `json:"candidates"`
}
