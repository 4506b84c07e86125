package model

import (
	"time"

	"github.com/google/uuid"
)

// CatalogLastUpdated is the data date reported for CATALOG-tier records.
const CatalogLastUpdated = "2025-01-15"

// ComponentRecord is the resolved, provenance-tagged result for one input.
type ComponentRecord struct {
	ID                       string        `json:"id"`
	RawInput                 string        `json:"raw_input"`
	NormalizedInput          string        `json:"normalized_input"`
	Type                     ComponentType `json:"type"`
	ClassificationConfidence float64       `json:"classification_confidence"`
	Canonical                Canonical     `json:"canonical"`
	ExactMatch               bool          `json:"exact_match"`
	SourceTier               SourceTier    `json:"source_tier"`
	SourceConfidence         float64       `json:"source_confidence"`
	SourceName               string        `json:"source_name"`
	SourceURL                string        `json:"source_url,omitempty"`
	DataDate                 string        `json:"data_date"`
	Specs                    []SpecField   `json:"specs"`
}

// RecordInput carries what the pipeline knows when a record is built.
type RecordInput struct {
	RawInput                 string
	NormalizedInput          string
	Type                     ComponentType
	ClassificationConfidence float64
	Canonical                Canonical
	ExactMatch               bool
	Tier                     SourceTier
	SourceName               string
	SourceURL                string
	Specs                    []SpecField
}

// NewComponentRecord builds a record. now supplies "today" for non-catalog
// tiers.
func NewComponentRecord(in RecordInput, now time.Time) ComponentRecord {
	dataDate := now.UTC().Format(time.DateOnly)
	if in.Tier == TierCatalog {
		dataDate = CatalogLastUpdated
	}
	specs := make([]SpecField, len(in.Specs))
	copy(specs, in.Specs)
	return ComponentRecord{
		ID:                       ComponentID(in.SourceURL, string(in.Type)+":"+in.NormalizedInput),
		RawInput:                 in.RawInput,
		NormalizedInput:          in.NormalizedInput,
		Type:                     in.Type,
		ClassificationConfidence: in.ClassificationConfidence,
		Canonical:                in.Canonical,
		ExactMatch:               in.ExactMatch,
		SourceTier:               in.Tier,
		SourceConfidence:         in.Tier.Confidence(),
		SourceName:               in.SourceName,
		SourceURL:                in.SourceURL,
		DataDate:                 dataDate,
		Specs:                    specs,
	}
}

// ComponentID derives a stable id from the source URL, or from fallback when
// the URL is empty.
func ComponentID(sourceURL, fallback string) string {
	key := sourceURL
	if key == "" {
		key = fallback
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}
