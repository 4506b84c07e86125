package model

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
)

// SourceTier is the trust level of a data source, from most to least trusted.
type SourceTier string

const (
	TierOfficial  SourceTier = "OFFICIAL"
	TierReference SourceTier = "REFERENCE"
	TierCatalog   SourceTier = "CATALOG"
	TierNone      SourceTier = "NONE"
)

// Confidence returns the fixed confidence assigned to facts from this tier.
func (t SourceTier) Confidence() float64 {
	switch t {
	case TierOfficial:
		return 0.9
	case TierReference:
		return 0.7
	case TierCatalog:
		return 0.6
	default:
		return 0
	}
}

// Rank orders tiers by trust. Lower is more trusted.
func (t SourceTier) Rank() int {
	switch t {
	case TierOfficial:
		return 0
	case TierReference:
		return 1
	case TierCatalog:
		return 2
	default:
		return 3
	}
}

// SpecStatus describes how a spec value was obtained.
type SpecStatus string

const (
	StatusExtractedOfficial  SpecStatus = "EXTRACTED_OFFICIAL"
	StatusExtractedReference SpecStatus = "EXTRACTED_REFERENCE"
	StatusCalculated         SpecStatus = "CALCULATED"
	StatusNA                 SpecStatus = "NA"
	StatusUnknown            SpecStatus = "UNKNOWN"
)

// Provenance couples a spec status with the tier of its source. Only the
// constructors in this file produce values, so a Provenance is always one of
// Official, Reference, Calculated(tier) or Unavailable(status).
// The zero value reads as Unavailable(UNKNOWN).
type Provenance struct {
	status SpecStatus
	tier   SourceTier
}

// Official is a value extracted from a manufacturer source.
func Official() Provenance {
	return Provenance{status: StatusExtractedOfficial, tier: TierOfficial}
}

// Reference is a value extracted from a reference site.
func Reference() Provenance {
	return Provenance{status: StatusExtractedReference, tier: TierReference}
}

// Calculated is a value derived from other facts of the given tier.
// It panics if tier is NONE or unknown.
func Calculated(tier SourceTier) Provenance {
	return MustProvenance(StatusCalculated, tier)
}

// Unavailable marks a value as not applicable or unknown. It panics for any
// other status.
func Unavailable(status SpecStatus) Provenance {
	return MustProvenance(status, TierNone)
}

// NewProvenance validates a status and tier pair.
func NewProvenance(status SpecStatus, tier SourceTier) (Provenance, error) {
	ok := false
	switch status {
	case StatusExtractedOfficial:
		ok = tier == TierOfficial
	case StatusExtractedReference:
		ok = tier == TierReference
	case StatusCalculated:
		ok = tier == TierOfficial || tier == TierReference || tier == TierCatalog
	case StatusNA, StatusUnknown:
		ok = tier == TierNone
	}
	if !ok {
		return Provenance{}, eris.Errorf("model: inconsistent provenance %s/%s", status, tier)
	}
	return Provenance{status: status, tier: tier}, nil
}

// MustProvenance is NewProvenance that panics on an inconsistent pair.
func MustProvenance(status SpecStatus, tier SourceTier) Provenance {
	p, err := NewProvenance(status, tier)
	if err != nil {
		panic(err)
	}
	return p
}

// ProvenanceForTier returns the extraction provenance for a fetching tier.
// CATALOG data is always Calculated.
func ProvenanceForTier(tier SourceTier) Provenance {
	switch tier {
	case TierOfficial:
		return Official()
	case TierReference:
		return Reference()
	case TierCatalog:
		return Calculated(TierCatalog)
	default:
		return Unavailable(StatusUnknown)
	}
}

// Status returns the extraction status.
func (p Provenance) Status() SpecStatus {
	if p.status == "" {
		return StatusUnknown
	}
	return p.status
}

// Tier returns the source tier.
func (p Provenance) Tier() SourceTier {
	if p.tier == "" {
		return TierNone
	}
	return p.tier
}

func (p Provenance) String() string {
	return fmt.Sprintf("%s/%s", p.Status(), p.Tier())
}

type provenanceJSON struct {
	Status SpecStatus `json:"status"`
	Tier   SourceTier `json:"tier"`
}

// MarshalJSON implements json.Marshaler.
func (p Provenance) MarshalJSON() ([]byte, error) {
	return json.Marshal(provenanceJSON{Status: p.Status(), Tier: p.Tier()})
}

// UnmarshalJSON implements json.Unmarshaler and rejects inconsistent pairs.
func (p *Provenance) UnmarshalJSON(data []byte) error {
	var raw provenanceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return eris.Wrap(err, "model: decode provenance")
	}
	v, err := NewProvenance(raw.Status, raw.Tier)
	if err != nil {
		return err
	}
	*p = v
	return nil
}
