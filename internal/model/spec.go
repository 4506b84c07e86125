package model

// SpecField is one extracted fact about a component.
type SpecField struct {
	Key        string     `json:"key"`
	Label      string     `json:"label"`
	Value      string     `json:"value"`
	Unit       string     `json:"unit,omitempty"`
	Provenance Provenance `json:"provenance"`
	SourceName string     `json:"source_name,omitempty"`
	SourceURL  string     `json:"source_url,omitempty"`
	Confidence float64    `json:"confidence"`
	Notes      string     `json:"notes,omitempty"`
}

// Status returns the field's extraction status.
func (f SpecField) Status() SpecStatus { return f.Provenance.Status() }

// Tier returns the tier of the field's source.
func (f SpecField) Tier() SourceTier { return f.Provenance.Tier() }

// Retag returns a copy of specs attributed to a new source. Extracted values
// take the tier's provenance; calculated values keep their status and move to
// the new tier.
func Retag(specs []SpecField, tier SourceTier, sourceName, sourceURL string) []SpecField {
	out := make([]SpecField, len(specs))
	for i, f := range specs {
		switch f.Status() {
		case StatusCalculated:
			f.Provenance = Calculated(tierOrCatalog(tier))
		case StatusNA, StatusUnknown:
		default:
			f.Provenance = ProvenanceForTier(tier)
		}
		f.SourceName = sourceName
		f.SourceURL = sourceURL
		f.Confidence = tier.Confidence()
		out[i] = f
	}
	return out
}

func tierOrCatalog(t SourceTier) SourceTier {
	if t == TierNone {
		return TierCatalog
	}
	return t
}

// SpecValue returns the value for key, or "" if absent.
func SpecValue(specs []SpecField, key string) string {
	for _, f := range specs {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}
