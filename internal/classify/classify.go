// Package classify guesses the component type of a normalized hardware
// identifier from weighted keyword and part-number patterns.
package classify

import (
	"math"

	"github.com/sells-group/hardware-cli/internal/model"
)

const (
	baseScore      = 0.35
	stepScore      = 0.15
	maxScore       = 0.95
	generalScore   = 0.1
	scorePrecision = 1e6
)

// Result is a classification with its per-type match counts.
type Result struct {
	Type       model.ComponentType `json:"type"`
	Confidence float64             `json:"confidence"`
	Matches    int                 `json:"matches"`
}

// Classify returns the most likely component type for normalized input and
// a confidence in [0.1, 0.95]. Inputs matching nothing are GENERAL.
func Classify(normalized string) (model.ComponentType, float64) {
	r := Explain(normalized)
	return r.Type, r.Confidence
}

// Explain is Classify with the winning match count.
func Explain(normalized string) Result {
	best := Result{Type: model.ComponentGeneral}
	for _, rs := range rules {
		matches := 0
		for _, re := range rs.Patterns {
			if re.MatchString(normalized) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}
		score := Score(matches)
		if score > best.Confidence || (score == best.Confidence && matches > best.Matches) {
			best = Result{Type: rs.Type, Confidence: score, Matches: matches}
		}
	}
	if best.Matches == 0 {
		return Result{Type: model.ComponentGeneral, Confidence: generalScore}
	}
	return best
}

// Score converts a match count into a confidence.
func Score(matches int) float64 {
	if matches <= 0 {
		return 0
	}
	s := math.Min(baseScore+stepScore*float64(matches-1), maxScore)
	return math.Round(s*scorePrecision) / scorePrecision
}
