// Package resolver ranks catalog entries against free-text hardware input.
package resolver

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
	"go.uber.org/zap"

	"github.com/sells-group/hardware-cli/internal/catalog"
	"github.com/sells-group/hardware-cli/internal/model"
	"github.com/sells-group/hardware-cli/internal/normalize"
	"github.com/sells-group/hardware-cli/internal/sourcechain"
)

// Scores assigned per matching rule.
const (
	ScorePartNumber  = 0.98
	ScoreModel       = 0.96
	ScoreModelNumber = 0.95
	ScoreFamily      = 0.65
	ScoreOfficialURL = 0.97
	ScoreOtherURL    = 0.90

	modelFuzzyMin   = 0.75
	modelFuzzyScale = 0.92
	pnFuzzyMin      = 0.8
	pnFuzzyScale    = 0.88
	brandBase       = 0.55
	brandPerToken   = 0.1
	minTokenLen     = 3

	// MinScore is exclusive: candidates must score above it.
	MinScore      = 0.5
	MaxCandidates = 5
	ExactMin      = 0.95
)

// Resolver scores catalog entries for an input. Safe for concurrent use when
// the index is.
type Resolver struct {
	index   *catalog.Index
	sources *sourcechain.Manager
}

// New creates a Resolver. sources may be nil to disable URL resolution.
func New(index *catalog.Index, sources *sourcechain.Manager) *Resolver {
	if index == nil {
		index = catalog.NewIndex(nil)
	}
	return &Resolver{index: index, sources: sources}
}

// Index returns the underlying catalog index.
func (r *Resolver) Index() *catalog.Index { return r.index }

type scored struct {
	cand    model.ResolveCandidate
	// partNumber is the length of a literal part-number hit; 0 otherwise.
	partNumber int
}

// Resolve returns at most MaxCandidates candidates for raw, best first.
func (r *Resolver) Resolve(raw string, ct model.ComponentType) model.ResolveResult {
	if res, ok := r.resolveURL(raw, ct); ok {
		return res
	}

	normalized := normalize.Text(raw)
	if normalized == "" {
		return model.ResolveResult{}
	}
	inputNumber := ""
	if usesModelNumbers(ct) {
		inputNumber = modelNumber(normalized)
	}
	inputTokens := strings.Fields(normalized)

	entries := r.index.Entries(ct)
	var hits []scored
	for _, e := range entries {
		if s, ok := scoreEntry(e, normalized, inputNumber, inputTokens, ct); ok {
			hits = append(hits, s)
		}
	}

	hits = keepPartNumber(hits)
	if len(hits) == 0 && ct == model.ComponentCPU && inputNumber == "" {
		if family := processorFamily(normalized); family != "" {
			for _, e := range entries {
				if modelInFamily(normalize.Text(e.Canonical.Model), family) {
					hits = append(hits, scored{cand: e.Candidate(ScoreFamily)})
				}
			}
		}
	}

	res := rank(hits)
	zap.L().Debug("resolver: resolved",
		zap.String("input", normalized),
		zap.String("type", string(ct)),
		zap.Int("candidates", len(res.Candidates)),
		zap.Bool("exact", res.Exact),
	)
	return res
}

func usesModelNumbers(ct model.ComponentType) bool {
	return ct == model.ComponentCPU || ct == model.ComponentGPU
}

// scoreEntry applies the matching rules in order; the first that fires wins.
func scoreEntry(e catalog.Entry, normalized, inputNumber string, inputTokens []string, ct model.ComponentType) (scored, bool) {
	mdl := normalize.Text(e.Canonical.Model)
	pn := normalize.Text(e.Canonical.PartNumber)
	brand := normalize.Text(e.Canonical.Brand)

	if pn != "" && strings.Contains(normalized, pn) {
		return scored{cand: e.Candidate(ScorePartNumber), partNumber: len(pn)}, true
	}
	if mdl != "" && strings.Contains(normalized, mdl) {
		return scored{cand: e.Candidate(ScoreModel)}, true
	}
	if inputNumber != "" && usesModelNumbers(ct) && modelNumber(mdl) == inputNumber {
		return scored{cand: e.Candidate(ScoreModelNumber)}, true
	}
	if mdl != "" {
		if sim := similarity(mdl, normalized); sim > modelFuzzyMin {
			return scored{cand: e.Candidate(sim * modelFuzzyScale)}, true
		}
	}
	if pn != "" {
		if sim := similarity(pn, normalized); sim > pnFuzzyMin {
			return scored{cand: e.Candidate(sim * pnFuzzyScale)}, true
		}
	}
	if brand != "" && strings.Contains(normalized, brand) {
		n := 0
		for _, t := range inputTokens {
			if len(t) > minTokenLen && strings.Contains(mdl, t) {
				n++
			}
		}
		if n > 0 {
			return scored{cand: e.Candidate(brandBase + brandPerToken*float64(n))}, true
		}
	}
	return scored{}, false
}

func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return levenshtein.Similarity(a, b, nil)
}

// keepPartNumber keeps only the longest literal part-number hits when the
// input names a part number. Model and fuzzy hits are left for the caller to
// choose between.
func keepPartNumber(hits []scored) []scored {
	longest := 0
	for _, h := range hits {
		longest = max(longest, h.partNumber)
	}
	if longest == 0 {
		return hits
	}
	var out []scored
	for _, h := range hits {
		if h.partNumber == longest {
			out = append(out, h)
		}
	}
	return out
}

func rank(hits []scored) model.ResolveResult {
	cands := make([]model.ResolveCandidate, 0, len(hits))
	for _, h := range hits {
		if h.cand.Score > MinScore {
			cands = append(cands, h.cand)
		}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].Score > cands[j].Score })
	if len(cands) > MaxCandidates {
		cands = cands[:MaxCandidates]
	}
	return model.ResolveResult{
		Exact:      len(cands) == 1 && cands[0].Score >= ExactMin,
		Candidates: cands,
	}
}
