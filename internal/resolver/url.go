package resolver

import (
	"net/url"
	"path"
	"strings"

	"github.com/sells-group/hardware-cli/internal/model"
)

// resolveURL short-circuits catalog search when raw is a product page on a
// known source domain. Malformed or unknown URLs report false.
func (r *Resolver) resolveURL(raw string, ct model.ComponentType) (model.ResolveResult, bool) {
	if r.sources == nil {
		return model.ResolveResult{}, false
	}
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return model.ResolveResult{}, false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return model.ResolveResult{}, false
	}

	src, _ := r.sources.SourceForURL(ct, raw)
	if src == nil {
		return model.ResolveResult{}, false
	}
	score := ScoreOtherURL
	if src.Tier == model.TierOfficial {
		score = ScoreOfficialURL
	}
	cand := model.ResolveCandidate{
		Canonical: model.Canonical{
			Brand: src.Provider,
			Model: modelFromPath(u.Path),
		},
		Score:      score,
		SourceURL:  raw,
		SourceName: src.Name,
		SpiderID:   src.SpiderID,
		Tier:       src.Tier,
	}
	return model.ResolveResult{Exact: true, Candidates: []model.ResolveCandidate{cand}}, true
}

// modelFromPath derives a readable model hint from the last path segment,
// e.g. "/gpu-specs/geforce-rtx-4090.c3889" gives "geforce rtx 4090".
func modelFromPath(p string) string {
	seg := path.Base(strings.TrimSuffix(p, "/"))
	if seg == "." || seg == "/" {
		return ""
	}
	if i := strings.LastIndex(seg, "."); i > 0 {
		seg = seg[:i]
	}
	seg = strings.NewReplacer("-", " ", "_", " ").Replace(seg)
	return strings.Join(strings.Fields(seg), " ")
}
