package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/hardware-cli/internal/crossval"
	"github.com/sells-group/hardware-cli/internal/model"
	"github.com/sells-group/hardware-cli/internal/scrape"
	"github.com/sells-group/hardware-cli/pkg/jina"
)

// webSearch builds a candidate for input the catalog does not know by
// cross-validating several independent pages. Agreed results are persisted
// and join the resolver index.
func (o *Orchestrator) webSearch(ctx context.Context, em *emitter, raw string, ct model.ComponentType) (model.ResolveCandidate, bool) {
	if o.validator == nil {
		return model.ResolveCandidate{}, false
	}
	em.emit(model.Event{Kind: model.EventWebSearch, Progress: progressWebSearch, Message: "not in catalog, searching sources"})

	targets := o.searchTargets(ctx, raw, ct)
	if len(targets) < 2 {
		zap.L().Debug("orchestrator: too few web search targets",
			zap.String("input", raw),
			zap.Int("targets", len(targets)),
		)
		return model.ResolveCandidate{}, false
	}

	res, err := o.validator.Validate(ctx, raw, ct, targets)
	if err != nil {
		zap.L().Warn("orchestrator: cross-validation failed", zap.String("input", raw), zap.Error(err))
		return model.ResolveCandidate{}, false
	}
	for _, r := range res.Sources {
		switch {
		case r.Success():
			em.sourceSuccess(progressWebSearch, r.SourceName, r.URL, len(r.Specs))
		case scrape.IsAntiBot(r.Err):
			o.sources.MarkBlocked(r.URL)
			em.sourceAntiBot(progressWebSearch, r.SourceName, r.URL)
		default:
			em.sourceFailed(progressWebSearch, r.SourceName, r.URL, r.Err)
		}
	}
	if len(res.Specs) == 0 {
		return model.ResolveCandidate{}, false
	}

	if res.ShouldPersist {
		o.persist(ctx, res)
	}
	cand := res.Candidate()
	em.emit(model.Event{
		Kind:     model.EventWebSearch,
		Progress: progressWebSearch,
		Message: fmt.Sprintf("%d fields from %d sources (consensus %t)",
			len(res.Specs), len(res.SuccessfulSources()), res.ConsensusReached),
		Count: len(res.Specs),
	})
	return cand, true
}

// searchTargets collects at most MaxSearchTargets pages from distinct
// sources: the reference table first, then web search hits on allowlisted
// source domains, then site-restricted searches on reference domains not yet
// covered. Each target carries the browser decision for its source.
func (o *Orchestrator) searchTargets(ctx context.Context, raw string, ct model.ComponentType) []crossval.Target {
	var targets []crossval.Target
	seenURL := make(map[string]bool)
	seenSource := make(map[string]bool)
	full := func() bool { return len(targets) >= o.cfg.MaxSearchTargets }
	add := func(src *model.Source, url string) {
		if src == nil || src.SpiderID == "" || full() || seenURL[url] || seenSource[src.Name] {
			return
		}
		seenURL[url] = true
		seenSource[src.Name] = true
		targets = append(targets, crossval.Target{
			SourceName: src.Name,
			SpiderID:   src.SpiderID,
			URL:        url,
			UseBrowser: o.sources.ShouldUseBrowserEngine(*src, url),
		})
	}
	addHits := func(hits []jina.SearchResult) {
		for _, hit := range hits {
			if !o.allow.IsAllowed(hit.URL) {
				continue
			}
			src, _ := o.sources.SourceForURL(ct, hit.URL)
			add(src, hit.URL)
		}
	}

	if url, ok := o.refs.Lookup(ct, model.Canonical{Model: raw}); ok {
		src, _ := o.sources.SourceForURL(ct, url)
		add(src, url)
	}

	if o.search == nil || full() {
		return targets
	}
	query := raw + " specifications"
	hits, err := o.searchHits(ctx, query)
	if err != nil {
		return targets
	}
	addHits(hits)

	for _, ref := range o.sources.ReferenceSources(ct) {
		if full() {
			break
		}
		if seenSource[ref.Name] || len(ref.Domains) == 0 {
			continue
		}
		hits, err := o.searchHits(ctx, query, jina.WithSiteFilter(ref.Domains[0]))
		if err != nil {
			break
		}
		addHits(hits)
	}
	return targets
}

func (o *Orchestrator) searchHits(ctx context.Context, query string, opts ...jina.SearchOption) ([]jina.SearchResult, error) {
	resp, err := o.search.Search(ctx, query, opts...)
	if err != nil {
		zap.L().Warn("orchestrator: web search failed", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}
	return resp.Data, nil
}

func (o *Orchestrator) persist(ctx context.Context, res *crossval.Result) {
	entry := res.Entry()
	if o.store != nil {
		if err := o.store.SaveValidated(ctx, entry); err != nil {
			zap.L().Warn("orchestrator: persist validated component failed",
				zap.String("model", entry.Canonical.Model),
				zap.Error(err),
			)
		}
	}
	o.resolver.Index().Add(entry)
	zap.L().Info("orchestrator: validated component added to catalog",
		zap.String("type", string(entry.Type)),
		zap.String("brand", entry.Canonical.Brand),
		zap.String("model", entry.Canonical.Model),
	)
}
