package orchestrator

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/hardware-cli/internal/extract"
	"github.com/sells-group/hardware-cli/internal/model"
	"github.com/sells-group/hardware-cli/internal/scrape"
	"github.com/sells-group/hardware-cli/internal/synth"
)

const defaultReferenceSpider = "techpowerup_reference_spider"

var (
	// ErrCascadeExhausted is reported when no step produced enough specs.
	ErrCascadeExhausted = eris.New("orchestrator: no source returned specs")

	errSkipped = eris.New("orchestrator: step not applicable")
)

// stepResult is the data one cascade step produced.
type stepResult struct {
	step       string
	specs      []model.SpecField
	tier       model.SourceTier
	sourceName string
	sourceURL  string
}

// step is one fallback strategy. Steps run in order until one returns at
// least minFields fields.
type step struct {
	name      string
	minFields int
	attempt   func(ctx context.Context) (stepResult, error)
}

func (o *Orchestrator) steps(em *emitter, ct model.ComponentType, cand model.ResolveCandidate) []step {
	return []step{
		{name: "prefetched", minFields: 1, attempt: func(context.Context) (stepResult, error) {
			return o.prefetched(cand)
		}},
		{name: "primary", minFields: 1, attempt: func(ctx context.Context) (stepResult, error) {
			return o.primary(ctx, em, ct, cand)
		}},
		{name: "reference_url", minFields: 1, attempt: func(ctx context.Context) (stepResult, error) {
			return o.referenceURL(ctx, em, ct, cand)
		}},
		{name: "catalog", minFields: synth.MinFields, attempt: func(context.Context) (stepResult, error) {
			return o.catalog(em, ct, cand)
		}},
	}
}

// runCascade returns the first step result with enough fields. A failing
// step never stops the cascade; a canceled context does.
func (o *Orchestrator) runCascade(ctx context.Context, em *emitter, ct model.ComponentType, cand model.ResolveCandidate) (stepResult, error) {
	for _, s := range o.steps(em, ct, cand) {
		if err := ctx.Err(); err != nil {
			return stepResult{}, eris.Wrap(err, "orchestrator: canceled")
		}
		res, err := s.attempt(ctx)
		switch {
		case errors.Is(err, errSkipped):
			continue
		case err != nil:
			zap.L().Info("orchestrator: step failed", zap.String("step", s.name), zap.Error(err))
			continue
		case len(res.specs) < s.minFields:
			zap.L().Info("orchestrator: step returned too few specs",
				zap.String("step", s.name),
				zap.Int("specs", len(res.specs)),
				zap.Int("min", s.minFields),
			)
			continue
		}
		res.step = s.name
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return stepResult{}, eris.Wrap(err, "orchestrator: canceled")
	}
	return stepResult{}, ErrCascadeExhausted
}

// prefetched uses specs attached by cross-validation or the validated
// catalog.
func (o *Orchestrator) prefetched(cand model.ResolveCandidate) (stepResult, error) {
	if !cand.HasSpecs() {
		return stepResult{}, errSkipped
	}
	tier := cand.Tier
	if tier == model.TierNone || tier == "" {
		tier = model.TierReference
	}
	specs := make([]model.SpecField, len(cand.Specs))
	copy(specs, cand.Specs)
	return stepResult{specs: specs, tier: tier, sourceName: cand.SourceName, sourceURL: cand.SourceURL}, nil
}

// primary fetches the candidate's own page, escalating to the browser engine
// when the source needs it or its domain is blocked.
func (o *Orchestrator) primary(ctx context.Context, em *emitter, ct model.ComponentType, cand model.ResolveCandidate) (stepResult, error) {
	if cand.SourceURL == "" || cand.SpiderID == "" {
		return stepResult{}, errSkipped
	}
	name := cand.SourceName
	useBrowser := o.sources.IsBlocked(cand.SourceURL)
	if src := o.sources.SourceFor(ct, cand); src != nil {
		name = src.Name
		useBrowser = o.sources.ShouldUseBrowserEngine(*src, cand.SourceURL)
	}
	specs, err := o.fetch(ctx, em, name, cand.SpiderID, cand.SourceURL, ct, useBrowser)
	if err != nil {
		return stepResult{}, err
	}
	return stepResult{specs: specs, tier: o.allow.TierOf(cand.SourceURL), sourceName: name, sourceURL: cand.SourceURL}, nil
}

// referenceURL fetches the known reference page for the exact model.
func (o *Orchestrator) referenceURL(ctx context.Context, em *emitter, ct model.ComponentType, cand model.ResolveCandidate) (stepResult, error) {
	url, ok := o.refs.Lookup(ct, cand.Canonical)
	if !ok {
		return stepResult{}, errSkipped
	}
	name, spider := "reference", defaultReferenceSpider
	useBrowser := o.sources.IsBlocked(url)
	for _, s := range o.sources.ReferenceSources(ct) {
		if s.MatchesDomain(url) {
			name, spider = s.Name, s.SpiderID
			useBrowser = o.sources.ShouldUseBrowserEngine(s, url)
			break
		}
	}
	specs, err := o.fetch(ctx, em, name, spider, url, ct, useBrowser)
	if err != nil {
		return stepResult{}, err
	}
	return stepResult{
		specs:      model.Retag(specs, model.TierReference, name, url),
		tier:       model.TierReference,
		sourceName: name,
		sourceURL:  url,
	}, nil
}

// catalog synthesizes specs from the candidate's identity.
func (o *Orchestrator) catalog(em *emitter, ct model.ComponentType, cand model.ResolveCandidate) (stepResult, error) {
	name := "catalog"
	if src := o.sources.CatalogSource(ct); src != nil {
		name = src.Name
	}
	cand.SourceName = name
	em.sourceTrying(name, cand.SourceURL)
	specs := synth.FromCandidate(ct, cand)
	if len(specs) < synth.MinFields {
		err := eris.Errorf("%s: only %d fields derivable", name, len(specs))
		em.sourceFailed(progressSource, name, cand.SourceURL, err)
		return stepResult{}, err
	}
	em.sourceSuccess(progressScrape, name, cand.SourceURL, len(specs))
	return stepResult{specs: specs, tier: model.TierCatalog, sourceName: name, sourceURL: cand.SourceURL}, nil
}

// fetch calls the extraction engine and records anti-bot refusals.
func (o *Orchestrator) fetch(ctx context.Context, em *emitter, name, spider, url string, ct model.ComponentType, useBrowser bool) ([]model.SpecField, error) {
	em.sourceTrying(name, url)
	specs, err := o.fetcher.FetchSpecs(ctx, extract.Request{
		SpiderID:   spider,
		URL:        url,
		Type:       ct,
		Retries:    o.cfg.Retries,
		Throttle:   o.cfg.Throttle,
		UseBrowser: useBrowser,
	})
	if err != nil {
		if scrape.IsAntiBot(err) {
			o.sources.MarkBlocked(url)
			em.sourceAntiBot(progressSource, name, url)
			zap.L().Warn("orchestrator: anti-bot protection", zap.String("source", name), zap.String("url", url))
		} else {
			em.sourceFailed(progressSource, name, url, err)
		}
		return nil, err
	}
	if len(specs) == 0 {
		err := eris.Errorf("%s: no specs extracted", name)
		em.sourceFailed(progressSource, name, url, err)
		return nil, err
	}
	em.sourceSuccess(progressScrape, name, url, len(specs))
	return specs, nil
}
