// Package orchestrator drives one session's inputs through classification,
// resolution and the fetch fallback cascade.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/hardware-cli/internal/allowlist"
	"github.com/sells-group/hardware-cli/internal/catalog"
	"github.com/sells-group/hardware-cli/internal/classify"
	"github.com/sells-group/hardware-cli/internal/crossval"
	"github.com/sells-group/hardware-cli/internal/extract"
	"github.com/sells-group/hardware-cli/internal/model"
	"github.com/sells-group/hardware-cli/internal/normalize"
	"github.com/sells-group/hardware-cli/internal/resolver"
	"github.com/sells-group/hardware-cli/internal/sourcechain"
	"github.com/sells-group/hardware-cli/internal/store"
	"github.com/sells-group/hardware-cli/pkg/jina"
)

// Fetcher is the extraction engine contract.
type Fetcher interface {
	FetchSpecs(ctx context.Context, req extract.Request) ([]model.SpecField, error)
}

// Config holds the fetch settings passed through to every cascade step.
type Config struct {
	Retries  int
	Throttle map[string]time.Duration
	// MaxSearchTargets caps the sources consulted by web search.
	MaxSearchTargets int
}

// Outcome is the result of one command.
type Outcome struct {
	Status     model.OutcomeStatus      `json:"status"`
	Message    string                   `json:"message,omitempty"`
	Events     []model.Event            `json:"events"`
	Candidates []model.ResolveCandidate `json:"candidates,omitempty"`
	Record     *model.ComponentRecord   `json:"record,omitempty"`
}

// Orchestrator holds one session. Commands on a session run one at a time;
// the source manager and fetcher may be shared between sessions.
type Orchestrator struct {
	cfg       Config
	sources   *sourcechain.Manager
	resolver  *resolver.Resolver
	fetcher   Fetcher
	validator *crossval.Validator
	search    jina.Client
	refs      *catalog.ReferenceTable
	allow     *allowlist.List
	store     store.Store
	sink      Sink
	now       func() time.Time

	mu         sync.Mutex
	last       lastInput
	components []model.ComponentRecord
}

// lastInput is what SelectCandidate resumes from.
type lastInput struct {
	raw        string
	normalized string
	ct         model.ComponentType
	confidence float64
	candidates []model.ResolveCandidate
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithValidator enables web-search resolution through v.
func WithValidator(v *crossval.Validator) Option { return func(o *Orchestrator) { o.validator = v } }

// WithSearch sets the web search client used to find cross-validation pages.
func WithSearch(c jina.Client) Option { return func(o *Orchestrator) { o.search = c } }

// WithReferenceTable sets the direct reference-page table.
func WithReferenceTable(t *catalog.ReferenceTable) Option { return func(o *Orchestrator) { o.refs = t } }

// WithAllowlist replaces the default allowlist.
func WithAllowlist(l *allowlist.List) Option { return func(o *Orchestrator) { o.allow = l } }

// WithStore persists validated web-search results to st.
func WithStore(st store.Store) Option { return func(o *Orchestrator) { o.store = st } }

// WithSink mirrors every event to fn.
func WithSink(fn Sink) Option { return func(o *Orchestrator) { o.sink = fn } }

// WithClock overrides the record date source.
func WithClock(now func() time.Time) Option { return func(o *Orchestrator) { o.now = now } }

// New creates an Orchestrator.
func New(cfg Config, sources *sourcechain.Manager, res *resolver.Resolver, fetcher Fetcher, opts ...Option) *Orchestrator {
	if cfg.MaxSearchTargets <= 0 {
		cfg.MaxSearchTargets = 3
	}
	if sources == nil {
		sources = sourcechain.NewManager(nil)
	}
	if res == nil {
		res = resolver.New(nil, sources)
	}
	o := &Orchestrator{
		cfg:      cfg,
		sources:  sources,
		resolver: res,
		fetcher:  fetcher,
		allow:    allowlist.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Sources returns the session's source manager.
func (o *Orchestrator) Sources() *sourcechain.Manager { return o.sources }

// LoadValidated merges previously validated components from the store into
// the resolver index and returns how many were loaded.
func (o *Orchestrator) LoadValidated(ctx context.Context) (int, error) {
	if o.store == nil {
		return 0, nil
	}
	entries, err := o.store.ListValidated(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "orchestrator: load validated catalog")
	}
	for _, e := range entries {
		o.resolver.Index().Add(e)
	}
	return len(entries), nil
}

// ProcessInput runs text through the pipeline. It stops at
// NEEDS_USER_SELECTION when the match is ambiguous.
func (o *Orchestrator) ProcessInput(ctx context.Context, text string) Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()

	em := &emitter{sink: o.sink}
	em.emit(model.Event{Kind: model.EventNormalizing, Progress: progressNormalize, Message: "normalizing input"})
	normalized := normalize.Text(text)
	if normalized == "" {
		return o.fail(em, "input is empty")
	}

	ct, confidence := classify.Classify(normalized)
	em.emit(model.Event{
		Kind:     model.EventClassified,
		Progress: progressClassify,
		Message:  fmt.Sprintf("classified as %s (%.0f%%)", ct, confidence*100),
	})
	o.last = lastInput{raw: text, normalized: normalized, ct: ct, confidence: confidence}

	res := o.resolver.Resolve(text, ct)
	if len(res.Candidates) == 0 && len(o.sources.ReferenceSources(ct)) > 0 {
		if cand, ok := o.webSearch(ctx, em, text, ct); ok {
			res = model.ResolveResult{Exact: true, Candidates: []model.ResolveCandidate{cand}}
		}
	}
	if err := ctx.Err(); err != nil {
		return o.fail(em, "canceled: "+err.Error())
	}
	if len(res.Candidates) == 0 {
		return o.fail(em, "no candidates found for input")
	}
	o.last.candidates = res.Candidates

	if !res.Exact {
		em.emit(model.Event{
			Kind:       model.EventNeedsSelection,
			Progress:   progressSelection,
			Message:    fmt.Sprintf("%d candidates, selection required", len(res.Candidates)),
			Count:      len(res.Candidates),
			Candidates: res.Candidates,
			Status:     model.OutcomeNeedsSelection,
		})
		return Outcome{
			Status:     model.OutcomeNeedsSelection,
			Events:     em.events,
			Candidates: res.Candidates,
		}
	}
	return o.process(ctx, em, res.Candidates[0])
}

// SelectCandidate resumes the last input with the candidate at index.
func (o *Orchestrator) SelectCandidate(ctx context.Context, index int) Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()

	em := &emitter{sink: o.sink}
	if index < 0 || index >= len(o.last.candidates) {
		return o.fail(em, fmt.Sprintf("candidate index %d out of range", index))
	}
	return o.process(ctx, em, o.last.candidates[index])
}

// Components returns the session's records in insertion order.
func (o *Orchestrator) Components() []model.ComponentRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]model.ComponentRecord, len(o.components))
	copy(out, o.components)
	return out
}

// Reset clears the session's records and pending candidates.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.components = nil
	o.last = lastInput{}
}

func (o *Orchestrator) process(ctx context.Context, em *emitter, cand model.ResolveCandidate) Outcome {
	ct := o.last.ct
	em.emit(model.Event{
		Kind:     model.EventResolved,
		Progress: progressResolve,
		Message:  "candidate selected: " + cand.Canonical.DisplayName(),
		Source:   cand.SourceName,
		URL:      cand.SourceURL,
	})

	got, err := o.runCascade(ctx, em, ct, cand)
	if err != nil {
		return o.fail(em, err.Error())
	}

	rec := model.NewComponentRecord(model.RecordInput{
		RawInput:                 o.last.raw,
		NormalizedInput:          o.last.normalized,
		Type:                     ct,
		ClassificationConfidence: o.last.confidence,
		Canonical:                cand.Canonical,
		ExactMatch:               true,
		Tier:                     got.tier,
		SourceName:               got.sourceName,
		SourceURL:                got.sourceURL,
		Specs:                    got.specs,
	}, o.now())
	o.addComponent(rec)

	zap.L().Info("orchestrator: component ready",
		zap.String("type", string(ct)),
		zap.String("model", cand.Canonical.DisplayName()),
		zap.String("step", got.step),
		zap.String("tier", string(got.tier)),
		zap.Int("specs", len(got.specs)),
	)
	em.emit(model.Event{
		Kind:     model.EventReady,
		Progress: progressReady,
		Message:  fmt.Sprintf("ready: %d specs from %s", len(rec.Specs), rec.SourceName),
		Source:   rec.SourceName,
		URL:      rec.SourceURL,
		Count:    len(rec.Specs),
		Record:   &rec,
		Status:   model.OutcomeReady,
	})
	return Outcome{Status: model.OutcomeReady, Events: em.events, Record: &rec}
}

// addComponent replaces a record of the same type unless the type stacks.
func (o *Orchestrator) addComponent(rec model.ComponentRecord) {
	if !rec.Type.Stacks() {
		kept := o.components[:0]
		for _, c := range o.components {
			if c.Type != rec.Type {
				kept = append(kept, c)
			}
		}
		o.components = kept
	}
	o.components = append(o.components, rec)
}

func (o *Orchestrator) fail(em *emitter, msg string) Outcome {
	zap.L().Info("orchestrator: recoverable error", zap.String("reason", msg))
	em.emit(model.Event{
		Kind:     model.EventError,
		Progress: progressDone,
		Message:  msg,
		Status:   model.OutcomeError,
	})
	return Outcome{Status: model.OutcomeError, Message: msg, Events: em.events}
}
