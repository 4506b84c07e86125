// Package crossval finds per-field agreement between independent sources for
// components the catalog does not know.
package crossval

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/hardware-cli/internal/extract"
	"github.com/sells-group/hardware-cli/internal/model"
)

// SingleSourceConfidence is assigned to keys only one source reported.
const SingleSourceConfidence = 0.5

// ErrTooFewTargets is returned when fewer than two targets are given.
var ErrTooFewTargets = eris.New("crossval: at least two targets are required")

// Fetcher fetches the spec fields of one page.
type Fetcher interface {
	FetchSpecs(ctx context.Context, req extract.Request) ([]model.SpecField, error)
}

// Target is one independent source to consult.
type Target struct {
	SourceName string
	SpiderID   string
	URL        string
	// UseBrowser renders the page instead of fetching it over plain HTTP.
	UseBrowser bool
}

// Config controls validation thresholds.
type Config struct {
	// MinSources is the smallest agreeing cluster that validates a key.
	MinSources int
	// MinConfidence is the mean confidence needed to persist a result.
	MinConfidence float64
	// Concurrency bounds parallel fetches.
	Concurrency int
	// Rules overrides DefaultRules per key.
	Rules map[string]string
	// Retries and Throttle are passed through to every fetch.
	Retries  int
	Throttle map[string]time.Duration
}

// Validator cross-validates spec fields from several sources.
type Validator struct {
	fetcher Fetcher
	cfg     Config
	rules   map[string]Rule
}

// New creates a Validator. Unknown rule names in cfg.Rules are an error.
func New(fetcher Fetcher, cfg Config) (*Validator, error) {
	if cfg.MinSources <= 0 {
		cfg.MinSources = 2
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = 0.6
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 3
	}
	rules := make(map[string]Rule, len(DefaultRules)+len(cfg.Rules))
	for k, r := range DefaultRules {
		rules[k] = r
	}
	for k, name := range cfg.Rules {
		r, err := ParseRule(name)
		if err != nil {
			return nil, eris.Wrapf(err, "crossval: key %s", k)
		}
		rules[k] = r
	}
	return &Validator{fetcher: fetcher, cfg: cfg, rules: rules}, nil
}

// RuleFor returns the comparison used for key.
func (v *Validator) RuleFor(key string) Rule {
	if r, ok := v.rules[key]; ok {
		return r
	}
	return RuleExact
}

// SourceResult is the outcome of one target fetch.
type SourceResult struct {
	SourceName string            `json:"source_name"`
	URL        string            `json:"url"`
	Specs      []model.SpecField `json:"specs,omitempty"`
	Err        error             `json:"-"`
}

// Success reports whether the fetch produced at least one field.
func (r SourceResult) Success() bool { return r.Err == nil && len(r.Specs) > 0 }

// ValidatedSpec is one key's agreed value.
type ValidatedSpec struct {
	Key        string   `json:"key"`
	Label      string   `json:"label"`
	Value      string   `json:"value"`
	Unit       string   `json:"unit,omitempty"`
	Sources    []string `json:"sources"`
	Confidence float64  `json:"confidence"`
	// SingleSource marks keys only one source reported. They never count
	// toward consensus.
	SingleSource bool `json:"single_source,omitempty"`
}

// Result aggregates one validation run.
type Result struct {
	Input            string              `json:"input"`
	Type             model.ComponentType `json:"type"`
	Specs            []ValidatedSpec     `json:"specs"`
	Sources          []SourceResult      `json:"sources"`
	ConsensusReached bool                `json:"consensus_reached"`
	ShouldPersist    bool                `json:"should_persist"`
}

// Validate fetches every target and computes consensus. Fetch failures are
// recorded per source; only a canceled context or too few targets fail the
// call.
func (v *Validator) Validate(ctx context.Context, input string, ct model.ComponentType, targets []Target) (*Result, error) {
	if len(targets) < 2 {
		return nil, ErrTooFewTargets
	}
	zap.L().Info("crossval: validating",
		zap.String("input", input),
		zap.Int("sources", len(targets)),
	)

	results := make([]SourceResult, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.cfg.Concurrency)
	for i, t := range targets {
		g.Go(func() error {
			results[i] = v.fetch(gctx, ct, t)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Input: input, Type: ct, Sources: results}
	res.Specs = v.consensus(results)

	successful := 0
	for _, r := range results {
		if r.Success() {
			successful++
		}
	}
	agreed := 0
	for _, s := range res.Specs {
		if !s.SingleSource {
			agreed++
		}
	}
	res.ConsensusReached = agreed >= 2 && successful >= 2
	res.ShouldPersist = res.ConsensusReached && res.MeanConfidence() >= v.cfg.MinConfidence

	zap.L().Info("crossval: done",
		zap.String("input", input),
		zap.Int("validated", agreed),
		zap.Int("successful_sources", successful),
		zap.Bool("consensus", res.ConsensusReached),
		zap.Bool("persist", res.ShouldPersist),
	)
	return res, nil
}

func (v *Validator) fetch(ctx context.Context, ct model.ComponentType, t Target) SourceResult {
	out := SourceResult{SourceName: t.SourceName, URL: t.URL}
	specs, err := v.fetcher.FetchSpecs(ctx, extract.Request{
		SpiderID:   t.SpiderID,
		URL:        t.URL,
		Type:       ct,
		Retries:    v.cfg.Retries,
		Throttle:   v.cfg.Throttle,
		UseBrowser: t.UseBrowser,
	})
	if err != nil {
		zap.L().Debug("crossval: source failed",
			zap.String("source", t.SourceName),
			zap.String("url", t.URL),
			zap.Error(err),
		)
		out.Err = err
		return out
	}
	if len(specs) == 0 {
		out.Err = eris.Errorf("crossval: %s returned no specs", t.SourceName)
		return out
	}
	out.Specs = specs
	return out
}

type report struct {
	source string
	field  model.SpecField
}

// consensus groups fields by key in first-seen order and keeps, per key, the
// largest cluster of agreeing values.
func (v *Validator) consensus(results []SourceResult) []ValidatedSpec {
	var order []string
	byKey := make(map[string][]report)
	for _, r := range results {
		if !r.Success() {
			continue
		}
		seen := make(map[string]bool)
		for _, f := range r.Specs {
			if f.Status() == model.StatusNA || f.Status() == model.StatusUnknown || seen[f.Key] {
				continue
			}
			seen[f.Key] = true
			if _, ok := byKey[f.Key]; !ok {
				order = append(order, f.Key)
			}
			byKey[f.Key] = append(byKey[f.Key], report{source: r.SourceName, field: f})
		}
	}

	var out []ValidatedSpec
	for _, key := range order {
		reports := byKey[key]
		if len(reports) == 1 && v.cfg.MinSources > 1 {
			out = append(out, validated(key, reports, SingleSourceConfidence, true))
			continue
		}
		best := v.largestCluster(key, reports)
		if len(best) < v.cfg.MinSources {
			continue
		}
		out = append(out, validated(key, best, float64(len(best))/float64(len(reports)), false))
	}
	return out
}

// largestCluster assigns each report to the first cluster whose first value
// matches it. Ties go to the earlier cluster.
func (v *Validator) largestCluster(key string, reports []report) []report {
	rule := v.RuleFor(key)
	var clusters [][]report
	for _, r := range reports {
		placed := false
		for i := range clusters {
			if rule.Match(r.field.Value, clusters[i][0].field.Value) {
				clusters[i] = append(clusters[i], r)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, []report{r})
		}
	}
	var best []report
	for _, c := range clusters {
		if len(c) > len(best) {
			best = c
		}
	}
	return best
}

func validated(key string, group []report, confidence float64, single bool) ValidatedSpec {
	rep := group[0].field
	sources := make([]string, len(group))
	for i, r := range group {
		sources[i] = r.source
	}
	label := rep.Label
	if label == "" {
		label = labelFromKey(key)
	}
	return ValidatedSpec{
		Key:          key,
		Label:        label,
		Value:        rep.Value,
		Unit:         rep.Unit,
		Sources:      sources,
		Confidence:   confidence,
		SingleSource: single,
	}
}

func labelFromKey(key string) string {
	if i := strings.IndexByte(key, '.'); i >= 0 {
		key = key[i+1:]
	}
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// MeanConfidence averages the confidence of keys agreed on by several
// sources. It is zero when there are none.
func (r *Result) MeanConfidence() float64 {
	var sum float64
	n := 0
	for _, s := range r.Specs {
		if s.SingleSource {
			continue
		}
		sum += s.Confidence
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// SuccessfulSources returns the names of sources that produced fields.
func (r *Result) SuccessfulSources() []string {
	var out []string
	for _, s := range r.Sources {
		if s.Success() {
			out = append(out, s.SourceName)
		}
	}
	return out
}
