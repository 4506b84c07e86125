// Package extract fetches allowlisted product pages and turns them into
// provenance-tagged spec fields.
package extract

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/hardware-cli/internal/allowlist"
	"github.com/sells-group/hardware-cli/internal/model"
	"github.com/sells-group/hardware-cli/internal/resilience"
	"github.com/sells-group/hardware-cli/internal/scrape"
	"github.com/sells-group/hardware-cli/internal/store"
)

var (
	ErrEmptyURL          = eris.New("extract: empty url")
	ErrUnknownSpider     = eris.New("extract: unknown spider")
	ErrNotAllowlisted    = eris.New("extract: url not allowlisted")
	ErrReferenceDisabled = eris.New("extract: reference sources disabled")
)

// Request describes one spec fetch.
type Request struct {
	SpiderID string
	URL      string
	// Type selects the label set for multi-type spiders. Optional.
	Type model.ComponentType
	// Retries is the number of extra plain-HTTP attempts on transient errors.
	Retries int
	// Throttle adds per-domain spacing on top of the engine's configuration.
	Throttle map[string]time.Duration
	// UseBrowser skips the plain fetch and renders the page.
	UseBrowser bool
}

// Config controls engine behavior.
type Config struct {
	EnableReference  bool
	BrowserFallback  bool
	CacheTTL         time.Duration
	DefaultThrottle  time.Duration
	ThrottleByDomain map[string]time.Duration
	// FetchTimeout bounds one shared fetch, which outlives the caller that
	// started it.
	FetchTimeout time.Duration
}

// Engine fetches and parses spec pages. Safe for concurrent use.
type Engine struct {
	cfg      Config
	spiders  *Registry
	allow    *allowlist.List
	cache    store.Store
	plain    scrape.Scraper
	browser  scrape.Scraper
	throttle *Throttle
	group    singleflight.Group
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore caches parsed specs in st.
func WithStore(st store.Store) Option { return func(e *Engine) { e.cache = st } }

// WithAllowlist replaces the default allowlist.
func WithAllowlist(l *allowlist.List) Option { return func(e *Engine) { e.allow = l } }

// WithRegistry replaces the default spiders.
func WithRegistry(r *Registry) Option { return func(e *Engine) { e.spiders = r } }

// WithPlain replaces the plain HTTP scraper.
func WithPlain(s scrape.Scraper) Option { return func(e *Engine) { e.plain = s } }

// WithBrowser sets the scraper used for browser-rendered fetches.
func WithBrowser(s scrape.Scraper) Option { return func(e *Engine) { e.browser = s } }

// NewEngine creates an Engine.
func NewEngine(cfg Config, opts ...Option) *Engine {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 7 * 24 * time.Hour
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 2 * time.Minute
	}
	e := &Engine{
		cfg:      cfg,
		spiders:  DefaultRegistry(),
		allow:    allowlist.Default(),
		plain:    scrape.NewHTTPScraper("", 0),
		throttle: NewThrottle(cfg.DefaultThrottle, cfg.ThrottleByDomain),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Spiders returns the engine's spider registry.
func (e *Engine) Spiders() *Registry { return e.spiders }

// FetchSpecs returns the spec fields for req.URL parsed by req.SpiderID.
// Anti-bot failures satisfy scrape.IsAntiBot.
func (e *Engine) FetchSpecs(ctx context.Context, req Request) ([]model.SpecField, error) {
	if req.URL == "" {
		return nil, ErrEmptyURL
	}
	if !e.allow.IsAllowed(req.URL) {
		return nil, eris.Wrapf(ErrNotAllowlisted, "extract: %s", req.URL)
	}
	tier := e.allow.TierOf(req.URL)
	if tier == model.TierReference && !e.cfg.EnableReference {
		return nil, eris.Wrapf(ErrReferenceDisabled, "extract: %s", req.URL)
	}
	sp, ok := e.spiders.Get(req.SpiderID)
	if !ok {
		return nil, eris.Wrapf(ErrUnknownSpider, "extract: %q", req.SpiderID)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := store.CacheKey(req.SpiderID, req.URL)
	if specs := e.cached(ctx, key); specs != nil {
		return specs, nil
	}

	// Callers joined on key share one fetch, so it must not stop when the
	// caller that started it goes away.
	ch := e.group.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.FetchTimeout)
		defer cancel()
		specs, err := e.fetch(fctx, req, sp, tier)
		if err != nil {
			return nil, err
		}
		e.store(fctx, key, specs)
		return specs, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		specs := res.Val.([]model.SpecField)
		out := make([]model.SpecField, len(specs))
		copy(out, specs)
		return out, nil
	}
}

func (e *Engine) cached(ctx context.Context, key string) []model.SpecField {
	if e.cache == nil {
		return nil
	}
	specs, err := e.cache.GetCachedSpecs(ctx, key)
	if err != nil {
		zap.L().Warn("extract: cache read failed, treating as miss",
			zap.String("key", key), zap.Error(err))
		return nil
	}
	if len(specs) > 0 {
		zap.L().Debug("extract: cache hit", zap.String("key", key), zap.Int("fields", len(specs)))
		return specs
	}
	return nil
}

func (e *Engine) store(ctx context.Context, key string, specs []model.SpecField) {
	if e.cache == nil || len(specs) == 0 {
		return
	}
	if err := e.cache.SetCachedSpecs(ctx, key, specs, e.cfg.CacheTTL); err != nil {
		zap.L().Warn("extract: cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (e *Engine) fetch(ctx context.Context, req Request, sp *Spider, tier model.SourceTier) ([]model.SpecField, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := e.page(ctx, req)
	if err != nil {
		return nil, err
	}

	ct := sp.TypeFor(req.Type, req.URL)
	specs := sp.Parse(page, ct, tier)
	zap.L().Debug("extract: parsed page",
		zap.String("spider", sp.ID),
		zap.String("url", req.URL),
		zap.String("engine", page.Engine),
		zap.Int("fields", len(specs)),
	)
	return specs, nil
}

// page fetches req.URL over plain HTTP with retries, escalating to the
// browser scraper when the plain fetch is refused by anti-bot protection.
// Every request to the host, retries and escalation included, waits on the
// throttle.
func (e *Engine) page(ctx context.Context, req Request) (*scrape.Page, error) {
	if req.UseBrowser {
		if e.browser == nil {
			return nil, eris.Wrapf(scrape.ErrNoScraper, "extract: no browser engine for %s", req.URL)
		}
		return e.browserPage(ctx, req)
	}

	retry := resilience.NewRetry(req.Retries)
	retry.Retryable = func(err error) bool {
		return !scrape.IsAntiBot(err) && resilience.IsTransient(err)
	}
	retry.OnRetry = resilience.LogRetry(e.plain.Name(), req.URL)
	page, err := resilience.Do(ctx, retry, func(ctx context.Context) (*scrape.Page, error) {
		if err := e.throttle.Wait(ctx, req.URL, req.Throttle); err != nil {
			return nil, err
		}
		return e.plain.Scrape(ctx, req.URL)
	})
	if err == nil {
		return page, nil
	}
	if !scrape.IsAntiBot(err) || !e.cfg.BrowserFallback || e.browser == nil {
		return nil, err
	}

	zap.L().Warn("extract: plain fetch blocked, escalating to browser",
		zap.String("url", req.URL), zap.Error(err))
	if cerr := ctx.Err(); cerr != nil {
		return nil, cerr
	}
	page, berr := e.browserPage(ctx, req)
	if berr != nil {
		return nil, eris.Wrapf(err, "extract: browser fallback failed (%v)", berr)
	}
	return page, nil
}

func (e *Engine) browserPage(ctx context.Context, req Request) (*scrape.Page, error) {
	if err := e.throttle.Wait(ctx, req.URL, req.Throttle); err != nil {
		return nil, err
	}
	return e.browser.Scrape(ctx, req.URL)
}
