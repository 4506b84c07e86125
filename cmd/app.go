package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/hardware-cli/internal/allowlist"
	"github.com/sells-group/hardware-cli/internal/catalog"
	"github.com/sells-group/hardware-cli/internal/config"
	"github.com/sells-group/hardware-cli/internal/crossval"
	"github.com/sells-group/hardware-cli/internal/extract"
	"github.com/sells-group/hardware-cli/internal/orchestrator"
	"github.com/sells-group/hardware-cli/internal/resilience"
	"github.com/sells-group/hardware-cli/internal/resolver"
	"github.com/sells-group/hardware-cli/internal/scrape"
	"github.com/sells-group/hardware-cli/internal/sourcechain"
	"github.com/sells-group/hardware-cli/internal/store"
	"github.com/sells-group/hardware-cli/pkg/firecrawl"
	"github.com/sells-group/hardware-cli/pkg/jina"
)

// appEnv holds the components shared by every session: the store, the
// extraction engine, the source manager and the resolver index.
type appEnv struct {
	Config    *config.Config
	Store     store.Store
	Fetcher   orchestrator.Fetcher
	Sources   *sourcechain.Manager
	Resolver  *resolver.Resolver
	Validator *crossval.Validator
	Search    jina.Client
	Refs      *catalog.ReferenceTable
	Allow     *allowlist.List
}

// Close releases resources held by the environment.
func (a *appEnv) Close() {
	if a.Store != nil {
		_ = a.Store.Close()
	}
}

// NewSession creates an orchestrator for one user session. Events are
// mirrored to sink when it is non-nil.
func (a *appEnv) NewSession(sink orchestrator.Sink) *orchestrator.Orchestrator {
	opts := []orchestrator.Option{
		orchestrator.WithReferenceTable(a.Refs),
		orchestrator.WithAllowlist(a.Allow),
	}
	if a.Validator != nil {
		opts = append(opts, orchestrator.WithValidator(a.Validator))
	}
	if a.Search != nil {
		opts = append(opts, orchestrator.WithSearch(a.Search))
	}
	if a.Store != nil {
		opts = append(opts, orchestrator.WithStore(a.Store))
	}
	if sink != nil {
		opts = append(opts, orchestrator.WithSink(sink))
	}
	var (
		retries  int
		throttle map[string]time.Duration
	)
	if a.Config != nil {
		retries = a.Config.Fetch.Retries
		throttle = a.Config.Fetch.Throttle()
	}
	return orchestrator.New(orchestrator.Config{
		Retries:  retries,
		Throttle: throttle,
	}, a.Sources, a.Resolver, a.Fetcher, opts...)
}

// initApp opens the store and builds the pipeline from c. Callers should
// defer env.Close().
func initApp(ctx context.Context, c *config.Config) (*appEnv, error) {
	st, err := store.Open(ctx, c.Store.Driver, c.Store.DatabaseURL, &store.PoolConfig{
		MaxConns: c.Store.MaxConns,
		MinConns: c.Store.MinConns,
	})
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}

	env, err := buildApp(c, st)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	n, err := env.NewSession(nil).LoadValidated(ctx)
	if err != nil {
		zap.L().Warn("validated catalog unavailable", zap.Error(err))
	} else if n > 0 {
		zap.L().Info("loaded validated components", zap.Int("count", n))
	}
	return env, nil
}

// buildApp wires the pipeline around st, which may be nil.
func buildApp(c *config.Config, st store.Store) (*appEnv, error) {
	allow := allowlist.New(c.Allowlist.ExtraOfficial, c.Allowlist.ExtraReference)

	index, err := catalog.Load()
	if err != nil {
		return nil, eris.Wrap(err, "load resolver index")
	}
	refs, err := catalog.LoadReferenceTable()
	if err != nil {
		return nil, eris.Wrap(err, "load reference table")
	}

	jinaOpts := []jina.Option{jina.WithBaseURL(c.Jina.BaseURL)}
	if c.Jina.SearchBaseURL != "" {
		jinaOpts = append(jinaOpts, jina.WithSearchBaseURL(c.Jina.SearchBaseURL))
	}
	jinaClient := jina.NewClient(c.Jina.Key, jinaOpts...)

	breakers := resilience.NewBreakers(scrape.BreakerConfig())
	var readOpts []jina.ReadOption
	if d := c.Jina.RenderTimeout(); d > 0 {
		readOpts = append(readOpts, jina.WithRenderTimeout(d))
	}
	if c.Jina.TargetSelector != "" {
		readOpts = append(readOpts, jina.WithTargetSelector(c.Jina.TargetSelector))
	}
	browser := []scrape.Scraper{scrape.NewJinaAdapter(jinaClient, breakers, readOpts...)}
	if c.Firecrawl.Key != "" {
		fc := firecrawl.NewClient(c.Firecrawl.Key, firecrawl.WithBaseURL(c.Firecrawl.BaseURL))
		browser = append(browser, scrape.NewFirecrawlAdapter(fc, breakers))
	} else {
		zap.L().Debug("HWX_FIRECRAWL_KEY not set, firecrawl fallback disabled")
	}

	engineOpts := []extract.Option{
		extract.WithAllowlist(allow),
		extract.WithPlain(scrape.NewHTTPScraper(c.Fetch.UserAgent, c.Fetch.Timeout())),
		extract.WithBrowser(scrape.NewChain("browser", browser...)),
	}
	if st != nil {
		engineOpts = append(engineOpts, extract.WithStore(st))
	}
	engine := extract.NewEngine(extract.Config{
		EnableReference:  c.Fetch.EnableReference,
		BrowserFallback:  c.Fetch.BrowserFallback,
		CacheTTL:         c.Store.CacheTTL(),
		DefaultThrottle:  c.Fetch.DefaultThrottle(),
		ThrottleByDomain: c.Fetch.Throttle(),
	}, engineOpts...)

	validator, err := crossval.New(engine, crossval.Config{
		MinSources:    c.Crossval.MinSources,
		MinConfidence: c.Crossval.MinConfidence,
		Concurrency:   c.Crossval.Concurrency,
		Rules:         c.Crossval.Rules,
		Retries:       c.Fetch.Retries,
		Throttle:      c.Fetch.Throttle(),
	})
	if err != nil {
		return nil, eris.Wrap(err, "configure cross-validation")
	}

	sources := sourcechain.NewManager(nil)
	return &appEnv{
		Config:    c,
		Store:     st,
		Fetcher:   engine,
		Sources:   sources,
		Resolver:  resolver.New(index, sources),
		Validator: validator,
		Search:    jinaClient,
		Refs:      refs,
		Allow:     allow,
	}, nil
}
