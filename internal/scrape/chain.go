package scrape

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/hardware-cli/internal/resilience"
)

// ErrNoScraper is returned when no scraper in a chain accepts the URL.
var ErrNoScraper = eris.New("scrape: no scraper available")

// BreakerConfig is the breaker configuration for rendering services. Anti-bot
// refusals from a single site do not count against the service.
func BreakerConfig() resilience.BreakerConfig {
	cfg := resilience.DefaultBreakerConfig()
	cfg.Counts = func(err error) bool {
		return !IsAntiBot(err) && !errors.Is(err, context.Canceled)
	}
	return cfg
}

// Chain tries scrapers in order and returns the first page.
type Chain struct {
	name     string
	scrapers []Scraper
}

// NewChain creates a Chain named name.
func NewChain(name string, scrapers ...Scraper) *Chain {
	return &Chain{name: name, scrapers: scrapers}
}

// Name implements Scraper.
func (c *Chain) Name() string { return c.name }

// Len returns the number of scrapers in the chain.
func (c *Chain) Len() int { return len(c.scrapers) }

// Supports is true if any scraper supports url.
func (c *Chain) Supports(url string) bool {
	for _, s := range c.scrapers {
		if s.Supports(url) {
			return true
		}
	}
	return false
}

// Scrape returns the first successful page. When every scraper fails and at
// least one saw anti-bot protection, the returned error satisfies IsAntiBot.
func (c *Chain) Scrape(ctx context.Context, targetURL string) (*Page, error) {
	var lastErr, antiBot error
	for _, s := range c.scrapers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !s.Supports(targetURL) {
			continue
		}
		page, err := s.Scrape(ctx, targetURL)
		if err == nil && page != nil {
			return page, nil
		}
		if err == nil {
			err = eris.Errorf("scrape: %s returned no page", s.Name())
		}
		zap.L().Debug("scrape: scraper failed, trying next",
			zap.String("chain", c.name),
			zap.String("scraper", s.Name()),
			zap.String("url", targetURL),
			zap.Error(err),
		)
		lastErr = err
		if antiBot == nil && IsAntiBot(err) {
			antiBot = err
		}
	}
	switch {
	case antiBot != nil:
		return nil, eris.Wrapf(antiBot, "scrape: %s: all scrapers failed", c.name)
	case lastErr != nil:
		return nil, eris.Wrapf(lastErr, "scrape: %s: all scrapers failed", c.name)
	}
	return nil, eris.Wrapf(ErrNoScraper, "scrape: %s: %s", c.name, targetURL)
}
