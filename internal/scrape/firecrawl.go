package scrape

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hardware-cli/internal/resilience"
	"github.com/sells-group/hardware-cli/pkg/firecrawl"
)

// FirecrawlAdapter renders pages through Firecrawl.
type FirecrawlAdapter struct {
	client  firecrawl.Client
	breaker *resilience.Breaker
}

// NewFirecrawlAdapter wraps client. breakers may be nil.
func NewFirecrawlAdapter(client firecrawl.Client, breakers *resilience.Breakers) *FirecrawlAdapter {
	if breakers == nil {
		breakers = resilience.NewBreakers(BreakerConfig())
	}
	return &FirecrawlAdapter{client: client, breaker: breakers.Get("firecrawl")}
}

func (f *FirecrawlAdapter) Name() string { return "firecrawl" }

// Supports is false while the breaker is open.
func (f *FirecrawlAdapter) Supports(_ string) bool {
	return f.breaker.State() != resilience.Open
}

// Scrape renders targetURL and returns its main-content HTML.
func (f *FirecrawlAdapter) Scrape(ctx context.Context, targetURL string) (*Page, error) {
	return resilience.Call(ctx, f.breaker, func(ctx context.Context) (*Page, error) {
		resp, err := f.client.Scrape(ctx, firecrawl.ScrapeRequest{
			URL:             targetURL,
			Formats:         []string{"html"},
			OnlyMainContent: true,
			WaitFor:         1500,
		})
		if err != nil {
			return nil, err
		}
		if !resp.Success {
			return nil, eris.Errorf("firecrawl: scrape not successful: %s", resp.Error)
		}
		status := resp.Data.Metadata.StatusCode
		switch status {
		case 403:
			return nil, &AntiBotError{URL: targetURL, Engine: f.Name(), Block: BlockForbidden}
		case 429:
			return nil, &AntiBotError{URL: targetURL, Engine: f.Name(), Block: BlockRateLimit}
		}
		if blocked, kind := DetectBlock(nil, []byte(resp.Data.HTML)); blocked {
			return nil, &AntiBotError{URL: targetURL, Engine: f.Name(), Block: kind}
		}
		if status == 0 {
			status = 200
		}
		page := &Page{
			URL:        targetURL,
			Title:      resp.Data.Metadata.Title,
			Content:    resp.Data.HTML,
			Format:     FormatHTML,
			StatusCode: status,
			Engine:     f.Name(),
		}
		if resp.Data.HTML == "" {
			page.Content = resp.Data.Markdown
			page.Format = FormatMarkdown
		}
		return page, nil
	})
}
