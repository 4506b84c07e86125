package scrape

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hardware-cli/internal/resilience"
	"github.com/sells-group/hardware-cli/pkg/jina"
)

// JinaAdapter renders pages through Jina Reader. A breaker skips Jina after
// repeated failures so the chain falls through to the next renderer.
type JinaAdapter struct {
	client  jina.Client
	breaker *resilience.Breaker
	opts    []jina.ReadOption
}

// NewJinaAdapter wraps client. breakers may be nil. opts are added to every
// read after the HTML format option.
func NewJinaAdapter(client jina.Client, breakers *resilience.Breakers, opts ...jina.ReadOption) *JinaAdapter {
	if breakers == nil {
		breakers = resilience.NewBreakers(BreakerConfig())
	}
	return &JinaAdapter{
		client:  client,
		breaker: breakers.Get("jina"),
		opts:    append([]jina.ReadOption{jina.WithFormat("html")}, opts...),
	}
}

func (j *JinaAdapter) Name() string { return "jina" }

// Supports is false while the breaker is open.
func (j *JinaAdapter) Supports(_ string) bool {
	return j.breaker.State() != resilience.Open
}

// Scrape renders targetURL as HTML.
func (j *JinaAdapter) Scrape(ctx context.Context, targetURL string) (*Page, error) {
	return resilience.Call(ctx, j.breaker, func(ctx context.Context) (*Page, error) {
		resp, err := j.client.Read(ctx, targetURL, j.opts...)
		if err != nil {
			return nil, err
		}
		if resp.Code != 0 && resp.Code != 200 {
			return nil, eris.Errorf("jina: upstream code %d for %s", resp.Code, targetURL)
		}
		body := []byte(resp.Data.Content)
		if blocked, kind := DetectBlock(nil, body); blocked {
			return nil, &AntiBotError{URL: targetURL, Engine: j.Name(), Block: kind}
		}
		if len(strings.TrimSpace(resp.Data.Content)) < 100 {
			return nil, eris.Errorf("jina: empty content for %s", targetURL)
		}
		u := resp.Data.URL
		if u == "" {
			u = targetURL
		}
		return &Page{
			URL:        u,
			Title:      resp.Data.Title,
			Content:    resp.Data.Content,
			Format:     FormatHTML,
			StatusCode: 200,
			Engine:     j.Name(),
		}, nil
	})
}
