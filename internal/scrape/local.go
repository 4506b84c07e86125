package scrape

import (
	"context"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hardware-cli/internal/resilience"
)

// DefaultUserAgent identifies plain HTTP fetches.
const DefaultUserAgent = "Mozilla/5.0 (compatible; HardwareCLI/1.0; +https://github.com/sells-group/hardware-cli)"

const maxPageBytes = 2 << 20

// HTTPScraper fetches raw HTML with net/http and refuses anti-bot pages.
type HTTPScraper struct {
	client    *http.Client
	userAgent string
}

// NewHTTPScraper creates an HTTPScraper. Zero values select defaults.
func NewHTTPScraper(userAgent string, timeout time.Duration) *HTTPScraper {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPScraper{
		userAgent: userAgent,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext:         (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				MaxIdleConnsPerHost: 4,
			},
		},
	}
}

// WithClient replaces the HTTP client.
func (h *HTTPScraper) WithClient(c *http.Client) *HTTPScraper {
	h.client = c
	return h
}

func (h *HTTPScraper) Name() string           { return "http" }
func (h *HTTPScraper) Supports(_ string) bool { return true }

// Scrape fetches targetURL. Anti-bot responses return *AntiBotError;
// retryable statuses return *resilience.StatusError.
func (h *HTTPScraper) Scrape(ctx context.Context, targetURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "http: create request")
	}
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "http: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, eris.Wrap(err, "http: read body")
	}

	if blocked, kind := DetectBlock(resp, body); blocked {
		return nil, &AntiBotError{URL: targetURL, Engine: h.Name(), Block: kind}
	}
	if resp.StatusCode >= 400 {
		return nil, &resilience.StatusError{URL: targetURL, StatusCode: resp.StatusCode}
	}

	return &Page{
		URL:        targetURL,
		Title:      extractTitle(body),
		Content:    string(body),
		Format:     FormatHTML,
		StatusCode: resp.StatusCode,
		Engine:     h.Name(),
	}, nil
}

var titleRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

func extractTitle(body []byte) string {
	if m := titleRe.FindSubmatch(body); len(m) > 1 {
		return strings.TrimSpace(string(m[1]))
	}
	return ""
}
