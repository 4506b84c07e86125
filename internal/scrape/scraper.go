// Package scrape fetches product pages through a plain HTTP client or a
// browser-rendering service and detects anti-bot responses.
package scrape

import "context"

// Format is the markup of a fetched page.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// Page is a fetched document.
type Page struct {
	URL        string
	Title      string
	Content    string
	Format     Format
	StatusCode int
	Engine     string
}

// Scraper fetches a single URL.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Page, error)
	Name() string
	Supports(url string) bool
}
