// Package jina is a client for the Jina AI Reader and Search APIs. Reader
// renders a page in a headless browser and returns its content; Search
// returns web results for a query.
package jina

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultReaderURL = "https://r.jina.ai"
	defaultSearchURL = "https://s.jina.ai"
	maxBody          = 4 << 20
)

// Client defines the Jina operations.
type Client interface {
	// Read renders targetURL and returns its content in the requested format.
	Read(ctx context.Context, targetURL string, opts ...ReadOption) (*ReadResponse, error)
	// Search returns web results for query.
	Search(ctx context.Context, query string, opts ...SearchOption) (*SearchResponse, error)
}

// ReadResponse is the Reader API envelope.
type ReadResponse struct {
	Code int      `json:"code"`
	Data ReadData `json:"data"`
}

// ReadData is a rendered page.
type ReadData struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// SearchResponse is the Search API envelope.
type SearchResponse struct {
	Code int            `json:"code"`
	Data []SearchResult `json:"data"`
}

// SearchResult is one search hit.
type SearchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// StatusError is returned for non-200 responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("jina: status %d: %s", e.StatusCode, e.Body)
}

// ReadOption configures a Read call.
type ReadOption func(*readOpts)

type readOpts struct {
	format   string
	selector string
	timeout  time.Duration
}

// WithFormat selects "html", "markdown" or "text" output. Default markdown.
func WithFormat(format string) ReadOption {
	return func(o *readOpts) { o.format = format }
}

// WithTargetSelector limits the returned content to a CSS selector.
func WithTargetSelector(sel string) ReadOption {
	return func(o *readOpts) { o.selector = sel }
}

// WithRenderTimeout bounds how long Jina waits for the page to render.
func WithRenderTimeout(d time.Duration) ReadOption {
	return func(o *readOpts) { o.timeout = d }
}

// SearchOption configures a Search call.
type SearchOption func(*searchOpts)

type searchOpts struct {
	site string
}

// WithSiteFilter restricts results to one domain.
func WithSiteFilter(domain string) SearchOption {
	return func(o *searchOpts) { o.site = domain }
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the Reader endpoint.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.readerURL = u }
}

// WithSearchBaseURL overrides the Search endpoint.
func WithSearchBaseURL(u string) Option {
	return func(c *httpClient) { c.searchURL = u }
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

type httpClient struct {
	apiKey    string
	readerURL string
	searchURL string
	http      *http.Client
}

// NewClient creates a client. An empty apiKey uses the anonymous tier.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:    apiKey,
		readerURL: defaultReaderURL,
		searchURL: defaultSearchURL,
		http: &http.Client{
			Timeout: 45 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 8,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Read(ctx context.Context, targetURL string, opts ...ReadOption) (*ReadResponse, error) {
	o := readOpts{format: "markdown"}
	for _, opt := range opts {
		opt(&o)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.readerURL+"/"+targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "jina: create read request")
	}
	req.Header.Set("X-Return-Format", o.format)
	if o.selector != "" {
		req.Header.Set("X-Target-Selector", o.selector)
	}
	if o.timeout > 0 {
		req.Header.Set("X-Timeout", fmt.Sprintf("%d", int(o.timeout.Seconds())))
	}

	var out ReadResponse
	if err := c.do(req, &out); err != nil {
		return nil, eris.Wrapf(err, "jina: read %s", targetURL)
	}
	return &out, nil
}

func (c *httpClient) Search(ctx context.Context, query string, opts ...SearchOption) (*SearchResponse, error) {
	var o searchOpts
	for _, opt := range opts {
		opt(&o)
	}

	reqURL := c.searchURL + "/" + url.PathEscape(query)
	if o.site != "" {
		reqURL += "?site=" + url.QueryEscape(o.site)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "jina: create search request")
	}

	var out SearchResponse
	if err := c.do(req, &out); err != nil {
		// 422 means the query produced no results.
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusUnprocessableEntity {
			return &SearchResponse{Code: se.StatusCode}, nil
		}
		return nil, eris.Wrapf(err, "jina: search %q", query)
	}
	return &out, nil
}

func (c *httpClient) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "execute request")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return eris.Wrap(err, "read body")
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "decode response")
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
