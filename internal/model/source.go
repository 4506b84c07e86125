package model

import (
	"net/url"
	"strings"
)

// SourceKind is how a source is accessed.
type SourceKind string

const (
	SourceAPI     SourceKind = "api"
	SourceScrape  SourceKind = "scrape"
	SourceCatalog SourceKind = "catalog"
)

// FetchEngine selects the transport used to fetch a source.
type FetchEngine string

const (
	EnginePlainHTTP FetchEngine = "http"
	EngineBrowser   FetchEngine = "browser"
)

// Source describes a known place to get specs for a component type.
type Source struct {
	Name        string      `json:"name" yaml:"name"`
	Kind        SourceKind  `json:"kind" yaml:"kind"`
	Tier        SourceTier  `json:"tier" yaml:"tier"`
	Provider    string      `json:"provider,omitempty" yaml:"provider"`
	Engine      FetchEngine `json:"engine" yaml:"engine"`
	SpiderID    string      `json:"spider_id,omitempty" yaml:"spider_id"`
	Domains     []string    `json:"domains,omitempty" yaml:"domains"`
	Priority    int         `json:"priority" yaml:"priority"`
	URLTemplate string      `json:"url_template,omitempty" yaml:"url_template"`
}

// MatchesDomain reports whether rawURL points at one of the source's domains.
func (s Source) MatchesDomain(rawURL string) bool {
	host := HostOf(rawURL)
	if host == "" {
		return false
	}
	for _, d := range s.Domains {
		if strings.Contains(host, strings.ToLower(d)) {
			return true
		}
	}
	return false
}

// MatchesProvider reports whether the source's provider names sourceName.
func (s Source) MatchesProvider(sourceName string) bool {
	if s.Provider == "" || sourceName == "" {
		return false
	}
	return strings.Contains(strings.ToLower(sourceName), strings.ToLower(s.Provider))
}

// SearchURL fills the source's URL template with query. Returns "" when the
// source has no template.
func (s Source) SearchURL(query string) string {
	if s.URLTemplate == "" {
		return ""
	}
	return strings.ReplaceAll(s.URLTemplate, "{query}", url.QueryEscape(query))
}

// HostOf returns the lower-cased host of rawURL without a leading "www." or
// port. Bare hosts are accepted. Returns "" if no host can be found.
func HostOf(rawURL string) string {
	raw := strings.TrimSpace(strings.ToLower(rawURL))
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	return strings.TrimPrefix(host, "www.")
}
