// Package sourcechain holds the ordered per-type source chains and tracks
// domains that currently answer automated requests with anti-bot challenges.
package sourcechain

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/sells-group/hardware-cli/internal/model"
)

// Manager owns the source chains and the blocked-domain set. It is safe for
// concurrent use.
type Manager struct {
	chains map[model.ComponentType][]model.Source

	mu      sync.RWMutex
	blocked map[string]struct{}
}

// NewManager creates a Manager over chains. Each chain is copied and sorted
// by priority with the catalog source last. A nil map uses DefaultChains.
func NewManager(chains map[model.ComponentType][]model.Source) *Manager {
	if chains == nil {
		chains = DefaultChains()
	}
	m := &Manager{
		chains:  make(map[model.ComponentType][]model.Source, len(chains)),
		blocked: make(map[string]struct{}),
	}
	for ct, list := range chains {
		sorted := make([]model.Source, len(list))
		copy(sorted, list)
		sort.SliceStable(sorted, func(i, j int) bool {
			ci, cj := sorted[i].Kind == model.SourceCatalog, sorted[j].Kind == model.SourceCatalog
			if ci != cj {
				return cj
			}
			return sorted[i].Priority < sorted[j].Priority
		})
		m.chains[ct] = sorted
	}
	return m
}

// Chain returns the ordered sources for ct. GENERAL and unknown types yield
// an empty chain.
func (m *Manager) Chain(ct model.ComponentType) []model.Source {
	list := m.chains[ct]
	out := make([]model.Source, len(list))
	copy(out, list)
	return out
}

// SourceFor returns the first non-catalog source matching the candidate's URL
// domain, else its source name by provider. GENERAL searches every chain.
func (m *Manager) SourceFor(ct model.ComponentType, c model.ResolveCandidate) *model.Source {
	types := []model.ComponentType{ct}
	if ct == model.ComponentGeneral {
		types = model.ComponentTypes
	}
	for _, t := range types {
		for _, s := range m.chains[t] {
			if s.Kind == model.SourceCatalog {
				continue
			}
			if s.MatchesDomain(c.SourceURL) || s.MatchesProvider(c.SourceName) {
				src := s
				return &src
			}
		}
	}
	return nil
}

// SourceForURL returns the first non-catalog source of any type whose domains
// match rawURL, trying ct first.
func (m *Manager) SourceForURL(ct model.ComponentType, rawURL string) (*model.Source, model.ComponentType) {
	types := append([]model.ComponentType{ct}, model.ComponentTypes...)
	for _, t := range types {
		for _, s := range m.chains[t] {
			if s.Kind != model.SourceCatalog && s.MatchesDomain(rawURL) {
				src := s
				return &src, t
			}
		}
	}
	return nil, ""
}

// ReferenceSources returns the REFERENCE-tier sources for ct in chain order.
func (m *Manager) ReferenceSources(ct model.ComponentType) []model.Source {
	var out []model.Source
	for _, s := range m.chains[ct] {
		if s.Tier == model.TierReference {
			out = append(out, s)
		}
	}
	return out
}

// CatalogSource returns the embedded catalog source for ct, or nil.
func (m *Manager) CatalogSource(ct model.ComponentType) *model.Source {
	for _, s := range m.chains[ct] {
		if s.Kind == model.SourceCatalog {
			src := s
			return &src
		}
	}
	return nil
}

// MarkBlocked records the host of rawURL (or a bare host) as anti-bot
// protected. Marking twice has no further effect.
func (m *Manager) MarkBlocked(rawURL string) {
	host := model.HostOf(rawURL)
	if host == "" {
		return
	}
	m.mu.Lock()
	_, seen := m.blocked[host]
	m.blocked[host] = struct{}{}
	m.mu.Unlock()
	if !seen {
		zap.L().Info("sourcechain: domain marked blocked", zap.String("domain", host))
	}
}

// IsBlocked reports whether the host of rawURL is blocked.
func (m *Manager) IsBlocked(rawURL string) bool {
	host := model.HostOf(rawURL)
	if host == "" {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blocked[host]
	return ok
}

// BlockedDomains returns the blocked hosts in sorted order.
func (m *Manager) BlockedDomains() []string {
	m.mu.RLock()
	out := make([]string, 0, len(m.blocked))
	for h := range m.blocked {
		out = append(out, h)
	}
	m.mu.RUnlock()
	sort.Strings(out)
	return out
}

// ResetBlocked clears the blocked set.
func (m *Manager) ResetBlocked() {
	m.mu.Lock()
	m.blocked = make(map[string]struct{})
	m.mu.Unlock()
}

// ShouldUseBrowserEngine reports whether a fetch of rawURL from src must use
// the browser engine: the source requires it or the domain is blocked.
func (m *Manager) ShouldUseBrowserEngine(src model.Source, rawURL string) bool {
	return src.Engine == model.EngineBrowser || m.IsBlocked(rawURL)
}
