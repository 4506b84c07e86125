// Package catalog holds the embedded component index used for resolution and
// the table of direct reference-site product pages.
package catalog

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/hardware-cli/internal/model"
)

//go:embed data/resolver_index.yaml
var resolverIndexYAML []byte

// Entry is one known component.
type Entry struct {
	Type       model.ComponentType `yaml:"type" json:"type"`
	Canonical  model.Canonical     `yaml:",inline" json:"canonical"`
	SourceName string              `yaml:"source_name" json:"source_name"`
	SourceURL  string              `yaml:"source_url" json:"source_url"`
	SpiderID   string              `yaml:"spider_id" json:"spider_id"`
	Tier       model.SourceTier    `yaml:"tier,omitempty" json:"tier,omitempty"`
	Specs      []model.SpecField   `yaml:"-" json:"specs,omitempty"`
}

// Candidate converts the entry into a resolver candidate with the given score.
func (e Entry) Candidate(score float64) model.ResolveCandidate {
	tier := e.Tier
	if tier == "" {
		tier = model.TierCatalog
	}
	var specs []model.SpecField
	if len(e.Specs) > 0 {
		specs = make([]model.SpecField, len(e.Specs))
		copy(specs, e.Specs)
	}
	return model.ResolveCandidate{
		Canonical:  e.Canonical,
		Score:      score,
		SourceURL:  e.SourceURL,
		SourceName: e.SourceName,
		SpiderID:   e.SpiderID,
		Tier:       tier,
		Specs:      specs,
	}
}

func entryKey(e Entry) string {
	return string(e.Type) + "|" + strings.ToLower(e.Canonical.Brand) + "|" + strings.ToLower(e.Canonical.Model)
}

// Index is the set of known components grouped by type. Safe for concurrent
// use; Add lets validated web-search results join at runtime.
type Index struct {
	mu     sync.RWMutex
	byType map[model.ComponentType][]Entry
	keys   map[string]int
}

// NewIndex builds an index from entries.
func NewIndex(entries []Entry) *Index {
	idx := &Index{
		byType: make(map[model.ComponentType][]Entry),
		keys:   make(map[string]int),
	}
	for _, e := range entries {
		idx.Add(e)
	}
	return idx
}

// Parse decodes a YAML list of entries.
func Parse(data []byte) (*Index, error) {
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, eris.Wrap(err, "catalog: parse index")
	}
	for i, e := range entries {
		if !e.Type.Valid() || e.Type == model.ComponentGeneral {
			return nil, eris.Errorf("catalog: entry %d: invalid type %q", i, e.Type)
		}
		if e.Canonical.Model == "" {
			return nil, eris.Errorf("catalog: entry %d: model is required", i)
		}
	}
	return NewIndex(entries), nil
}

// Load returns the embedded index.
func Load() (*Index, error) {
	return Parse(resolverIndexYAML)
}

// Add inserts e, replacing any entry with the same type, brand and model.
// It reports whether a new entry was created.
func (i *Index) Add(e Entry) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	key := entryKey(e)
	if pos, ok := i.keys[key]; ok {
		i.byType[e.Type][pos] = e
		return false
	}
	i.keys[key] = len(i.byType[e.Type])
	i.byType[e.Type] = append(i.byType[e.Type], e)
	return true
}

// Entries returns a copy of the entries for ct in insertion order.
func (i *Index) Entries(ct model.ComponentType) []Entry {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]Entry, len(i.byType[ct]))
	copy(out, i.byType[ct])
	return out
}

// Len returns the total number of entries.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	n := 0
	for _, list := range i.byType {
		n += len(list)
	}
	return n
}
