package catalog

import (
	_ "embed"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/hardware-cli/internal/model"
	"github.com/sells-group/hardware-cli/internal/normalize"
)

//go:embed data/reference_urls.yaml
var referenceURLsYAML []byte

// ReferenceTable maps normalized model names to reference product pages.
type ReferenceTable struct {
	byType map[model.ComponentType]map[string]string
}

// LoadReferenceTable returns the embedded table.
func LoadReferenceTable() (*ReferenceTable, error) {
	return ParseReferenceTable(referenceURLsYAML)
}

// ParseReferenceTable decodes a YAML mapping of type to model to URL.
func ParseReferenceTable(data []byte) (*ReferenceTable, error) {
	var raw map[model.ComponentType]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "catalog: parse reference urls")
	}
	t := &ReferenceTable{byType: make(map[model.ComponentType]map[string]string, len(raw))}
	for ct, urls := range raw {
		m := make(map[string]string, len(urls))
		for k, v := range urls {
			m[normalize.Text(k)] = v
		}
		t.byType[ct] = m
	}
	return t, nil
}

// Lookup returns the reference URL for a canonical model. The model is tried
// as-is and with a leading brand name removed.
func (t *ReferenceTable) Lookup(ct model.ComponentType, c model.Canonical) (string, bool) {
	if t == nil {
		return "", false
	}
	urls := t.byType[ct]
	if len(urls) == 0 {
		return "", false
	}
	key := normalize.Text(c.Model)
	if u, ok := urls[key]; ok {
		return u, true
	}
	if brand := normalize.Text(c.Brand); brand != "" {
		if u, ok := urls[strings.TrimSpace(strings.TrimPrefix(key, brand))]; ok {
			return u, true
		}
	}
	return "", false
}

// Len returns the number of URLs for ct.
func (t *ReferenceTable) Len(ct model.ComponentType) int {
	if t == nil {
		return 0
	}
	return len(t.byType[ct])
}
