package extract

import (
	"slices"
	"strings"

	"github.com/sells-group/hardware-cli/internal/model"
	"github.com/sells-group/hardware-cli/internal/scrape"
)

// Spider extracts spec fields for one site from a fetched page.
type Spider struct {
	ID         string
	SourceName string
	Types      []model.ComponentType
}

// TypeFor picks the component type whose labels the spider applies to a
// page. Multi-type reference spiders use want when they support it, else a
// path hint such as "/gpu-specs/".
func (s *Spider) TypeFor(want model.ComponentType, pageURL string) model.ComponentType {
	if len(s.Types) == 1 {
		return s.Types[0]
	}
	if slices.Contains(s.Types, want) {
		return want
	}
	lower := strings.ToLower(pageURL)
	for _, hint := range pathHints {
		if strings.Contains(lower, hint.fragment) && slices.Contains(s.Types, hint.ct) {
			return hint.ct
		}
	}
	if len(s.Types) > 0 {
		return s.Types[0]
	}
	return model.ComponentGeneral
}

var pathHints = []struct {
	fragment string
	ct       model.ComponentType
}{
	{"/gpu-specs/", model.ComponentGPU},
	{"/cpu-specs/", model.ComponentCPU},
	{"/ssd-specs/", model.ComponentDisk},
	{"/memory", model.ComponentRAM},
}

// Parse extracts fields from page for ct. The first value seen for a key
// wins. Fields carry the provenance of tier.
func (s *Spider) Parse(page *scrape.Page, ct model.ComponentType, tier model.SourceTier) []model.SpecField {
	if page == nil || strings.TrimSpace(page.Content) == "" {
		return nil
	}

	var pairs []pair
	if page.Format == scrape.FormatMarkdown {
		pairs = markdownPairs(page.Content)
	} else {
		var err error
		pairs, err = htmlPairs(page.Content)
		if err != nil {
			return nil
		}
		if len(pairs) == 0 {
			pairs = ogPairs(ct, ogDescription(page.Content))
		}
	}

	prefix := ct.Prefix() + "."
	seen := make(map[string]bool)
	var fields []model.SpecField
	for _, p := range pairs {
		key := p.key
		if key == "" {
			var ok bool
			if key, ok = KeyForLabel(ct, p.label); !ok {
				continue
			}
		} else if !strings.HasPrefix(key, prefix) {
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		fields = append(fields, newField(key, p.label, p.value, p.unit, tier, s.SourceName, page.URL))
	}
	return fields
}

// Registry holds spiders by id.
type Registry struct {
	spiders map[string]*Spider
}

// NewRegistry creates a registry from spiders.
func NewRegistry(spiders ...*Spider) *Registry {
	r := &Registry{spiders: make(map[string]*Spider, len(spiders))}
	for _, s := range spiders {
		r.spiders[s.ID] = s
	}
	return r
}

// Get returns the spider registered under id.
func (r *Registry) Get(id string) (*Spider, bool) {
	s, ok := r.spiders[id]
	return s, ok
}

// IDs returns the registered spider ids, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.spiders))
	for id := range r.spiders {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func spider(id, name string, types ...model.ComponentType) *Spider {
	return &Spider{ID: id, SourceName: name, Types: types}
}

// DefaultRegistry returns the spiders for every built-in source.
func DefaultRegistry() *Registry {
	cpu, ram, gpu := model.ComponentCPU, model.ComponentRAM, model.ComponentGPU
	mb, disk := model.ComponentMainboard, model.ComponentDisk
	return NewRegistry(
		spider("intel_ark_spider", "Intel ARK", cpu),
		spider("amd_cpu_specs_spider", "AMD Specifications", cpu),
		spider("wikichip_reference_spider", "WikiChip", cpu),
		spider("techpowerup_reference_spider", "TechPowerUp", gpu, cpu, ram, disk),
		spider("crucial_ram_spider", "Crucial", ram),
		spider("kingston_ram_spider", "Kingston", ram),
		spider("corsair_ram_spider", "Corsair", ram),
		spider("gskill_ram_spider", "G.Skill", ram),
		spider("nvidia_gpu_chip_spider", "NVIDIA", gpu),
		spider("amd_gpu_chip_spider", "AMD Graphics", gpu),
		spider("intel_arc_gpu_chip_spider", "Intel Arc", gpu),
		spider("asus_gpu_aib_spider", "ASUS Graphics", gpu),
		spider("asus_mainboard_spider", "ASUS", mb),
		spider("msi_mainboard_spider", "MSI", mb),
		spider("gigabyte_mainboard_spider", "GIGABYTE", mb),
		spider("asrock_mainboard_spider", "ASRock", mb),
		spider("samsung_storage_spider", "Samsung Semiconductor", disk),
		spider("wdc_storage_spider", "Western Digital", disk),
		spider("seagate_storage_spider", "Seagate", disk),
	)
}
