package sourcechain

import "github.com/sells-group/hardware-cli/internal/model"

func scrape(name string, tier model.SourceTier, provider string, engine model.FetchEngine, spider string, priority int, domains ...string) model.Source {
	return model.Source{
		Name:     name,
		Kind:     model.SourceScrape,
		Tier:     tier,
		Provider: provider,
		Engine:   engine,
		SpiderID: spider,
		Domains:  domains,
		Priority: priority,
	}
}

func embedded(name string) model.Source {
	return model.Source{
		Name:     name,
		Kind:     model.SourceCatalog,
		Tier:     model.TierCatalog,
		Provider: "local",
		Engine:   model.EnginePlainHTTP,
		Priority: 99,
	}
}

func withTemplate(s model.Source, tpl string) model.Source {
	s.URLTemplate = tpl
	return s
}

const (
	official  = model.TierOfficial
	reference = model.TierReference
	plain     = model.EnginePlainHTTP
	browser   = model.EngineBrowser
)

// DefaultChains is the built-in source table.
func DefaultChains() map[model.ComponentType][]model.Source {
	return map[model.ComponentType][]model.Source{
		model.ComponentCPU: {
			scrape("intel_ark", official, "intel", plain, "intel_ark_spider", 1, "intel.com", "ark.intel.com"),
			scrape("amd_specs", official, "amd", plain, "amd_cpu_specs_spider", 2, "amd.com"),
			withTemplate(scrape("wikichip", reference, "wikichip", plain, "wikichip_reference_spider", 3, "wikichip.org"),
				"https://en.wikichip.org/w/index.php?search={query}"),
			withTemplate(scrape("techpowerup_cpu", reference, "techpowerup", plain, "techpowerup_reference_spider", 4, "techpowerup.com"),
				"https://www.techpowerup.com/cpu-specs/?ajaxsrch={query}"),
			embedded("embedded_cpu"),
		},
		model.ComponentRAM: {
			scrape("crucial", official, "crucial", plain, "crucial_ram_spider", 1, "crucial.com", "micron.com"),
			scrape("kingston", official, "kingston", plain, "kingston_ram_spider", 2, "kingston.com"),
			scrape("corsair", official, "corsair", browser, "corsair_ram_spider", 3, "corsair.com"),
			scrape("gskill", official, "gskill", browser, "gskill_ram_spider", 4, "gskill.com"),
			withTemplate(scrape("techpowerup_ram", reference, "techpowerup", plain, "techpowerup_reference_spider", 5, "techpowerup.com"),
				"https://www.techpowerup.com/search/?q={query}"),
			embedded("embedded_ram"),
		},
		model.ComponentGPU: {
			withTemplate(scrape("techpowerup_gpu", reference, "techpowerup", plain, "techpowerup_reference_spider", 1, "techpowerup.com"),
				"https://www.techpowerup.com/gpu-specs/?ajaxsrch={query}"),
			scrape("nvidia_official", official, "nvidia", plain, "nvidia_gpu_chip_spider", 2, "nvidia.com"),
			scrape("amd_gpu", official, "amd", plain, "amd_gpu_chip_spider", 3, "amd.com"),
			scrape("intel_arc", official, "intel", plain, "intel_arc_gpu_chip_spider", 4, "intel.com"),
			scrape("asus_gpu", official, "asus", plain, "asus_gpu_aib_spider", 5, "asus.com"),
			embedded("embedded_gpu"),
		},
		model.ComponentMainboard: {
			scrape("asus_mb", official, "asus", plain, "asus_mainboard_spider", 1, "asus.com"),
			scrape("msi_mb", official, "msi", plain, "msi_mainboard_spider", 2, "msi.com"),
			scrape("gigabyte_mb", official, "gigabyte", plain, "gigabyte_mainboard_spider", 3, "gigabyte.com"),
			scrape("asrock_mb", official, "asrock", plain, "asrock_mainboard_spider", 4, "asrock.com"),
			embedded("embedded_mb"),
		},
		model.ComponentDisk: {
			scrape("samsung_storage", official, "samsung", plain, "samsung_storage_spider", 1, "samsung.com", "semiconductor.samsung.com"),
			scrape("wdc_storage", official, "wdc", plain, "wdc_storage_spider", 2, "wdc.com", "westerndigital.com", "sandisk.com"),
			scrape("seagate_storage", official, "seagate", plain, "seagate_storage_spider", 3, "seagate.com"),
			withTemplate(scrape("techpowerup_ssd", reference, "techpowerup", plain, "techpowerup_reference_spider", 4, "techpowerup.com"),
				"https://www.techpowerup.com/ssd-specs/?q={query}"),
			embedded("embedded_disk"),
		},
		model.ComponentGeneral: {},
	}
}
