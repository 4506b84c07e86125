package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/hardware-cli/internal/model"
)

var (
	labelSpaceRe = regexp.MustCompile(`\s+`)
	labelCharRe  = regexp.MustCompile(`[^a-z0-9 /#-]`)
)

// normalizeLabel lower-cases a page label and drops punctuation so that
// "Max Turbo Frequency:" and "max turbo frequency" share a map key.
func normalizeLabel(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	l = labelCharRe.ReplaceAllString(l, "")
	l = labelSpaceRe.ReplaceAllString(l, " ")
	return strings.TrimSpace(l)
}

// labelMaps maps normalized page labels to spec keys per component type.
var labelMaps = map[model.ComponentType]map[string]string{
	model.ComponentCPU: {
		"processor number":           "cpu.model_number",
		"code name":                  "cpu.codename",
		"codename":                   "cpu.codename",
		"product collection":         "cpu.family",
		"family":                     "cpu.family",
		"architecture":               "cpu.architecture",
		"microarchitecture":          "cpu.architecture",
		"launch date":                "cpu.launch_date",
		"release date":               "cpu.launch_date",
		"total cores":                "cpu.cores_physical",
		"# of cpu cores":             "cpu.cores_physical",
		"cpu cores":                  "cpu.cores_physical",
		"# of cores":                 "cpu.cores_physical",
		"number of cores":            "cpu.cores_physical",
		"cores":                      "cpu.cores_physical",
		"total threads":              "cpu.threads_logical",
		"# of threads":               "cpu.threads_logical",
		"threads":                    "cpu.threads_logical",
		"number of threads":          "cpu.threads_logical",
		"# of performance-cores":     "cpu.p_cores",
		"performance-cores":          "cpu.p_cores",
		"# of efficient-cores":       "cpu.e_cores",
		"efficient-cores":            "cpu.e_cores",
		"processor base frequency":   "cpu.base_clock_mhz",
		"base clock":                 "cpu.base_clock_mhz",
		"base frequency":             "cpu.base_clock_mhz",
		"frequency":                  "cpu.base_clock_mhz",
		"max turbo frequency":        "cpu.boost_clock_mhz",
		"max boost clock":            "cpu.boost_clock_mhz",
		"boost clock":                "cpu.boost_clock_mhz",
		"turbo clock":                "cpu.boost_clock_mhz",
		"cache":                      "cpu.cache_l3_mb",
		"intel smart cache":          "cpu.cache_l3_mb",
		"l3 cache":                   "cpu.cache_l3_mb",
		"cache l3":                   "cpu.cache_l3_mb",
		"l2 cache":                   "cpu.cache_l2_mb",
		"total l2 cache":             "cpu.cache_l2_mb",
		"processor base power":       "cpu.tdp_w",
		"tdp":                        "cpu.tdp_w",
		"default tdp":                "cpu.tdp_w",
		"thermal design power":       "cpu.tdp_w",
		"maximum turbo power":        "cpu.max_turbo_power_w",
		"sockets supported":          "cpu.socket",
		"cpu socket":                 "cpu.socket",
		"socket":                     "cpu.socket",
		"lithography":                "cpu.process_nm",
		"process size":               "cpu.process_nm",
		"process":                    "cpu.process_nm",
		"max memory size":            "cpu.max_memory_gb",
		"max memory":                 "cpu.max_memory_gb",
		"memory types":               "cpu.memory_type_supported",
		"memory support":             "cpu.memory_type_supported",
		"system memory type":         "cpu.memory_type_supported",
		"max # of memory channels":   "cpu.memory_channels_max",
		"memory channels":            "cpu.memory_channels_max",
		"max memory bandwidth":       "cpu.memory_bandwidth_gbs",
		"processor graphics":         "cpu.integrated_graphics",
		"integrated graphics":        "cpu.integrated_graphics",
		"graphics model":             "cpu.integrated_graphics",
		"max operating temperature":  "cpu.max_temp_c",
		"tjunction":                  "cpu.max_temp_c",
		"instruction set extensions": "cpu.instruction_extensions",
	},
	model.ComponentRAM: {
		"memory type":       "ram.type",
		"memory technology": "ram.type",
		"type":              "ram.type",
		"capacity":          "ram.capacity_gb",
		"total capacity":    "ram.capacity_gb",
		"memory size":       "ram.capacity_gb",
		"module size":       "ram.capacity_gb",
		"kit capacity":      "ram.capacity_gb",
		"speed":             "ram.speed_effective_mt_s",
		"memory speed":      "ram.speed_effective_mt_s",
		"tested speed":      "ram.speed_effective_mt_s",
		"data rate":         "ram.speed_effective_mt_s",
		"cas latency":       "ram.latency_cl",
		"latency":           "ram.latency_cl",
		"timings":           "ram.timings",
		"tested latency":    "ram.timings",
		"voltage":           "ram.voltage_v",
		"tested voltage":    "ram.voltage_v",
		"spd voltage":       "ram.voltage_v",
		"form factor":       "ram.form_factor",
		"pin count":         "ram.pins",
		"pins":              "ram.pins",
		"number of modules": "ram.modules",
		"modules":           "ram.modules",
		"kit":               "ram.modules",
		"ecc":               "ram.ecc",
		"error correction":  "ram.ecc",
		"heat spreader":     "ram.heatspreader",
		"heatspreader":      "ram.heatspreader",
		"color":             "ram.color",
		"lighting":          "ram.rgb",
		"rgb":               "ram.rgb",
	},
	model.ComponentGPU: {
		"gpu name":               "gpu.chip",
		"graphics processor":     "gpu.chip",
		"gpu":                    "gpu.chip",
		"architecture":           "gpu.architecture",
		"release date":           "gpu.launch_date",
		"launch price":           "gpu.launch_price_usd",
		"nvidia cuda cores":      "gpu.cuda_cores",
		"cuda cores":             "gpu.cuda_cores",
		"shading units":          "gpu.shaders",
		"stream processors":      "gpu.shaders",
		"shaders":                "gpu.shaders",
		"compute units":          "gpu.compute_units",
		"sm count":               "gpu.sm_count",
		"tmus":                   "gpu.tmus",
		"rops":                   "gpu.rops",
		"tensor cores":           "gpu.tensor_cores",
		"rt cores":               "gpu.rt_cores",
		"base clock":             "gpu.base_clock_mhz",
		"gpu clock":              "gpu.base_clock_mhz",
		"game clock":             "gpu.base_clock_mhz",
		"boost clock":            "gpu.boost_clock_mhz",
		"memory size":            "gpu.vram_gb",
		"standard memory config": "gpu.vram_gb",
		"video memory":           "gpu.vram_gb",
		"memory":                 "gpu.vram_gb",
		"memory type":            "gpu.vram_type",
		"memory bus":             "gpu.memory_bus_bits",
		"memory interface width": "gpu.memory_bus_bits",
		"bandwidth":              "gpu.bandwidth_gbs",
		"memory bandwidth":       "gpu.bandwidth_gbs",
		"tdp":                    "gpu.tdp_w",
		"total graphics power":   "gpu.tdp_w",
		"total board power":      "gpu.tdp_w",
		"graphics card power":    "gpu.tdp_w",
		"suggested psu":          "gpu.recommended_psu_w",
		"required system power":  "gpu.recommended_psu_w",
		"power connectors":       "gpu.power_connectors",
		"bus interface":          "gpu.pcie",
		"interface":              "gpu.pcie",
		"process size":           "gpu.process_nm",
		"transistors":            "gpu.transistors_millions",
		"die size":               "gpu.die_size_mm2",
		"directx":                "gpu.directx_version",
		"outputs":                "gpu.display_outputs",
		"display connectors":     "gpu.display_outputs",
		"slot width":             "gpu.slots",
		"length":                 "gpu.length_mm",
	},
	model.ComponentMainboard: {
		"chipset":         "mainboard.chipset",
		"cpu socket":      "mainboard.socket",
		"socket":          "mainboard.socket",
		"form factor":     "mainboard.form_factor",
		"memory slots":    "mainboard.memory_slots",
		"dimm slots":      "mainboard.memory_slots",
		"max memory":      "mainboard.max_memory_gb",
		"maximum memory":  "mainboard.max_memory_gb",
		"memory type":     "mainboard.memory_type",
		"memory":          "mainboard.memory_type",
		"m2":              "mainboard.m2_slots",
		"m2 slots":        "mainboard.m2_slots",
		"storage":         "mainboard.storage",
		"sata":            "mainboard.sata_ports",
		"sata ports":      "mainboard.sata_ports",
		"expansion slots": "mainboard.pcie_slots",
		"pcie slots":      "mainboard.pcie_slots",
		"lan":             "mainboard.lan",
		"ethernet":        "mainboard.lan",
		"wireless":        "mainboard.wifi",
		"wi-fi":           "mainboard.wifi",
		"usb":             "mainboard.usb",
		"audio":           "mainboard.audio",
		"bios":            "mainboard.bios",
	},
	model.ComponentDisk: {
		"capacity":               "disk.capacity_gb",
		"drive type":             "disk.type",
		"type":                   "disk.type",
		"interface":              "disk.interface",
		"form factor":            "disk.form_factor",
		"sequential read speed":  "disk.read_seq_mbps",
		"sequential read":        "disk.read_seq_mbps",
		"read speed":             "disk.read_seq_mbps",
		"sequential write speed": "disk.write_seq_mbps",
		"sequential write":       "disk.write_seq_mbps",
		"write speed":            "disk.write_seq_mbps",
		"rpm":                    "disk.rpm",
		"spindle speed":          "disk.rpm",
		"rotational speed":       "disk.rpm",
		"cache":                  "disk.cache_mb",
		"dram cache":             "disk.cache_mb",
		"cache buffer":           "disk.cache_mb",
		"nand flash type":        "disk.nand_type",
		"flash type":             "disk.nand_type",
		"nand":                   "disk.nand_type",
		"controller":             "disk.controller",
		"endurance":              "disk.tbw",
		"tbw":                    "disk.tbw",
		"mtbf":                   "disk.mtbf_hours",
	},
}

// KeyForLabel returns the spec key a page label maps to for ct.
func KeyForLabel(ct model.ComponentType, label string) (string, bool) {
	key, ok := labelMaps[ct][normalizeLabel(label)]
	return key, ok
}
