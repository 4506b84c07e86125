package synth

import (
	"regexp"
	"strings"

	"github.com/sells-group/hardware-cli/internal/model"
)

var (
	intelCoreRe  = regexp.MustCompile(`(?i)\b(?:core\s+)?(?:(ultra)\s+)?i?([3579])[-\s]?(\d{3,5})([a-z]{0,3})\b`)
	ryzenRe      = regexp.MustCompile(`(?i)\bryzen\s+(?:threadripper\s+)?([3579])\s+(?:pro\s+)?(\d{4})([a-z0-9]{0,3})\b`)
	intelBrandRe = regexp.MustCompile(`(?i)\b(intel|core|xeon|celeron|pentium)\b`)
	amdBrandRe   = regexp.MustCompile(`(?i)\b(amd|ryzen|threadripper|epyc|athlon)\b`)
)

func cpuFields(b *builder, c model.Canonical) {
	text := c.Brand + " " + c.Model
	switch {
	case ryzenRe.MatchString(text):
		m := ryzenRe.FindStringSubmatch(text)
		number, suffix := m[2], strings.ToUpper(m[3])
		b.add("cpu.family", "Family", "Ryzen "+m[1], "", "from model name")
		b.add("cpu.model_number", "Model Number", number+suffix, "", "from model name")
		b.add("cpu.generation", "Series", number[:1]+"000", "", "first digit of the model number")
		if strings.Contains(suffix, "X") {
			b.add("cpu.unlocked", "Unlocked", "yes", "", "X suffix")
		}
		if strings.Contains(suffix, "3D") {
			b.add("cpu.cache_3d_vcache", "3D V-Cache", "yes", "", "X3D suffix")
		}
		if strings.HasSuffix(suffix, "G") {
			b.add("cpu.integrated_graphics", "Integrated Graphics", "yes", "", "G suffix")
		}
		if number[0] >= '7' {
			b.add("cpu.socket", "Socket", "AM5", "", "Ryzen 7000 and later")
			b.add("cpu.memory_type_supported", "Memory Types", "DDR5", "", "AM5 platform")
		} else {
			b.add("cpu.socket", "Socket", "AM4", "", "Ryzen 5000 and earlier")
			b.add("cpu.memory_type_supported", "Memory Types", "DDR4", "", "AM4 platform")
		}
	case intelBrandRe.MatchString(text) && intelCoreRe.MatchString(text):
		m := intelCoreRe.FindStringSubmatch(text)
		tier, number, suffix := m[2], m[3], strings.ToUpper(m[4])
		family := "Core i" + tier
		if m[1] != "" {
			family = "Core Ultra " + tier
		}
		b.add("cpu.family", "Family", family, "", "from model name")
		b.add("cpu.model_number", "Model Number", number+suffix, "", "from model name")
		b.add("cpu.generation", "Generation", intelGeneration(number, m[1] != ""), "", "leading digits of the model number")
		if strings.Contains(suffix, "K") {
			b.add("cpu.unlocked", "Unlocked", "yes", "", "K suffix")
		}
		if strings.Contains(suffix, "F") {
			b.add("cpu.integrated_graphics", "Integrated Graphics", "no", "", "F suffix")
		}
		if gen := intelGeneration(number, m[1] != ""); gen == "12" || gen == "13" || gen == "14" {
			b.add("cpu.socket", "Socket", "LGA1700", "", "12th to 14th generation")
		}
	}
	if b.seen["brand"] {
		return
	}
	switch {
	case amdBrandRe.MatchString(text):
		b.add("brand", "Brand", "AMD", "", "from model name")
	case intelBrandRe.MatchString(text):
		b.add("brand", "Brand", "Intel", "", "from model name")
	}
}

// intelGeneration reads "12" from 12700 and "9" from 9900. Core Ultra parts
// are numbered by series.
func intelGeneration(number string, ultra bool) string {
	if ultra {
		return "Series " + number[:1]
	}
	if len(number) == 5 {
		return number[:2]
	}
	return number[:1]
}

var (
	nvidiaRe = regexp.MustCompile(`(?i)\b(rtx|gtx)\s*(\d{4})(?:\s*(ti|super))?(?:\s*(super))?\b`)
	radeonRe = regexp.MustCompile(`(?i)\brx\s*(\d{4})(?:\s*(xtx|xt|gre))?\b`)
	arcRe    = regexp.MustCompile(`(?i)\barc\s*([ab]\d{3})\b`)
	vramRe   = regexp.MustCompile(`(?i)\b(\d{1,2})\s*GB\b`)
)

func gpuFields(b *builder, c model.Canonical) {
	text := c.Brand + " " + c.Model
	switch {
	case nvidiaRe.MatchString(text):
		m := nvidiaRe.FindStringSubmatch(text)
		line, number := strings.ToUpper(m[1]), m[2]
		b.add("gpu.chip_vendor", "GPU Vendor", "NVIDIA", "", "from model name")
		b.add("gpu.series", "Series", "GeForce "+line+" "+number[:2]+" Series", "", "from model name")
		b.add("gpu.model_number", "Model Number", number, "", "from model name")
		if v := strings.TrimSpace(strings.Join([]string{titleCase(m[3]), titleCase(m[4])}, " ")); v != "" {
			b.add("gpu.variant", "Variant", v, "", "from model name")
		}
		rt := "no"
		if line == "RTX" {
			rt = "yes"
		}
		b.add("gpu.ray_tracing", "Ray Tracing", rt, "", "RTX line")
	case radeonRe.MatchString(text):
		m := radeonRe.FindStringSubmatch(text)
		number := m[1]
		b.add("gpu.chip_vendor", "GPU Vendor", "AMD", "", "from model name")
		b.add("gpu.series", "Series", "Radeon RX "+number[:1]+"000", "", "from model name")
		b.add("gpu.model_number", "Model Number", number, "", "from model name")
		if m[2] != "" {
			b.add("gpu.variant", "Variant", strings.ToUpper(m[2]), "", "from model name")
		}
		rt := "no"
		if number[0] >= '6' {
			rt = "yes"
		}
		b.add("gpu.ray_tracing", "Ray Tracing", rt, "", "RDNA 2 and later")
	case arcRe.MatchString(text):
		m := arcRe.FindStringSubmatch(text)
		b.add("gpu.chip_vendor", "GPU Vendor", "Intel", "", "from model name")
		b.add("gpu.series", "Series", "Arc "+strings.ToUpper(m[1][:1])+"-series", "", "from model name")
		b.add("gpu.model_number", "Model Number", strings.ToUpper(m[1]), "", "from model name")
		b.add("gpu.ray_tracing", "Ray Tracing", "yes", "", "Arc line")
	}
	if m := vramRe.FindStringSubmatch(text); m != nil {
		b.add("gpu.vram_gb", "Memory Size", m[1], "GB", "from model name")
	}
}

func titleCase(s string) string {
	switch strings.ToLower(s) {
	case "ti":
		return "Ti"
	case "super":
		return "SUPER"
	}
	return ""
}
