package synth

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/hardware-cli/internal/model"
)

var (
	chipsetRe   = regexp.MustCompile(`(?i)\b([ABHXZ]\d{3}[EMI]?)\b`)
	boardFormRe = regexp.MustCompile(`(?i)\b(e-?atx|micro[-\s]?atx|m-?atx|mini[-\s]?itx|itx|atx)\b`)
	wifiRe      = regexp.MustCompile(`(?i)\bwi-?fi\s*(7|6e|6)?\b|\bax\b`)
)

var chipsetSockets = map[string]string{
	"Z890": "LGA1851",
	"B860": "LGA1851",
	"H810": "LGA1851",
	"Z790": "LGA1700",
	"H770": "LGA1700",
	"B760": "LGA1700",
	"Z690": "LGA1700",
	"H670": "LGA1700",
	"B660": "LGA1700",
	"H610": "LGA1700",
	"X870": "AM5",
	"B850": "AM5",
	"X670": "AM5",
	"B650": "AM5",
	"A620": "AM5",
	"X570": "AM4",
	"B550": "AM4",
	"A520": "AM4",
	"B450": "AM4",
	"X470": "AM4",
}

func mainboardFields(b *builder, c model.Canonical) {
	text := c.Model + " " + c.PartNumber
	if m := chipsetRe.FindStringSubmatch(text); m != nil {
		chipset := strings.ToUpper(m[1])
		base := chipset[:4]
		b.add("mainboard.chipset", "Chipset", base, "", "from model name")
		if socket, ok := chipsetSockets[base]; ok {
			b.add("mainboard.socket", "Socket", socket, "", "implied by "+base)
			mem := "DDR5"
			if socket == "AM4" {
				mem = "DDR4"
			}
			if socket == "LGA1700" && strings.Contains(strings.ToUpper(text), "DDR4") {
				mem = "DDR4"
			}
			b.add("mainboard.memory_type", "Memory Type", mem, "", "implied by "+socket)
		}
		if len(chipset) == 5 {
			switch chipset[4] {
			case 'M':
				b.add("mainboard.form_factor", "Form Factor", "Micro-ATX", "", "M suffix")
			case 'I':
				b.add("mainboard.form_factor", "Form Factor", "Mini-ITX", "", "I suffix")
			}
		}
	}
	if m := boardFormRe.FindStringSubmatch(text); m != nil {
		b.add("mainboard.form_factor", "Form Factor", boardForm(m[1]), "", "from model name")
	}
	if m := wifiRe.FindStringSubmatch(text); m != nil {
		v := "yes"
		if m[1] != "" {
			v = "Wi-Fi " + strings.ToUpper(m[1])
		}
		b.add("mainboard.wifi", "Wi-Fi", v, "", "from model name")
	}
}

func boardForm(s string) string {
	s = strings.ToLower(strings.NewReplacer("-", "", " ", "").Replace(s))
	switch s {
	case "eatx":
		return "E-ATX"
	case "microatx", "matx":
		return "Micro-ATX"
	case "miniitx", "itx":
		return "Mini-ITX"
	}
	return "ATX"
}

var (
	diskCapacityRe = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(TB|GB)\b`)
	nvmeRe         = regexp.MustCompile(`(?i)\bnvme\b|\bpcie\b|\bgen\s*[345]\b|\b9[89]0\s*pro\b|\bsn[5-8]\d0\b`)
	sataRe         = regexp.MustCompile(`(?i)\bsata\b|\b8[67]0\s*(evo|qvo)\b`)
	hddRe          = regexp.MustCompile(`(?i)\b(barracuda|ironwolf|exos|skyhawk|wd\s*(?:red|blue|black|purple|gold)\s*(?:plus|pro)?\s*\d|hdd)\b|\b(\d{4})\s*rpm\b`)
	rpmRe          = regexp.MustCompile(`(?i)\b(\d{4,5})\s*rpm\b`)
	m2Re           = regexp.MustCompile(`(?i)\bm\.?2\b`)
)

func diskFields(b *builder, c model.Canonical) {
	text := c.Brand + " " + c.Model + " " + c.PartNumber
	if m := diskCapacityRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.ParseFloat(m[1], 64)
		if strings.EqualFold(m[2], "TB") {
			n *= 1000
		}
		b.addFloat("disk.capacity_gb", "Capacity", n, "GB", "from model name")
	}
	switch {
	case hddRe.MatchString(text):
		b.add("disk.type", "Type", "HDD", "", "from model name")
		b.add("disk.interface", "Interface", "SATA", "", "desktop hard drive")
		b.add("disk.form_factor", "Form Factor", "3.5\"", "", "desktop hard drive")
		if m := rpmRe.FindStringSubmatch(text); m != nil {
			b.addInt("disk.rpm", "Rotational Speed", atoi(m[1]), "RPM", "from model name")
		}
	case nvmeRe.MatchString(text):
		b.add("disk.type", "Type", "SSD", "", "from model name")
		b.add("disk.interface", "Interface", "NVMe", "", "from model name")
		b.add("disk.form_factor", "Form Factor", "M.2 2280", "", "NVMe drives ship as M.2")
	case sataRe.MatchString(text):
		b.add("disk.type", "Type", "SSD", "", "from model name")
		b.add("disk.interface", "Interface", "SATA", "", "from model name")
		if m2Re.MatchString(text) {
			b.add("disk.form_factor", "Form Factor", "M.2 2280", "", "from model name")
		} else {
			b.add("disk.form_factor", "Form Factor", "2.5\"", "", "SATA SSD")
		}
	}
}
