package synth

import (
	"regexp"
	"strings"

	"github.com/sells-group/hardware-cli/internal/model"
)

// ramSpec is what a memory part number or model string encodes.
type ramSpec struct {
	generation int // 3, 4 or 5
	capacityGB int // whole kit
	modules    int
	speedMTs   int
	cl         int
	sodimm     bool
	from       string
}

var (
	// CMK32GX4M2B3200C16: kit GB, DDR gen, modules, speed, CL.
	corsairRe = regexp.MustCompile(`^CM[A-Z]{1,4}(\d{1,3})GX([345])M(\d)[A-Z](\d{4})C(\d{2})`)
	// KF432C16BBK2/32, KF560C36BBEK2-32: gen, speed/100, C or S(odimm), CL,
	// kit, kit GB.
	kingstonRe = regexp.MustCompile(`^KF([345])(\d{2})([CS])(\d{2})([A-Z0-9]*)[/-](\d{1,3})`)
	kitRe      = regexp.MustCompile(`K(\d)$`)
	// F4-3200C16D-32GVK: gen, speed, CL, module letter, kit GB.
	gskillRe = regexp.MustCompile(`^F([345])-(\d{4})C(\d{2})([SDQO])-(\d{1,3})G`)
	// F5-6000J3038F16GX2-TZ5RK: gen, speed, CL, GB per module, modules.
	gskillNewRe = regexp.MustCompile(`^F([345])-(\d{4})[A-Z](\d{2})\d{2}[A-Z](\d{1,3})GX(\d)`)
	// CT2K16G4DFRA32A: kit, GB per module, form letter, speed/100.
	crucialDDR4Re = regexp.MustCompile(`^CT(?:(\d)K)?(\d{1,3})G4([SD])[A-Z0-9]*?(\d{2})[A-Z]?$`)
	// CT2K16G56C46U5: kit, GB per module, speed/100, CL, form letter.
	crucialDDR5Re = regexp.MustCompile(`^CT(?:(\d)K)?(\d{1,3})G(\d{2})C(\d{2})([US])5`)

	ramCapacityRe = regexp.MustCompile(`(?i)\b(?:(\d)\s*x\s*)?(\d{1,3})\s*GB\b`)
	ramGenRe      = regexp.MustCompile(`(?i)\bDDR([345])`)
	ramSpeedRe    = regexp.MustCompile(`(?i)\b(\d{4})\s*(?:MT/s|MHz)?\b`)
	ramCLRe       = regexp.MustCompile(`(?i)\bCL\s*(\d{2})\b`)
	sodimmRe      = regexp.MustCompile(`(?i)so-?dimm|laptop|notebook`)
)

var gskillModules = map[string]int{"S": 1, "D": 2, "Q": 4, "O": 8}

// decodePartNumber recognizes Corsair, Kingston FURY, G.Skill and Crucial
// memory part numbers.
func decodePartNumber(pn string) (ramSpec, bool) {
	pn = strings.ToUpper(strings.TrimSpace(pn))
	if m := corsairRe.FindStringSubmatch(pn); m != nil {
		return ramSpec{
			capacityGB: atoi(m[1]), generation: atoi(m[2]), modules: atoi(m[3]),
			speedMTs: atoi(m[4]), cl: atoi(m[5]), sodimm: strings.HasPrefix(pn, "CMS"), from: "Corsair",
		}, true
	}
	if m := kingstonRe.FindStringSubmatch(pn); m != nil {
		s := ramSpec{
			generation: atoi(m[1]), speedMTs: atoi(m[2]) * 100, cl: atoi(m[4]),
			capacityGB: atoi(m[6]), modules: 1, sodimm: m[3] == "S", from: "Kingston",
		}
		if k := kitRe.FindStringSubmatch(m[5]); k != nil {
			s.modules = atoi(k[1])
		}
		return s, true
	}
	if m := gskillRe.FindStringSubmatch(pn); m != nil {
		return ramSpec{
			generation: atoi(m[1]), speedMTs: atoi(m[2]), cl: atoi(m[3]),
			modules: gskillModules[m[4]], capacityGB: atoi(m[5]), from: "G.Skill",
		}, true
	}
	if m := gskillNewRe.FindStringSubmatch(pn); m != nil {
		modules := atoi(m[5])
		return ramSpec{
			generation: atoi(m[1]), speedMTs: atoi(m[2]), cl: atoi(m[3]),
			modules: modules, capacityGB: atoi(m[4]) * modules, from: "G.Skill",
		}, true
	}
	if m := crucialDDR5Re.FindStringSubmatch(pn); m != nil {
		modules := max(atoi(m[1]), 1)
		return ramSpec{
			generation: 5, modules: modules, capacityGB: atoi(m[2]) * modules,
			speedMTs: atoi(m[3]) * 100, cl: atoi(m[4]), sodimm: m[5] == "S", from: "Crucial",
		}, true
	}
	if m := crucialDDR4Re.FindStringSubmatch(pn); m != nil {
		modules := max(atoi(m[1]), 1)
		return ramSpec{
			generation: 4, modules: modules, capacityGB: atoi(m[2]) * modules,
			speedMTs: atoi(m[4]) * 100, sodimm: m[3] == "S", from: "Crucial",
		}, true
	}
	return ramSpec{}, false
}

// decodeRAMText reads capacity, generation, speed and latency from free text
// such as "Vengeance LPX 16GB (2x8GB) DDR4 3200 CL16".
func decodeRAMText(text string) ramSpec {
	var s ramSpec
	if m := ramCapacityRe.FindStringSubmatch(text); m != nil {
		s.capacityGB = atoi(m[2])
		if m[1] != "" {
			s.modules = atoi(m[1])
			s.capacityGB *= s.modules
		}
	}
	if m := ramGenRe.FindStringSubmatch(text); m != nil {
		s.generation = atoi(m[1])
		if m := ramSpeedRe.FindStringSubmatch(text); m != nil {
			s.speedMTs = atoi(m[1])
		}
	}
	if m := ramCLRe.FindStringSubmatch(text); m != nil {
		s.cl = atoi(m[1])
	}
	s.sodimm = sodimmRe.MatchString(text)
	s.from = "model name"
	return s
}

// JEDEC defaults per generation.
var (
	jedecVoltage = map[int]float64{3: 1.5, 4: 1.2, 5: 1.1}
	dimmPins     = map[int]int{3: 240, 4: 288, 5: 288}
	sodimmPins   = map[int]int{3: 204, 4: 260, 5: 262}
)

func ramFields(b *builder, c model.Canonical) {
	s, ok := decodePartNumber(c.PartNumber)
	if !ok {
		s = decodeRAMText(c.Model + " " + c.PartNumber)
	}
	notes := "decoded from " + s.from
	if ok {
		notes = "decoded from " + s.from + " part number"
	}

	if s.generation > 0 {
		b.add("ram.type", "Memory Type", "DDR"+itoa(s.generation), "", notes)
	}
	b.addInt("ram.capacity_gb", "Capacity", s.capacityGB, "GB", notes)
	b.addInt("ram.modules", "Modules", s.modules, "", notes)
	b.addInt("ram.speed_effective_mt_s", "Speed", s.speedMTs, "MT/s", notes)
	b.addInt("ram.clock_real_mhz", "Clock", s.speedMTs/2, "MHz", "half the transfer rate")
	b.addInt("ram.latency_cl", "CAS Latency", s.cl, "", notes)
	if s.cl > 0 && s.speedMTs > 0 {
		ns := float64(s.cl) * 2000 / float64(s.speedMTs)
		b.addFloat("ram.latency_first_word_ns", "First Word Latency", round2(ns), "ns", "CL × 2000 / speed")
	}
	if s.speedMTs > 0 {
		b.addFloat("ram.bandwidth_single_gbs", "Bandwidth (single channel)", round2(float64(s.speedMTs)*8/1000), "GB/s", "speed × 8 bytes")
	}
	if s.generation == 0 {
		return
	}
	b.addFloat("ram.voltage_v", "Voltage", jedecVoltage[s.generation], "V", "JEDEC default")
	if s.sodimm {
		b.add("ram.form_factor", "Form Factor", "SO-DIMM", "", notes)
		b.addInt("ram.pins", "Pins", sodimmPins[s.generation], "", "JEDEC default")
	} else {
		b.add("ram.form_factor", "Form Factor", "DIMM", "", "assumed desktop module")
		b.addInt("ram.pins", "Pins", dimmPins[s.generation], "", "JEDEC default")
	}
}
