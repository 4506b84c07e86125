package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/hardware-cli/internal/model"
)

// unitRule is the canonical unit for keys ending in suffix, with factors to
// convert other units found on pages.
type unitRule struct {
	suffix  string
	unit    string
	factors map[string]float64
}

// Longer suffixes first: "_mm2" before "_mm", "_mt_s" before "_s".
var unitRules = []unitRule{
	{"_mt_s", "MT/s", map[string]float64{"mt/s": 1, "mhz": 1}},
	{"_mhz", "MHz", map[string]float64{"mhz": 1, "ghz": 1000}},
	{"_mm2", "mm²", map[string]float64{"mm2": 1, "mm²": 1}},
	{"_mbps", "MB/s", map[string]float64{"mb/s": 1, "gb/s": 1000}},
	{"_gbs", "GB/s", map[string]float64{"gb/s": 1, "mb/s": 0.001}},
	{"_gb", "GB", map[string]float64{"gb": 1, "tb": 1000, "mb": 1.0 / 1024}},
	{"_mb", "MB", map[string]float64{"mb": 1, "kb": 1.0 / 1024, "gb": 1024}},
	{"_kb", "KB", map[string]float64{"kb": 1, "mb": 1024}},
	{"_bits", "bit", map[string]float64{"bit": 1}},
	{"_nm", "nm", map[string]float64{"nm": 1}},
	{"_mm", "mm", map[string]float64{"mm": 1}},
	{"_w", "W", map[string]float64{"w": 1}},
	{"_v", "V", map[string]float64{"v": 1, "mv": 0.001}},
	{"_c", "°C", map[string]float64{"c": 1, "°c": 1}},
	{"_hours", "hours", map[string]float64{"hours": 1, "h": 1}},
	{"_usd", "USD", map[string]float64{"usd": 1, "$": 1}},
}

var (
	numberUnitRe = regexp.MustCompile(`(?i)([0-9]+(?:\.[0-9]+)?)\s*(°c|mm²|[a-z/$]+)?`)
	ddrSpeedRe   = regexp.MustCompile(`(?i)ddr[3-6]x?-?\s*([0-9]{3,5})`)
	lanesRe      = regexp.MustCompile(`(?i)x\s*([0-9]{1,2})\b|([0-9]{1,2})\s*lanes`)
	clRe         = regexp.MustCompile(`(?i)(?:cl\s*)?([0-9]{1,2})`)
)

func unitRuleFor(key string) (unitRule, bool) {
	for _, r := range unitRules {
		if strings.HasSuffix(key, r.suffix) {
			return r, true
		}
	}
	return unitRule{}, false
}

// normalizeValue cleans a raw page value for key and returns the value and
// unit to store.
func normalizeValue(key, raw string) (string, string) {
	v := strings.Join(strings.Fields(raw), " ")
	switch {
	case strings.HasSuffix(key, "_mt_s"):
		if m := ddrSpeedRe.FindStringSubmatch(v); m != nil {
			return m[1], "MT/s"
		}
	case strings.HasSuffix(key, "latency_cl"):
		if m := clRe.FindStringSubmatch(v); m != nil {
			return m[1], ""
		}
	case strings.HasSuffix(key, "lanes"):
		if m := lanesRe.FindStringSubmatch(v); m != nil {
			return m[1] + m[2], ""
		}
	}

	rule, ok := unitRuleFor(key)
	if !ok {
		return v, ""
	}
	cleaned := strings.ToLower(v)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	for _, filler := range []string{"up to", "upto", "about", "approx."} {
		cleaned = strings.ReplaceAll(cleaned, filler, "")
	}
	for _, m := range numberUnitRe.FindAllStringSubmatch(cleaned, -1) {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		unit := strings.TrimSpace(m[2])
		if unit == "" {
			return formatNumber(n), rule.unit
		}
		if f, ok := rule.factors[unit]; ok {
			return formatNumber(n * f), rule.unit
		}
	}
	return v, ""
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// newField builds a SpecField for an extracted value. "NA" and "UNKNOWN"
// values are recorded as unavailable with no source.
func newField(key, label, raw, unit string, tier model.SourceTier, sourceName, sourceURL string) model.SpecField {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	if upper == string(model.StatusNA) || upper == string(model.StatusUnknown) || upper == "N/A" {
		status := model.StatusUnknown
		if upper != string(model.StatusUnknown) {
			status = model.StatusNA
		}
		return model.SpecField{
			Key:        key,
			Label:      label,
			Value:      string(status),
			Provenance: model.Unavailable(status),
		}
	}

	value, parsedUnit := normalizeValue(key, raw)
	if unit == "" {
		unit = parsedUnit
	}
	return model.SpecField{
		Key:        key,
		Label:      label,
		Value:      value,
		Unit:       unit,
		Provenance: model.ProvenanceForTier(tier),
		SourceName: sourceName,
		SourceURL:  sourceURL,
		Confidence: tier.Confidence(),
	}
}
