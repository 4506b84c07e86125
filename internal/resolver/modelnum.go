package resolver

import (
	"regexp"
	"strings"
)

// Checked in order; the first pattern that matches wins.
var modelNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bi[3579][-\s]?([0-9]{4,5}[a-z]{0,3})\b`),
	regexp.MustCompile(`\b((?:rtx|gtx)\s*[0-9]{4}(?:\s*(?:ti|super))?)\b`),
	regexp.MustCompile(`\b(rx\s*[0-9]{4}(?:\s*xtx?)?)\b`),
	regexp.MustCompile(`\b(arc\s*a[0-9]{3})\b`),
	regexp.MustCompile(`\b([0-9]{4}[xg]?(?:3d)?)\b`),
}

// modelNumber extracts the coarse numeric model designator from normalized
// text, e.g. "12700k", "rtx4090", "rx7800xt", "7800x3d". Empty when none.
func modelNumber(normalized string) string {
	for _, re := range modelNumberPatterns {
		if m := re.FindStringSubmatch(normalized); m != nil {
			return strings.ReplaceAll(m[1], " ", "")
		}
	}
	return ""
}

var (
	intelFamily = regexp.MustCompile(`\bi([3579])\b`)
	ryzenFamily = regexp.MustCompile(`\bryzen\s*([3579])\b`)
)

// processorFamily returns "i7" or "ryzen9" style family names found in
// normalized text.
func processorFamily(normalized string) string {
	if m := intelFamily.FindStringSubmatch(normalized); m != nil {
		return "i" + m[1]
	}
	if m := ryzenFamily.FindStringSubmatch(normalized); m != nil {
		return "ryzen" + m[1]
	}
	return ""
}

// modelInFamily reports whether a normalized model string belongs to family.
func modelInFamily(normalized, family string) bool {
	return family != "" && processorFamily(normalized) == family
}
