package crossval

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Rule names a value comparison.
type Rule string

const (
	RuleExact        Rule = "exact"
	RuleNumeric5Pct  Rule = "numeric_5pct"
	RuleNumeric10Pct Rule = "numeric_10pct"
)

// DefaultRules maps spec keys to their comparison. Keys not listed compare
// exactly.
var DefaultRules = map[string]Rule{
	"ram.type":                 RuleExact,
	"ram.capacity_gb":          RuleExact,
	"ram.latency_cl":           RuleExact,
	"ram.voltage_v":            RuleNumeric5Pct,
	"ram.speed_effective_mt_s": RuleNumeric5Pct,
	"ram.clock_real_mhz":       RuleNumeric5Pct,

	"cpu.cores_physical":  RuleExact,
	"cpu.threads_logical": RuleExact,
	"cpu.cache_l3_mb":     RuleExact,
	"cpu.base_clock_mhz":  RuleNumeric5Pct,
	"cpu.boost_clock_mhz": RuleNumeric5Pct,
	"cpu.tdp_w":           RuleNumeric10Pct,

	"gpu.vram_gb":         RuleExact,
	"gpu.vram_type":       RuleExact,
	"gpu.cuda_cores":      RuleExact,
	"gpu.shaders":         RuleExact,
	"gpu.memory_bus_bits": RuleExact,
	"gpu.base_clock_mhz":  RuleNumeric5Pct,
	"gpu.boost_clock_mhz": RuleNumeric5Pct,
	"gpu.tdp_w":           RuleNumeric10Pct,
	"gpu.bandwidth_gbs":   RuleNumeric10Pct,

	"disk.capacity_gb":    RuleExact,
	"disk.interface":      RuleExact,
	"disk.read_seq_mbps":  RuleNumeric10Pct,
	"disk.write_seq_mbps": RuleNumeric10Pct,
}

// ParseRule validates a rule name.
func ParseRule(s string) (Rule, error) {
	r := Rule(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RuleExact, RuleNumeric5Pct, RuleNumeric10Pct:
		return r, nil
	}
	return "", eris.Errorf("crossval: unknown comparison rule %q", s)
}

func (r Rule) tolerance() float64 {
	switch r {
	case RuleNumeric5Pct:
		return 0.05
	case RuleNumeric10Pct:
		return 0.10
	}
	return -1
}

// Match compares two values under r.
func (r Rule) Match(a, b string) bool {
	tol := r.tolerance()
	if tol < 0 {
		return exactMatch(a, b)
	}
	x, okA := leadingNumber(a)
	y, okB := leadingNumber(b)
	if !okA || !okB {
		return exactMatch(a, b)
	}
	if x == 0 && y == 0 {
		return true
	}
	if x == 0 || y == 0 {
		return false
	}
	return math.Abs(x-y)/math.Max(math.Abs(x), math.Abs(y)) <= tol
}

func exactMatch(a, b string) bool {
	return strings.EqualFold(strings.Join(strings.Fields(a), " "), strings.Join(strings.Fields(b), " "))
}

var numberRe = regexp.MustCompile(`[-+]?\d[\d,]*(?:\.\d+)?`)

func leadingNumber(s string) (float64, bool) {
	tok := numberRe.FindString(s)
	if tok == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(tok, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
