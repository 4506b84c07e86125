// Package allowlist decides which hosts may be fetched and at which trust
// tier their data is recorded.
package allowlist

import (
	"net/url"
	"sort"
	"strings"

	"github.com/sells-group/hardware-cli/internal/model"
)

var officialDomains = []string{
	"intel.com", "amd.com", "apple.com", "nvidia.com",
	"asus.com", "msi.com", "gigabyte.com", "asrock.com", "supermicro.com", "biostar.com",
	"kingston.com", "crucial.com", "micron.com", "corsair.com", "gskill.com",
	"teamgroupinc.com", "patriotmemory.com", "adata.com", "lexar.com",
	"samsung.com", "semiconductors.samsung.com",
	"wdc.com", "western-digital.com", "westerndigital.com", "sandisk.com", "seagate.com",
	"toshiba-storage.com", "kioxia.com",
	"realtek.com", "broadcom.com", "marvell.com",
}

var referenceDomains = []string{
	"techpowerup.com",
	"wikichip.org",
}

// List is an immutable set of official and reference domains.
type List struct {
	official  []string
	reference []string
}

// Default returns the built-in list.
func Default() *List {
	return New(nil, nil)
}

// New returns the built-in list extended with extra domains.
func New(extraOfficial, extraReference []string) *List {
	return &List{
		official:  merge(officialDomains, extraOfficial),
		reference: merge(referenceDomains, extraReference),
	}
}

func merge(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	var out []string
	for _, d := range append(append([]string{}, base...), extra...) {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func hostname(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func matches(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func matchesAny(host string, domains []string) bool {
	if host == "" {
		return false
	}
	for _, d := range domains {
		if matches(host, d) {
			return true
		}
	}
	return false
}

// IsAllowed reports whether rawURL is an absolute http(s) URL on an official
// or reference domain.
func (l *List) IsAllowed(rawURL string) bool {
	return l.TierOf(rawURL) != model.TierNone
}

// TierOf returns OFFICIAL, REFERENCE or NONE for rawURL.
func (l *List) TierOf(rawURL string) model.SourceTier {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return model.TierNone
	}
	host := hostname(rawURL)
	switch {
	case matchesAny(host, l.official):
		return model.TierOfficial
	case matchesAny(host, l.reference):
		return model.TierReference
	default:
		return model.TierNone
	}
}

// Domains returns the official and reference domain lists.
func (l *List) Domains() (official, reference []string) {
	return append([]string{}, l.official...), append([]string{}, l.reference...)
}
