package extract

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/hardware-cli/internal/model"
)

// Throttle spaces requests to the same host. One limiter per host is shared
// by every caller of the engine.
type Throttle struct {
	def      time.Duration
	byDomain map[string]time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewThrottle creates a Throttle with a default interval and per-domain
// intervals. A domain applies to itself and its subdomains.
func NewThrottle(def time.Duration, byDomain map[string]time.Duration) *Throttle {
	return &Throttle{
		def:      def,
		byDomain: byDomain,
		limiters: make(map[string]*rate.Limiter),
	}
}

func domainMatches(host, domain string) bool {
	domain = strings.TrimPrefix(strings.ToLower(domain), "www.")
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// Interval returns the spacing for host: the largest of the default and every
// matching configured or override interval.
func (t *Throttle) Interval(host string, overrides map[string]time.Duration) time.Duration {
	interval := t.def
	for _, m := range []map[string]time.Duration{t.byDomain, overrides} {
		for domain, d := range m {
			if domainMatches(host, domain) && d > interval {
				interval = d
			}
		}
	}
	return interval
}

// Wait blocks until a request to rawURL may be made or ctx is done.
func (t *Throttle) Wait(ctx context.Context, rawURL string, overrides map[string]time.Duration) error {
	host := model.HostOf(rawURL)
	if host == "" {
		return nil
	}
	interval := t.Interval(host, overrides)
	if interval <= 0 {
		return nil
	}

	t.mu.Lock()
	lim, ok := t.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Every(interval), 1)
		t.limiters[host] = lim
	} else if lim.Limit() != rate.Every(interval) {
		lim.SetLimit(rate.Every(interval))
	}
	t.mu.Unlock()

	return eris.Wrapf(lim.Wait(ctx), "extract: throttle %s", host)
}
