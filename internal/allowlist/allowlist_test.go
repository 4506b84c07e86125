package allowlist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/hardware-cli/internal/model"
)

func TestTierOf(t *testing.T) {
	t.Parallel()

	l := Default()
	tests := []struct {
		url  string
		want model.SourceTier
	}{
		{"https://www.intel.com/content/www/us/en/products/sku/134594.html", model.TierOfficial},
		{"https://ark.intel.com/x", model.TierOfficial},
		{"https://www.techpowerup.com/gpu-specs/geforce-rtx-4090.c3889", model.TierReference},
		{"https://en.wikichip.org/wiki/intel", model.TierReference},
		{"https://example.com/", model.TierNone},
		{"https://notintel.com/", model.TierNone},
		{"ftp://intel.com/file", model.TierNone},
		{"intel.com", model.TierNone},
		{"", model.TierNone},
		{"http://[::1", model.TierNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, l.TierOf(tt.url), tt.url)
	}
}

func TestIsAllowed(t *testing.T) {
	t.Parallel()

	l := Default()
	assert.True(t, l.IsAllowed("https://www.corsair.com/us/en/p/memory/cmk32gx5m2b6000c36"))
	assert.False(t, l.IsAllowed("https://www.amazon.com/dp/B0"))
}

func TestNew_ExtraDomains(t *testing.T) {
	t.Parallel()

	l := New([]string{" Example.com ", "intel.com"}, []string{"anandtech.com"})
	assert.Equal(t, model.TierOfficial, l.TierOf("https://shop.example.com/x"))
	assert.Equal(t, model.TierReference, l.TierOf("https://www.anandtech.com/show/1"))

	official, reference := l.Domains()
	assert.Contains(t, official, "example.com")
	assert.Contains(t, reference, "anandtech.com")

	count := 0
	for _, d := range official {
		if d == "intel.com" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
