package extract

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottle_Interval(t *testing.T) {
	t.Parallel()

	th := NewThrottle(100*time.Millisecond, map[string]time.Duration{
		"intel.com":       2 * time.Second,
		"techpowerup.com": time.Second,
	})
	assert.Equal(t, 2*time.Second, th.Interval("ark.intel.com", nil))
	assert.Equal(t, 2*time.Second, th.Interval("intel.com", nil))
	assert.Equal(t, 100*time.Millisecond, th.Interval("notintel.com", nil))
	assert.Equal(t, 3*time.Second, th.Interval("techpowerup.com", map[string]time.Duration{"techpowerup.com": 3 * time.Second}))
	assert.Equal(t, 2*time.Second, th.Interval("intel.com", map[string]time.Duration{"intel.com": time.Second}))
}

func TestThrottle_SpacesSameHost(t *testing.T) {
	t.Parallel()

	th := NewThrottle(0, map[string]time.Duration{"intel.com": 60 * time.Millisecond})
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, th.Wait(ctx, "https://www.intel.com/x", nil))
	}
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)

	start = time.Now()
	require.NoError(t, th.Wait(ctx, "https://www.amd.com/x", nil))
	assert.Less(t, time.Since(start), 50*time.Millisecond, "unthrottled hosts do not wait")
}

func TestThrottle_Canceled(t *testing.T) {
	t.Parallel()

	th := NewThrottle(time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, th.Wait(ctx, "https://www.intel.com/a", nil))
	cancel()
	assert.Error(t, th.Wait(ctx, "https://www.intel.com/b", nil))
}
