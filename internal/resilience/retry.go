package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Retry controls how a fetch is repeated after a transient failure.
type Retry struct {
	// Retries is the number of extra attempts after the first one.
	Retries int

	// Backoff is the delay before the first retry; it doubles per attempt.
	Backoff time.Duration

	// MaxBackoff caps the delay.
	MaxBackoff time.Duration

	// Jitter randomizes each delay by up to this fraction (0.25 = ±25%).
	Jitter float64

	// Retryable overrides IsTransient when set.
	Retryable func(err error) bool

	// OnRetry is called before each sleep.
	OnRetry func(attempt int, err error)
}

// NewRetry returns a Retry with retries extra attempts and default timing.
func NewRetry(retries int) Retry {
	if retries < 0 {
		retries = 0
	}
	return Retry{
		Retries:    retries,
		Backoff:    400 * time.Millisecond,
		MaxBackoff: 5 * time.Second,
		Jitter:     0.2,
	}
}

// Do runs fn until it succeeds, fails permanently, retries are exhausted or
// ctx is done. The last error is returned unchanged.
func Do[T any](ctx context.Context, r Retry, fn func(ctx context.Context) (T, error)) (T, error) {
	retryable := r.Retryable
	if retryable == nil {
		retryable = IsTransient
	}

	var zero T
	var lastErr error
	retries := max(r.Retries, 0)
	for attempt := 0; attempt <= retries; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			return zero, lastErr
		}

		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err
		if attempt == retries || !retryable(err) {
			break
		}

		if r.OnRetry != nil {
			r.OnRetry(attempt+1, err)
		}
		timer := time.NewTimer(r.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}
	return zero, lastErr
}

func (r Retry) delay(attempt int) time.Duration {
	base := r.Backoff
	if base <= 0 {
		base = 400 * time.Millisecond
	}
	d := float64(base) * math.Pow(2, float64(attempt))
	if r.MaxBackoff > 0 && d > float64(r.MaxBackoff) {
		d = float64(r.MaxBackoff)
	}
	if r.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * r.Jitter
	}
	return time.Duration(max(d, 0))
}

// LogRetry returns an OnRetry callback logging the attempt against url.
func LogRetry(engine, url string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Debug("resilience: retrying fetch",
			zap.String("engine", engine),
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}
