package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetry(retries int) Retry {
	r := NewRetry(retries)
	r.Backoff = time.Millisecond
	r.MaxBackoff = 2 * time.Millisecond
	return r
}

func TestDo_FirstAttemptSucceeds(t *testing.T) {
	var calls int
	got, err := Do(context.Background(), fastRetry(2), func(_ context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" || calls != 1 {
		t.Errorf("got %q after %d calls", got, calls)
	}
}

func TestDo_RetriesTransientThenSucceeds(t *testing.T) {
	var calls int
	var retried []int
	r := fastRetry(2)
	r.OnRetry = func(attempt int, _ error) { retried = append(retried, attempt) }

	got, err := Do(context.Background(), r, func(_ context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, &StatusError{URL: "https://x", StatusCode: 503}
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 || calls != 3 {
		t.Errorf("got %d after %d calls", got, calls)
	}
	if len(retried) != 2 || retried[0] != 1 || retried[1] != 2 {
		t.Errorf("unexpected retry attempts %v", retried)
	}
}

func TestDo_RetriesCountIsExtraAttempts(t *testing.T) {
	for _, retries := range []int{0, 1, 3} {
		var calls int
		_, err := Do(context.Background(), fastRetry(retries), func(_ context.Context) (int, error) {
			calls++
			return 0, Transient(errors.New("flaky"))
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if calls != retries+1 {
			t.Errorf("retries=%d: expected %d calls, got %d", retries, retries+1, calls)
		}
	}
}

func TestDo_PermanentErrorStops(t *testing.T) {
	var calls int
	perm := &StatusError{URL: "https://x", StatusCode: 404}
	_, err := Do(context.Background(), fastRetry(5), func(_ context.Context) (int, error) {
		calls++
		return 0, perm
	})
	if !errors.Is(err, perm) {
		t.Errorf("expected the permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_CustomRetryable(t *testing.T) {
	var calls int
	r := fastRetry(2)
	r.Retryable = func(error) bool { return false }
	_, _ = Do(context.Background(), r, func(_ context.Context) (int, error) {
		calls++
		return 0, Transient(errors.New("would retry"))
	})
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int
	_, err := Do(ctx, fastRetry(3), func(_ context.Context) (int, error) {
		calls++
		return 0, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no calls, got %d", calls)
	}
}

func TestDo_CancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRetry(3)
	r.Backoff = time.Hour
	r.Jitter = 0

	var calls int
	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, r, func(_ context.Context) (int, error) {
			calls++
			return 0, Transient(errors.New("flaky"))
		})
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected error")
		}
	case <-time.After(time.Second):
		t.Fatal("Do did not return after cancel")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetry_DelayCapped(t *testing.T) {
	r := Retry{Backoff: 100 * time.Millisecond, MaxBackoff: 250 * time.Millisecond}
	if d := r.delay(0); d != 100*time.Millisecond {
		t.Errorf("attempt 0: got %v", d)
	}
	if d := r.delay(1); d != 200*time.Millisecond {
		t.Errorf("attempt 1: got %v", d)
	}
	if d := r.delay(5); d != 250*time.Millisecond {
		t.Errorf("attempt 5: got %v", d)
	}
}

func TestNewRetry_NegativeClamped(t *testing.T) {
	if r := NewRetry(-1); r.Retries != 0 {
		t.Errorf("expected 0 retries, got %d", r.Retries)
	}
}
