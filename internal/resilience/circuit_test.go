package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func fail(_ context.Context) (int, error) { return 0, errors.New("fail") }
func pass(_ context.Context) (int, error) { return 1, nil }

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := NewBreaker("jina", BreakerConfig{Threshold: 2, Cooldown: time.Minute})

	for i := 0; i < 2; i++ {
		_, _ = Call(context.Background(), b, fail)
	}
	if b.State() != Open {
		t.Fatalf("expected open, got %s", b.State())
	}

	called := false
	_, err := Call(context.Background(), b, func(_ context.Context) (int, error) {
		called = true
		return 0, nil
	})
	if !errors.Is(err, ErrOpen) {
		t.Errorf("expected ErrOpen, got %v", err)
	}
	if called {
		t.Error("fn should not run while open")
	}
}

func TestBreaker_SuccessResetsFailures(t *testing.T) {
	b := NewBreaker("x", BreakerConfig{Threshold: 3})
	_, _ = Call(context.Background(), b, fail)
	_, _ = Call(context.Background(), b, fail)
	if b.Failures() != 2 {
		t.Fatalf("expected 2 failures, got %d", b.Failures())
	}
	_, _ = Call(context.Background(), b, pass)
	if b.Failures() != 0 || b.State() != Closed {
		t.Errorf("expected closed with no failures, got %s/%d", b.State(), b.Failures())
	}
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	now := time.Now()
	b := NewBreaker("x", BreakerConfig{Threshold: 1, Cooldown: time.Minute})
	b.now = func() time.Time { return now }

	_, _ = Call(context.Background(), b, fail)
	if b.State() != Open {
		t.Fatalf("expected open, got %s", b.State())
	}

	now = now.Add(2 * time.Minute)
	if b.State() != HalfOpen {
		t.Fatalf("expected half-open after cooldown, got %s", b.State())
	}

	// Failed probe reopens.
	_, _ = Call(context.Background(), b, fail)
	if b.State() != Open {
		t.Fatalf("expected open after failed probe, got %s", b.State())
	}

	now = now.Add(2 * time.Minute)
	if _, err := Call(context.Background(), b, pass); err != nil {
		t.Fatalf("probe: %v", err)
	}
	if b.State() != Closed {
		t.Errorf("expected closed after successful probe, got %s", b.State())
	}
}

func TestBreaker_IgnoredErrorsDoNotTrip(t *testing.T) {
	notFound := errors.New("not found")
	b := NewBreaker("x", BreakerConfig{
		Threshold: 1,
		Counts:    func(err error) bool { return !errors.Is(err, notFound) },
	})
	_, _ = Call(context.Background(), b, func(_ context.Context) (int, error) { return 0, notFound })
	if b.State() != Closed {
		t.Errorf("expected closed, got %s", b.State())
	}
}

func TestBreaker_Reset(t *testing.T) {
	b := NewBreaker("x", BreakerConfig{Threshold: 1})
	_, _ = Call(context.Background(), b, fail)
	b.Reset()
	if b.State() != Closed || b.Failures() != 0 {
		t.Errorf("expected reset breaker, got %s/%d", b.State(), b.Failures())
	}
}

func TestBreakers_GetIsStable(t *testing.T) {
	r := NewBreakers(DefaultBreakerConfig())

	var wg sync.WaitGroup
	got := make([]*Breaker, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = r.Get("firecrawl")
		}(i)
	}
	wg.Wait()
	for _, b := range got[1:] {
		if b != got[0] {
			t.Fatal("expected the same breaker for the same key")
		}
	}
	if r.Get("jina") == got[0] {
		t.Error("expected distinct breakers per key")
	}
	if states := r.States(); len(states) != 2 || states["jina"] != Closed {
		t.Errorf("unexpected states %v", states)
	}
}

func TestState_String(t *testing.T) {
	for s, want := range map[State]string{Closed: "closed", Open: "open", HalfOpen: "half-open", State(9): "unknown"} {
		if s.String() != want {
			t.Errorf("%d: got %q", s, s.String())
		}
	}
}
