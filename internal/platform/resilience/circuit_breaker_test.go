package resilience

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func newTestBreaker(threshold int, timeout time.Duration, now *time.Time, opts ...BreakerOption) *Breaker {
	b := NewBreaker("sleeper", BreakerConfig{
		Enabled:          true,
		FailureThreshold: threshold,
		OpenTimeout:      timeout,
		HalfOpenProbes:   1,
	}, opts...)
	b.now = func() time.Time { return *now }
	return b
}

func TestBreaker_OpensAfterThresholdAndRecovers(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(2, 5*time.Second, &now)

	if err := b.Allow(); err != nil {
		t.Fatalf("expected allow in closed state: %v", err)
	}
	b.RecordFailure()
	if state := b.State(); state != StateClosed {
		t.Fatalf("expected closed after first failure, got %s", state)
	}
	b.RecordFailure()
	if state := b.State(); state != StateOpen {
		t.Fatalf("expected open after threshold, got %s", state)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}

	now = now.Add(6 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected second probe to be rejected, got %v", err)
	}
	b.RecordSuccess()
	if state := b.State(); state != StateClosed {
		t.Fatalf("expected closed after probe success, got %s", state)
	}
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(1, time.Second, &now)

	b.RecordFailure()
	now = now.Add(2 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected probe, got %v", err)
	}
	b.RecordFailure()
	if state := b.State(); state != StateOpen {
		t.Fatalf("expected reopen, got %s", state)
	}
}

func TestBreaker_ExecuteIgnoresNonFailures(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(1, time.Minute, &now)
	notFound := errors.New("not found")

	err := b.Execute(func() error { return notFound }, func(err error) bool { return !errors.Is(err, notFound) })
	if !errors.Is(err, notFound) {
		t.Fatalf("expected fn error to be returned, got %v", err)
	}
	if state := b.State(); state != StateClosed {
		t.Fatalf("expected breaker to stay closed, got %s", state)
	}

	_ = b.Execute(func() error { return errors.New("status=503") }, nil)
	if state := b.State(); state != StateOpen {
		t.Fatalf("expected breaker to open, got %s", state)
	}
	called := false
	err = b.Execute(func() error { called = true; return nil }, nil)
	if !errors.Is(err, ErrCircuitOpen) || called {
		t.Fatalf("expected rejected call without running fn, err=%v called=%v", err, called)
	}
}

func TestBreaker_StateChangeCallback(t *testing.T) {
	t.Parallel()

	var (
		mu          sync.Mutex
		transitions []string
	)
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(1, time.Second, &now, WithStateChange(func(name string, from, to State) {
		mu.Lock()
		defer mu.Unlock()
		transitions = append(transitions, name+":"+string(from)+"->"+string(to))
	}))

	b.RecordFailure()
	now = now.Add(2 * time.Second)
	_ = b.Allow()
	b.RecordSuccess()

	want := []string{
		"sleeper:closed->open",
		"sleeper:open->half_open",
		"sleeper:half_open->closed",
	}
	mu.Lock()
	defer mu.Unlock()
	if len(transitions) != len(want) {
		t.Fatalf("expected %v, got %v", want, transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("transition %d: expected %s, got %s", i, want[i], transitions[i])
		}
	}
}

func TestBreaker_DisabledAlwaysAllows(t *testing.T) {
	t.Parallel()

	b := NewBreaker("off", BreakerConfig{Enabled: false, FailureThreshold: 1})
	for i := 0; i < 5; i++ {
		b.RecordFailure()
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("expected disabled breaker to allow, got %v", err)
	}
	if state := b.State(); state != StateClosed {
		t.Fatalf("expected closed, got %s", state)
	}
}
