package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

// Breaker guards calls to one upstream. Consecutive failures open it; after OpenTimeout a
// limited number of probes decide whether it closes again.
type Breaker struct {
	mu sync.Mutex

	name     string
	cfg      BreakerConfig
	onChange func(name string, from, to State)
	now      func() time.Time

	state     State
	failures  int
	openedAt  time.Time
	inFlight  int
	successes int
}

type BreakerOption func(*Breaker)

// WithStateChange registers a callback fired on every transition, outside the lock.
func WithStateChange(fn func(name string, from, to State)) BreakerOption {
	return func(b *Breaker) {
		b.onChange = fn
	}
}

func NewBreaker(name string, cfg BreakerConfig, opts ...BreakerOption) *Breaker {
	b := &Breaker{
		name:  name,
		cfg:   cfg.normalized(),
		now:   time.Now,
		state: StateClosed,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Breaker) Name() string {
	return b.name
}

// Execute runs fn when the breaker allows it. isFailure decides which errors count against
// the upstream; nil treats every non-nil error as a failure.
func (b *Breaker) Execute(fn func() error, isFailure func(error) bool) error {
	if err := b.Allow(); err != nil {
		return err
	}
	err := fn()
	failed := err != nil
	if failed && isFailure != nil {
		failed = isFailure(err)
	}
	if failed {
		b.RecordFailure()
	} else {
		b.RecordSuccess()
	}
	return err
}

func (b *Breaker) Allow() error {
	if b == nil || !b.cfg.Enabled {
		return nil
	}

	b.mu.Lock()
	from := b.state
	if b.state == StateOpen {
		if b.now().Sub(b.openedAt) < b.cfg.OpenTimeout {
			b.mu.Unlock()
			return ErrCircuitOpen
		}
		b.state = StateHalfOpen
		b.inFlight = 0
		b.successes = 0
	}
	if b.state == StateHalfOpen {
		if b.inFlight >= b.cfg.HalfOpenProbes {
			b.mu.Unlock()
			b.notify(from, StateHalfOpen)
			return ErrCircuitOpen
		}
		b.inFlight++
	}
	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
	return nil
}

func (b *Breaker) RecordSuccess() {
	if b == nil || !b.cfg.Enabled {
		return
	}

	b.mu.Lock()
	from := b.state
	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		if b.inFlight > 0 {
			b.inFlight--
		}
		b.successes++
		if b.successes >= b.cfg.HalfOpenProbes && b.inFlight == 0 {
			b.state = StateClosed
			b.failures = 0
			b.successes = 0
			b.openedAt = time.Time{}
		}
	}
	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
}

func (b *Breaker) RecordFailure() {
	if b == nil || !b.cfg.Enabled {
		return
	}

	b.mu.Lock()
	from := b.state
	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.open()
		}
	case StateHalfOpen:
		b.open()
	case StateOpen:
		b.openedAt = b.now()
	}
	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
}

func (b *Breaker) State() State {
	if b == nil || !b.cfg.Enabled {
		return StateClosed
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		return StateHalfOpen
	}
	return b.state
}

func (b *Breaker) open() {
	b.state = StateOpen
	b.openedAt = b.now()
	b.inFlight = 0
	b.successes = 0
}

func (b *Breaker) notify(from, to State) {
	if from == to || b.onChange == nil {
		return
	}
	b.onChange(b.name, from, to)
}
