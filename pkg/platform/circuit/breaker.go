// Package circuit provides a consecutive-failure circuit breaker. The relay
// client uses it to fail fast during relay outages instead of spending the
// full timeout budget on every doomed call.
package circuit

import (
	"sync"
	"time"
)

// State is the breaker's current disposition.
type State int

const (
	// StateClosed passes calls through.
	StateClosed State = iota
	// StateOpen fails calls fast until the cooldown expires.
	StateOpen
)

// Breaker opens after a run of consecutive failures and recloses after a
// cooldown, letting the next call probe the upstream.
type Breaker struct {
	mu sync.Mutex

	name      string
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	failures  int
	openUntil time.Time
	open      bool
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithFailureThreshold sets how many consecutive failures open the circuit.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.threshold = n
		}
	}
}

// WithCooldown sets how long the circuit stays open.
func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

// WithClock overrides the cooldown clock for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) { b.now = now }
}

// New builds a closed breaker.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:      name,
		threshold: 5,
		cooldown:  time.Minute,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the breaker's name, used in logs and error messages.
func (b *Breaker) Name() string { return b.name }

// Allow reports whether a call may proceed. An expired cooldown recloses the
// circuit so the caller probes the upstream.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return true
	}
	if b.now().After(b.openUntil) {
		b.open = false
		b.failures = 0
		return true
	}
	return false
}

// RecordSuccess closes the circuit and clears the failure run.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.open = false
}

// RecordFailure counts a failure, opening the circuit at the threshold.
// Returns true when this call opened it.
func (b *Breaker) RecordFailure() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.failures >= b.threshold && !b.open {
		b.open = true
		b.openUntil = b.now().Add(b.cooldown)
		return true
	}
	if b.open {
		b.openUntil = b.now().Add(b.cooldown)
	}
	return false
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.open {
		return StateOpen
	}
	return StateClosed
}

// Reset manually closes the circuit.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.open = false
}
