package llm

import (
	"fmt"
	"sync"
	"time"
)

// Breaker states
const (
	StateClosed   = "closed"
	StateOpen     = "open"
	StateHalfOpen = "half-open"
)

// CircuitOpenError reports a rejected call with the remaining cooldown, which
// handlers surface as a Retry-After header.
type CircuitOpenError struct {
	RetryAfter time.Duration
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("llm: circuit open, retry after %s", e.RetryAfter.Round(time.Second))
}

func (e *CircuitOpenError) Unwrap() error { return ErrCircuitOpen }

// Breaker is a circuit breaker with a doubling cooldown. Closed passes calls
// through and opens after threshold consecutive failures. Open rejects until
// the cooldown elapses, then admits exactly one half-open probe: success
// closes the circuit and resets the cooldown, failure re-opens it with the
// cooldown doubled (capped).
type Breaker struct {
	mu           sync.Mutex
	state        string
	failures     int
	threshold    int
	baseCooldown time.Duration
	maxCooldown  time.Duration
	cooldown     time.Duration
	openedAt     time.Time
	probeInUse   bool
}

// NewBreaker creates a breaker with the given failure threshold and cooldown.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 60 * time.Second
	}
	return &Breaker{
		state:        StateClosed,
		threshold:    threshold,
		baseCooldown: cooldown,
		maxCooldown:  300 * time.Second,
		cooldown:     cooldown,
	}
}

// Allow reports whether a call may proceed. In half-open it reserves the
// single probe slot for the caller; the caller must report the outcome via
// Success, Failure, or Ignore.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return nil

	case StateOpen:
		remaining := b.cooldown - time.Since(b.openedAt)
		if remaining > 0 {
			return &CircuitOpenError{RetryAfter: remaining}
		}
		b.state = StateHalfOpen
		b.probeInUse = true
		return nil

	case StateHalfOpen:
		if b.probeInUse {
			return &CircuitOpenError{RetryAfter: 0}
		}
		b.probeInUse = true
		return nil
	}
	return nil
}

// Success records a successful call.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		b.state = StateClosed
		b.failures = 0
		b.cooldown = b.baseCooldown
		b.probeInUse = false
	}
}

// Failure records a failed call.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.threshold {
			b.open(b.cooldown)
		}
	case StateHalfOpen:
		next := b.cooldown * 2
		if next > b.maxCooldown {
			next = b.maxCooldown
		}
		b.open(next)
	}
}

// Ignore releases a reserved half-open probe without recording an outcome.
// Used for cancelled calls, which must not move the breaker.
func (b *Breaker) Ignore() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		b.probeInUse = false
	}
}

// State returns the current state.
func (b *Breaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// open must be called with the lock held.
func (b *Breaker) open(cooldown time.Duration) {
	b.state = StateOpen
	b.cooldown = cooldown
	b.openedAt = time.Now()
	b.failures = 0
	b.probeInUse = false
}
