package llm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b := NewBreaker(5, time.Minute)

	for i := 0; i < 4; i++ {
		require.NoError(t, b.Allow())
		b.Failure()
		assert.Equal(t, StateClosed, b.State())
	}

	require.NoError(t, b.Allow())
	b.Failure()
	assert.Equal(t, StateOpen, b.State())

	err := b.Allow()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircuitOpen)

	var openErr *CircuitOpenError
	require.ErrorAs(t, err, &openErr)
	assert.Greater(t, openErr.RetryAfter, time.Duration(0))
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker(5, time.Minute)

	for i := 0; i < 4; i++ {
		require.NoError(t, b.Allow())
		b.Failure()
	}
	require.NoError(t, b.Allow())
	b.Success()

	// Four more failures must not open the circuit.
	for i := 0; i < 4; i++ {
		require.NoError(t, b.Allow())
		b.Failure()
	}
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenSingleProbe(t *testing.T) {
	b := NewBreaker(1, 10*time.Millisecond)

	require.NoError(t, b.Allow())
	b.Failure()
	require.Equal(t, StateOpen, b.State())

	time.Sleep(20 * time.Millisecond)

	// First caller gets the probe, second is rejected.
	require.NoError(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())
	assert.Error(t, b.Allow())

	b.Success()
	assert.Equal(t, StateClosed, b.State())
	assert.NoError(t, b.Allow())
}

func TestBreaker_ProbeFailureDoublesCooldown(t *testing.T) {
	b := NewBreaker(1, 20*time.Millisecond)

	require.NoError(t, b.Allow())
	b.Failure()
	time.Sleep(30 * time.Millisecond)

	require.NoError(t, b.Allow()) // probe
	b.Failure()
	require.Equal(t, StateOpen, b.State())

	// Cooldown doubled: still open after the base cooldown.
	time.Sleep(25 * time.Millisecond)
	err := b.Allow()
	require.Error(t, err)

	time.Sleep(25 * time.Millisecond)
	assert.NoError(t, b.Allow())
}

func TestBreaker_CooldownCap(t *testing.T) {
	b := NewBreaker(1, 200*time.Second)
	b.maxCooldown = 300 * time.Second

	require.NoError(t, b.Allow())
	b.Failure()

	// Force the probe path without waiting out the cooldown.
	b.mu.Lock()
	b.openedAt = time.Now().Add(-201 * time.Second)
	b.mu.Unlock()

	require.NoError(t, b.Allow())
	b.Failure()

	b.mu.Lock()
	cooldown := b.cooldown
	b.mu.Unlock()
	assert.Equal(t, 300*time.Second, cooldown)
}

func TestBreaker_IgnoreReleasesProbe(t *testing.T) {
	b := NewBreaker(1, 10*time.Millisecond)

	require.NoError(t, b.Allow())
	b.Failure()
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, b.Allow())
	b.Ignore()

	// The probe slot is free again for the next caller.
	assert.NoError(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())
}

func TestCircuitOpenError_Unwrap(t *testing.T) {
	err := &CircuitOpenError{RetryAfter: time.Second}
	assert.True(t, errors.Is(err, ErrCircuitOpen))
}
