package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucket_AcquireWithinCapacity(t *testing.T) {
	tb := NewTokenBucket(60)

	for i := 0; i < 10; i++ {
		require.NoError(t, tb.Acquire(context.Background(), time.Second))
	}
	assert.Equal(t, 50, tb.Available())
}

func TestTokenBucket_AcquireTimesOut(t *testing.T) {
	tb := NewTokenBucket(60)
	for i := 0; i < 60; i++ {
		require.True(t, tb.TryAcquire())
	}

	err := tb.Acquire(context.Background(), 20*time.Millisecond)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestTokenBucket_AcquireHonoursContext(t *testing.T) {
	tb := NewTokenBucket(60)
	for i := 0; i < 60; i++ {
		require.True(t, tb.TryAcquire())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := tb.Acquire(ctx, time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTokenBucket_Refund(t *testing.T) {
	tb := NewTokenBucket(60)
	for i := 0; i < 60; i++ {
		require.True(t, tb.TryAcquire())
	}

	tb.Refund()
	assert.True(t, tb.TryAcquire())
}

func TestTokenBucket_Refills(t *testing.T) {
	tb := NewTokenBucket(6000) // 100 tokens/sec for a fast test
	for i := 0; i < 6000; i++ {
		require.True(t, tb.TryAcquire())
	}

	time.Sleep(50 * time.Millisecond)
	assert.True(t, tb.TryAcquire())
}
