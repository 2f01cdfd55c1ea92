package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketBurstThenBlocks(t *testing.T) {
	tb := NewTokenBucket(1.0, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow(), "burst request %d", i)
	}
	assert.False(t, tb.Allow())
}

func TestTokenBucketRefills(t *testing.T) {
	tb := NewTokenBucket(100.0, 1)

	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())

	time.Sleep(25 * time.Millisecond)
	assert.True(t, tb.Allow())
}

func TestTokenBucketSanitizesArguments(t *testing.T) {
	tb := NewTokenBucket(-5, 0)
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
}

func TestClientLimiterIsolatesClients(t *testing.T) {
	cl := NewClientLimiter(1.0, 1)

	assert.True(t, cl.Allow("10.0.0.1"))
	assert.False(t, cl.Allow("10.0.0.1"))
	assert.True(t, cl.Allow("10.0.0.2"))
}
