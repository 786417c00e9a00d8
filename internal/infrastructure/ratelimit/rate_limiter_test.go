package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllow_BurstThenBlocked(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 3)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		ok, _ := rl.Allow("user-1")
		assert.True(t, ok, "call %d", i)
	}

	ok, wait := rl.Allow("user-1")
	assert.False(t, ok)
	assert.Greater(t, wait, time.Duration(0))

	ok, _ = rl.Allow("user-2")
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Second)
	ok, _ = rl.Allow("user-1")
	assert.True(t, ok, "token refilled")
}

func TestCleanup_DropsIdleBuckets(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewPerMinute(10)
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	rl.Allow("b")
	assert.Equal(t, 2, rl.Size())

	now = now.Add(2 * time.Hour)
	rl.Allow("b")
	rl.Cleanup()
	assert.Equal(t, 1, rl.Size())
}
