package ratelimit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/scrayosnet/passage/pkg/ratelimit"
)

func TestEnqueueWindowAndRecovery(t *testing.T) {
	l := ratelimit.New(10*time.Second, 3)
	base := time.Unix(1_700_000_000, 0)

	assert.True(t, l.Enqueue("X", base))
	assert.True(t, l.Enqueue("X", base.Add(1*time.Second)))
	assert.True(t, l.Enqueue("X", base.Add(2*time.Second)))
	assert.False(t, l.Enqueue("X", base.Add(3*time.Second)))

	later := base.Add(20 * time.Second)
	assert.True(t, l.Enqueue("X", later))
	assert.True(t, l.Enqueue("X", later.Add(1*time.Second)))
	assert.True(t, l.Enqueue("X", later.Add(2*time.Second)))
}

func TestEnqueueKeysAreIndependent(t *testing.T) {
	l := ratelimit.New(10*time.Second, 3)
	base := time.Unix(1_700_000_000, 0)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Enqueue("X", base.Add(time.Duration(i)*time.Second)))
	}
	assert.False(t, l.Enqueue("X", base.Add(3*time.Second)))

	assert.True(t, l.Enqueue("Y", base.Add(3*time.Second)))
	assert.True(t, l.Enqueue("Y", base.Add(4*time.Second)))
	assert.True(t, l.Enqueue("Y", base.Add(5*time.Second)))
}

func TestEnqueueConstantRateBelowThresholdNeverRejects(t *testing.T) {
	window := 10 * time.Second
	limit := 3
	l := ratelimit.New(window, limit)
	base := time.Unix(1_700_000_000, 0)

	// r = 1 request every 5s < L/W = 0.3/s stays accepted indefinitely.
	for i := 0; i < 200; i++ {
		now := base.Add(time.Duration(i) * 5 * time.Second)
		assert.True(t, l.Enqueue("steady", now), "iteration %d", i)
	}
}

func TestSizeTracksDistinctKeys(t *testing.T) {
	l := ratelimit.New(10*time.Second, 3)
	base := time.Unix(1_700_000_000, 0)

	l.Enqueue("a", base)
	l.Enqueue("b", base)
	assert.Equal(t, 2, l.Size())
}

func TestCleanupDropsIdleKeys(t *testing.T) {
	l := ratelimit.New(1*time.Second, 3)
	base := time.Unix(1_700_000_000, 0)

	l.Enqueue("stale", base)
	// Trigger the 2W cleanup sweep long after "stale" went idle.
	l.Enqueue("fresh", base.Add(10*time.Second))

	assert.Equal(t, 1, l.Size())
}
