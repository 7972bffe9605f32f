package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMissingKey(t *testing.T) {
	c := New(DefaultTTL)

	_, ok := c.Get("current_1_2")
	assert.False(t, ok)
}

func TestTTLBoundary(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	now := base
	c := NewWithClock(60*time.Second, func() time.Time { return now })

	c.Put("k", "payload")

	// One millisecond before the TTL the entry is still served.
	now = base.Add(59*time.Second + 999*time.Millisecond)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "payload", v)

	// At exactly the TTL the entry is treated as absent.
	now = base.Add(60 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)

	// And it stays absent afterwards.
	now = base.Add(5 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestPutRestartsTTL(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	now := base
	c := NewWithClock(60*time.Second, func() time.Time { return now })

	c.Put("k", "old")
	now = base.Add(59 * time.Second)
	c.Put("k", "new")

	now = base.Add(100 * time.Second)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "new", v)
}

func TestZeroTTLFallsBackToDefault(t *testing.T) {
	c := New(0)
	c.Put("k", 1)

	_, ok := c.Get("k")
	assert.True(t, ok)
}
