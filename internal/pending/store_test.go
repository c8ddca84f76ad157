package pending

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestConsumeRemovesEntry(t *testing.T) {
	store := New(time.Minute, 10)
	store.Arm("k1", "armed")

	value, ok := store.Consume("k1")
	require.True(t, ok)
	require.Equal(t, "armed", value)

	_, ok = store.Consume("k1")
	require.False(t, ok, "second consume must miss")
}

func TestConsumeMissingKey(t *testing.T) {
	store := New(time.Minute, 10)
	_, ok := store.Consume("never-armed")
	require.False(t, ok)
}

func TestEntryExpires(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	store := New(2*time.Minute, 10)
	store.WithClock(clock)

	store.Arm("k1", "armed")
	clock.Advance(2*time.Minute + time.Second)

	_, ok := store.Consume("k1")
	require.False(t, ok, "expired entry must not confirm")
}

func TestRearmResetsDeadline(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	store := New(2*time.Minute, 10)
	store.WithClock(clock)

	store.Arm("k1", "first")
	clock.Advance(90 * time.Second)
	store.Arm("k1", "second")
	clock.Advance(90 * time.Second)

	value, ok := store.Consume("k1")
	require.True(t, ok)
	require.Equal(t, "second", value)
}

func TestCapEvictsOldest(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	store := New(time.Hour, 3)
	store.WithClock(clock)

	for i := 0; i < 3; i++ {
		store.Arm(fmt.Sprintf("k%d", i), "v")
		clock.Advance(time.Second)
	}
	store.Arm("k3", "v")

	require.Equal(t, 3, store.Len())
	_, ok := store.Consume("k0")
	require.False(t, ok, "oldest entry should be evicted")
	_, ok = store.Consume("k3")
	require.True(t, ok)
}

func TestSweepDropsExpiredBeforeEviction(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	store := New(time.Minute, 2)
	store.WithClock(clock)

	store.Arm("old", "v")
	clock.Advance(2 * time.Minute)
	store.Arm("a", "v")
	store.Arm("b", "v")

	// The expired entry was swept, so both live entries fit.
	_, ok := store.Consume("a")
	require.True(t, ok)
	_, ok = store.Consume("b")
	require.True(t, ok)
}
