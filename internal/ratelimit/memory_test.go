package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestMemoryStoreSlidingWindow(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := newMemoryStore(10, clock.Now)
	limiter := NewLimiter(store, "create-order", 2, time.Minute)
	c := context.Background()

	res, err := limiter.Allow(c, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	clock.Advance(10 * time.Second)
	res, err = limiter.Allow(c, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 2, res.Count)

	res, err = limiter.Allow(c, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, res.Allowed, "third hit inside the window should be limited")
	assert.Equal(t, 50*time.Second, res.RetryAfter)

	res, err = limiter.Allow(c, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, res.Allowed, "other subjects should not share the window")

	clock.Advance(50 * time.Second)
	res, err = limiter.Allow(c, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, res.Allowed, "oldest hit should slide out of the window")
	assert.Equal(t, 2, res.Count)
}

func TestMemoryStoreEvictsLeastRecentlyHit(t *testing.T) {
	store := NewMemoryStore(3)
	c := context.Background()
	for i := range 5 {
		_, err := store.Hit(c, fmt.Sprintf("key-%d", i), 1, time.Minute)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, store.Len())

	res, err := store.Hit(c, "key-0", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed, "evicted key should start a fresh window")

	res, err = store.Hit(c, "key-4", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}

func TestLimiterDisabled(t *testing.T) {
	var limiter *Limiter
	res, err := limiter.Allow(context.Background(), "anyone")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = NewLimiter(NewMemoryStore(1), "zero", 0, time.Minute).Allow(context.Background(), "anyone")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}
