package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/framedarchive/internal/testutil"
)

func TestRedisStoreSharedWindow(t *testing.T) {
	c := testutil.Context(t)
	client := testutil.StartRedis(t, c)

	// two stores over one redis behave like two instances of the service
	first := NewLimiter(NewRedisStore(client), "contact", 2, time.Minute)
	second := NewLimiter(NewRedisStore(client), "contact", 2, time.Minute)

	res, err := first.Allow(c, "9.9.9.9")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = second.Allow(c, "9.9.9.9")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 2, res.Count)

	res, err = first.Allow(c, "9.9.9.9")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, res.RetryAfter, time.Minute)
}
