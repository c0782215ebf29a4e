package integrity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/framedarchive/cart/pkg/model"
	"github.com/Alturino/framedarchive/internal/testutil"
)

func TestRedisStorage(t *testing.T) {
	c := testutil.Context(t)
	client := testutil.StartRedis(t, c)
	storage := NewRedisStorage(client, time.Hour)

	value, err := storage.Get(c, "s1", CartKey)
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, storage.Set(c, "s1", CartKey, "blob"))
	value, err = storage.Get(c, "s1", CartKey)
	require.NoError(t, err)
	assert.Equal(t, "blob", value)

	ttl, err := client.TTL(c, "guests:s1:cart").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	other, err := storage.Get(c, "s2", CartKey)
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, storage.Delete(c, "s1", CartKey))
	value, err = storage.Get(c, "s1", CartKey)
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestSecureStoreOnRedis(t *testing.T) {
	c := testutil.Context(t)
	client := testutil.StartRedis(t, c)
	store := NewSecureStore(NewRedisStorage(client, time.Hour), nil)

	items := []model.CartItem{newItem()}
	require.NoError(t, store.Save(c, "s1", items))
	assertItemsEqual(t, ValidateCartItems(c, items), store.Load(c, "s1"))

	require.NoError(t, client.Set(c, "guests:s1:cart", "%%%", 0).Err())
	assert.Empty(t, store.Load(c, "s1"))
	exists, err := client.Exists(c, "guests:s1:cart").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)
}
