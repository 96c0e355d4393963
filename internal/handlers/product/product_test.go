package product

import (
	"testing"

	"vetra_back_end/internal/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTotalPages(t *testing.T) {
	assert.Equal(t, int64(0), totalPages(0, 20))
	assert.Equal(t, int64(1), totalPages(1, 20))
	assert.Equal(t, int64(1), totalPages(20, 20))
	assert.Equal(t, int64(2), totalPages(21, 20))
	assert.Equal(t, int64(5), totalPages(100, 20))
	assert.Equal(t, int64(6), totalPages(101, 20))
	assert.Equal(t, int64(7), totalPages(7, 1))
}

func TestStaleUserCacheKeys(t *testing.T) {
	u1 := primitive.NewObjectID()
	u2 := primitive.NewObjectID()

	keys := staleUserCacheKeys([]interface{}{u1, u2})
	require.Len(t, keys, 4)
	assert.Contains(t, keys, cache.CartKey(u1.Hex()))
	assert.Contains(t, keys, cache.WishlistKey(u1.Hex()))
	assert.Contains(t, keys, cache.CartKey(u2.Hex()))
	assert.Contains(t, keys, cache.WishlistKey(u2.Hex()))
}

func TestStaleUserCacheKeysIgnoresForeignValues(t *testing.T) {
	u := primitive.NewObjectID()

	keys := staleUserCacheKeys([]interface{}{"pas-un-objectid", u, nil})
	require.Len(t, keys, 2)
	assert.Equal(t, cache.CartKey(u.Hex()), keys[0])
	assert.Equal(t, cache.WishlistKey(u.Hex()), keys[1])
}

func TestStaleUserCacheKeysEmpty(t *testing.T) {
	assert.Empty(t, staleUserCacheKeys(nil))
}
