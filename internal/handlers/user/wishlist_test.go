package user

import (
	"testing"

	"vetra_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestToggleWishlistEntry(t *testing.T) {
	p1 := primitive.NewObjectID()
	p2 := primitive.NewObjectID()

	entries, added := toggleWishlistEntry(nil, p1)
	assert.True(t, added)
	require.Len(t, entries, 1)

	entries, added = toggleWishlistEntry(entries, p2)
	assert.True(t, added)
	require.Len(t, entries, 2)

	// Second toggle du même produit : retrait
	entries, added = toggleWishlistEntry(entries, p1)
	assert.False(t, added)
	require.Len(t, entries, 1)
	assert.Equal(t, p2, entries[0].Product)
}

func TestToggleWishlistEntryRoundTrip(t *testing.T) {
	p := primitive.NewObjectID()
	initial := []models.WishlistEntry{{Product: primitive.NewObjectID()}}

	entries, added := toggleWishlistEntry(initial, p)
	require.True(t, added)

	entries, added = toggleWishlistEntry(entries, p)
	require.False(t, added)
	assert.Equal(t, initial, entries)
}
