package user

import (
	"testing"

	"vetra_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAddEntry(t *testing.T) {
	p1 := primitive.NewObjectID()
	p2 := primitive.NewObjectID()

	items := addEntry(nil, p1)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)

	items = addEntry(items, p1)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)

	items = addEntry(items, p2)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[1].Quantity)
}

func TestDecreaseEntryRemovesLineAtOne(t *testing.T) {
	p1 := primitive.NewObjectID()

	items := addEntry(nil, p1)
	items = addEntry(items, p1)
	items = addEntry(items, p1)
	require.Equal(t, 3, items[0].Quantity)

	var err error
	items, err = decreaseEntry(items, p1)
	require.NoError(t, err)
	assert.Equal(t, 2, items[0].Quantity)

	items, err = decreaseEntry(items, p1)
	require.NoError(t, err)
	assert.Equal(t, 1, items[0].Quantity)

	items, err = decreaseEntry(items, p1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDecreaseEntryUnknownProduct(t *testing.T) {
	items := addEntry(nil, primitive.NewObjectID())

	_, err := decreaseEntry(items, primitive.NewObjectID())
	assert.ErrorIs(t, err, errNotInCart)
}

func TestRemoveEntry(t *testing.T) {
	p1 := primitive.NewObjectID()
	p2 := primitive.NewObjectID()

	items := addEntry(nil, p1)
	items = addEntry(items, p1)
	items = addEntry(items, p2)

	items, err := removeEntry(items, p1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, p2, items[0].Product)

	_, err = removeEntry(items, p1)
	assert.ErrorIs(t, err, errNotInCart)
}

func TestRemoveEntryKeepsOtherLines(t *testing.T) {
	ids := []primitive.ObjectID{
		primitive.NewObjectID(),
		primitive.NewObjectID(),
		primitive.NewObjectID(),
	}

	var items []models.CartEntry
	for _, id := range ids {
		items = addEntry(items, id)
	}

	items, err := removeEntry(items, ids[1])
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, ids[0], items[0].Product)
	assert.Equal(t, ids[2], items[1].Product)
}
