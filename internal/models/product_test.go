package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCategory(t *testing.T) {
	for _, c := range ProductCategories {
		assert.True(t, ValidCategory(c), c)
	}

	// Sensible à la casse
	assert.False(t, ValidCategory("men"))
	assert.False(t, ValidCategory("Enfants"))
	assert.False(t, ValidCategory(""))
}

func TestValidSubcategory(t *testing.T) {
	for _, s := range ProductSubcategories {
		assert.True(t, ValidSubcategory(s), s)
	}

	assert.False(t, ValidSubcategory("t-shirt"))
	assert.False(t, ValidSubcategory("Hat"))
	assert.False(t, ValidSubcategory(""))
}
