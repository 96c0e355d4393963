package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
		assert.True(t, ValidStatus(s), s)
	}
	assert.False(t, ValidStatus("refunded"))
	assert.False(t, ValidStatus(""))
	assert.False(t, ValidStatus("Pending"))
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusCancelled, true},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusShipped, StatusDelivered, true},

		// Pas de saut direct
		{StatusPending, StatusShipped, false},
		{StatusPending, StatusDelivered, false},
		{StatusProcessing, StatusDelivered, false},

		// Pas d'annulation après expédition
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusCancelled, false},

		// États terminaux
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusProcessing, false},

		// Pas de retour arrière ni de sur-place
		{StatusShipped, StatusProcessing, false},
		{StatusPending, StatusPending, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
