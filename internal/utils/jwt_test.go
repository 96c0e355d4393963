package utils

import (
	"testing"

	"vetra_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGenerateAndParseJWT(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-de-test")

	u := models.User{
		ID:    primitive.NewObjectID(),
		Email: "claire@vetra.shop",
	}

	token, err := GenerateJWT(u)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), userID)
}

func TestParseJWTWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "premier-secret")

	u := models.User{ID: primitive.NewObjectID(), Email: "claire@vetra.shop"}
	token, err := GenerateJWT(u)
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "autre-secret")

	_, err = ParseJWT(token)
	assert.Error(t, err)
}

func TestParseJWTGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-de-test")

	_, err := ParseJWT("pas.un.token")
	assert.Error(t, err)

	_, err = ParseJWT("")
	assert.Error(t, err)
}
