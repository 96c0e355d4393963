package utils

import (
	"net/http"
	"os"
	"time"

	"vetra_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// Durée de vie du token : 7 jours, comme le cookie qui le porte.
	TokenTTL   = 7 * 24 * time.Hour
	CookieName = "jwt"
)

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	return []byte(secret)
}

// GenerateJWT signe un token de session pour l'utilisateur.
func GenerateJWT(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.Hex(),
		"email":   user.Email,
		"isAdmin": user.IsAdmin,
		"exp":     time.Now().Add(TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// ParseJWT valide le token et retourne l'id utilisateur.
func ParseJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return "", jwt.ErrTokenUnverifiable
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", jwt.ErrTokenInvalidClaims
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", jwt.ErrTokenInvalidClaims
	}

	return userID, nil
}

// SetAuthCookie pose le token dans un cookie httpOnly SameSite strict.
func SetAuthCookie(c *gin.Context, token string) {
	secure := os.Getenv("APP_ENV") == "production"
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, token, int(TokenTTL.Seconds()), "/", "", secure, true)
}

// ClearAuthCookie remplace le cookie par une valeur vide déjà expirée.
func ClearAuthCookie(c *gin.Context) {
	secure := os.Getenv("APP_ENV") == "production"
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, "", -1, "/", "", secure, true)
}
