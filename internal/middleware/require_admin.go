package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin vérifie que l'utilisateur chargé par AuthRequired est admin.
func RequireAdmin(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok || !user.IsAdmin {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Accès réservé aux administrateurs"})
		c.Abort()
		return
	}
	c.Next()
}
