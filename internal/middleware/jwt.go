package middleware

import (
	"context"
	"net/http"
	"time"

	"vetra_back_end/internal/database"
	"vetra_back_end/internal/models"
	"vetra_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthRequired lit le token depuis le cookie, le valide, charge
// l'utilisateur et le met dans le contexte Gin. Aucun état serveur :
// tout est revérifié à chaque requête.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(utils.CookieName)
		if err != nil || tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié, token manquant"})
			c.Abort()
			return
		}

		userID, err := utils.ParseJWT(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié, token invalide"})
			c.Abort()
			return
		}

		oid, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié, token invalide"})
			c.Abort()
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := database.Users().FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié, utilisateur introuvable"})
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID.Hex())
		c.Next()
	}
}

// CurrentUser récupère l'utilisateur posé par AuthRequired.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get("user")
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}
