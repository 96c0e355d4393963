package user

import (
	"context"
	"errors"
	"net/http"
	"time"

	"vetra_back_end/internal/cache"
	"vetra_back_end/internal/database"
	"vetra_back_end/internal/middleware"
	"vetra_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// toggleWishlistEntry retire la référence si elle existe, sinon l'ajoute.
// Retourne true si le produit vient d'être ajouté.
func toggleWishlistEntry(entries []models.WishlistEntry, productID primitive.ObjectID) ([]models.WishlistEntry, bool) {
	for i := range entries {
		if entries[i].Product == productID {
			return append(entries[:i], entries[i+1:]...), false
		}
	}
	return append(entries, models.WishlistEntry{Product: productID}), true
}

// mutateWishlist partage le verrou optimiste cart_version avec le panier :
// les deux tableaux vivent dans le même document utilisateur.
func mutateWishlist(ctx context.Context, userID primitive.ObjectID, fn func([]models.WishlistEntry) []models.WishlistEntry) ([]models.WishlistEntry, error) {
	const maxRetries = 3

	for attempt := 0; attempt < maxRetries; attempt++ {
		var user models.User
		if err := database.Users().FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			return nil, err
		}

		entries := fn(append([]models.WishlistEntry{}, user.Wishlist...))

		res, err := database.Users().UpdateOne(ctx,
			bson.M{"_id": userID, "cart_version": user.CartVersion},
			bson.M{
				"$set": bson.M{"wishlist": entries},
				"$inc": bson.M{"cart_version": 1},
			})
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 1 {
			return entries, nil
		}
	}

	return nil, errors.New("conflit d'écriture sur la wishlist")
}

// hydrateWishlist transforme les références en documents produit complets.
func hydrateWishlist(ctx context.Context, entries []models.WishlistEntry) ([]models.Product, error) {
	products := []models.Product{}
	if len(entries) == 0 {
		return products, nil
	}

	ids := make([]primitive.ObjectID, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.Product)
	}

	cursor, err := database.Products().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}

	return products, nil
}

// PUT /api/auth/likeUnlike/:id
// Un seul endpoint idempotent par paire : ajouter puis retirer ramène la
// wishlist à son état d'origine.
func ToggleWishlist(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant produit invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := database.Products().FindOne(ctx, bson.M{"_id": productID}).Err(); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	added := false
	entries, err := mutateWishlist(ctx, user.ID, func(entries []models.WishlistEntry) []models.WishlistEntry {
		var out []models.WishlistEntry
		out, added = toggleWishlistEntry(entries, productID)
		return out
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour wishlist"})
		return
	}

	hydrated, err := hydrateWishlist(ctx, entries)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture wishlist"})
		return
	}

	cache.SetJSON(cache.WishlistKey(user.ID.Hex()), hydrated, cache.WishlistCacheTTL)

	message := "Produit retiré de la wishlist"
	if added {
		message = "Produit ajouté à la wishlist"
	}

	c.JSON(http.StatusOK, gin.H{"message": message, "wishlist": hydrated})
}

// GET /api/auth/userWishlist
func GetWishlist(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	var cached []models.Product
	if cache.GetJSON(cache.WishlistKey(user.ID.Hex()), &cached) {
		c.JSON(http.StatusOK, gin.H{"wishlist": cached})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hydrated, err := hydrateWishlist(ctx, user.Wishlist)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture wishlist"})
		return
	}

	cache.SetJSON(cache.WishlistKey(user.ID.Hex()), hydrated, cache.WishlistCacheTTL)

	c.JSON(http.StatusOK, gin.H{"wishlist": hydrated})
}
