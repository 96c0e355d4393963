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

var errNotInCart = errors.New("produit absent du panier")

// HydratedCartItem : ligne de panier renvoyée au frontend, avec le
// document produit complet plutôt qu'une simple référence.
type HydratedCartItem struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// ================== MUTATIONS PURES ==================
// Les mutations travaillent sur la copie en mémoire ; la persistance passe
// par un update conditionnel sur cart_version (verrou optimiste).

// addEntry incrémente la quantité si la ligne existe, sinon l'ajoute à 1.
func addEntry(items []models.CartEntry, productID primitive.ObjectID) []models.CartEntry {
	for i := range items {
		if items[i].Product == productID {
			items[i].Quantity++
			return items
		}
	}
	return append(items, models.CartEntry{Product: productID, Quantity: 1})
}

// decreaseEntry décrémente la quantité ; à 1, la ligne disparaît.
func decreaseEntry(items []models.CartEntry, productID primitive.ObjectID) ([]models.CartEntry, error) {
	for i := range items {
		if items[i].Product != productID {
			continue
		}
		if items[i].Quantity > 1 {
			items[i].Quantity--
			return items, nil
		}
		return append(items[:i], items[i+1:]...), nil
	}
	return items, errNotInCart
}

// removeEntry supprime la ligne quelle que soit sa quantité.
func removeEntry(items []models.CartEntry, productID primitive.ObjectID) ([]models.CartEntry, error) {
	for i := range items {
		if items[i].Product == productID {
			return append(items[:i], items[i+1:]...), nil
		}
	}
	return items, errNotInCart
}

// mutateCart applique fn sur le panier de l'utilisateur avec un verrou
// optimiste : si un autre appel a modifié le document entre la lecture et
// l'écriture, on recommence.
func mutateCart(ctx context.Context, userID primitive.ObjectID, fn func([]models.CartEntry) ([]models.CartEntry, error)) ([]models.CartEntry, error) {
	const maxRetries = 3

	for attempt := 0; attempt < maxRetries; attempt++ {
		var user models.User
		if err := database.Users().FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			return nil, err
		}

		items, err := fn(append([]models.CartEntry{}, user.CartItems...))
		if err != nil {
			return nil, err
		}

		res, err := database.Users().UpdateOne(ctx,
			bson.M{"_id": userID, "cart_version": user.CartVersion},
			bson.M{
				"$set": bson.M{"cartItems": items},
				"$inc": bson.M{"cart_version": 1},
			})
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 1 {
			return items, nil
		}
		// version dépassée, on relit et on rejoue
	}

	return nil, errors.New("conflit d'écriture sur le panier")
}

// hydrateCart remplace les références produit par les documents complets.
// Les références pendantes (produit supprimé entre-temps) sont ignorées.
func hydrateCart(ctx context.Context, items []models.CartEntry) ([]HydratedCartItem, error) {
	hydrated := []HydratedCartItem{}
	if len(items) == 0 {
		return hydrated, nil
	}

	ids := make([]primitive.ObjectID, 0, len(items))
	for _, entry := range items {
		ids = append(ids, entry.Product)
	}

	cursor, err := database.Products().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	byID := make(map[primitive.ObjectID]models.Product, len(ids))
	var p models.Product
	for cursor.Next(ctx) {
		if err := cursor.Decode(&p); err != nil {
			return nil, err
		}
		byID[p.ID] = p
	}

	for _, entry := range items {
		if product, ok := byID[entry.Product]; ok {
			hydrated = append(hydrated, HydratedCartItem{Product: product, Quantity: entry.Quantity})
		}
	}

	return hydrated, nil
}

// respondCart hydrate, met en cache et répond.
func respondCart(c *gin.Context, ctx context.Context, userID primitive.ObjectID, items []models.CartEntry, message string) {
	hydrated, err := hydrateCart(ctx, items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}

	cache.SetJSON(cache.CartKey(userID.Hex()), hydrated, cache.CartCacheTTL)

	c.JSON(http.StatusOK, gin.H{"message": message, "cart": hydrated})
}

// ================== HANDLERS ==================

// POST /api/carts/add
func AddToCart(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	var input struct {
		ProductID string `json:"productId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant produit requis"})
		return
	}

	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant produit invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Le produit doit exister avant d'entrer dans un panier
	if err := database.Products().FindOne(ctx, bson.M{"_id": productID}).Err(); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	items, err := mutateCart(ctx, user.ID, func(items []models.CartEntry) ([]models.CartEntry, error) {
		return addEntry(items, productID), nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour panier"})
		return
	}

	respondCart(c, ctx, user.ID, items, "Panier mis à jour")
}

// POST /api/carts/decrease
func DecreaseQuantity(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	var input struct {
		ProductID string `json:"productId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant produit requis"})
		return
	}

	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant produit invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	items, err := mutateCart(ctx, user.ID, func(items []models.CartEntry) ([]models.CartEntry, error) {
		return decreaseEntry(items, productID)
	})
	if errors.Is(err, errNotInCart) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit absent du panier"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour panier"})
		return
	}

	respondCart(c, ctx, user.ID, items, "Panier mis à jour")
}

// DELETE /api/carts/remove
func RemoveFromCart(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	var input struct {
		ProductID string `json:"productId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant produit requis"})
		return
	}

	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant produit invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	items, err := mutateCart(ctx, user.ID, func(items []models.CartEntry) ([]models.CartEntry, error) {
		return removeEntry(items, productID)
	})
	if errors.Is(err, errNotInCart) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit absent du panier"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour panier"})
		return
	}

	respondCart(c, ctx, user.ID, items, "Produit retiré du panier")
}

// DELETE /api/carts/clear
func ClearCart(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	items, err := mutateCart(ctx, user.ID, func([]models.CartEntry) ([]models.CartEntry, error) {
		return []models.CartEntry{}, nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du vidage du panier"})
		return
	}

	respondCart(c, ctx, user.ID, items, "Panier vidé")
}

// GET /api/carts/getCart
func GetCart(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	// Cache Redis d'abord
	var cached []HydratedCartItem
	if cache.GetJSON(cache.CartKey(user.ID.Hex()), &cached) {
		c.JSON(http.StatusOK, gin.H{"cart": cached})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hydrated, err := hydrateCart(ctx, user.CartItems)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}

	cache.SetJSON(cache.CartKey(user.ID.Hex()), hydrated, cache.CartCacheTTL)

	c.JSON(http.StatusOK, gin.H{"cart": hydrated})
}
