package product

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"vetra_back_end/internal/cache"
	"vetra_back_end/internal/database"
	"vetra_back_end/internal/middleware"
	"vetra_back_end/internal/models"
	"vetra_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

// staleUserCacheKeys construit les clés Redis panier + wishlist des
// utilisateurs dont le document vient d'être modifié par un cascade delete.
func staleUserCacheKeys(userIDs []interface{}) []string {
	keys := make([]string, 0, 2*len(userIDs))
	for _, v := range userIDs {
		oid, ok := v.(primitive.ObjectID)
		if !ok {
			continue
		}
		keys = append(keys, cache.CartKey(oid.Hex()), cache.WishlistKey(oid.Hex()))
	}
	return keys
}

// totalPages calcule ceil(totalCount / limit) sans passer par les flottants.
func totalPages(totalCount, limit int64) int64 {
	if limit <= 0 {
		return 0
	}
	return (totalCount + limit - 1) / limit
}

// POST /api/products/create (admin, multipart)
func Create(c *gin.Context) {
	admin, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	name := c.PostForm("name")
	description := c.PostForm("description")
	category := c.PostForm("category")
	subcategory := c.PostForm("subcategory")
	brand := c.PostForm("brand")
	priceRaw := c.PostForm("price")

	if name == "" || priceRaw == "" || category == "" || subcategory == "" || brand == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tous les champs sont obligatoires"})
		return
	}

	price, err := strconv.ParseFloat(priceRaw, 64)
	if err != nil || price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prix invalide"})
		return
	}

	if !models.ValidCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Catégorie inconnue"})
		return
	}
	if !models.ValidSubcategory(subcategory) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Sous-catégorie inconnue"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image obligatoire"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	imageURL, err := services.UploadImage(ctx, "products", file)
	if err != nil {
		log.Println("❌ Erreur upload image produit:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload image"})
		return
	}

	now := time.Now()
	p := models.Product{
		ID:          primitive.NewObjectID(),
		User:        admin.ID,
		Name:        name,
		Description: description,
		Price:       price,
		Category:    category,
		Subcategory: subcategory,
		Brand:       brand,
		Image:       imageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := database.Products().InsertOne(ctx, p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit"})
		return
	}

	// Indexation Elasticsearch en arrière-plan
	go services.IndexProduct(p)

	c.JSON(http.StatusCreated, gin.H{"message": "Produit créé", "product": p})
}

// GET /api/products/allProducts?page=&limit= (public, paginé)
func All(c *gin.Context) {
	page, err := strconv.ParseInt(c.Query("page"), 10, 64)
	if err != nil || page < 1 {
		page = defaultPage
	}
	limit, err := strconv.ParseInt(c.Query("limit"), 10, 64)
	if err != nil || limit < 1 {
		limit = defaultLimit
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := database.Products().Find(ctx, bson.M{}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits"})
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur décodage produits"})
		return
	}

	totalCount, err := database.Products().CountDocuments(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur comptage produits"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":    products,
		"totalCount":  totalCount,
		"currentPage": page,
		"totalPages":  totalPages(totalCount, limit),
	})
}

// GET /api/products/featuredProducts (public, cache Redis)
func Featured(c *gin.Context) {
	var cached []models.Product
	if cache.GetJSON(cache.FeaturedKey, &cached) {
		c.JSON(http.StatusOK, gin.H{"products": cached})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := database.Products().Find(ctx, bson.M{"isFeatured": true}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits"})
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur décodage produits"})
		return
	}

	cache.SetJSON(cache.FeaturedKey, products, cache.FeaturedCacheTTL)

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GET /api/products/productDetails/:id (public)
func Details(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant produit invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var p models.Product
	if err := database.Products().FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": p})
}

// GET /api/products/search?q= (public, Elasticsearch)
func Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paramètre 'q' manquant"})
		return
	}

	results, err := services.SearchProducts(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur recherche produits"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": results})
}

// GET /api/products/getUserProducts (admin : ses propres produits)
func Mine(c *gin.Context) {
	admin, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := database.Products().Find(ctx, bson.M{"user": admin.ID}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits"})
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur décodage produits"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// PUT /api/products/isFeatured (admin)
func SetFeatured(c *gin.Context) {
	var input struct {
		ProductID  string `json:"productId" binding:"required"`
		IsFeatured bool   `json:"isFeatured"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	id, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant produit invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"isFeatured": input.IsFeatured, "updated_at": time.Now()}}
	res, err := database.Products().UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	cache.Invalidate(cache.FeaturedKey)

	var p models.Product
	if err := database.Products().FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Produit mis à jour", "product": p})
}

// DELETE /api/products/deleteProduct/:id (admin)
// Suppression dure, avec nettoyage des paniers et wishlists qui
// référencent encore le produit. Les commandes gardent leurs copies
// figées : l'historique d'achat ne bouge pas.
func Delete(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant produit invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	res, err := database.Products().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression produit"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	// Utilisateurs qui référencent encore le produit : leurs caches
	// panier/wishlist deviendront obsolètes après le $pull
	affected, err := database.Users().Distinct(ctx, "_id", bson.M{"$or": []bson.M{
		{"cartItems.product": id},
		{"wishlist.product": id},
	}})
	if err != nil {
		log.Println("⚠️ Lecture des utilisateurs affectés échouée:", err)
	}

	// Nettoyage des références pendantes dans tous les documents utilisateur
	_, err = database.Users().UpdateMany(ctx, bson.M{}, bson.M{
		"$pull": bson.M{
			"cartItems": bson.M{"product": id},
			"wishlist":  bson.M{"product": id},
		},
	})
	if err != nil {
		log.Println("⚠️ Nettoyage paniers/wishlists incomplet:", err)
	}

	cache.Invalidate(staleUserCacheKeys(affected)...)
	cache.Invalidate(cache.FeaturedKey)
	go services.RemoveProductIndex(id.Hex())

	c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé"})
}
