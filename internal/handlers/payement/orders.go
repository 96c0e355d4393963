package payement

import (
	"context"
	"log"
	"net/http"
	"time"

	"vetra_back_end/internal/database"
	"vetra_back_end/internal/middleware"
	"vetra_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GET /api/checkout/userOrder
// Commandes de l'utilisateur connecté, les plus récentes d'abord.
func MyOrders(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := database.Orders().Find(ctx, bson.M{"user": user.ID}, opts)
	if err != nil {
		log.Println("❌ Erreur MongoDB Find:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commandes"})
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur décodage commandes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// ownerOrder : une commande enrichie de l'acheteur pour la vue admin.
type ownerOrder struct {
	models.Order
	Buyer gin.H `json:"buyer"`
}

// GET /api/checkout/ownerOrder (admin)
// Toutes les commandes contenant au moins une ligne dont le produit
// appartient à l'admin. La requête accepte qu'une commande mélange
// plusieurs vendeurs, même si le catalogue actuel n'en a qu'un.
func OwnerOrders(c *gin.Context) {
	admin, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	ownedIDs, err := database.Products().Distinct(ctx, "_id", bson.M{"user": admin.ID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits"})
		return
	}
	if len(ownedIDs) == 0 {
		c.JSON(http.StatusOK, gin.H{"orders": []ownerOrder{}})
		return
	}

	cursor, err := database.Orders().Find(ctx, bson.M{"orderItems.product": bson.M{"$in": ownedIDs}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commandes"})
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur décodage commandes"})
		return
	}

	// Enrichit chaque commande avec nom et email de l'acheteur
	buyerIDs := make([]primitive.ObjectID, 0, len(orders))
	for _, order := range orders {
		buyerIDs = append(buyerIDs, order.User)
	}

	buyers := map[primitive.ObjectID]models.User{}
	if len(buyerIDs) > 0 {
		userCursor, err := database.Users().Find(ctx, bson.M{"_id": bson.M{"$in": buyerIDs}})
		if err == nil {
			defer userCursor.Close(ctx)
			var u models.User
			for userCursor.Next(ctx) {
				if userCursor.Decode(&u) == nil {
					buyers[u.ID] = u
				}
			}
		}
	}

	out := make([]ownerOrder, 0, len(orders))
	for _, order := range orders {
		buyer := gin.H{}
		if u, ok := buyers[order.User]; ok {
			buyer = gin.H{"name": u.Name, "email": u.Email}
		}
		out = append(out, ownerOrder{Order: order, Buyer: buyer})
	}

	c.JSON(http.StatusOK, gin.H{"orders": out})
}

// PUT /api/checkout/updateStatus (admin)
// Le changement de statut suit le graphe de transitions : pas de saut
// direct de pending à delivered, pas d'annulation après expédition.
func UpdateStatus(c *gin.Context) {
	var input struct {
		OrderID string `json:"orderId" binding:"required"`
		Status  string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant et statut requis"})
		return
	}

	if !models.ValidStatus(input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut inconnu"})
		return
	}

	orderID, err := primitive.ObjectIDFromHex(input.OrderID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant commande invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var order models.Order
	if err := database.Orders().FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	if !models.CanTransition(order.Status, input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Transition de statut invalide : " + order.Status + " → " + input.Status,
		})
		return
	}

	_, err = database.Orders().UpdateOne(ctx, bson.M{"_id": orderID},
		bson.M{"$set": bson.M{"status": input.Status}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour commande"})
		return
	}

	order.Status = input.Status
	c.JSON(http.StatusOK, order)
}
