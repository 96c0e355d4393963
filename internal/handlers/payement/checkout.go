package payement

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vetra_back_end/internal/cache"
	"vetra_back_end/internal/config"
	"vetra_back_end/internal/database"
	"vetra_back_end/internal/middleware"
	"vetra_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/checkout/session"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// POST /api/checkout/create-checkout-session
// Construit une session de paiement hébergée Stripe. Le payload complet de
// la commande (articles, adresse, prix calculés) part dans les metadata de
// la session : la commande ne sera matérialisée qu'une fois le paiement
// confirmé, côté webhook ou au retour sur la page de succès.
func CreateCheckoutSession(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	var req struct {
		OrderItems      []models.OrderItem     `json:"orderItems" binding:"required"`
		ShippingAddress models.ShippingAddress `json:"shippingAddress" binding:"required"`
		TotalPrice      float64                `json:"totalPrice" binding:"required"`
		Currency        string                 `json:"currency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.OrderItems) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Champs obligatoires manquants"})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	shippingPrice := ComputeShipping(req.TotalPrice)

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.OrderItems))
	for _, item := range req.OrderItems {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(strings.ToLower(currency)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:   stripe.String(item.Name),
					Images: stripe.StringSlice([]string{item.Image}),
				},
				UnitAmount: stripe.Int64(unitAmount(item.Price)),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	frontend := config.FrontendURL()

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(frontend + "/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:          stripe.String(frontend + "/cancel"),
		CustomerEmail:      stripe.String(req.ShippingAddress.Email),
	}

	itemsJSON, err := json.Marshal(req.OrderItems)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sérialisation commande"})
		return
	}
	addressJSON, err := json.Marshal(req.ShippingAddress)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sérialisation adresse"})
		return
	}

	params.AddMetadata("user_id", user.ID.Hex())
	params.AddMetadata("orderItems", string(itemsJSON))
	params.AddMetadata("shippingAddress", string(addressJSON))
	params.AddMetadata("totalPrice", fmt.Sprintf("%g", req.TotalPrice))
	params.AddMetadata("shippingPrice", fmt.Sprintf("%g", shippingPrice))

	s, err := session.New(params)
	if err != nil {
		log.Println("❌ Erreur création session Stripe:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création session de paiement"})
		return
	}

	log.Printf("💳 Session checkout créée : %s (%.2f + %.2f livraison) pour %s",
		s.ID, req.TotalPrice, shippingPrice, user.Email)

	c.JSON(http.StatusOK, gin.H{"id": s.ID})
}

// POST /api/checkout/create-order
// Appelé par la page de succès après la redirection Stripe. La session est
// relue chez Stripe et la commande matérialisée depuis ses metadata. Le
// même session id ne produit jamais deux commandes : une commande déjà en
// base est renvoyée telle quelle.
func CreateOrder(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	var req struct {
		SessionID string `json:"sessionId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant de session requis"})
		return
	}

	s, err := session.Get(req.SessionID, nil)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session introuvable"})
		return
	}

	order, created, err := materializeOrder(s, user.ID)
	if err != nil {
		log.Println("❌ Erreur matérialisation commande:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création commande"})
		return
	}

	if created {
		cache.Invalidate(cache.CartKey(user.ID.Hex()))
		c.JSON(http.StatusCreated, order)
		return
	}
	c.JSON(http.StatusOK, order)
}

// materializeOrder transforme une session Stripe payée ou non en document
// commande. Idempotent sur stripe_id : la première écriture gagne, les
// suivantes relisent la commande existante (l'index unique couvre la course
// entre le webhook et l'appel de la page de succès).
func materializeOrder(s *stripe.CheckoutSession, fallbackUser primitive.ObjectID) (models.Order, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var existing models.Order
	err := database.Orders().FindOne(ctx, bson.M{"stripe_id": s.ID}).Decode(&existing)
	if err == nil {
		return existing, false, nil
	}

	order, err := orderFromSession(s, fallbackUser)
	if err != nil {
		return models.Order{}, false, err
	}

	if _, err := database.Orders().InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if err := database.Orders().FindOne(ctx, bson.M{"stripe_id": s.ID}).Decode(&existing); err == nil {
				return existing, false, nil
			}
		}
		return models.Order{}, false, err
	}

	return order, true, nil
}

// orderFromSession décode les metadata embarquées à la création de la
// session et fige les lignes de commande.
func orderFromSession(s *stripe.CheckoutSession, fallbackUser primitive.ObjectID) (models.Order, error) {
	var items []models.OrderItem
	if err := json.Unmarshal([]byte(s.Metadata["orderItems"]), &items); err != nil {
		return models.Order{}, fmt.Errorf("metadata orderItems illisible: %w", err)
	}

	var address models.ShippingAddress
	if err := json.Unmarshal([]byte(s.Metadata["shippingAddress"]), &address); err != nil {
		return models.Order{}, fmt.Errorf("metadata shippingAddress illisible: %w", err)
	}

	totalPrice, err := strconv.ParseFloat(s.Metadata["totalPrice"], 64)
	if err != nil {
		return models.Order{}, fmt.Errorf("metadata totalPrice illisible: %w", err)
	}
	shippingPrice, err := strconv.ParseFloat(s.Metadata["shippingPrice"], 64)
	if err != nil {
		return models.Order{}, fmt.Errorf("metadata shippingPrice illisible: %w", err)
	}

	userID := fallbackUser
	if raw := s.Metadata["user_id"]; raw != "" {
		if oid, err := primitive.ObjectIDFromHex(raw); err == nil {
			userID = oid
		}
	}

	isPaid := s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid
	var paidAt *time.Time
	if isPaid {
		now := time.Now()
		paidAt = &now
	}

	return models.Order{
		ID:              primitive.NewObjectID(),
		User:            userID,
		OrderItems:      items,
		ShippingAddress: address,
		TotalPrice:      totalPrice,
		ShippingPrice:   shippingPrice,
		Status:          models.StatusPending,
		PaymentMethod:   "Stripe",
		StripeID:        s.ID,
		IsPaid:          isPaid,
		PaidAt:          paidAt,
		CreatedAt:       time.Now(),
	}, nil
}
