package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Statuts de commande.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// Transitions autorisées : pending→processing→shipped→delivered,
// annulation possible depuis pending et processing.
var orderTransitions = map[string][]string{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// ValidStatus vérifie que le statut fait partie de l'énumération.
func ValidStatus(s string) bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransition vérifie qu'un changement de statut suit le graphe.
func CanTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderItem : copie figée des attributs produit au moment de l'achat.
// Les modifications ou suppressions ultérieures du produit ne la touchent pas.
type OrderItem struct {
	Name     string             `bson:"name" json:"name"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Image    string             `bson:"image" json:"image"`
	Price    float64            `bson:"price" json:"price"`
	Brand    string             `bson:"brand" json:"brand"`
	Product  primitive.ObjectID `bson:"product" json:"product"`
}

type ShippingAddress struct {
	FirstName string `bson:"firstName" json:"firstName" binding:"required"`
	LastName  string `bson:"lastName" json:"lastName" binding:"required"`
	Address   string `bson:"address" json:"address" binding:"required"`
	City      string `bson:"city" json:"city" binding:"required"`
	ZipCode   string `bson:"zipCode" json:"zipCode" binding:"required"`
	State     string `bson:"state" json:"state" binding:"required"`
	Country   string `bson:"country" json:"country" binding:"required"`
	Phone     string `bson:"phone" json:"phone" binding:"required"`
	Email     string `bson:"email" json:"email" binding:"required"`
}

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User            primitive.ObjectID `bson:"user" json:"user"`
	OrderItems      []OrderItem        `bson:"orderItems" json:"orderItems"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	TotalPrice      float64            `bson:"totalPrice" json:"totalPrice"`
	ShippingPrice   float64            `bson:"shippingPrice" json:"shippingPrice"`
	Status          string             `bson:"status" json:"status"`
	PaymentMethod   string             `bson:"paymentMethod" json:"paymentMethod"`
	StripeID        string             `bson:"stripe_id" json:"stripeId"`
	IsPaid          bool               `bson:"isPaid" json:"isPaid"`
	PaidAt          *time.Time         `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
}
