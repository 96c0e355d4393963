package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartEntry : une ligne du panier embarquée dans le document utilisateur.
type CartEntry struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Quantity int                `bson:"quantity" json:"quantity"`
}

// WishlistEntry : une référence produit dans la wishlist.
type WishlistEntry struct {
	Product primitive.ObjectID `bson:"product" json:"product"`
}

type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email" json:"email"`
	Password    string             `bson:"password" json:"-"`
	IsAdmin     bool               `bson:"isAdmin" json:"isAdmin"`
	Phone       string             `bson:"phone" json:"phone"`
	ProfilePic  string             `bson:"profilePic" json:"profilePic"`
	CartItems   []CartEntry        `bson:"cartItems" json:"cartItems"`
	Wishlist    []WishlistEntry    `bson:"wishlist" json:"wishlist"`
	CartVersion int64              `bson:"cart_version" json:"-"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}

// PublicUser : champs renvoyés au frontend (jamais le hash).
type PublicUser struct {
	ID         primitive.ObjectID `json:"_id"`
	Name       string             `json:"name"`
	Email      string             `json:"email"`
	IsAdmin    bool               `json:"isAdmin"`
	Phone      string             `json:"phone"`
	ProfilePic string             `json:"profilePic"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		IsAdmin:    u.IsAdmin,
		Phone:      u.Phone,
		ProfilePic: u.ProfilePic,
	}
}

// HasWishlisted indique si le produit est déjà dans la wishlist.
func (u User) HasWishlisted(productID primitive.ObjectID) bool {
	for _, entry := range u.Wishlist {
		if entry.Product == productID {
			return true
		}
	}
	return false
}
