package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Catégories autorisées (ensembles fermés, comme le schéma d'origine).
var (
	ProductCategories = []string{"Men", "Women", "Kids", "Unisex"}

	ProductSubcategories = []string{
		"Shirt", "T-shirt", "Jeans", "Jacket", "Sweater",
		"Dress", "Shorts", "Skirt", "Coat",
	}
)

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User        primitive.ObjectID `bson:"user" json:"user"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Category    string             `bson:"category" json:"category"`
	Subcategory string             `bson:"subcategory" json:"subcategory"`
	Brand       string             `bson:"brand" json:"brand"`
	Image       string             `bson:"image" json:"image"`
	IsFeatured  bool               `bson:"isFeatured" json:"isFeatured"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// ValidCategory vérifie l'appartenance à l'ensemble fermé.
func ValidCategory(c string) bool {
	for _, v := range ProductCategories {
		if v == c {
			return true
		}
	}
	return false
}

func ValidSubcategory(s string) bool {
	for _, v := range ProductSubcategories {
		if v == s {
			return true
		}
	}
	return false
}
