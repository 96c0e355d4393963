package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes crée les index uniques au démarrage.
// email unique sur users, stripe_id unique sur orders (anti-doublon de commande).
func EnsureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	_, err := Users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Println("⚠️ Index email non créé:", err)
	}

	_, err = Orders().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "stripe_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Println("⚠️ Index stripe_id non créé:", err)
	}

	_, err = Products().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		log.Println("⚠️ Index created_at non créé:", err)
	}

	log.Println("✅ Index MongoDB vérifiés")
}
