package cache

import (
	"context"
	"encoding/json"
	"time"

	"vetra_back_end/internal/database"
)

const (
	CartCacheTTL     = 10 * time.Minute
	WishlistCacheTTL = 10 * time.Minute
	FeaturedCacheTTL = time.Hour
)

// Clés Redis utilisées par les handlers.
func CartKey(userID string) string     { return "cart:" + userID }
func WishlistKey(userID string) string { return "wishlist:" + userID }

const FeaturedKey = "products:featured"

// GetJSON lit une valeur JSON en cache. Retourne false si absente ou illisible.
func GetJSON(key string, dest interface{}) bool {
	ctx := context.Background()
	data, err := database.Redis.Get(ctx, key).Result()
	if err != nil || data == "" {
		return false
	}
	return json.Unmarshal([]byte(data), dest) == nil
}

// SetJSON met une valeur JSON en cache. Les erreurs sont silencieuses :
// le cache est un accélérateur, jamais la source de vérité.
func SetJSON(key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	database.Redis.Set(context.Background(), key, data, ttl)
}

// Invalidate supprime une ou plusieurs clés.
func Invalidate(keys ...string) {
	if len(keys) == 0 {
		return
	}
	database.Redis.Del(context.Background(), keys...)
}
