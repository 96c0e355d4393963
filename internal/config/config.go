package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Load charge le fichier .env puis vérifie les variables indispensables.
func Load() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé")
	}

	required := []string{"MONGO_URI", "JWT_SECRET", "STRIPE_SECRET_KEY"}
	for _, name := range required {
		if os.Getenv(name) == "" {
			log.Fatalf("❌ Variable d'environnement manquante : %s", name)
		}
	}
}

// FrontendURL retourne l'URL du frontend pour les redirections Stripe.
func FrontendURL() string {
	if url := os.Getenv("FRONTEND_URL"); url != "" {
		return url
	}
	return "http://localhost:5173"
}

// AllowedOrigins retourne les origines autorisées pour CORS.
func AllowedOrigins() []string {
	raw := os.Getenv("ALLOWED_ORIGINS")
	if raw == "" {
		return []string{"http://localhost:5173"}
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
