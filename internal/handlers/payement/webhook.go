package payement

import (
	"encoding/json"
	"log"
	"net/http"
	"os"

	"vetra_back_end/internal/cache"
	"vetra_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// POST /api/checkout/webhook
// Source de vérité de la confirmation de paiement : Stripe nous notifie
// directement, sans dépendre du retour du client sur la page de succès.
// Un panier abandonné après paiement donne quand même sa commande.
func StripeWebhook(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := c.GetRawData()
	if err != nil {
		log.Println("❌ Lecture payload échouée:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Échec lecture body"})
		return
	}

	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	var event stripe.Event

	if secret == "" {
		log.Println("⚠️ Pas de STRIPE_WEBHOOK_SECRET — mode test")
		if err := json.Unmarshal(payload, &event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "JSON invalide"})
			return
		}
	} else {
		event, err = webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), secret)
		if err != nil {
			log.Println("❌ Signature Stripe invalide:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Signature invalide"})
			return
		}
	}

	log.Printf("📥 Événement Stripe reçu : %s", event.Type)
	handleStripeEvent(event)

	c.Status(http.StatusOK)
}

func handleStripeEvent(event stripe.Event) {
	if event.Type != "checkout.session.completed" {
		log.Printf("ℹ️ Événement ignoré : %s", event.Type)
		return
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		log.Println("❌ Erreur décodage CheckoutSession:", err)
		return
	}

	order, created, err := materializeOrder(&s, primitive.NilObjectID)
	if err != nil {
		log.Println("❌ Erreur matérialisation commande (webhook):", err)
		return
	}
	if !created {
		log.Println("🔁 Commande déjà enregistrée, on ignore.")
		return
	}

	log.Printf("✅ Commande %s créée via webhook pour la session %s", order.ID.Hex(), s.ID)

	cache.Invalidate(cache.CartKey(order.User.Hex()))

	// Confirmation par mail, sans bloquer la réponse au webhook
	go func() {
		if err := utils.SendOrderConfirmationEmail(order.ShippingAddress.Email, order); err != nil {
			log.Println("❌ Erreur envoi e-mail confirmation:", err)
		} else {
			log.Println("📧 E-mail de confirmation envoyé à", order.ShippingAddress.Email)
		}
	}()
}
