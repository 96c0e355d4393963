package payement

import "math"

// unitAmount convertit un prix décimal en centimes pour Stripe.
// Arrondi au centime le plus proche : 19.99 donne bien 1999, jamais 1998.
func unitAmount(price float64) int64 {
	return int64(math.Round(price * 100))
}

// Livraison : tarif plat, offerte au-delà du seuil.
// Le seuil est strict : un sous-total d'exactement 1000 paie encore
// les frais, il faut le dépasser pour la gratuité.
const (
	FreeShippingThreshold = 1000.0
	FlatShippingFee       = 50.0
)

// ComputeShipping calcule les frais de livraison pour un sous-total.
func ComputeShipping(totalPrice float64) float64 {
	if totalPrice > FreeShippingThreshold {
		return 0
	}
	return FlatShippingFee
}
