package routes

import (
	"vetra_back_end/internal/handlers/payement"
	"vetra_back_end/internal/handlers/product"
	"vetra_back_end/internal/handlers/user"
	"vetra_back_end/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Auth et profil (wishlist comprise, portée par le document utilisateur)
	auth := r.Group("/api/auth")
	{
		auth.POST("/signup", middleware.SignupRateLimit(), user.Signup)
		auth.POST("/login", middleware.LoginRateLimit(), user.Login)
		auth.POST("/logout", user.Logout)

		auth.GET("/checkAuth", middleware.AuthRequired(), user.CheckAuth)
		auth.GET("/profile", middleware.AuthRequired(), user.Profile)
		auth.PUT("/updateProfile", middleware.AuthRequired(), user.UpdateProfile)

		auth.PUT("/likeUnlike/:id", middleware.AuthRequired(), user.ToggleWishlist)
		auth.GET("/userWishlist", middleware.AuthRequired(), user.GetWishlist)
	}

	// Produits
	products := r.Group("/api/products")
	{
		products.GET("/allProducts", product.All)
		products.GET("/featuredProducts", product.Featured)
		products.GET("/productDetails/:id", product.Details)
		products.GET("/search", product.Search)

		products.POST("/create", middleware.AuthRequired(), middleware.RequireAdmin, product.Create)
		products.GET("/getUserProducts", middleware.AuthRequired(), middleware.RequireAdmin, product.Mine)
		products.PUT("/isFeatured", middleware.AuthRequired(), middleware.RequireAdmin, product.SetFeatured)
		products.DELETE("/deleteProduct/:id", middleware.AuthRequired(), middleware.RequireAdmin, product.Delete)
	}

	// Panier
	carts := r.Group("/api/carts", middleware.AuthRequired())
	{
		carts.POST("/add", user.AddToCart)
		carts.POST("/decrease", user.DecreaseQuantity)
		carts.DELETE("/remove", user.RemoveFromCart)
		carts.DELETE("/clear", user.ClearCart)
		carts.GET("/getCart", user.GetCart)
	}

	// Paiement et commandes
	checkout := r.Group("/api/checkout")
	{
		// Le webhook Stripe est signé, pas de cookie JWT
		checkout.POST("/webhook", payement.StripeWebhook)

		checkout.POST("/create-checkout-session", middleware.AuthRequired(), payement.CreateCheckoutSession)
		checkout.POST("/create-order", middleware.AuthRequired(), payement.CreateOrder)
		checkout.GET("/userOrder", middleware.AuthRequired(), payement.MyOrders)

		checkout.GET("/ownerOrder", middleware.AuthRequired(), middleware.RequireAdmin, payement.OwnerOrders)
		checkout.PUT("/updateStatus", middleware.AuthRequired(), middleware.RequireAdmin, payement.UpdateStatus)
	}
}
