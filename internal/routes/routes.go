package routes

import (
	"os"
	"strings"

	"inkora_back_end/internal/handlers"
	"inkora_back_end/internal/handlers/cart"
	"inkora_back_end/internal/handlers/order"
	"inkora_back_end/internal/handlers/payement"
	"inkora_back_end/internal/handlers/product"
	"inkora_back_end/internal/handlers/user"
	"inkora_back_end/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// CORS : origines du front depuis .env, credentials pour le bearer
	corsConfig := cors.DefaultConfig()
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		corsConfig.AllowOrigins = strings.Split(origins, ",")
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "Stripe-Signature")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	// ---------- Panier (scopé par jeton de session, pas d'auth) ----------
	c := r.Group("/cart", middleware.APIRateLimit())
	{
		c.POST("/addToCart", cart.AddToCart)
		c.GET("/getCart", cart.GetCart)
		c.PUT("/updateCart", cart.UpdateCart)
		c.DELETE("/removeFromCart", cart.RemoveFromCart)
		c.DELETE("/clearCart", cart.ClearCart)
	}

	// ---------- Stripe ----------
	s := r.Group("/stripe")
	{
		// Bearer optionnel : l'achat invité est permis
		s.POST("/create-checkout-session", middleware.APIRateLimit(), middleware.OptionalAuth(), payement.CreateCheckoutSession)
		// Authentifié par la signature Stripe, jamais par un bearer.
		// Pas de rate limit : un 429 serait pris pour un endpoint cassé
		// et Stripe suspendrait les livraisons.
		s.POST("/webhook", payement.StripeWebhook)
		s.GET("/checkout-status/:sessionId", middleware.APIRateLimit(), payement.CheckoutStatus)
		s.GET("/validate-coupon", middleware.APIRateLimit(), payement.ValidateCoupon)
	}

	// ---------- Commandes ----------
	o := r.Group("/order", middleware.APIRateLimit())
	{
		o.GET("/my-orders", middleware.AuthRequired(), order.GetMyOrders)
		o.GET("/public/:orderId", order.GetPublicOrder)
		o.GET("/:orderId/track", order.TrackOrderWS)
		o.GET("/:orderId", middleware.AuthRequired(), order.GetOrderByID)

		admin := o.Group("", middleware.AuthRequired(), middleware.RequireAdmin)
		{
			admin.GET("", order.GetAllOrders)
			admin.PUT("/:orderId/status", order.UpdateOrderStatus)
			admin.POST("/:orderId/refund", order.RefundOrder)
			admin.DELETE("/:orderId", order.DeleteOrder)
		}
	}

	// ---------- Catalogue ----------
	p := r.Group("/products", middleware.APIRateLimit())
	{
		p.GET("", product.GetAllProducts)
		p.GET("/search", product.SearchProducts)
		p.GET("/:id", product.GetProduct)
		p.POST("", middleware.AuthRequired(), middleware.RequireAdmin, product.CreateProduct)
		p.DELETE("/:id", middleware.AuthRequired(), middleware.RequireAdmin, product.DeleteProduct)
	}

	// ---------- Auth ----------
	a := r.Group("/auth", middleware.APIRateLimit())
	{
		a.POST("/register", middleware.RegisterRateLimit(), user.Register)
		a.POST("/login", middleware.LoginRateLimit(), user.Login)
		a.GET("/:provider", handlers.BeginAuth)
		a.GET("/:provider/callback", handlers.CallbackAuth)
	}
}
