package payement

import (
	"log"
	"net/http"
	"os"
	"time"

	"inkora_back_end/internal/models"
	"inkora_back_end/internal/orders"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/checkout/session"
)

// newCheckoutSession est remplaçable dans les tests
var newCheckoutSession = func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return session.New(params)
}

type checkoutItem struct {
	ProductID      string `json:"productID" binding:"required"`
	Name           string `json:"name" binding:"required"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity" binding:"required"`
	ImageURL       string `json:"imageURL"`
}

type checkoutRequest struct {
	Items        []checkoutItem      `json:"items" binding:"required"`
	ShippingInfo models.ShippingInfo `json:"shippingInfo" binding:"required"`
	// Jeton de session panier : s'il est fourni, le webhook videra le
	// panier côté serveur après paiement
	SessionID string `json:"sessionID"`
}

// CreateCheckoutSession crée la commande pending puis la session Stripe.
// L'achat invité est permis : l'identité vient du bearer optionnel, jamais
// du body.
func CreateCheckoutSession(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requête invalide ou panier vide"})
		return
	}

	lines := make([]models.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 || item.UnitPriceCents < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Ligne de panier invalide: " + item.ProductID})
			return
		}
		lines = append(lines, models.OrderLine{
			ProductID:      item.ProductID,
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
			ImageURL:       item.ImageURL,
		})
	}

	userID := c.GetString("user_id") // vide pour un invité

	now := time.Now()
	order := models.Order{
		ID:         gocql.UUID(uuid.New()),
		UserID:     userID,
		Lines:      lines,
		Shipping:   req.ShippingInfo,
		TotalCents: calcTotalCents(lines),
		Currency:   "eur",
		Status:     models.OrderStatusPending,
		Payment: models.PaymentInfo{
			PaymentStatus: models.PaymentStatusPending,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	ctx := c.Request.Context()
	if err := orders.Default.Insert(ctx, &order); err != nil {
		log.Printf("❌ Erreur insertion commande: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création commande"})
		return
	}

	baseURL := os.Getenv("FRONTEND_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}

	orderID := order.ID.String()

	params := &stripe.CheckoutSessionParams{
		Mode:                stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:           buildLineItems(lines),
		SuccessURL:          stripe.String(baseURL + "/checkout/success?orderId=" + orderID),
		CancelURL:           stripe.String(baseURL + "/checkout/cancel?orderId=" + orderID),
		AllowPromotionCodes: stripe.Bool(true),
	}
	if req.ShippingInfo.Email != "" {
		params.CustomerEmail = stripe.String(req.ShippingInfo.Email)
	}
	// L'order_id en metadata est la clé de la résolution idempotente du webhook
	params.AddMetadata("order_id", orderID)
	if req.SessionID != "" {
		params.AddMetadata("cart_session", req.SessionID)
	}

	s, err := newCheckoutSession(params)
	if err != nil {
		// La commande pending reste en base sans session Stripe : incohérence
		// acceptée, nettoyable par rétention. Pas de rollback.
		log.Printf("❌ Erreur Stripe pour la commande %s: %v", orderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création session de paiement"})
		return
	}

	log.Printf("💳 Session checkout créée: %s (%.2f€) commande %s", s.ID, float64(order.TotalCents)/100, orderID)

	c.JSON(http.StatusOK, gin.H{
		"sessionId": s.ID,
		"url":       s.URL,
		"orderId":   orderID,
	})
}

// buildLineItems traduit les lignes snapshot en line items Stripe.
// Seule frontière où les centimes rencontrent l'API du prestataire.
func buildLineItems(lines []models.OrderLine) []*stripe.CheckoutSessionLineItemParams {
	items := make([]*stripe.CheckoutSessionLineItemParams, 0, len(lines))
	for _, line := range lines {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(line.Name),
		}
		if line.ImageURL != "" {
			product.Images = []*string{stripe.String(line.ImageURL)}
		}
		items = append(items, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String("eur"),
				ProductData: product,
				UnitAmount:  stripe.Int64(line.UnitPriceCents),
			},
			Quantity: stripe.Int64(int64(line.Quantity)),
		})
	}
	return items
}
