package order

import (
	"errors"
	"log"
	"net/http"

	"inkora_back_end/internal/models"
	"inkora_back_end/internal/orders"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/checkout/session"
	"github.com/stripe/stripe-go/v83/refund"
)

// ✅ POST /order/:orderId/refund — rembourse le paiement Stripe (admin)
func RefundOrder(c *gin.Context) {
	orderID := c.Param("orderId")

	o, err := orders.Default.GetByID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commande"})
		return
	}

	if o.Payment.PaymentStatus != models.PaymentStatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Seul un paiement abouti peut être remboursé"})
		return
	}
	if o.Payment.StripeSessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucune session Stripe associée"})
		return
	}

	// Retrouver le PaymentIntent derrière la session checkout
	s, err := session.Get(o.Payment.StripeSessionID, nil)
	if err != nil || s.PaymentIntent == nil {
		log.Printf("❌ Session Stripe introuvable pour la commande %s: %v", orderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération session Stripe"})
		return
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(s.PaymentIntent.ID),
	}
	r, err := refund.New(params)
	if err != nil {
		log.Printf("❌ Erreur remboursement Stripe: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur remboursement"})
		return
	}

	updated, err := orders.ApplyRefunded(c.Request.Context(), orders.Default, orderID)
	if err != nil {
		// Le remboursement Stripe est parti : on loggue et on laisse
		// l'opérateur réconcilier
		log.Printf("⚠️ Remboursement %s effectué mais commande %s non mise à jour: %v", r.ID, orderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Remboursement effectué, mise à jour commande échouée"})
		return
	}

	log.Printf("💸 Commande %s remboursée (refund %s)", orderID, r.ID)

	c.JSON(http.StatusOK, gin.H{
		"message":   "Commande remboursée",
		"refund_id": r.ID,
		"order":     updated,
	})
}
