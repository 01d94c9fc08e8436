package payement

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/promotioncode"
)

// ValidateCoupon vérifie si un code promo est valide
// GET /stripe/validate-coupon?code=
func ValidateCoupon(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code requis"})
		return
	}

	// Les codes promo vivent côté Stripe, la remise est appliquée par la
	// session checkout. Le total local reste le total catalogue figé.
	params := &stripe.PromotionCodeListParams{}
	params.Filters.AddFilter("code", "", code)
	params.Filters.AddFilter("active", "", "true")

	iter := promotioncode.List(params)
	if !iter.Next() {
		c.JSON(http.StatusNotFound, gin.H{
			"valid": false,
			"error": "Code invalide ou expiré",
		})
		return
	}

	promo := iter.PromotionCode()

	response := gin.H{
		"valid":  true,
		"code":   code,
		"active": promo.Active,
		"id":     promo.ID,
	}

	if promo.ExpiresAt > 0 {
		response["expires_at"] = promo.ExpiresAt
	}
	if promo.MaxRedemptions > 0 {
		response["max_redemptions"] = promo.MaxRedemptions
		response["times_redeemed"] = promo.TimesRedeemed
	}

	c.JSON(http.StatusOK, response)
}
