package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidOrderStatus(t *testing.T) {
	for _, s := range []string{
		OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled,
	} {
		assert.True(t, IsValidOrderStatus(s), s)
	}

	assert.False(t, IsValidOrderStatus("paid"))
	assert.False(t, IsValidOrderStatus("PENDING"))
	assert.False(t, IsValidOrderStatus(""))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusPending, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		// États terminaux : aucune sortie
		{OrderStatusDelivered, OrderStatusShipped, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusProcessing, false},
		// Réappliquer le même statut n'est pas une transition
		{OrderStatusPending, OrderStatusPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s → %s", tt.from, tt.to)
	}
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	assert.False(t, CanTransition("paid", OrderStatusProcessing))
	assert.False(t, CanTransition(OrderStatusPending, "paid"))
}

func TestOrderPublicProjection(t *testing.T) {
	now := time.Now()
	o := Order{
		UserID: "user-42",
		Lines: []OrderLine{
			{ProductID: "p1", Name: "T-shirt", UnitPriceCents: 2500, Quantity: 2},
		},
		Shipping: ShippingInfo{
			Name:    "Alice Dupont",
			Email:   "alice@example.com",
			Address: "1 rue de la Paix",
		},
		Payment: PaymentInfo{
			StripeSessionID: "cs_test_123",
			PaymentStatus:   PaymentStatusCompleted,
		},
		TotalCents: 5000,
		Currency:   "eur",
		Status:     OrderStatusProcessing,
		CreatedAt:  now,
	}

	pub := o.Public()

	assert.Equal(t, o.ID, pub.ID)
	assert.Equal(t, o.Lines, pub.Lines)
	assert.Equal(t, OrderStatusProcessing, pub.Status)
	assert.Equal(t, int64(5000), pub.TotalCents)
	assert.Equal(t, "eur", pub.Currency)
	assert.Equal(t, now, pub.CreatedAt)
}
