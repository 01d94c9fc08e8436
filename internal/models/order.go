package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Statuts de commande
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Statuts de paiement
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// orderStatusTransitions : table des transitions autorisées.
// Toute mutation de statut passe par CanTransition — jamais d'écriture directe.
var orderStatusTransitions = map[string][]string{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// IsValidOrderStatus vérifie que le statut fait partie de l'énumération
func IsValidOrderStatus(status string) bool {
	_, ok := orderStatusTransitions[status]
	return ok
}

// CanTransition vérifie qu'un passage from → to est autorisé par la table
func CanTransition(from, to string) bool {
	for _, next := range orderStatusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderLine : copie dénormalisée d'un produit au moment de la commande.
// Les prix sont figés à la création, jamais recalculés depuis le catalogue.
type OrderLine struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
	ImageURL       string `json:"image_url,omitempty"`
}

// PaymentInfo : état du paiement Stripe associé à la commande
type PaymentInfo struct {
	StripeSessionID string     `json:"stripe_session_id,omitempty"`
	PaymentStatus   string     `json:"payment_status"`
	PaymentDate     *time.Time `json:"payment_date,omitempty"`
}

// ShippingInfo : adresse de livraison saisie au checkout
type ShippingInfo struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

type Order struct {
	ID         gocql.UUID   `json:"id"`
	UserID     string       `json:"user_id,omitempty"` // vide = commande invitée
	Lines      []OrderLine  `json:"lines"`
	Shipping   ShippingInfo `json:"shipping"`
	Payment    PaymentInfo  `json:"payment"`
	TotalCents int64        `json:"total_cents"`
	Currency   string       `json:"currency"`
	Status     string       `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// PublicOrder : projection réduite pour le suivi sans authentification.
// Pas d'adresse ni de détails de paiement.
type PublicOrder struct {
	ID         gocql.UUID  `json:"id"`
	Lines      []OrderLine `json:"lines"`
	Status     string      `json:"status"`
	TotalCents int64       `json:"total_cents"`
	Currency   string      `json:"currency"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Public retourne la projection publique de la commande
func (o *Order) Public() PublicOrder {
	return PublicOrder{
		ID:         o.ID,
		Lines:      o.Lines,
		Status:     o.Status,
		TotalCents: o.TotalCents,
		Currency:   o.Currency,
		CreatedAt:  o.CreatedAt,
	}
}
