package orders

import (
	"context"
	"log"
	"time"

	"inkora_back_end/internal/models"
)

// Transition : unique point d'entrée pour changer le statut d'une commande.
// Valide que le nouveau statut existe et que la transition est légale depuis
// l'état courant avant d'écrire quoi que ce soit.
func Transition(ctx context.Context, store Store, orderID, newStatus string) (*models.Order, error) {
	if !models.IsValidOrderStatus(newStatus) {
		return nil, ErrInvalidStatus
	}

	o, err := store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Réappliquer le même statut est un no-op
	if o.Status == newStatus {
		return o, nil
	}

	if !models.CanTransition(o.Status, newStatus) {
		return nil, ErrIllegalTransition
	}

	o.Status = newStatus
	o.UpdatedAt = time.Now()

	if err := store.Save(ctx, o); err != nil {
		return nil, err
	}

	return o, nil
}

// ApplyCheckoutCompleted finalise une commande après un paiement réussi.
// Idempotent : Stripe livre les webhooks au moins une fois, une redélivrance
// retrouve les mêmes champs terminaux et ne réécrit rien.
// Retourne (commande, true) si une écriture a eu lieu.
func ApplyCheckoutCompleted(ctx context.Context, store Store, orderID, stripeSessionID string, paidAt time.Time) (*models.Order, bool, error) {
	o, err := store.GetByID(ctx, orderID)
	if err != nil {
		return nil, false, err
	}

	if o.Payment.PaymentStatus == models.PaymentStatusCompleted {
		log.Printf("🔁 Commande %s déjà finalisée, on ignore.", orderID)
		return o, false, nil
	}

	o.Payment.StripeSessionID = stripeSessionID
	o.Payment.PaymentStatus = models.PaymentStatusCompleted
	o.Payment.PaymentDate = &paidAt
	if models.CanTransition(o.Status, models.OrderStatusProcessing) {
		o.Status = models.OrderStatusProcessing
	}
	o.UpdatedAt = time.Now()

	if err := store.Save(ctx, o); err != nil {
		return nil, false, err
	}

	return o, true, nil
}

// ApplyCheckoutExpired marque le paiement échoué quand la session Stripe
// expire sans paiement. La commande repasse en cancelled si c'est légal.
func ApplyCheckoutExpired(ctx context.Context, store Store, orderID, stripeSessionID string) error {
	o, err := store.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	// Un paiement déjà abouti ne peut pas être invalidé par une expiration
	if o.Payment.PaymentStatus == models.PaymentStatusCompleted {
		return nil
	}
	if o.Payment.PaymentStatus == models.PaymentStatusFailed {
		return nil
	}

	o.Payment.StripeSessionID = stripeSessionID
	o.Payment.PaymentStatus = models.PaymentStatusFailed
	if models.CanTransition(o.Status, models.OrderStatusCancelled) {
		o.Status = models.OrderStatusCancelled
	}
	o.UpdatedAt = time.Now()

	return store.Save(ctx, o)
}

// ApplyRefunded enregistre un remboursement : paiement → refunded, et la
// commande repasse en cancelled si la table l'autorise encore.
func ApplyRefunded(ctx context.Context, store Store, orderID string) (*models.Order, error) {
	o, err := store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.Payment.PaymentStatus == models.PaymentStatusRefunded {
		return o, nil
	}

	o.Payment.PaymentStatus = models.PaymentStatusRefunded
	if models.CanTransition(o.Status, models.OrderStatusCancelled) {
		o.Status = models.OrderStatusCancelled
	}
	o.UpdatedAt = time.Now()

	if err := store.Save(ctx, o); err != nil {
		return nil, err
	}

	return o, nil
}
