package orders

import (
	"context"
	"errors"

	"inkora_back_end/internal/models"
)

var (
	ErrNotFound          = errors.New("commande introuvable")
	ErrInvalidStatus     = errors.New("statut de commande inconnu")
	ErrIllegalTransition = errors.New("transition de statut non autorisée")
)

// Store : accès au magasin de commandes. L'implémentation ScyllaDB est
// branchée au démarrage, les tests injectent un mock.
type Store interface {
	Insert(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	// Save réécrit statut, paiement et updated_at d'une commande existante
	Save(ctx context.Context, o *models.Order) error
	Delete(ctx context.Context, id string) error
}

// Default : magasin global utilisé par les handlers
var Default Store
