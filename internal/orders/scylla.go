package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"inkora_back_end/internal/database"
	"inkora_back_end/internal/models"

	"github.com/gocql/gocql"
)

// ScyllaStore : implémentation Store sur le keyspace orders.
// Deux tables dénormalisées : orders (par order_id) et orders_by_user
// (partition par user_id, clustering created_at DESC).
type ScyllaStore struct{}

func NewScyllaStore() *ScyllaStore {
	return &ScyllaStore{}
}

const orderColumns = `order_id, user_id, lines, shipping, total_cents, currency, status,
	stripe_session_id, payment_status, payment_date, created_at, updated_at`

func (s *ScyllaStore) Insert(ctx context.Context, o *models.Order) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	linesJSON, err := json.Marshal(o.Lines)
	if err != nil {
		return fmt.Errorf("erreur sérialisation lignes: %v", err)
	}
	shippingJSON, err := json.Marshal(o.Shipping)
	if err != nil {
		return fmt.Errorf("erreur sérialisation adresse: %v", err)
	}

	err = session.Query(`INSERT INTO orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.UserID, string(linesJSON), string(shippingJSON), o.TotalCents, o.Currency,
		o.Status, o.Payment.StripeSessionID, o.Payment.PaymentStatus, o.Payment.PaymentDate,
		o.CreatedAt, o.UpdatedAt).WithContext(ctx).Exec()
	if err != nil {
		return err
	}

	// Table de lecture par utilisateur, uniquement pour les commandes possédées
	if o.UserID != "" {
		err = session.Query(`INSERT INTO orders_by_user (user_id, created_at, order_id, status, total_cents, currency)
			VALUES (?, ?, ?, ?, ?, ?)`,
			o.UserID, o.CreatedAt, o.ID, o.Status, o.TotalCents, o.Currency).WithContext(ctx).Exec()
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *ScyllaStore) GetByID(ctx context.Context, id string) (*models.Order, error) {
	orderUUID, err := gocql.ParseUUID(id)
	if err != nil {
		return nil, ErrNotFound
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var (
		o                      models.Order
		linesJSON, shippingJSON string
		paymentDate            time.Time
	)

	err = session.Query(`SELECT `+orderColumns+` FROM orders WHERE order_id = ?`, orderUUID).
		WithContext(ctx).Scan(
		&o.ID, &o.UserID, &linesJSON, &shippingJSON, &o.TotalCents, &o.Currency, &o.Status,
		&o.Payment.StripeSessionID, &o.Payment.PaymentStatus, &paymentDate,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal([]byte(linesJSON), &o.Lines); err != nil {
		return nil, fmt.Errorf("erreur désérialisation lignes: %v", err)
	}
	if err := json.Unmarshal([]byte(shippingJSON), &o.Shipping); err != nil {
		return nil, fmt.Errorf("erreur désérialisation adresse: %v", err)
	}
	if !paymentDate.IsZero() {
		o.Payment.PaymentDate = &paymentDate
	}

	return &o, nil
}

func (s *ScyllaStore) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	// orders_by_user est clusterisée created_at DESC : l'ordre vient de la base
	iter := session.Query(`SELECT order_id FROM orders_by_user WHERE user_id = ?`, userID).
		WithContext(ctx).Iter()

	var ids []gocql.UUID
	var id gocql.UUID
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(ids))
	for _, id := range ids {
		o, err := s.GetByID(ctx, id.String())
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		orders = append(orders, *o)
	}

	return orders, nil
}

func (s *ScyllaStore) ListAll(ctx context.Context) ([]models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT ` + orderColumns + ` FROM orders`).WithContext(ctx).Iter()

	var orders []models.Order
	for {
		var (
			o                      models.Order
			linesJSON, shippingJSON string
			paymentDate            time.Time
		)
		if !iter.Scan(&o.ID, &o.UserID, &linesJSON, &shippingJSON, &o.TotalCents, &o.Currency,
			&o.Status, &o.Payment.StripeSessionID, &o.Payment.PaymentStatus, &paymentDate,
			&o.CreatedAt, &o.UpdatedAt) {
			break
		}
		if json.Unmarshal([]byte(linesJSON), &o.Lines) != nil {
			continue
		}
		_ = json.Unmarshal([]byte(shippingJSON), &o.Shipping)
		if !paymentDate.IsZero() {
			o.Payment.PaymentDate = &paymentDate
		}
		orders = append(orders, o)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	// Cassandra ne trie pas entre partitions, on trie ici
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	return orders, nil
}

func (s *ScyllaStore) Save(ctx context.Context, o *models.Order) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	err = session.Query(`UPDATE orders SET status = ?, stripe_session_id = ?, payment_status = ?,
		payment_date = ?, updated_at = ? WHERE order_id = ?`,
		o.Status, o.Payment.StripeSessionID, o.Payment.PaymentStatus, o.Payment.PaymentDate,
		o.UpdatedAt, o.ID).WithContext(ctx).Exec()
	if err != nil {
		return err
	}

	if o.UserID != "" {
		err = session.Query(`UPDATE orders_by_user SET status = ? WHERE user_id = ? AND created_at = ? AND order_id = ?`,
			o.Status, o.UserID, o.CreatedAt, o.ID).WithContext(ctx).Exec()
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *ScyllaStore) Delete(ctx context.Context, id string) error {
	o, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	if err := session.Query(`DELETE FROM orders WHERE order_id = ?`, o.ID).WithContext(ctx).Exec(); err != nil {
		return err
	}

	if o.UserID != "" {
		err = session.Query(`DELETE FROM orders_by_user WHERE user_id = ? AND created_at = ? AND order_id = ?`,
			o.UserID, o.CreatedAt, o.ID).WithContext(ctx).Exec()
		if err != nil {
			return err
		}
	}

	return nil
}
