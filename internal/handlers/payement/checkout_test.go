package payement

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"inkora_back_end/internal/models"
	"inkora_back_end/internal/orders"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v83"
)

type mockStore struct {
	orders map[string]*models.Order
	saves  int
}

func newMockStore() *mockStore {
	return &mockStore{orders: map[string]*models.Order{}}
}

func (m *mockStore) Insert(_ context.Context, o *models.Order) error {
	cp := *o
	m.orders[o.ID.String()] = &cp
	return nil
}

func (m *mockStore) GetByID(_ context.Context, id string) (*models.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, orders.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockStore) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	var out []models.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockStore) ListAll(_ context.Context) ([]models.Order, error) {
	var out []models.Order
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (m *mockStore) Save(_ context.Context, o *models.Order) error {
	if _, ok := m.orders[o.ID.String()]; !ok {
		return orders.ErrNotFound
	}
	m.saves++
	cp := *o
	m.orders[o.ID.String()] = &cp
	return nil
}

func (m *mockStore) Delete(_ context.Context, id string) error {
	delete(m.orders, id)
	return nil
}

func (m *mockStore) single(t *testing.T) *models.Order {
	t.Helper()
	require.Len(t, m.orders, 1)
	for _, o := range m.orders {
		return o
	}
	return nil
}

func setupCheckout(t *testing.T) *mockStore {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMockStore()
	prev := orders.Default
	orders.Default = store
	t.Cleanup(func() { orders.Default = prev })
	return store
}

func checkoutRouter(userID string) *gin.Engine {
	r := gin.New()
	r.POST("/stripe/create-checkout-session", func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
		}
		CreateCheckoutSession(c)
	})
	return r
}

const checkoutBody = `{
	"items": [
		{"productID": "p1", "name": "T-shirt", "unitPriceCents": 2500, "quantity": 2}
	],
	"shippingInfo": {
		"name": "Alice Dupont",
		"email": "alice@example.com",
		"address": "1 rue de la Paix",
		"city": "Paris",
		"postal_code": "75002",
		"country": "FR"
	},
	"sessionID": "sess-abc"
}`

func TestCreateCheckoutSession(t *testing.T) {
	store := setupCheckout(t)

	var captured *stripe.CheckoutSessionParams
	prev := newCheckoutSession
	newCheckoutSession = func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		captured = params
		return &stripe.CheckoutSession{ID: "cs_test_123", URL: "https://checkout.stripe.test/cs_test_123"}, nil
	}
	t.Cleanup(func() { newCheckoutSession = prev })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/stripe/create-checkout-session", strings.NewReader(checkoutBody))
	checkoutRouter("user-1").ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		SessionID string `json:"sessionId"`
		URL       string `json:"url"`
		OrderID   string `json:"orderId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "cs_test_123", resp.SessionID)
	assert.NotEmpty(t, resp.URL)

	// La commande pending est créée avant l'appel Stripe, prix figés
	o := store.single(t)
	assert.Equal(t, resp.OrderID, o.ID.String())
	assert.Equal(t, "user-1", o.UserID)
	assert.Equal(t, models.OrderStatusPending, o.Status)
	assert.Equal(t, models.PaymentStatusPending, o.Payment.PaymentStatus)
	assert.Equal(t, int64(5000), o.TotalCents)
	require.Len(t, o.Lines, 1)
	assert.Equal(t, int64(2500), o.Lines[0].UnitPriceCents)
	assert.Equal(t, 2, o.Lines[0].Quantity)

	// La session Stripe porte l'order_id et le panier à purger en metadata
	require.NotNil(t, captured)
	assert.Equal(t, resp.OrderID, captured.Metadata["order_id"])
	assert.Equal(t, "sess-abc", captured.Metadata["cart_session"])
	require.Len(t, captured.LineItems, 1)
	assert.Equal(t, int64(2500), *captured.LineItems[0].PriceData.UnitAmount)
	assert.Equal(t, int64(2), *captured.LineItems[0].Quantity)
}

func TestCreateCheckoutSessionGuest(t *testing.T) {
	store := setupCheckout(t)

	prev := newCheckoutSession
	newCheckoutSession = func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		return &stripe.CheckoutSession{ID: "cs_test_456", URL: "https://checkout.stripe.test/cs_test_456"}, nil
	}
	t.Cleanup(func() { newCheckoutSession = prev })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/stripe/create-checkout-session", strings.NewReader(checkoutBody))
	checkoutRouter("").ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.single(t).UserID, "achat invité : pas de user_id")
}

func TestCreateCheckoutSessionEmptyCart(t *testing.T) {
	setupCheckout(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/stripe/create-checkout-session",
		strings.NewReader(`{"items": [], "shippingInfo": {"name": "A", "email": "a@b.c", "address": "x", "city": "y", "postal_code": "1", "country": "FR"}}`))
	checkoutRouter("user-1").ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCheckoutSessionInvalidQuantity(t *testing.T) {
	store := setupCheckout(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/stripe/create-checkout-session",
		strings.NewReader(`{
			"items": [{"productID": "p1", "name": "T-shirt", "unitPriceCents": 2500, "quantity": -1}],
			"shippingInfo": {"name": "A", "email": "a@b.c", "address": "x", "city": "y", "postal_code": "1", "country": "FR"}
		}`))
	checkoutRouter("user-1").ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.orders)
}

func TestCreateCheckoutSessionStripeFailureKeepsOrder(t *testing.T) {
	store := setupCheckout(t)

	prev := newCheckoutSession
	newCheckoutSession = func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		return nil, errors.New("stripe indisponible")
	}
	t.Cleanup(func() { newCheckoutSession = prev })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/stripe/create-checkout-session", strings.NewReader(checkoutBody))
	checkoutRouter("user-1").ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// Pas de rollback : la commande pending reste, nettoyable par rétention
	assert.Equal(t, models.OrderStatusPending, store.single(t).Status)
}

func TestCalcTotalCents(t *testing.T) {
	lines := []models.OrderLine{
		{UnitPriceCents: 2500, Quantity: 2},
		{UnitPriceCents: 100, Quantity: 3},
	}
	assert.Equal(t, int64(5300), calcTotalCents(lines))
	assert.Equal(t, int64(0), calcTotalCents(nil))
}
