package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"inkora_back_end/internal/database"
	"inkora_back_end/internal/models"
	"inkora_back_end/internal/orders"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	orders map[string]*models.Order
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
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockStore) Save(_ context.Context, o *models.Order) error {
	if _, ok := m.orders[o.ID.String()]; !ok {
		return orders.ErrNotFound
	}
	cp := *o
	m.orders[o.ID.String()] = &cp
	return nil
}

func (m *mockStore) Delete(_ context.Context, id string) error {
	if _, ok := m.orders[id]; !ok {
		return orders.ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

// setupTest branche le mock sur le magasin global et un client Redis qui
// échoue vite (le publish de suivi est non bloquant)
func setupTest(t *testing.T) *mockStore {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMockStore()
	prevStore := orders.Default
	prevRedis := database.Redis
	orders.Default = store
	database.Redis = redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() {
		orders.Default = prevStore
		database.Redis = prevRedis
	})
	return store
}

func newRouter(userID, role string) *gin.Engine {
	r := gin.New()
	claims := func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
			c.Set("role", role)
		}
	}
	r.GET("/order/my-orders", claims, GetMyOrders)
	r.GET("/order/public/:orderId", GetPublicOrder)
	r.GET("/order/:orderId", claims, GetOrderByID)
	r.GET("/order", claims, GetAllOrders)
	r.PUT("/order/:orderId/status", claims, UpdateOrderStatus)
	r.DELETE("/order/:orderId", claims, DeleteOrder)
	return r
}

func seedOrder(t *testing.T, store *mockStore, userID, status string) *models.Order {
	t.Helper()
	now := time.Now()
	o := &models.Order{
		ID:     gocql.UUID(uuid.New()),
		UserID: userID,
		Lines: []models.OrderLine{
			{ProductID: "p1", Name: "T-shirt", UnitPriceCents: 2500, Quantity: 2},
		},
		Shipping:   models.ShippingInfo{Name: "Alice Dupont", Address: "1 rue de la Paix"},
		TotalCents: 5000,
		Currency:   "eur",
		Status:     status,
		Payment:    models.PaymentInfo{PaymentStatus: models.PaymentStatusPending},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, store.Insert(context.Background(), o))
	return o
}

func TestGetMyOrders(t *testing.T) {
	store := setupTest(t)
	seedOrder(t, store, "user-1", models.OrderStatusPending)
	seedOrder(t, store, "user-1", models.OrderStatusDelivered)
	seedOrder(t, store, "user-2", models.OrderStatusPending)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/order/my-orders", nil)
	newRouter("user-1", "customer").ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Orders []models.Order `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Orders, 2)
	for _, o := range body.Orders {
		assert.Equal(t, "user-1", o.UserID)
	}
}

func TestGetOrderByIDOwner(t *testing.T) {
	store := setupTest(t)
	o := seedOrder(t, store, "user-1", models.OrderStatusPending)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/order/"+o.ID.String(), nil)
	newRouter("user-1", "customer").ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, int64(5000), got.TotalCents)
}

func TestGetOrderByIDForbiddenForOtherUser(t *testing.T) {
	store := setupTest(t)
	o := seedOrder(t, store, "user-1", models.OrderStatusPending)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/order/"+o.ID.String(), nil)
	newRouter("user-2", "customer").ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetOrderByIDGuestOrderForbiddenForCustomer(t *testing.T) {
	store := setupTest(t)
	o := seedOrder(t, store, "", models.OrderStatusPending) // commande invitée

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/order/"+o.ID.String(), nil)
	newRouter("user-1", "customer").ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetOrderByIDAdminSeesAll(t *testing.T) {
	store := setupTest(t)
	o := seedOrder(t, store, "user-1", models.OrderStatusPending)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/order/"+o.ID.String(), nil)
	newRouter("admin-1", "admin").ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetOrderByIDNotFound(t *testing.T) {
	setupTest(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/order/"+gocql.UUID(uuid.New()).String(), nil)
	newRouter("user-1", "customer").ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPublicOrderHidesShippingAndPayment(t *testing.T) {
	store := setupTest(t)
	o := seedOrder(t, store, "user-1", models.OrderStatusShipped)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/order/public/"+o.ID.String(), nil)
	newRouter("", "").ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.OrderStatusShipped, got["status"])
	assert.NotContains(t, got, "shipping")
	assert.NotContains(t, got, "payment")
	assert.NotContains(t, got, "user_id")
}

func TestUpdateOrderStatusLegal(t *testing.T) {
	store := setupTest(t)
	o := seedOrder(t, store, "user-1", models.OrderStatusPending)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/order/"+o.ID.String()+"/status",
		strings.NewReader(`{"status":"processing"}`))
	newRouter("admin-1", "admin").ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	got, err := store.GetByID(context.Background(), o.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, got.Status)
}

func TestUpdateOrderStatusUnknownStatus(t *testing.T) {
	store := setupTest(t)
	o := seedOrder(t, store, "user-1", models.OrderStatusPending)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/order/"+o.ID.String()+"/status",
		strings.NewReader(`{"status":"paid"}`))
	newRouter("admin-1", "admin").ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	// La réponse liste les statuts acceptés
	var body struct {
		ValidStatuses []string `json:"valid_statuses"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.ValidStatuses, models.OrderStatusShipped)

	got, err := store.GetByID(context.Background(), o.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, got.Status, "rien n'est écrit sur un statut refusé")
}

func TestUpdateOrderStatusIllegalTransition(t *testing.T) {
	store := setupTest(t)
	o := seedOrder(t, store, "user-1", models.OrderStatusDelivered)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/order/"+o.ID.String()+"/status",
		strings.NewReader(`{"status":"cancelled"}`))
	newRouter("admin-1", "admin").ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	got, err := store.GetByID(context.Background(), o.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, got.Status)
}

func TestUpdateOrderStatusNotFound(t *testing.T) {
	setupTest(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/order/"+gocql.UUID(uuid.New()).String()+"/status",
		strings.NewReader(`{"status":"processing"}`))
	newRouter("admin-1", "admin").ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteOrder(t *testing.T) {
	store := setupTest(t)
	o := seedOrder(t, store, "user-1", models.OrderStatusCancelled)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/order/"+o.ID.String(), nil)
	newRouter("admin-1", "admin").ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	_, err := store.GetByID(context.Background(), o.ID.String())
	assert.ErrorIs(t, err, orders.ErrNotFound)

	// Deuxième suppression : 404
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/order/"+o.ID.String(), nil)
	newRouter("admin-1", "admin").ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
