package httpserver

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/esscera_store/internal/events"
	"github.com/Skotchmaster/esscera_store/internal/models"
	"github.com/Skotchmaster/esscera_store/internal/testutil"
)

func checkout(method string) map[string]string {
	return map[string]string{
		"paymentMethod": method,
		"firstName":     "Ann",
		"lastName":      "Lee",
		"email":         "ann@example.com",
		"phone":         "+21655000000",
		"address":       "1 Main St",
		"city":          "Tunis",
		"postalCode":    "1000",
		"country":       "TN",
	}
}

func TestPlaceOrder(t *testing.T) {
	s := newServer(t)
	_, token := s.login(t, "ann", models.RoleUser)
	p := testutil.CreateProduct(t, s.db, "Oud", "90")

	rec := s.do(t, call{method: http.MethodPost, path: "/api/orders", body: checkout("WHATSAPP")})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Please login to place an order", errorOf(t, rec))

	rec = s.do(t, call{method: http.MethodPost, path: "/api/orders", token: token, body: checkout("WHATSAPP")})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cart is empty", errorOf(t, rec))

	rec = s.do(t, call{method: http.MethodPost, path: "/api/cart", token: token, body: map[string]any{"productId": p.ID, "quantity": 2}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, call{method: http.MethodPost, path: "/api/orders", token: token, body: checkout("whatsapp")})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	order := body["order"].(map[string]any)
	assert.Equal(t, "PENDING", order["status"])
	assert.Equal(t, "200", order["total"])
	assert.True(t, strings.HasPrefix(body["whatsapp_url"].(string), "https://wa.me/21698000000?text="))

	msgs := s.events.Messages()
	require.NotEmpty(t, msgs)
	assert.Equal(t, events.TopicOrders, msgs[len(msgs)-1].Topic)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/cart", token: token})
	assert.Equal(t, []any{}, decode(t, rec)["items"])
}

func TestOrders_Access(t *testing.T) {
	s := newServer(t)
	_, owner := s.login(t, "ann", models.RoleUser)
	_, other := s.login(t, "bob", models.RoleUser)
	_, admin := s.login(t, "root", models.RoleAdmin)
	p := testutil.CreateProduct(t, s.db, "Oud", "250")

	s.do(t, call{method: http.MethodPost, path: "/api/cart", token: owner, body: map[string]any{"productId": p.ID}})
	rec := s.do(t, call{method: http.MethodPost, path: "/api/orders", token: owner, body: checkout("WHATSAPP")})
	require.Equal(t, http.StatusOK, rec.Code)
	id := decode(t, rec)["order"].(map[string]any)["id"].(string)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/orders/" + id, token: other})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", errorOf(t, rec))

	rec = s.do(t, call{method: http.MethodGet, path: "/api/orders/" + id, token: owner})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, call{method: http.MethodGet, path: "/api/orders", token: other})
	assert.Equal(t, []any{}, decode(t, rec)["orders"])
	rec = s.do(t, call{method: http.MethodGet, path: "/api/orders", token: admin})
	assert.Len(t, decode(t, rec)["orders"], 1)

	rec = s.do(t, call{method: http.MethodPut, path: "/api/orders/" + id, token: owner, body: map[string]string{"status": "COMPLETED"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, call{method: http.MethodPut, path: "/api/orders/" + id, token: admin, body: map[string]string{"status": "shipped"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, call{method: http.MethodPut, path: "/api/orders/" + id, token: admin, body: map[string]string{"status": "completed"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "COMPLETED", decode(t, rec)["order"].(map[string]any)["status"])

	rec = s.do(t, call{method: http.MethodGet, path: "/api/orders/8a4c1a1e-52d3-4c89-9f3e-5d0f1b0f7a11", token: admin})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Order not found", errorOf(t, rec))
}
