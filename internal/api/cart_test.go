package api

import (
	"net/http"
	"strings"
	"testing"

	"bistro/internal/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getCart(t *testing.T, a *RestaurantAPI, sessionID string) models.Cart {
	t.Helper()
	w := doRequest(t, a.Router, "GET", "/api/cart/"+sessionID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var cart models.Cart
	decode(t, w, &cart)
	return cart
}

func TestGetCartCreatesEmptyCart(t *testing.T) {
	a := newTestAPI(t, nil, Options{})

	w := doRequest(t, a.Router, "GET", "/api/cart/fresh", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var raw map[string]interface{}
	decode(t, w, &raw)
	assert.Equal(t, []interface{}{}, raw["items"])
	assert.Equal(t, "fresh", raw["sessionId"])

	first := getCart(t, a, "fresh")
	second := getCart(t, a, "fresh")
	assert.Equal(t, first.ID, second.ID)
}

func TestSaveCartReplacesItems(t *testing.T) {
	a := newTestAPI(t, nil, Options{})

	body := map[string]interface{}{"items": []map[string]interface{}{
		{"name": "Fries", "price": 2.49, "quantity": 2},
		{"name": "Soda", "price": 1.5, "quantity": 1},
	}}
	w := doRequest(t, a.Router, "POST", "/api/cart/s1", body)
	require.Equal(t, http.StatusOK, w.Code)
	var cart models.Cart
	decode(t, w, &cart)
	assert.Len(t, cart.Items, 2)

	w = doRequest(t, a.Router, "POST", "/api/cart/s1", map[string]interface{}{"items": []interface{}{}})
	require.Equal(t, http.StatusOK, w.Code)

	cart = getCart(t, a, "s1")
	assert.Empty(t, cart.Items)

	expected := `
# HELP carts_synced_total Cart replacements received from clients
# TYPE carts_synced_total counter
carts_synced_total 2
`
	assert.NoError(t, testutil.GatherAndCompare(a.Monitor.Registry(), strings.NewReader(expected), "carts_synced_total"))
}

func TestSaveCartValidation(t *testing.T) {
	a := newTestAPI(t, nil, Options{})

	body := map[string]interface{}{"items": []map[string]interface{}{
		{"name": "Fries", "price": 2.49, "quantity": 0},
	}}
	w := doRequest(t, a.Router, "POST", "/api/cart/s1", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "must be at least 1", resp.Fields["items[0].quantity"])
}

func TestClearCartIsIdempotent(t *testing.T) {
	a := newTestAPI(t, nil, Options{})

	doRequest(t, a.Router, "POST", "/api/cart/s1", map[string]interface{}{"items": []map[string]interface{}{
		{"name": "Tea", "price": 2, "quantity": 1},
	}})

	w := doRequest(t, a.Router, "DELETE", "/api/cart/s1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doRequest(t, a.Router, "DELETE", "/api/cart/s1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doRequest(t, a.Router, "DELETE", "/api/cart/never-seen", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Empty(t, getCart(t, a, "s1").Items)
}
