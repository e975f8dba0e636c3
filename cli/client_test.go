package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApiClientBaseURL(t *testing.T) {
	t.Setenv("RESTAURANT_API_URL", "")
	assert.Equal(t, defaultBaseURL, NewApiClient("").BaseURL)

	t.Setenv("RESTAURANT_API_URL", "http://api.example:9000/")
	assert.Equal(t, "http://api.example:9000", NewApiClient("").BaseURL)

	assert.Equal(t, "http://other", NewApiClient("http://other").BaseURL)
}

func TestGetMenu(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/menu", r.URL.Path)
		w.Write([]byte(`[{"_id":"m1","name":"Soup","price":4.5,"category":"appetizer","available":true}]`))
	}))
	defer srv.Close()

	items, err := NewApiClient(srv.URL).GetMenu()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "m1", items[0].ID)
	assert.Equal(t, 4.5, items[0].Price)
}

func TestGetMenuError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Failed to fetch menu items"}`))
	}))
	defer srv.Close()

	_, err := NewApiClient(srv.URL).GetMenu()
	require.Error(t, err)
	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "Failed to fetch menu items", apiErr.Message)
}

func TestCartRequests(t *testing.T) {
	var saved map[string][]CartItem
	var deleted bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cart/session_1_abc", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`{"_id":"c1","sessionId":"session_1_abc","items":[{"name":"Soup","price":4.5,"quantity":2}]}`))
		case http.MethodPost:
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&saved))
			w.Write([]byte(`{}`))
		case http.MethodDelete:
			deleted = true
			w.Write([]byte(`{"message":"Cart cleared successfully"}`))
		}
	}))
	defer srv.Close()

	client := NewApiClient(srv.URL)

	cart, err := client.GetCart("session_1_abc")
	require.NoError(t, err)
	assert.Equal(t, []CartItem{{Name: "Soup", Price: 4.5, Quantity: 2}}, cart.Items)

	require.NoError(t, client.SaveCart("session_1_abc", nil))
	assert.Equal(t, []CartItem{}, saved["items"])

	require.NoError(t, client.ClearCart("session_1_abc"))
	assert.True(t, deleted)
}

func TestPlaceOrder(t *testing.T) {
	var got OrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"_id":"o1","status":"pending","totalPrice":9}`))
	}))
	defer srv.Close()

	order, err := NewApiClient(srv.URL).PlaceOrder(OrderRequest{
		Items:        []CartItem{{Name: "Soup", Price: 4.5, Quantity: 2}},
		TotalPrice:   9,
		CustomerInfo: guestCustomer,
		SessionID:    "session_1_abc",
	})
	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, "session_1_abc", got.SessionID)
	assert.Equal(t, guestCustomer, got.CustomerInfo)
}

func TestFallbackMenu(t *testing.T) {
	items := FallbackMenu()
	assert.Len(t, items, 4)
	for _, it := range items {
		assert.True(t, it.Available)
		assert.Greater(t, it.Price, 0.0)
	}
}
