package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu        sync.Mutex
	saves     [][]CartItem
	orders    []OrderRequest
	failOrder bool
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/orders":
			if f.failOrder {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"Failed to create order"}`))
				return
			}
			var req OrderRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			f.orders = append(f.orders, req)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"_id":"o1","status":"pending"}`))
		case r.URL.Path == "/api/health":
			w.Write([]byte(`{"status":"ok"}`))
		case r.Method == http.MethodPost:
			var body struct {
				Items []CartItem `json:"items"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			f.saves = append(f.saves, body.Items)
			w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func newTestModel(t *testing.T, api *fakeAPI) Model {
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)

	m := initialModel(NewApiClient(srv.URL), "session_1_abcdefghi")
	m, _ = send(t, m, menuMsg{items: []MenuItem{burger, cake}})
	return m
}

func TestFetchMenuFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	msg := fetchMenu(NewApiClient(srv.URL))()
	menu, ok := msg.(menuMsg)
	require.True(t, ok)
	assert.True(t, menu.fallback)
	assert.Equal(t, FallbackMenu(), menu.items)
}

func TestAddFromMenuSyncsCart(t *testing.T) {
	api := &fakeAPI{}
	m := newTestModel(t, api)

	m, _ = send(t, m, key("enter")) // main -> Menu
	require.Equal(t, "menu", m.currentView)

	m, cmd := send(t, m, key("enter"))
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())
	assert.Equal(t, 1, m.cart.Count())

	require.Len(t, api.saves, 1)
	assert.Equal(t, []CartItem{{Name: "Classic Burger", Price: 12.99, Quantity: 1}}, api.saves[0])
}

func TestCartQuantityKeys(t *testing.T) {
	api := &fakeAPI{}
	m := newTestModel(t, api)
	m.cart.Add(burger)
	m.refreshCart()
	m.currentView = "cart"

	m, cmd := send(t, m, key("+"))
	cmd()
	assert.Equal(t, 2, m.cart.Items()[0].Quantity)

	m, cmd = send(t, m, key("-"))
	cmd()
	m, cmd = send(t, m, key("-"))
	cmd()
	assert.Equal(t, 0, m.cart.Len())

	require.Len(t, api.saves, 3)
	assert.Empty(t, api.saves[2])
}

func TestCheckoutEmptyCart(t *testing.T) {
	m := newTestModel(t, &fakeAPI{})
	m.currentView = "cart"

	m, _ = send(t, m, key("c"))
	assert.Equal(t, "cart", m.currentView)
	assert.Equal(t, "Your cart is empty", m.error)
}

func TestCheckoutSuccessClearsCart(t *testing.T) {
	api := &fakeAPI{}
	m := newTestModel(t, api)
	m.cart.Add(burger)
	m.cart.Add(cake)
	m.refreshCart()
	m.currentView = "cart"

	m, _ = send(t, m, key("c"))
	require.Equal(t, "checkout", m.currentView)

	m, _ = send(t, m, key("q")) // typed into notes, does not quit
	assert.Equal(t, "q", m.notesInput.Value())

	m, _ = send(t, m, key("enter"))
	require.True(t, m.placing)

	msg := placeOrder(m.client, OrderRequest{
		Items:        m.cart.Items(),
		TotalPrice:   roundCents(m.cart.Total()),
		CustomerInfo: guestCustomer,
		SessionID:    m.sessionID,
	})()
	m, _ = send(t, m, msg)

	assert.Equal(t, 0, m.cart.Len())
	assert.Equal(t, "main", m.currentView)
	assert.Contains(t, m.message, "o1")
	require.Len(t, api.orders, 1)
	assert.Equal(t, 19.98, api.orders[0].TotalPrice)
	assert.Equal(t, "session_1_abcdefghi", api.orders[0].SessionID)
}

func TestCheckoutFailureKeepsCart(t *testing.T) {
	api := &fakeAPI{failOrder: true}
	m := newTestModel(t, api)
	m.cart.Add(burger)
	m.refreshCart()

	msg := placeOrder(m.client, OrderRequest{Items: m.cart.Items(), TotalPrice: 12.99})()
	m, _ = send(t, m, msg)

	assert.Equal(t, checkoutFailed, m.error)
	assert.Equal(t, 1, m.cart.Len())
}

func TestCartLoadedFromServer(t *testing.T) {
	m := newTestModel(t, &fakeAPI{})
	m, _ = send(t, m, cartMsg{items: []CartItem{{Name: "Soup", Price: 4, Quantity: 3}}})
	assert.Equal(t, 3, m.cart.Count())
	assert.Len(t, m.cartTable.Rows(), 1)
}

func TestCheckoutNotBlockedByMenuLoad(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	// Menu request still in flight
	m := initialModel(NewApiClient(srv.URL), "session_1_abcdefghi")
	require.True(t, m.loading)
	m.cart.Add(burger)
	m.refreshCart()
	m.currentView = "cart"

	m, _ = send(t, m, key("c"))
	m, cmd := send(t, m, key("enter"))
	require.NotNil(t, cmd)
	assert.True(t, m.placing)
	assert.Contains(t, m.View(), "Placing order")

	// A second enter while placing does nothing
	_, cmd = send(t, m, key("enter"))
	assert.Nil(t, cmd)
}

func TestHealthBanner(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	m := initialModel(NewApiClient(srv.URL), "session_1_abcdefghi")
	m, _ = send(t, m, checkHealth(m.client)())
	assert.True(t, m.offline)
	assert.Contains(t, m.View(), "Server offline")

	api := &fakeAPI{}
	m = newTestModel(t, api)
	m, _ = send(t, m, checkHealth(m.client)())
	assert.False(t, m.offline)
	assert.NotContains(t, m.View(), "Server offline")
}
