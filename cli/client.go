package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const defaultBaseURL = "http://localhost:8080"

// ApiClient handles requests to the restaurant API
type ApiClient struct {
	httpClient *http.Client
	BaseURL    string
}

// NewApiClient creates a client for baseURL. An empty baseURL falls back to
// RESTAURANT_API_URL, then to the local default.
func NewApiClient(baseURL string) *ApiClient {
	if baseURL == "" {
		baseURL = os.Getenv("RESTAURANT_API_URL")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &ApiClient{
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

// MenuItem is a dish as returned by the menu endpoint
type MenuItem struct {
	ID          string  `json:"_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Available   bool    `json:"available"`
	ImageURL    string  `json:"imageUrl,omitempty"`
}

// CartItem is a line in the cart or an order
type CartItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Cart is the server copy of a session's cart
type Cart struct {
	ID          string     `json:"_id"`
	SessionID   string     `json:"sessionId"`
	Items       []CartItem `json:"items"`
	LastUpdated time.Time  `json:"lastUpdated"`
}

// CustomerInfo identifies who placed an order
type CustomerInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// OrderRequest is the checkout body
type OrderRequest struct {
	Items        []CartItem   `json:"items"`
	TotalPrice   float64      `json:"totalPrice"`
	CustomerInfo CustomerInfo `json:"customerInfo"`
	SessionID    string       `json:"sessionId,omitempty"`
	Notes        string       `json:"notes,omitempty"`
}

// Order is a placed order
type Order struct {
	ID           string       `json:"_id"`
	Items        []CartItem   `json:"items"`
	TotalPrice   float64      `json:"totalPrice"`
	CustomerInfo CustomerInfo `json:"customerInfo"`
	Status       string       `json:"status"`
	OrderDate    time.Time    `json:"orderDate"`
}

// apiError is returned for any non-2xx response
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("API returned %d: %s", e.StatusCode, e.Message)
}

func (c *ApiClient) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(resp.Body)
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			msg = payload.Error
		}
		return &apiError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// CheckHealth checks if the API is up and running
func (c *ApiClient) CheckHealth() error {
	return c.do(http.MethodGet, "/api/health", nil, nil)
}

// GetMenu retrieves the available menu items
func (c *ApiClient) GetMenu() ([]MenuItem, error) {
	var items []MenuItem
	if err := c.do(http.MethodGet, "/api/menu", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetCart retrieves the session's cart; the server creates it when absent
func (c *ApiClient) GetCart(sessionID string) (*Cart, error) {
	var cart Cart
	if err := c.do(http.MethodGet, "/api/cart/"+url.PathEscape(sessionID), nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// SaveCart replaces the session's cart with items
func (c *ApiClient) SaveCart(sessionID string, items []CartItem) error {
	if items == nil {
		items = []CartItem{}
	}
	body := map[string]interface{}{"items": items}
	return c.do(http.MethodPost, "/api/cart/"+url.PathEscape(sessionID), body, nil)
}

// ClearCart deletes the session's cart
func (c *ApiClient) ClearCart(sessionID string) error {
	return c.do(http.MethodDelete, "/api/cart/"+url.PathEscape(sessionID), nil, nil)
}

// PlaceOrder submits an order
func (c *ApiClient) PlaceOrder(req OrderRequest) (*Order, error) {
	var order Order
	if err := c.do(http.MethodPost, "/api/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// FallbackMenu is shown when the menu cannot be fetched
func FallbackMenu() []MenuItem {
	return []MenuItem{
		{ID: "fallback-1", Name: "Classic Burger", Description: "Beef patty with lettuce, tomato, onion and house sauce", Price: 12.99, Category: "main", Available: true},
		{ID: "fallback-2", Name: "Margherita Pizza", Description: "Tomato sauce, fresh mozzarella and basil", Price: 14.99, Category: "main", Available: true},
		{ID: "fallback-3", Name: "Caesar Salad", Description: "Romaine, parmesan, croutons and caesar dressing", Price: 9.99, Category: "appetizer", Available: true},
		{ID: "fallback-4", Name: "Chocolate Cake", Description: "Rich chocolate layer cake", Price: 6.99, Category: "dessert", Available: true},
	}
}
