package database

import (
	"context"
	"errors"
	"time"

	"bistro/internal/models"
)

var (
	// ErrNotFound is returned when no record matches an identifier
	ErrNotFound = errors.New("record not found")
	// ErrInvalidID is returned when an identifier is not in the store's format
	ErrInvalidID = errors.New("invalid identifier")
)

// MenuRepository persists menu items
type MenuRepository interface {
	ListAvailableMenuItems(ctx context.Context) ([]models.MenuItem, error)
	GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error)
	CreateMenuItem(ctx context.Context, item *models.MenuItem) error
	UpdateMenuItem(ctx context.Context, id string, patch models.MenuItemPatch) (*models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id string) error
	// ReplaceMenu removes every menu item and inserts items in their place
	ReplaceMenu(ctx context.Context, items []models.MenuItem) ([]models.MenuItem, error)
}

// CartRepository persists session carts
type CartRepository interface {
	// GetOrCreateCart returns the session's cart, creating an empty one if absent
	GetOrCreateCart(ctx context.Context, sessionID string) (*models.Cart, error)
	// ReplaceCartItems overwrites the session's items, creating the cart if absent
	ReplaceCartItems(ctx context.Context, sessionID string, items models.ItemList) (*models.Cart, error)
	// DeleteCart removes the session's cart; a missing cart is not an error
	DeleteCart(ctx context.Context, sessionID string) error
}

// OrderRepository persists placed orders
type OrderRepository interface {
	// ListOrders returns every order, newest OrderDate first
	ListOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

// Store is the persistence handle shared by every request handler. It is
// opened once at start-up and closed on shutdown.
type Store interface {
	MenuRepository
	CartRepository
	OrderRepository
	Ping(ctx context.Context) error
	Close() error
}

// Options configures a store connection
type Options struct {
	// URI selects the backend: mongodb://, mongodb+srv://, firestore://<project>,
	// postgres://, sqlite://<path>, or a bare sqlite file path
	URI string
	// Name is the MongoDB database name
	Name string
	// Timeout bounds connection establishment
	Timeout time.Duration
	// CredentialsFile is an optional Firestore service account key
	CredentialsFile string
	// Debug enables SQL statement logging for gorm backends
	Debug bool
	// Now overrides the clock used for timestamps
	Now func() time.Time
}

func (o Options) clock() func() time.Time {
	if o.Now != nil {
		return o.Now
	}
	return func() time.Time { return time.Now().UTC() }
}

// applyMenuDefaults fills the defaults every backend applies on insert
func applyMenuDefaults(item *models.MenuItem, now time.Time) {
	if item.Category == "" {
		item.Category = models.DefaultMenuCategory
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
}

// applyOrderDefaults fills the defaults every backend applies on insert
func applyOrderDefaults(order *models.Order, now time.Time) {
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	if order.OrderDate.IsZero() {
		order.OrderDate = now
	}
	if order.Items == nil {
		order.Items = models.ItemList{}
	}
}
