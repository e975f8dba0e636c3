package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bistro/internal/models"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// GormStore implements Store on a relational database through gorm. Line
// items are stored as a JSON text column so each record stays a single row.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// OpenGorm opens a gorm connection for dialect ("sqlite3" or "postgres") and
// migrates the three tables
func OpenGorm(dialect, dsn string, opts Options) (*GormStore, error) {
	db, err := gorm.Open(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.LogMode(opts.Debug)

	// Configure connection pool
	db.DB().SetMaxIdleConns(10)
	db.DB().SetMaxOpenConns(100)
	db.DB().SetConnMaxLifetime(time.Hour)

	// Every connection to an in-memory sqlite database sees its own copy
	if dialect == "sqlite3" && isMemoryDSN(dsn) {
		db.DB().SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&models.MenuItem{}, &models.Order{}, &models.Cart{}).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &GormStore{db: db, now: opts.clock()}, nil
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// Ping checks that the database is reachable
func (s *GormStore) Ping(ctx context.Context) error {
	return s.db.DB().PingContext(ctx)
}

// Close closes the database connection
func (s *GormStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func parseRecordID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w %q", ErrInvalidID, id)
	}
	return nil
}

// Menu items

func (s *GormStore) ListAvailableMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	items := []models.MenuItem{}
	if err := s.db.Where("available = ?", true).Order("created_at asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *GormStore) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	if err := parseRecordID(id); err != nil {
		return nil, err
	}
	var item models.MenuItem
	if err := s.db.Where("id = ?", id).First(&item).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (s *GormStore) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	applyMenuDefaults(item, s.now())
	if err := models.ValidateMenuItem(item); err != nil {
		return err
	}
	item.ID = uuid.NewString()
	return s.db.Create(item).Error
}

func (s *GormStore) UpdateMenuItem(ctx context.Context, id string, patch models.MenuItemPatch) (*models.MenuItem, error) {
	if err := models.ValidateMenuItemPatch(patch); err != nil {
		return nil, err
	}
	item, err := s.GetMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(item)
	if err := s.db.Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (s *GormStore) DeleteMenuItem(ctx context.Context, id string) error {
	if err := parseRecordID(id); err != nil {
		return err
	}
	return rowsDeleted(s.db.Where("id = ?", id).Delete(&models.MenuItem{}))
}

func (s *GormStore) ReplaceMenu(ctx context.Context, items []models.MenuItem) ([]models.MenuItem, error) {
	now := s.now()
	created := make([]models.MenuItem, len(items))

	tx := s.db.Begin()
	if err := tx.Error; err != nil {
		return nil, err
	}
	if err := tx.Delete(&models.MenuItem{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for i := range items {
		item := items[i]
		applyMenuDefaults(&item, now)
		if err := models.ValidateMenuItem(&item); err != nil {
			tx.Rollback()
			return nil, err
		}
		item.ID = uuid.NewString()
		if err := tx.Create(&item).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		created[i] = item
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return created, nil
}

// Carts

func (s *GormStore) findCart(sessionID string) (*models.Cart, error) {
	var cart models.Cart
	if err := s.db.Where("session_id = ?", sessionID).First(&cart).Error; err != nil {
		return nil, notFound(err)
	}
	return &cart, nil
}

func (s *GormStore) GetOrCreateCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	cart, err := s.findCart(sessionID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	cart = models.NewCart(sessionID, s.now())
	cart.ID = uuid.NewString()
	if err := s.db.Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *GormStore) ReplaceCartItems(ctx context.Context, sessionID string, items models.ItemList) (*models.Cart, error) {
	if err := models.ValidateLineItems(items); err != nil {
		return nil, err
	}
	if items == nil {
		items = models.ItemList{}
	}

	cart, err := s.findCart(sessionID)
	switch {
	case errors.Is(err, ErrNotFound):
		cart = models.NewCart(sessionID, s.now())
		cart.ID = uuid.NewString()
		cart.Items = items
		if err := s.db.Create(cart).Error; err != nil {
			return nil, err
		}
		return cart, nil
	case err != nil:
		return nil, err
	}

	cart.Items = items
	cart.LastUpdated = s.now()
	if err := s.db.Save(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *GormStore) DeleteCart(ctx context.Context, sessionID string) error {
	return s.db.Where("session_id = ?", sessionID).Delete(&models.Cart{}).Error
}

// Orders

func (s *GormStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	if err := s.db.Order("order_date desc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *GormStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	if err := parseRecordID(id); err != nil {
		return nil, err
	}
	var order models.Order
	if err := s.db.Where("id = ?", id).First(&order).Error; err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (s *GormStore) CreateOrder(ctx context.Context, order *models.Order) error {
	applyOrderDefaults(order, s.now())
	if err := models.ValidateOrder(order); err != nil {
		return err
	}
	order.ID = uuid.NewString()
	return s.db.Create(order).Error
}

func (s *GormStore) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := models.ValidateOrderStatus(status); err != nil {
		return nil, err
	}
	order.Status = status
	if err := s.db.Model(order).Update("status", status).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (s *GormStore) DeleteOrder(ctx context.Context, id string) error {
	if err := parseRecordID(id); err != nil {
		return err
	}
	return rowsDeleted(s.db.Where("id = ?", id).Delete(&models.Order{}))
}

func notFound(err error) error {
	if gorm.IsRecordNotFoundError(err) {
		return ErrNotFound
	}
	return err
}

func rowsDeleted(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
