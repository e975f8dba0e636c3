//go:build integration

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"bistro/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startMongo launches a MongoDB container and returns a connected store
func startMongo(t *testing.T) *MongoStore {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err)

	store, err := OpenMongo(ctx, Options{
		URI:     "mongodb://" + host + ":" + port.Port(),
		Name:    "restaurant_test",
		Timeout: 10 * time.Second,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cleanupCancel()

		_ = store.Close()
		_ = container.Terminate(cleanupCtx)
	})

	return store
}

func TestMongoStore_Contract(t *testing.T) {
	store := startMongo(t)
	ctx := context.Background()

	t.Run("menu", func(t *testing.T) {
		item := &models.MenuItem{Name: "Fries", Description: "x", Price: 2.49, Available: true}
		require.NoError(t, store.CreateMenuItem(ctx, item))
		assert.Len(t, item.ID, 24)
		assert.Equal(t, models.DefaultMenuCategory, item.Category)

		hidden := &models.MenuItem{Name: "Secret", Description: "y", Price: 1}
		require.NoError(t, store.CreateMenuItem(ctx, hidden))

		items, err := store.ListAvailableMenuItems(ctx)
		require.NoError(t, err)
		for _, listed := range items {
			assert.True(t, listed.Available)
		}

		price := 3.0
		updated, err := store.UpdateMenuItem(ctx, item.ID, models.MenuItemPatch{Price: &price})
		require.NoError(t, err)
		assert.Equal(t, 3.0, updated.Price)

		require.NoError(t, store.DeleteMenuItem(ctx, item.ID))
		_, err = store.GetMenuItem(ctx, item.ID)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.True(t, errors.Is(store.DeleteMenuItem(ctx, item.ID), ErrNotFound))

		_, err = store.GetMenuItem(ctx, "bogus")
		assert.True(t, errors.Is(err, ErrInvalidID))
	})

	t.Run("seed", func(t *testing.T) {
		_, err := Seed(ctx, store)
		require.NoError(t, err)
		items, err := store.ListAvailableMenuItems(ctx)
		require.NoError(t, err)
		assert.Len(t, items, 4)
	})

	t.Run("cart", func(t *testing.T) {
		cart, err := store.GetOrCreateCart(ctx, "s1")
		require.NoError(t, err)
		assert.Empty(t, cart.Items)

		again, err := store.GetOrCreateCart(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, cart.ID, again.ID)

		cart, err = store.ReplaceCartItems(ctx, "s1", models.ItemList{{Name: "Fries", Price: 2.49, Quantity: 2}})
		require.NoError(t, err)
		assert.Len(t, cart.Items, 1)

		cart, err = store.ReplaceCartItems(ctx, "s1", models.ItemList{})
		require.NoError(t, err)
		assert.Empty(t, cart.Items)

		require.NoError(t, store.DeleteCart(ctx, "s1"))
		require.NoError(t, store.DeleteCart(ctx, "s1"))
	})

	t.Run("orders", func(t *testing.T) {
		older := &models.Order{
			Items:      models.ItemList{{Name: "Pie", Price: 3, Quantity: 1}},
			TotalPrice: 3,
			OrderDate:  time.Now().UTC().Add(-time.Hour),
		}
		newer := &models.Order{
			Items:      models.ItemList{{Name: "Tea", Price: 2, Quantity: 2}},
			TotalPrice: 4,
		}
		require.NoError(t, store.CreateOrder(ctx, older))
		require.NoError(t, store.CreateOrder(ctx, newer))

		orders, err := store.ListOrders(ctx)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, newer.ID, orders[0].ID)

		updated, err := store.UpdateOrderStatus(ctx, older.ID, models.OrderStatusDelivered)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusDelivered, updated.Status)

		_, err = store.UpdateOrderStatus(ctx, older.ID, models.OrderStatus("lost"))
		var verr *models.ValidationError
		assert.True(t, errors.As(err, &verr))

		require.NoError(t, store.DeleteOrder(ctx, older.ID))
		assert.True(t, errors.Is(store.DeleteOrder(ctx, older.ID), ErrNotFound))
	})
}
