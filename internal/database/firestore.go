package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"bistro/internal/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements Store on Cloud Firestore. Menu items and orders
// use generated document ids; a cart's document id is its session id.
type FirestoreStore struct {
	client *firestore.Client
	now    func() time.Time
}

var _ Store = (*FirestoreStore)(nil)

// OpenFirestore creates a client for projectID. When opts.CredentialsFile is
// empty the application default credentials are used.
func OpenFirestore(ctx context.Context, projectID string, opts Options) (*FirestoreStore, error) {
	projectID = strings.Trim(strings.TrimSpace(projectID), "/")
	if projectID == "" {
		return nil, errors.New("firestore project id is required")
	}

	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	s := &FirestoreStore{client: client, now: opts.clock()}
	if err := s.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach firestore: %w", err)
	}
	return s, nil
}

func (s *FirestoreStore) colMenu() *firestore.CollectionRef   { return s.client.Collection("menuItems") }
func (s *FirestoreStore) colOrders() *firestore.CollectionRef { return s.client.Collection("orders") }
func (s *FirestoreStore) colCarts() *firestore.CollectionRef  { return s.client.Collection("carts") }

// Ping reads a single menu document to confirm the project is reachable
func (s *FirestoreStore) Ping(ctx context.Context) error {
	iter := s.colMenu().Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return err
	}
	return nil
}

// Close closes the client
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func fsNotFound(err error) error {
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}

func checkDocID(id string) error {
	if strings.TrimSpace(id) == "" || strings.Contains(id, "/") {
		return fmt.Errorf("%w %q", ErrInvalidID, id)
	}
	return nil
}

// cartDocID maps a session id to a valid document id
func cartDocID(sessionID string) string {
	return url.PathEscape(sessionID)
}

func docToMenuItem(snap *firestore.DocumentSnapshot) (models.MenuItem, error) {
	var item models.MenuItem
	if err := snap.DataTo(&item); err != nil {
		return models.MenuItem{}, err
	}
	item.ID = snap.Ref.ID
	return item, nil
}

func docToOrder(snap *firestore.DocumentSnapshot) (models.Order, error) {
	var order models.Order
	if err := snap.DataTo(&order); err != nil {
		return models.Order{}, err
	}
	order.ID = snap.Ref.ID
	if order.Items == nil {
		order.Items = models.ItemList{}
	}
	return order, nil
}

func docToCart(snap *firestore.DocumentSnapshot) (*models.Cart, error) {
	var cart models.Cart
	if err := snap.DataTo(&cart); err != nil {
		return nil, err
	}
	cart.ID = snap.Ref.ID
	if cart.Items == nil {
		cart.Items = models.ItemList{}
	}
	return &cart, nil
}

// Menu items

func (s *FirestoreStore) ListAvailableMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	iter := s.colMenu().Where("available", "==", true).Documents(ctx)
	defer iter.Stop()

	items := []models.MenuItem{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		item, err := docToMenuItem(snap)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *FirestoreStore) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	if err := checkDocID(id); err != nil {
		return nil, err
	}
	snap, err := s.colMenu().Doc(id).Get(ctx)
	if err != nil {
		return nil, fsNotFound(err)
	}
	item, err := docToMenuItem(snap)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *FirestoreStore) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	applyMenuDefaults(item, s.now())
	if err := models.ValidateMenuItem(item); err != nil {
		return err
	}
	ref := s.colMenu().NewDoc()
	if _, err := ref.Create(ctx, item); err != nil {
		return err
	}
	item.ID = ref.ID
	return nil
}

func menuPatchUpdates(patch models.MenuItemPatch) []firestore.Update {
	var updates []firestore.Update
	if patch.Name != nil {
		updates = append(updates, firestore.Update{Path: "name", Value: *patch.Name})
	}
	if patch.Description != nil {
		updates = append(updates, firestore.Update{Path: "description", Value: *patch.Description})
	}
	if patch.Price != nil {
		updates = append(updates, firestore.Update{Path: "price", Value: *patch.Price})
	}
	if patch.Category != nil {
		updates = append(updates, firestore.Update{Path: "category", Value: *patch.Category})
	}
	if patch.Available != nil {
		updates = append(updates, firestore.Update{Path: "available", Value: *patch.Available})
	}
	if patch.ImageURL != nil {
		updates = append(updates, firestore.Update{Path: "imageUrl", Value: *patch.ImageURL})
	}
	if patch.CreatedAt != nil {
		updates = append(updates, firestore.Update{Path: "createdAt", Value: *patch.CreatedAt})
	}
	return updates
}

func (s *FirestoreStore) UpdateMenuItem(ctx context.Context, id string, patch models.MenuItemPatch) (*models.MenuItem, error) {
	if err := models.ValidateMenuItemPatch(patch); err != nil {
		return nil, err
	}
	if err := checkDocID(id); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return s.GetMenuItem(ctx, id)
	}

	// Update fails with NotFound when the document does not exist
	if _, err := s.colMenu().Doc(id).Update(ctx, menuPatchUpdates(patch)); err != nil {
		return nil, fsNotFound(err)
	}
	return s.GetMenuItem(ctx, id)
}

func (s *FirestoreStore) DeleteMenuItem(ctx context.Context, id string) error {
	if err := checkDocID(id); err != nil {
		return err
	}
	_, err := s.colMenu().Doc(id).Delete(ctx, firestore.Exists)
	return fsNotFound(err)
}

func (s *FirestoreStore) ReplaceMenu(ctx context.Context, items []models.MenuItem) ([]models.MenuItem, error) {
	now := s.now()
	created := make([]models.MenuItem, len(items))
	for i := range items {
		item := items[i]
		applyMenuDefaults(&item, now)
		if err := models.ValidateMenuItem(&item); err != nil {
			return nil, err
		}
		created[i] = item
	}

	// One transaction so a failed write leaves the old menu in place
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.DocumentRefs(s.colMenu()).GetAll()
		if err != nil {
			return err
		}
		for _, ref := range existing {
			if err := tx.Delete(ref); err != nil {
				return err
			}
		}
		for i := range created {
			ref := s.colMenu().NewDoc()
			if err := tx.Create(ref, created[i]); err != nil {
				return err
			}
			created[i].ID = ref.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Carts

func (s *FirestoreStore) GetOrCreateCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	ref := s.colCarts().Doc(cartDocID(sessionID))

	var cart *models.Cart
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err == nil {
			cart, err = docToCart(snap)
			return err
		}
		if !isNotFound(err) {
			return err
		}
		cart = models.NewCart(sessionID, s.now())
		return tx.Create(ref, cart)
	})
	if err != nil {
		return nil, err
	}
	cart.ID = ref.ID
	return cart, nil
}

func (s *FirestoreStore) ReplaceCartItems(ctx context.Context, sessionID string, items models.ItemList) (*models.Cart, error) {
	if err := models.ValidateLineItems(items); err != nil {
		return nil, err
	}
	if items == nil {
		items = models.ItemList{}
	}

	cart := models.NewCart(sessionID, s.now())
	cart.Items = items
	ref := s.colCarts().Doc(cartDocID(sessionID))
	if _, err := ref.Set(ctx, cart); err != nil {
		return nil, err
	}
	cart.ID = ref.ID
	return cart, nil
}

func (s *FirestoreStore) DeleteCart(ctx context.Context, sessionID string) error {
	_, err := s.colCarts().Doc(cartDocID(sessionID)).Delete(ctx)
	return err
}

// Orders

func (s *FirestoreStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	iter := s.colOrders().OrderBy("orderDate", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	orders := []models.Order{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		order, err := docToOrder(snap)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (s *FirestoreStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	if err := checkDocID(id); err != nil {
		return nil, err
	}
	snap, err := s.colOrders().Doc(id).Get(ctx)
	if err != nil {
		return nil, fsNotFound(err)
	}
	order, err := docToOrder(snap)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *FirestoreStore) CreateOrder(ctx context.Context, order *models.Order) error {
	applyOrderDefaults(order, s.now())
	if err := models.ValidateOrder(order); err != nil {
		return err
	}
	ref := s.colOrders().NewDoc()
	if _, err := ref.Create(ctx, order); err != nil {
		return err
	}
	order.ID = ref.ID
	return nil
}

func (s *FirestoreStore) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if err := models.ValidateOrderStatus(status); err != nil {
		return nil, err
	}
	if err := checkDocID(id); err != nil {
		return nil, err
	}
	_, err := s.colOrders().Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(status)},
	})
	if err != nil {
		return nil, fsNotFound(err)
	}
	return s.GetOrder(ctx, id)
}

func (s *FirestoreStore) DeleteOrder(ctx context.Context, id string) error {
	if err := checkDocID(id); err != nil {
		return err
	}
	_, err := s.colOrders().Doc(id).Delete(ctx, firestore.Exists)
	return fsNotFound(err)
}
