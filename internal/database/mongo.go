package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bistro/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DefaultDatabaseName is used when neither Options.Name nor the URI names one
const DefaultDatabaseName = "restaurant"

// Collection names shared with existing deployments
const (
	menuItemsCollection = "menuitems"
	ordersCollection    = "orders"
	cartsCollection     = "carts"
)

// MongoStore implements Store on MongoDB. Menu items and orders are keyed by
// ObjectID; carts carry a unique index on sessionId.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

type menuItemDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	models.MenuItem `bson:",inline"`
}

func (d menuItemDoc) model() models.MenuItem {
	item := d.MenuItem
	item.ID = d.ID.Hex()
	return item
}

type orderDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	models.Order `bson:",inline"`
}

func (d orderDoc) model() models.Order {
	order := d.Order
	order.ID = d.ID.Hex()
	if order.Items == nil {
		order.Items = models.ItemList{}
	}
	return order
}

type cartDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	models.Cart `bson:",inline"`
}

func (d cartDoc) model() *models.Cart {
	cart := d.Cart
	cart.ID = d.ID.Hex()
	if cart.Items == nil {
		cart.Items = models.ItemList{}
	}
	return &cart
}

// OpenMongo connects to MongoDB, verifies the connection and ensures the
// cart session index exists
func OpenMongo(ctx context.Context, opts Options) (*MongoStore, error) {
	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetConnectTimeout(opts.Timeout).
		SetServerSelectionTimeout(opts.Timeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to reach mongodb: %w", err)
	}

	name := opts.Name
	if name == "" {
		name = DefaultDatabaseName
	}

	s := &MongoStore{
		client: client,
		db:     client.Database(name),
		now:    opts.clock(),
	}

	_, err = s.carts().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "sessionId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create cart index: %w", err)
	}

	return s, nil
}

func (s *MongoStore) menuItems() *mongo.Collection { return s.db.Collection(menuItemsCollection) }
func (s *MongoStore) orders() *mongo.Collection    { return s.db.Collection(ordersCollection) }
func (s *MongoStore) carts() *mongo.Collection     { return s.db.Collection(cartsCollection) }

// Ping checks that the primary is reachable
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w %q", ErrInvalidID, id)
	}
	return oid, nil
}

func mongoNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

// Menu items

func (s *MongoStore) ListAvailableMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	cursor, err := s.menuItems().Find(ctx, bson.M{"available": true})
	if err != nil {
		return nil, err
	}
	var docs []menuItemDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	items := make([]models.MenuItem, len(docs))
	for i, doc := range docs {
		items[i] = doc.model()
	}
	return items, nil
}

func (s *MongoStore) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	var doc menuItemDoc
	if err := s.menuItems().FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mongoNotFound(err)
	}
	item := doc.model()
	return &item, nil
}

func (s *MongoStore) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	applyMenuDefaults(item, s.now())
	if err := models.ValidateMenuItem(item); err != nil {
		return err
	}
	doc := menuItemDoc{ID: primitive.NewObjectID(), MenuItem: *item}
	if _, err := s.menuItems().InsertOne(ctx, doc); err != nil {
		return err
	}
	item.ID = doc.ID.Hex()
	return nil
}

func menuPatchSet(patch models.MenuItemPatch) bson.M {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Available != nil {
		set["available"] = *patch.Available
	}
	if patch.ImageURL != nil {
		set["imageUrl"] = *patch.ImageURL
	}
	if patch.CreatedAt != nil {
		set["createdAt"] = *patch.CreatedAt
	}
	return set
}

func (s *MongoStore) UpdateMenuItem(ctx context.Context, id string, patch models.MenuItemPatch) (*models.MenuItem, error) {
	if err := models.ValidateMenuItemPatch(patch); err != nil {
		return nil, err
	}
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return s.GetMenuItem(ctx, id)
	}

	var doc menuItemDoc
	err = s.menuItems().FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": menuPatchSet(patch)},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, mongoNotFound(err)
	}
	item := doc.model()
	return &item, nil
}

func (s *MongoStore) DeleteMenuItem(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	res, err := s.menuItems().DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) ReplaceMenu(ctx context.Context, items []models.MenuItem) ([]models.MenuItem, error) {
	now := s.now()
	created := make([]models.MenuItem, len(items))
	docs := make([]interface{}, len(items))
	for i := range items {
		item := items[i]
		applyMenuDefaults(&item, now)
		if err := models.ValidateMenuItem(&item); err != nil {
			return nil, err
		}
		doc := menuItemDoc{ID: primitive.NewObjectID(), MenuItem: item}
		item.ID = doc.ID.Hex()
		docs[i] = doc
		created[i] = item
	}

	if _, err := s.menuItems().DeleteMany(ctx, bson.M{}); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return created, nil
	}
	if _, err := s.menuItems().InsertMany(ctx, docs); err != nil {
		return nil, err
	}
	return created, nil
}

// Carts

func (s *MongoStore) GetOrCreateCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	var doc cartDoc
	err := s.carts().FindOneAndUpdate(ctx,
		bson.M{"sessionId": sessionID},
		bson.M{"$setOnInsert": bson.M{"items": bson.A{}, "lastUpdated": s.now()}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, err
	}
	return doc.model(), nil
}

func (s *MongoStore) ReplaceCartItems(ctx context.Context, sessionID string, items models.ItemList) (*models.Cart, error) {
	if err := models.ValidateLineItems(items); err != nil {
		return nil, err
	}
	if items == nil {
		items = models.ItemList{}
	}

	var doc cartDoc
	err := s.carts().FindOneAndUpdate(ctx,
		bson.M{"sessionId": sessionID},
		bson.M{"$set": bson.M{"items": []models.LineItem(items), "lastUpdated": s.now()}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, err
	}
	return doc.model(), nil
}

func (s *MongoStore) DeleteCart(ctx context.Context, sessionID string) error {
	_, err := s.carts().DeleteOne(ctx, bson.M{"sessionId": sessionID})
	return err
}

// Orders

func (s *MongoStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	cursor, err := s.orders().Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "orderDate", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []orderDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	orders := make([]models.Order, len(docs))
	for i, doc := range docs {
		orders[i] = doc.model()
	}
	return orders, nil
}

func (s *MongoStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	var doc orderDoc
	if err := s.orders().FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mongoNotFound(err)
	}
	order := doc.model()
	return &order, nil
}

func (s *MongoStore) CreateOrder(ctx context.Context, order *models.Order) error {
	applyOrderDefaults(order, s.now())
	if err := models.ValidateOrder(order); err != nil {
		return err
	}
	doc := orderDoc{ID: primitive.NewObjectID(), Order: *order}
	if _, err := s.orders().InsertOne(ctx, doc); err != nil {
		return err
	}
	order.ID = doc.ID.Hex()
	return nil
}

func (s *MongoStore) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if err := models.ValidateOrderStatus(status); err != nil {
		return nil, err
	}
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc orderDoc
	err = s.orders().FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": string(status)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, mongoNotFound(err)
	}
	order := doc.model()
	return &order, nil
}

func (s *MongoStore) DeleteOrder(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	res, err := s.orders().DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
