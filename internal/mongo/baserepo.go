package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ordersCollection     = "orders"
	countersCollection   = "counters"
	branchesCollection   = "branches"
	tablesCollection     = "tables"
	categoriesCollection = "categories"
	menuItemsCollection  = "menu_items"
	branchMenuCollection = "branch_menu_items"
)

// BaseRepo owns the client connection shared by every collection repo.
// Repos built from it resolve their collection lazily, so they may be
// constructed before Start runs.
type BaseRepo struct {
	client *mongo.Client
	db     *mongo.Database
	logger aqm.Logger
	config *aqm.Config
}

func NewBaseRepo(config *aqm.Config, logger aqm.Logger) *BaseRepo {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &BaseRepo{
		logger: logger,
		config: config,
	}
}

func (r *BaseRepo) Start(ctx context.Context) error {
	mongoURL, _ := r.config.GetString("db.mongo.url")
	connString := mongoURL
	if connString == "" {
		connString = "mongodb://localhost:27017"
	}

	dbName, _ := r.config.GetString("db.mongo.name")
	if dbName == "" {
		dbName = "tableside"
	}

	clientOptions := options.Client().ApplyURI(connString).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("cannot connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("cannot ping MongoDB: %w", err)
	}

	r.client = client
	r.db = client.Database(dbName)

	if err := r.ensureIndexes(ctx); err != nil {
		return err
	}

	r.logger.Infof("Connected to MongoDB: %s, database: %s", connString, dbName)
	return nil
}

func (r *BaseRepo) Stop(ctx context.Context) error {
	if r.client != nil {
		if err := r.client.Disconnect(ctx); err != nil {
			return fmt.Errorf("cannot disconnect from MongoDB: %w", err)
		}
		r.logger.Info("Disconnected from MongoDB")
	}
	return nil
}

func (r *BaseRepo) GetDatabase() *mongo.Database {
	return r.db
}

func (r *BaseRepo) collection(name string) (*mongo.Collection, error) {
	if r.db == nil {
		return nil, fmt.Errorf("mongo repo not started")
	}
	return r.db.Collection(name), nil
}

type indexSpec struct {
	collection string
	keys       bson.D
	unique     bool
}

var indexes = []indexSpec{
	{collection: ordersCollection, keys: bson.D{{Key: "order_number", Value: 1}}, unique: true},
	{collection: ordersCollection, keys: bson.D{{Key: "branch_id", Value: 1}, {Key: "created_at", Value: -1}}},
	{collection: ordersCollection, keys: bson.D{{Key: "status", Value: 1}}},
	{collection: branchesCollection, keys: bson.D{{Key: "slug", Value: 1}}, unique: true},
	{collection: tablesCollection, keys: bson.D{{Key: "scan_token", Value: 1}}, unique: true},
	{collection: tablesCollection, keys: bson.D{{Key: "branch_id", Value: 1}, {Key: "number", Value: 1}}, unique: true},
	{collection: categoriesCollection, keys: bson.D{{Key: "slug", Value: 1}}, unique: true},
	{collection: menuItemsCollection, keys: bson.D{{Key: "category_id", Value: 1}}},
	{collection: branchMenuCollection, keys: bson.D{{Key: "branch_id", Value: 1}, {Key: "menu_item_id", Value: 1}}, unique: true},
}

func (r *BaseRepo) ensureIndexes(ctx context.Context) error {
	for _, ix := range indexes {
		model := mongo.IndexModel{Keys: ix.keys}
		if ix.unique {
			model.Options = options.Index().SetUnique(true)
		}
		if _, err := r.db.Collection(ix.collection).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("cannot create index on %s: %w", ix.collection, err)
		}
	}
	return nil
}

// Reset drops the whole database, seed bookkeeping included.
func (r *BaseRepo) Reset(ctx context.Context) error {
	if r.db == nil {
		return fmt.Errorf("mongo repo not started")
	}
	if err := r.db.Drop(ctx); err != nil {
		return fmt.Errorf("cannot drop database %s: %w", r.db.Name(), err)
	}
	r.logger.Infof("Dropped database: %s", r.db.Name())
	return nil
}
