package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stockledger/inventory-service/internal/domain"
	"github.com/stockledger/inventory-service/pkg/metrics"
)

const itemCollection = "inventory_items"

// ItemRepository is the MongoDB implementation of domain.ItemRepository
type ItemRepository struct {
	collection *mongo.Collection
	metrics    *metrics.Metrics
}

// NewItemRepository creates an ItemRepository and ensures its indexes
func NewItemRepository(db *mongo.Database, m *metrics.Metrics) (*ItemRepository, error) {
	repo := &ItemRepository{
		collection: db.Collection(itemCollection),
		metrics:    m,
	}
	if err := repo.ensureIndexes(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *ItemRepository) ensureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sku", Value: 1}, {Key: "branchId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "branchId", Value: 1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create item indexes: %w", err)
	}
	return nil
}

// Save upserts an item
func (r *ItemRepository) Save(ctx context.Context, item *domain.InventoryItem) error {
	start := time.Now()
	filter := bson.M{"_id": item.ID}
	update := bson.M{"$set": item}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	r.metrics.RecordMongoOperation("save", itemCollection, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}
	return nil
}

// FindByID returns the item or (nil, nil) when absent
func (r *ItemRepository) FindByID(ctx context.Context, id string) (*domain.InventoryItem, error) {
	start := time.Now()
	var item domain.InventoryItem
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	r.metrics.RecordMongoOperation("findById", itemCollection, time.Since(start), err)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find item: %w", err)
	}
	return &item, nil
}

// FindBySKUAndBranch returns the branch's item for a SKU or (nil, nil)
func (r *ItemRepository) FindBySKUAndBranch(ctx context.Context, sku, branchID string) (*domain.InventoryItem, error) {
	start := time.Now()
	var item domain.InventoryItem
	err := r.collection.FindOne(ctx, bson.M{"sku": sku, "branchId": branchID}).Decode(&item)
	r.metrics.RecordMongoOperation("findBySkuAndBranch", itemCollection, time.Since(start), err)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find item by sku: %w", err)
	}
	return &item, nil
}

// FindByBranch returns all items of one branch
func (r *ItemRepository) FindByBranch(ctx context.Context, branchID string) ([]*domain.InventoryItem, error) {
	return r.findMany(ctx, bson.M{"branchId": branchID}, "findByBranch")
}

// FindAll returns all items
func (r *ItemRepository) FindAll(ctx context.Context) ([]*domain.InventoryItem, error) {
	return r.findMany(ctx, bson.M{}, "findAll")
}

// FindBelowThreshold returns items at or below their replenishment threshold
func (r *ItemRepository) FindBelowThreshold(ctx context.Context) ([]*domain.InventoryItem, error) {
	filter := bson.M{"$expr": bson.M{"$lte": bson.A{"$quantity", "$minThreshold"}}}
	return r.findMany(ctx, filter, "findBelowThreshold")
}

// Delete removes an item
func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	r.metrics.RecordMongoOperation("delete", itemCollection, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

func (r *ItemRepository) findMany(ctx context.Context, filter bson.M, operation string) ([]*domain.InventoryItem, error) {
	start := time.Now()
	cursor, err := r.collection.Find(ctx, filter)
	r.metrics.RecordMongoOperation(operation, itemCollection, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []*domain.InventoryItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	return items, nil
}
