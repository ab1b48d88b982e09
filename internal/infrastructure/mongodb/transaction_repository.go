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

const transactionCollection = "transactions"

// TransactionRepository is the MongoDB implementation of domain.TransactionRepository
type TransactionRepository struct {
	collection *mongo.Collection
	metrics    *metrics.Metrics
}

// NewTransactionRepository creates a TransactionRepository and ensures its indexes
func NewTransactionRepository(db *mongo.Database, m *metrics.Metrics) (*TransactionRepository, error) {
	repo := &TransactionRepository{
		collection: db.Collection(transactionCollection),
		metrics:    m,
	}
	if err := repo.ensureIndexes(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *TransactionRepository) ensureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "itemId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "branchId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create transaction indexes: %w", err)
	}
	return nil
}

// Save upserts a transaction
func (r *TransactionRepository) Save(ctx context.Context, txn *domain.Transaction) error {
	start := time.Now()
	filter := bson.M{"_id": txn.ID}
	update := bson.M{"$set": txn}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	r.metrics.RecordMongoOperation("save", transactionCollection, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

// FindByID returns the transaction or (nil, nil) when absent
func (r *TransactionRepository) FindByID(ctx context.Context, id domain.TransactionID) (*domain.Transaction, error) {
	start := time.Now()
	var txn domain.Transaction
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&txn)
	r.metrics.RecordMongoOperation("findById", transactionCollection, time.Since(start), err)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	return &txn, nil
}

// Find returns transactions matching the filter, newest first
func (r *TransactionRepository) Find(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	query := bson.M{}
	if filter.BranchID != "" {
		query["branchId"] = filter.BranchID
	}
	if filter.ItemID != "" {
		query["itemId"] = filter.ItemID
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	start := time.Now()
	cursor, err := r.collection.Find(ctx, query, opts)
	r.metrics.RecordMongoOperation("find", transactionCollection, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var txns []*domain.Transaction
	if err := cursor.All(ctx, &txns); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}
	return txns, nil
}

// FindPending returns all transactions awaiting approval, oldest first
func (r *TransactionRepository) FindPending(ctx context.Context) ([]*domain.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	start := time.Now()
	cursor, err := r.collection.Find(ctx, bson.M{"status": domain.StatusPending}, opts)
	r.metrics.RecordMongoOperation("findPending", transactionCollection, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var txns []*domain.Transaction
	if err := cursor.All(ctx, &txns); err != nil {
		return nil, fmt.Errorf("failed to decode pending transactions: %w", err)
	}
	return txns, nil
}

// CountPending returns the number of transactions awaiting approval
func (r *TransactionRepository) CountPending(ctx context.Context) (int64, error) {
	start := time.Now()
	count, err := r.collection.CountDocuments(ctx, bson.M{"status": domain.StatusPending})
	r.metrics.RecordMongoOperation("countPending", transactionCollection, time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending transactions: %w", err)
	}
	return count, nil
}

// Delete removes a transaction
func (r *TransactionRepository) Delete(ctx context.Context, id domain.TransactionID) error {
	start := time.Now()
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	r.metrics.RecordMongoOperation("delete", transactionCollection, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}
