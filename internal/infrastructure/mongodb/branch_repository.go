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

const branchCollection = "branches"

// BranchRepository is the MongoDB implementation of domain.BranchRepository
type BranchRepository struct {
	collection *mongo.Collection
	metrics    *metrics.Metrics
}

// NewBranchRepository creates a BranchRepository
func NewBranchRepository(db *mongo.Database, m *metrics.Metrics) *BranchRepository {
	return &BranchRepository{
		collection: db.Collection(branchCollection),
		metrics:    m,
	}
}

// Save upserts a branch
func (r *BranchRepository) Save(ctx context.Context, branch *domain.Branch) error {
	start := time.Now()
	filter := bson.M{"_id": branch.ID}
	update := bson.M{"$set": branch}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	r.metrics.RecordMongoOperation("save", branchCollection, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to save branch: %w", err)
	}
	return nil
}

// FindByID returns the branch or (nil, nil) when absent
func (r *BranchRepository) FindByID(ctx context.Context, id string) (*domain.Branch, error) {
	start := time.Now()
	var branch domain.Branch
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&branch)
	r.metrics.RecordMongoOperation("findById", branchCollection, time.Since(start), err)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find branch: %w", err)
	}
	return &branch, nil
}

// FindAll returns all branches
func (r *BranchRepository) FindAll(ctx context.Context) ([]*domain.Branch, error) {
	start := time.Now()
	cursor, err := r.collection.Find(ctx, bson.M{})
	r.metrics.RecordMongoOperation("findAll", branchCollection, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query branches: %w", err)
	}
	defer cursor.Close(ctx)

	var branches []*domain.Branch
	if err := cursor.All(ctx, &branches); err != nil {
		return nil, fmt.Errorf("failed to decode branches: %w", err)
	}
	return branches, nil
}

// Delete removes a branch
func (r *BranchRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	r.metrics.RecordMongoOperation("delete", branchCollection, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to delete branch: %w", err)
	}
	return nil
}
