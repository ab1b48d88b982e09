package domain

import (
	"context"
)

// ItemRepository persists inventory items. Find methods return (nil, nil)
// when no document matches.
type ItemRepository interface {
	Save(ctx context.Context, item *InventoryItem) error
	FindByID(ctx context.Context, id string) (*InventoryItem, error)
	FindBySKUAndBranch(ctx context.Context, sku, branchID string) (*InventoryItem, error)
	FindByBranch(ctx context.Context, branchID string) ([]*InventoryItem, error)
	FindAll(ctx context.Context) ([]*InventoryItem, error)
	FindBelowThreshold(ctx context.Context) ([]*InventoryItem, error)
	Delete(ctx context.Context, id string) error
}

// TransactionFilter narrows transaction queries
type TransactionFilter struct {
	BranchID string
	ItemID   string
	Type     TransactionType
	Status   TransactionStatus
	Limit    int64
}

// TransactionRepository persists ledger transactions
type TransactionRepository interface {
	Save(ctx context.Context, txn *Transaction) error
	FindByID(ctx context.Context, id TransactionID) (*Transaction, error)
	Find(ctx context.Context, filter TransactionFilter) ([]*Transaction, error)
	FindPending(ctx context.Context) ([]*Transaction, error)
	CountPending(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id TransactionID) error
}

// BranchRepository persists branches
type BranchRepository interface {
	Save(ctx context.Context, branch *Branch) error
	FindByID(ctx context.Context, id string) (*Branch, error)
	FindAll(ctx context.Context) ([]*Branch, error)
	Delete(ctx context.Context, id string) error
}
