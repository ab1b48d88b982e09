package application

import (
	"time"

	"github.com/stockledger/inventory-service/internal/domain"
)

// RecordTransactionCommand records a single stock movement. OccurredAt
// backdates the entry; when zero the submission time is used.
type RecordTransactionCommand struct {
	ItemID         string
	Type           domain.TransactionType
	Quantity       int
	TargetBranchID string
	Personnel      string
	OriginOrSource string
	Notes          string
	RequestedBy    string
	RequestedRole  domain.ActorRole
	OccurredAt     time.Time
}

// EditTransactionCommand rewrites a recorded transaction. The stock effect of
// the old version is reverted and the new version applied as one unit.
type EditTransactionCommand struct {
	ItemID         string
	Quantity       int
	Personnel      string
	OriginOrSource string
	Notes          string
}

// BulkRow is one line of a bulk submission
type BulkRow struct {
	ItemID   string
	Quantity int
}

// BulkSubmitCommand records many movements of the same type in one call.
// All rows share the personnel, source, and date.
type BulkSubmitCommand struct {
	Rows           []BulkRow
	Type           domain.TransactionType
	Personnel      string
	OriginOrSource string
	RequestedBy    string
	RequestedRole  domain.ActorRole
	OccurredAt     time.Time
}

// CreateItemCommand registers a new inventory item
type CreateItemCommand struct {
	SKU          string
	Name         string
	Quantity     int
	MinThreshold int
	Shelf        int
	Section      int
	BranchID     string
}

// RelocateItemCommand moves an item to a new placement
type RelocateItemCommand struct {
	Shelf    int
	Section  int
	BranchID string
}

// CreateBranchCommand registers a new branch
type CreateBranchCommand struct {
	Name          string
	Address       string
	TotalShelves  int
	TotalSections int
}
