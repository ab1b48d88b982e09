package application

import (
	"time"
)

// TransactionDTO is the API representation of a transaction
type TransactionDTO struct {
	ID             string    `json:"id"`
	ItemID         string    `json:"itemId"`
	ItemName       string    `json:"itemName"`
	SKU            string    `json:"sku,omitempty"`
	Type           string    `json:"type"`
	Quantity       int       `json:"quantity"`
	BranchID       string    `json:"branchId"`
	TargetBranchID string    `json:"targetBranchId,omitempty"`
	Personnel      string    `json:"personnel,omitempty"`
	OriginOrSource string    `json:"originOrSource,omitempty"`
	PlacementInfo  string    `json:"placementInfo,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	Status         string    `json:"status"`
	RequestedBy    string    `json:"requestedBy,omitempty"`
	ApprovedBy     string    `json:"approvedBy,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ItemDTO is the API representation of an inventory item
type ItemDTO struct {
	ID           string    `json:"id"`
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	Quantity     int       `json:"quantity"`
	MinThreshold int       `json:"minThreshold"`
	Shelf        int       `json:"shelf"`
	Section      int       `json:"section"`
	Placement    string    `json:"placement"`
	BranchID     string    `json:"branchId"`
	LowStock     bool      `json:"lowStock"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BranchDTO is the API representation of a branch
type BranchDTO struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Address        string      `json:"address,omitempty"`
	TotalShelves   int         `json:"totalShelves"`
	TotalSections  int         `json:"totalSections"`
	CustomSections map[int]int `json:"customSections,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// BulkRowFailure reports one failed row of a bulk submission
type BulkRowFailure struct {
	Index  int    `json:"index"`
	ItemID string `json:"itemId,omitempty"`
	Reason string `json:"reason"`
}

// BulkResult summarizes a bulk submission
type BulkResult struct {
	Applied      int              `json:"applied"`
	Pending      int              `json:"pending"`
	Failures     []BulkRowFailure `json:"failures,omitempty"`
	Transactions []TransactionDTO `json:"transactions"`
}
