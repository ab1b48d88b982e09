package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InventoryItem is the stock record for one SKU at one branch
type InventoryItem struct {
	ID           string    `bson:"_id"`
	SKU          string    `bson:"sku"`
	Name         string    `bson:"name"`
	Quantity     int       `bson:"quantity"`
	MinThreshold int       `bson:"minThreshold"`
	Shelf        int       `bson:"shelf"`
	Section      int       `bson:"section"`
	BranchID     string    `bson:"branchId"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`

	events []DomainEvent `bson:"-"`
}

// NewInventoryItem creates an item with validated placement and quantity
func NewInventoryItem(sku, name string, quantity, minThreshold, shelf, section int, branchID string) (*InventoryItem, error) {
	if sku == "" {
		return nil, fmt.Errorf("sku cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("item name cannot be empty")
	}
	if quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative")
	}
	if minThreshold < 0 {
		return nil, fmt.Errorf("min threshold cannot be negative")
	}
	if shelf < 1 || section < 1 {
		return nil, &InvalidPlacementError{
			Input:  FormatPlacement(shelf, section),
			Reason: "shelf and section must be positive",
		}
	}
	if branchID == "" {
		return nil, ErrBranchNotFound
	}

	now := time.Now().UTC()
	return &InventoryItem{
		ID:           uuid.New().String(),
		SKU:          sku,
		Name:         name,
		Quantity:     quantity,
		MinThreshold: minThreshold,
		Shelf:        shelf,
		Section:      section,
		BranchID:     branchID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Placement returns the item's formatted placement, e.g. "A-01"
func (i *InventoryItem) Placement() string {
	return FormatPlacement(i.Shelf, i.Section)
}

// Receive adds stock to the item
func (i *InventoryItem) Receive(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	i.adjust(i.Quantity+qty, "receive")
	return nil
}

// Deduct removes stock from the item, never below zero
func (i *InventoryItem) Deduct(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if qty > i.Quantity {
		return &InsufficientStockError{ItemID: i.ID, Requested: qty, Available: i.Quantity}
	}
	i.adjust(i.Quantity-qty, "deduct")
	i.checkThreshold()
	return nil
}

// RevertReceive undoes a prior Receive. It fails when the stock has since
// been consumed below the reverted amount.
func (i *InventoryItem) RevertReceive(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if qty > i.Quantity {
		return &InsufficientStockError{ItemID: i.ID, Requested: qty, Available: i.Quantity}
	}
	i.adjust(i.Quantity-qty, "revert_receive")
	i.checkThreshold()
	return nil
}

// RevertDeduct undoes a prior Deduct
func (i *InventoryItem) RevertDeduct(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	i.adjust(i.Quantity+qty, "revert_deduct")
	return nil
}

// SetQuantity replaces the quantity outright, used by transactional edits
// after the old and new deltas have been composed
func (i *InventoryItem) SetQuantity(qty int, reason string) error {
	if qty < 0 {
		return &InsufficientStockError{ItemID: i.ID, Requested: i.Quantity - qty, Available: i.Quantity}
	}
	i.adjust(qty, reason)
	i.checkThreshold()
	return nil
}

// Relocate moves the item to a new placement, optionally in another branch
func (i *InventoryItem) Relocate(shelf, section int, branchID string) error {
	if shelf < 1 || section < 1 {
		return &InvalidPlacementError{
			Input:  FormatPlacement(shelf, section),
			Reason: "shelf and section must be positive",
		}
	}

	fromBranch := i.BranchID
	i.Shelf = shelf
	i.Section = section
	if branchID != "" {
		i.BranchID = branchID
	}
	i.UpdatedAt = time.Now().UTC()

	i.events = append(i.events, ItemRelocatedEvent{
		ItemID:       i.ID,
		SKU:          i.SKU,
		FromBranchID: fromBranch,
		ToBranchID:   i.BranchID,
		Placement:    i.Placement(),
		Timestamp:    i.UpdatedAt,
	})
	return nil
}

// IsBelowThreshold reports whether the item needs replenishment
func (i *InventoryItem) IsBelowThreshold() bool {
	return i.Quantity <= i.MinThreshold
}

func (i *InventoryItem) adjust(newQty int, reason string) {
	prev := i.Quantity
	i.Quantity = newQty
	i.UpdatedAt = time.Now().UTC()

	i.events = append(i.events, StockAdjustedEvent{
		ItemID:      i.ID,
		SKU:         i.SKU,
		BranchID:    i.BranchID,
		PreviousQty: prev,
		NewQty:      newQty,
		Reason:      reason,
		Timestamp:   i.UpdatedAt,
	})
}

func (i *InventoryItem) checkThreshold() {
	if !i.IsBelowThreshold() {
		return
	}
	i.events = append(i.events, LowStockAlertEvent{
		ItemID:       i.ID,
		SKU:          i.SKU,
		ItemName:     i.Name,
		BranchID:     i.BranchID,
		Quantity:     i.Quantity,
		MinThreshold: i.MinThreshold,
		Timestamp:    time.Now().UTC(),
	})
}

// PullEvents returns and clears the accumulated domain events
func (i *InventoryItem) PullEvents() []DomainEvent {
	events := i.events
	i.events = nil
	return events
}
