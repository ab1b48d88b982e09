package domain

import (
	"time"
)

// DomainEvent is implemented by all events raised by aggregates
type DomainEvent interface {
	EventType() string
	OccurredOn() time.Time
}

// StockAdjustedEvent is raised whenever an item's quantity changes
type StockAdjustedEvent struct {
	ItemID      string
	SKU         string
	BranchID    string
	PreviousQty int
	NewQty      int
	Reason      string
	Timestamp   time.Time
}

func (e StockAdjustedEvent) EventType() string     { return "inventory.stock_adjusted" }
func (e StockAdjustedEvent) OccurredOn() time.Time { return e.Timestamp }

// LowStockAlertEvent is raised when an item's quantity reaches its threshold
type LowStockAlertEvent struct {
	ItemID       string
	SKU          string
	ItemName     string
	BranchID     string
	Quantity     int
	MinThreshold int
	Timestamp    time.Time
}

func (e LowStockAlertEvent) EventType() string     { return "inventory.low_stock_alert" }
func (e LowStockAlertEvent) OccurredOn() time.Time { return e.Timestamp }

// ItemRelocatedEvent is raised when an item moves to a new placement or branch
type ItemRelocatedEvent struct {
	ItemID       string
	SKU          string
	FromBranchID string
	ToBranchID   string
	Placement    string
	Timestamp    time.Time
}

func (e ItemRelocatedEvent) EventType() string     { return "inventory.item_relocated" }
func (e ItemRelocatedEvent) OccurredOn() time.Time { return e.Timestamp }
