package events

import (
	"time"
)

// Event type constants for ledger domain events
const (
	TransactionRecorded = "stockledger.transaction.recorded"
	TransactionApproved = "stockledger.transaction.approved"
	TransactionRejected = "stockledger.transaction.rejected"
	TransactionReverted = "stockledger.transaction.reverted"
	TransactionEdited   = "stockledger.transaction.edited"
	StockAdjusted       = "stockledger.inventory.stock-adjusted"
	StockTransferred    = "stockledger.inventory.stock-transferred"
	LowStockAlert       = "stockledger.inventory.low-stock-alert"
	ItemCreated         = "stockledger.inventory.item-created"
	ItemRelocated       = "stockledger.inventory.item-relocated"
)

// Source identifies this service as the event origin
const Source = "/stockledger/inventory-service"

// CloudEvent is a CloudEvents v1.0 compliant envelope
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	Type            string      `json:"type"`
	Source          string      `json:"source"`
	Subject         string      `json:"subject,omitempty"`
	ID              string      `json:"id"`
	Time            time.Time   `json:"time"`
	DataContentType string      `json:"datacontenttype"`
	Data            interface{} `json:"data"`

	CorrelationID string `json:"correlationid,omitempty"`
	BranchID      string `json:"branchid,omitempty"`
}

// TransactionEventData is the payload for transaction lifecycle events
type TransactionEventData struct {
	TransactionID string `json:"transactionId"`
	ItemID        string `json:"itemId"`
	ItemName      string `json:"itemName"`
	SKU           string `json:"sku,omitempty"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	Quantity      int    `json:"quantity"`
	BranchID      string `json:"branchId"`
	TargetBranch  string `json:"targetBranchId,omitempty"`
	Personnel     string `json:"personnel,omitempty"`
}

// StockAdjustedData is the payload for stock level change events
type StockAdjustedData struct {
	ItemID      string `json:"itemId"`
	SKU         string `json:"sku"`
	BranchID    string `json:"branchId"`
	PreviousQty int    `json:"previousQuantity"`
	NewQty      int    `json:"newQuantity"`
	Reason      string `json:"reason"`
}

// LowStockAlertData is the payload for low stock alerts
type LowStockAlertData struct {
	ItemID       string `json:"itemId"`
	SKU          string `json:"sku"`
	ItemName     string `json:"itemName"`
	BranchID     string `json:"branchId"`
	Quantity     int    `json:"quantity"`
	MinThreshold int    `json:"minThreshold"`
}
