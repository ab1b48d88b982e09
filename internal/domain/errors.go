package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by domain operations
var (
	// ErrItemNotFound indicates the referenced inventory item does not exist
	ErrItemNotFound = errors.New("inventory item not found")

	// ErrBranchNotFound indicates the referenced branch does not exist
	ErrBranchNotFound = errors.New("branch not found")

	// ErrTransactionNotFound indicates the referenced transaction does not exist
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrTransactionNotPending indicates an approval action on a settled transaction
	ErrTransactionNotPending = errors.New("transaction is not pending")

	// ErrInvalidQuantity indicates a non-positive quantity
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrSameBranchTransfer indicates a transfer targeting its own source branch
	ErrSameBranchTransfer = errors.New("transfer target branch must differ from source branch")

	// ErrMissingItem indicates a transaction without an item reference
	ErrMissingItem = errors.New("item reference is required")

	// ErrMissingTargetBranch indicates a transfer without a target branch
	ErrMissingTargetBranch = errors.New("transfer requires a target branch")

	// ErrMissingPersonnel indicates a transaction without responsible personnel
	ErrMissingPersonnel = errors.New("personnel is required")

	// ErrMissingOrigin indicates a transaction without a supplier or destination
	ErrMissingOrigin = errors.New("origin or source is required")

	// ErrInvalidTransactionType indicates an unknown transaction type
	ErrInvalidTransactionType = errors.New("invalid transaction type")
)

// InsufficientStockError indicates an operation would drive stock below zero
type InsufficientStockError struct {
	ItemID    string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %s: requested %d, available %d",
		e.ItemID, e.Requested, e.Available)
}

// IsInsufficientStock reports whether err is an InsufficientStockError
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}

// InvalidPlacementError indicates a malformed or out-of-range placement
type InvalidPlacementError struct {
	Input  string
	Reason string
}

func (e *InvalidPlacementError) Error() string {
	return fmt.Sprintf("invalid placement %q: %s", e.Input, e.Reason)
}

// ReconciliationConflictError indicates concurrent operations collided on a transaction
type ReconciliationConflictError struct {
	TransactionID string
	Reason        string
}

func (e *ReconciliationConflictError) Error() string {
	return fmt.Sprintf("reconciliation conflict on transaction %s: %s", e.TransactionID, e.Reason)
}
