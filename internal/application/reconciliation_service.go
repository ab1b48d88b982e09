package application

import (
	"context"
	"fmt"
	"time"

	"github.com/stockledger/inventory-service/internal/domain"
	"github.com/stockledger/inventory-service/pkg/events"
	"github.com/stockledger/inventory-service/pkg/kafka"
	"github.com/stockledger/inventory-service/pkg/logging"
	"github.com/stockledger/inventory-service/pkg/metrics"
)

// ReconciliationService keeps item quantities and the transaction ledger in
// agreement. All mutations are serialized per item; transfers hold both leg
// locks for their duration.
type ReconciliationService struct {
	items     domain.ItemRepository
	txns      domain.TransactionRepository
	tx        TransactionRunner
	locks     *itemLocks
	publisher EventPublisher
	factory   *events.Factory
	metrics   *metrics.Metrics
	logger    *logging.Logger
}

// NewReconciliationService creates the reconciliation engine
func NewReconciliationService(
	items domain.ItemRepository,
	txns domain.TransactionRepository,
	tx TransactionRunner,
	publisher EventPublisher,
	factory *events.Factory,
	m *metrics.Metrics,
	logger *logging.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		items:     items,
		txns:      txns,
		tx:        tx,
		locks:     newItemLocks(),
		publisher: publisher,
		factory:   factory,
		metrics:   m,
		logger:    logger.WithComponent("reconciliation"),
	}
}

// transferKey serializes the credit leg of transfers, including target item
// creation, on a stable key independent of the target item's existence.
func transferKey(sku, branchID string) string {
	return sku + "@" + branchID
}

// Record creates a transaction and, unless it pends for approval, applies its
// stock delta.
func (s *ReconciliationService) Record(ctx context.Context, cmd RecordTransactionCommand) (*TransactionDTO, error) {
	item, err := s.items.FindByID(ctx, cmd.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}

	txn, err := domain.NewTransaction(domain.NewTransactionParams{
		ItemID:         item.ID,
		ItemName:       item.Name,
		SKU:            item.SKU,
		Type:           cmd.Type,
		Quantity:       cmd.Quantity,
		BranchID:       item.BranchID,
		TargetBranchID: cmd.TargetBranchID,
		Personnel:      cmd.Personnel,
		OriginOrSource: cmd.OriginOrSource,
		PlacementInfo:  item.Placement(),
		Notes:          cmd.Notes,
		RequestedBy:    cmd.RequestedBy,
		RequestedRole:  cmd.RequestedRole,
		OccurredAt:     cmd.OccurredAt,
	})
	if err != nil {
		return nil, err
	}

	unlock := s.lockForTransaction(txn)
	defer unlock()

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if txn.IsApproved() {
			if err := s.applyDelta(ctx, txn); err != nil {
				return err
			}
		} else if err := s.checkAvailability(ctx, txn); err != nil {
			return err
		}
		if err := s.txns.Save(ctx, txn); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		s.recordStockFailure(err)
		return nil, err
	}

	s.metrics.RecordTransactionRecorded(string(txn.Type), string(txn.Status))
	s.publisher.Publish(ctx, kafka.Topics.TransactionEvents, s.factory.NewEvent(
		events.TransactionRecorded, "transaction/"+txn.ID.String(), transactionEventData(txn)))

	s.logger.Info("transaction recorded",
		"transactionId", txn.ID.String(),
		"itemId", txn.ItemID,
		"type", txn.Type,
		"quantity", txn.Quantity,
		"status", txn.Status,
	)

	dto := toTransactionDTO(txn)
	return &dto, nil
}

// Approve settles a pending transaction and applies its delta
func (s *ReconciliationService) Approve(ctx context.Context, id, approver string) (*TransactionDTO, error) {
	txn, err := s.loadTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if !txn.IsPending() {
		return nil, domain.ErrTransactionNotPending
	}

	unlock := s.lockForTransaction(txn)
	defer unlock()

	// Re-read under the lock: a concurrent approve/reject/delete may have won
	txn, err = s.txns.FindByID(ctx, txn.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload transaction: %w", err)
	}
	if txn == nil {
		return nil, &domain.ReconciliationConflictError{TransactionID: id, Reason: "deleted concurrently"}
	}
	if !txn.IsPending() {
		return nil, &domain.ReconciliationConflictError{TransactionID: id, Reason: "settled concurrently"}
	}

	if err := txn.Approve(approver); err != nil {
		return nil, err
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.applyDelta(ctx, txn); err != nil {
			return err
		}
		if err := s.txns.Save(ctx, txn); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		s.recordStockFailure(err)
		return nil, err
	}

	s.metrics.RecordTransactionRecorded(string(txn.Type), string(txn.Status))
	s.publisher.Publish(ctx, kafka.Topics.TransactionEvents, s.factory.NewEvent(
		events.TransactionApproved, "transaction/"+txn.ID.String(), transactionEventData(txn)))

	s.logger.Info("transaction approved",
		"transactionId", txn.ID.String(),
		"approvedBy", approver,
	)

	dto := toTransactionDTO(txn)
	return &dto, nil
}

// Reject settles a pending transaction without moving stock
func (s *ReconciliationService) Reject(ctx context.Context, id, approver string) (*TransactionDTO, error) {
	txn, err := s.loadTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if !txn.IsPending() {
		return nil, domain.ErrTransactionNotPending
	}

	unlock := s.lockForTransaction(txn)
	defer unlock()

	txn, err = s.txns.FindByID(ctx, txn.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload transaction: %w", err)
	}
	if txn == nil {
		return nil, &domain.ReconciliationConflictError{TransactionID: id, Reason: "deleted concurrently"}
	}

	if err := txn.Reject(approver); err != nil {
		return nil, err
	}
	if err := s.txns.Save(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	s.publisher.Publish(ctx, kafka.Topics.TransactionEvents, s.factory.NewEvent(
		events.TransactionRejected, "transaction/"+txn.ID.String(), transactionEventData(txn)))

	s.logger.Info("transaction rejected",
		"transactionId", txn.ID.String(),
		"rejectedBy", approver,
	)

	dto := toTransactionDTO(txn)
	return &dto, nil
}

// Delete reverts an approved transaction's stock delta and removes it from
// the ledger. Pending and rejected transactions are removed without any
// stock movement.
func (s *ReconciliationService) Delete(ctx context.Context, id string) error {
	txn, err := s.loadTransaction(ctx, id)
	if err != nil {
		return err
	}

	unlock := s.lockForTransaction(txn)
	defer unlock()

	txn, err = s.txns.FindByID(ctx, txn.ID)
	if err != nil {
		return fmt.Errorf("failed to reload transaction: %w", err)
	}
	if txn == nil {
		return &domain.ReconciliationConflictError{TransactionID: id, Reason: "deleted concurrently"}
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if txn.IsApproved() {
			if err := s.revertDelta(ctx, txn); err != nil {
				return err
			}
		}
		if err := s.txns.Delete(ctx, txn.ID); err != nil {
			return fmt.Errorf("failed to delete transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		s.recordStockFailure(err)
		return err
	}
	if txn.IsApproved() {
		s.metrics.RecordTransactionReverted(string(txn.Type))
	}

	s.publisher.Publish(ctx, kafka.Topics.TransactionEvents, s.factory.NewEvent(
		events.TransactionReverted, "transaction/"+txn.ID.String(), transactionEventData(txn)))

	s.logger.Info("transaction deleted",
		"transactionId", txn.ID.String(),
		"type", txn.Type,
		"status", txn.Status,
	)
	return nil
}

// Edit rewrites a transaction. For approved transactions the old stock delta
// is reverted and the new one applied as a single unit; when the item is
// unchanged the two deltas compose against the same base quantity.
func (s *ReconciliationService) Edit(ctx context.Context, id string, cmd EditTransactionCommand) (*TransactionDTO, error) {
	if cmd.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	txn, err := s.loadTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	newItemID := cmd.ItemID
	if newItemID == "" {
		newItemID = txn.ItemID
	}
	if txn.Type == domain.TransactionTransfer && newItemID != txn.ItemID {
		return nil, fmt.Errorf("transfer edits cannot change the item")
	}

	var unlock func()
	if txn.Type == domain.TransactionTransfer {
		unlock = s.locks.LockPair(txn.ItemID, transferKey(txn.SKU, txn.TargetBranchID))
	} else {
		unlock = s.locks.LockPair(txn.ItemID, newItemID)
	}
	defer unlock()

	txn, err = s.txns.FindByID(ctx, txn.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload transaction: %w", err)
	}
	if txn == nil {
		return nil, &domain.ReconciliationConflictError{TransactionID: id, Reason: "deleted concurrently"}
	}

	newItem, err := s.items.FindByID(ctx, newItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	if newItem == nil {
		return nil, domain.ErrItemNotFound
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if txn.IsApproved() {
			if err := s.rebalance(ctx, txn, newItem, cmd.Quantity); err != nil {
				return err
			}
		}

		txn.ItemID = newItem.ID
		txn.ItemName = newItem.Name
		txn.SKU = newItem.SKU
		if txn.Type != domain.TransactionTransfer {
			txn.BranchID = newItem.BranchID
		}
		txn.Quantity = cmd.Quantity
		txn.Personnel = cmd.Personnel
		txn.OriginOrSource = cmd.OriginOrSource
		txn.Notes = cmd.Notes
		txn.UpdatedAt = time.Now().UTC()

		if err := s.txns.Save(ctx, txn); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		s.recordStockFailure(err)
		return nil, err
	}

	s.metrics.RecordTransactionEdited()
	s.publisher.Publish(ctx, kafka.Topics.TransactionEvents, s.factory.NewEvent(
		events.TransactionEdited, "transaction/"+txn.ID.String(), transactionEventData(txn)))

	s.logger.Info("transaction edited",
		"transactionId", txn.ID.String(),
		"itemId", txn.ItemID,
		"quantity", txn.Quantity,
	)

	dto := toTransactionDTO(txn)
	return &dto, nil
}

// Get returns one transaction
func (s *ReconciliationService) Get(ctx context.Context, id string) (*TransactionDTO, error) {
	txn, err := s.loadTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toTransactionDTO(txn)
	return &dto, nil
}

// List returns transactions matching the filter
func (s *ReconciliationService) List(ctx context.Context, filter domain.TransactionFilter) ([]TransactionDTO, error) {
	txns, err := s.txns.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return toTransactionDTOs(txns), nil
}

// ListPending returns the approval queue and refreshes the pending gauge
func (s *ReconciliationService) ListPending(ctx context.Context) ([]TransactionDTO, error) {
	txns, err := s.txns.FindPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending transactions: %w", err)
	}
	s.metrics.SetPendingApprovals(len(txns))
	return toTransactionDTOs(txns), nil
}

func (s *ReconciliationService) loadTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	txnID, err := domain.TransactionIDFromString(id)
	if err != nil {
		return nil, err
	}
	txn, err := s.txns.FindByID(ctx, txnID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	if txn == nil {
		return nil, domain.ErrTransactionNotFound
	}
	return txn, nil
}

func (s *ReconciliationService) lockForTransaction(txn *domain.Transaction) func() {
	if txn.Type == domain.TransactionTransfer {
		return s.locks.LockPair(txn.ItemID, transferKey(txn.SKU, txn.TargetBranchID))
	}
	return s.locks.Lock(txn.ItemID)
}

// checkAvailability validates a pending outbound entry against current stock.
// The shortfall fails submission; pending entries never reserve stock, so the
// same check runs again at approval time.
func (s *ReconciliationService) checkAvailability(ctx context.Context, txn *domain.Transaction) error {
	item, err := s.items.FindByID(ctx, txn.ItemID)
	if err != nil {
		return fmt.Errorf("failed to load item: %w", err)
	}
	if item == nil {
		return domain.ErrItemNotFound
	}
	if txn.Type == domain.TransactionOut && txn.Quantity > item.Quantity {
		return &domain.InsufficientStockError{
			ItemID:    item.ID,
			Requested: txn.Quantity,
			Available: item.Quantity,
		}
	}
	return nil
}

// applyDelta moves stock for an approved transaction. Caller holds the locks.
func (s *ReconciliationService) applyDelta(ctx context.Context, txn *domain.Transaction) error {
	item, err := s.items.FindByID(ctx, txn.ItemID)
	if err != nil {
		return fmt.Errorf("failed to load item: %w", err)
	}
	if item == nil {
		return &domain.ReconciliationConflictError{
			TransactionID: txn.ID.String(),
			Reason:        "item no longer exists",
		}
	}

	switch txn.Type {
	case domain.TransactionIn:
		if err := item.Receive(txn.Quantity); err != nil {
			return err
		}
		return s.saveItem(ctx, item)

	case domain.TransactionOut:
		if err := item.Deduct(txn.Quantity); err != nil {
			return err
		}
		return s.saveItem(ctx, item)

	case domain.TransactionTransfer:
		return s.applyTransfer(ctx, txn, item)
	}

	return domain.ErrInvalidTransactionType
}

// applyTransfer deducts the source and credits the target branch's item with
// the same SKU, creating it at placement A-01 when it does not exist yet.
func (s *ReconciliationService) applyTransfer(ctx context.Context, txn *domain.Transaction, source *domain.InventoryItem) error {
	if err := source.Deduct(txn.Quantity); err != nil {
		return err
	}

	target, err := s.items.FindBySKUAndBranch(ctx, txn.SKU, txn.TargetBranchID)
	if err != nil {
		return fmt.Errorf("failed to load target item: %w", err)
	}
	if target == nil {
		target, err = domain.NewInventoryItem(
			source.SKU, source.Name, txn.Quantity, source.MinThreshold, 1, 1, txn.TargetBranchID)
		if err != nil {
			return err
		}
	} else {
		if err := target.Receive(txn.Quantity); err != nil {
			return err
		}
	}

	if err := s.saveItem(ctx, source); err != nil {
		return err
	}
	return s.saveItem(ctx, target)
}

// revertDelta applies the inverse delta of an approved transaction
func (s *ReconciliationService) revertDelta(ctx context.Context, txn *domain.Transaction) error {
	item, err := s.items.FindByID(ctx, txn.ItemID)
	if err != nil {
		return fmt.Errorf("failed to load item: %w", err)
	}
	if item == nil {
		return &domain.ReconciliationConflictError{
			TransactionID: txn.ID.String(),
			Reason:        "item no longer exists",
		}
	}

	switch txn.Type {
	case domain.TransactionIn:
		if err := item.RevertReceive(txn.Quantity); err != nil {
			return err
		}
		return s.saveItem(ctx, item)

	case domain.TransactionOut:
		if err := item.RevertDeduct(txn.Quantity); err != nil {
			return err
		}
		return s.saveItem(ctx, item)

	case domain.TransactionTransfer:
		target, err := s.items.FindBySKUAndBranch(ctx, txn.SKU, txn.TargetBranchID)
		if err != nil {
			return fmt.Errorf("failed to load target item: %w", err)
		}
		if target == nil {
			return &domain.ReconciliationConflictError{
				TransactionID: txn.ID.String(),
				Reason:        "transfer target item no longer exists",
			}
		}
		// The credited leg comes back first so a consumed target aborts the
		// revert before the source is touched
		if err := target.RevertReceive(txn.Quantity); err != nil {
			return err
		}
		if err := item.RevertDeduct(txn.Quantity); err != nil {
			return err
		}
		if err := s.saveItem(ctx, target); err != nil {
			return err
		}
		return s.saveItem(ctx, item)
	}

	return domain.ErrInvalidTransactionType
}

// rebalance composes the revert of the old delta with the apply of the new
// one for an edit. Nothing is saved until both sides succeed in memory.
func (s *ReconciliationService) rebalance(ctx context.Context, txn *domain.Transaction, newItem *domain.InventoryItem, newQty int) error {
	if txn.Type == domain.TransactionTransfer {
		return s.rebalanceTransfer(ctx, txn, newItem, newQty)
	}

	if newItem.ID == txn.ItemID {
		// Same item: adjust the base once so revert and apply compose
		base := newItem.Quantity
		if txn.Type == domain.TransactionIn {
			base = base - txn.Quantity + newQty
		} else {
			base = base + txn.Quantity - newQty
		}
		if err := newItem.SetQuantity(base, "edit"); err != nil {
			return err
		}
		return s.saveItem(ctx, newItem)
	}

	oldItem, err := s.items.FindByID(ctx, txn.ItemID)
	if err != nil {
		return fmt.Errorf("failed to load item: %w", err)
	}
	if oldItem == nil {
		return &domain.ReconciliationConflictError{
			TransactionID: txn.ID.String(),
			Reason:        "original item no longer exists",
		}
	}

	if txn.Type == domain.TransactionIn {
		if err := oldItem.RevertReceive(txn.Quantity); err != nil {
			return err
		}
		if err := newItem.Receive(newQty); err != nil {
			return err
		}
	} else {
		if err := oldItem.RevertDeduct(txn.Quantity); err != nil {
			return err
		}
		if err := newItem.Deduct(newQty); err != nil {
			return err
		}
	}

	if err := s.saveItem(ctx, oldItem); err != nil {
		return err
	}
	return s.saveItem(ctx, newItem)
}

func (s *ReconciliationService) rebalanceTransfer(ctx context.Context, txn *domain.Transaction, source *domain.InventoryItem, newQty int) error {
	delta := newQty - txn.Quantity
	if delta == 0 {
		return nil
	}

	target, err := s.items.FindBySKUAndBranch(ctx, txn.SKU, txn.TargetBranchID)
	if err != nil {
		return fmt.Errorf("failed to load target item: %w", err)
	}
	if target == nil {
		return &domain.ReconciliationConflictError{
			TransactionID: txn.ID.String(),
			Reason:        "transfer target item no longer exists",
		}
	}

	if delta > 0 {
		if err := source.Deduct(delta); err != nil {
			return err
		}
		if err := target.Receive(delta); err != nil {
			return err
		}
	} else {
		if err := target.Deduct(-delta); err != nil {
			return err
		}
		if err := source.Receive(-delta); err != nil {
			return err
		}
	}

	if err := s.saveItem(ctx, source); err != nil {
		return err
	}
	return s.saveItem(ctx, target)
}

func (s *ReconciliationService) saveItem(ctx context.Context, item *domain.InventoryItem) error {
	if err := s.items.Save(ctx, item); err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}
	publishItemEvents(ctx, s.publisher, s.factory, s.metrics, item)
	return nil
}

func (s *ReconciliationService) recordStockFailure(err error) {
	if domain.IsInsufficientStock(err) {
		s.metrics.RecordInsufficientStock()
	}
}
