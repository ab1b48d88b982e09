package application

import (
	"context"
	"fmt"

	"github.com/stockledger/inventory-service/internal/domain"
	apperrors "github.com/stockledger/inventory-service/pkg/errors"
	"github.com/stockledger/inventory-service/pkg/logging"
	"github.com/stockledger/inventory-service/pkg/metrics"
)

// BulkService coordinates multi-row stock submissions
type BulkService struct {
	engine  *ReconciliationService
	metrics *metrics.Metrics
	logger  *logging.Logger
}

// NewBulkService creates a BulkService
func NewBulkService(engine *ReconciliationService, m *metrics.Metrics, logger *logging.Logger) *BulkService {
	return &BulkService{
		engine:  engine,
		metrics: m,
		logger:  logger.WithComponent("bulk"),
	}
}

// SubmitBatch records a batch of movements. Every row is validated before any
// delta is applied: a batch containing a row with no item reference or a
// non-positive quantity is rejected wholesale and nothing is written. An
// empty batch is likewise rejected, never accepted as zero movements.
func (s *BulkService) SubmitBatch(ctx context.Context, cmd BulkSubmitCommand) (*BulkResult, error) {
	if !cmd.Type.IsValid() {
		return nil, domain.ErrInvalidTransactionType
	}
	if len(cmd.Rows) == 0 {
		return nil, apperrors.ErrValidation("bulk submission contains no rows")
	}

	invalid := make(map[string]string)
	for i, row := range cmd.Rows {
		switch {
		case row.ItemID == "":
			invalid[fmt.Sprintf("rows[%d]", i)] = "no item selected"
		case row.Quantity <= 0:
			invalid[fmt.Sprintf("rows[%d]", i)] = "quantity must be positive"
		}
	}
	if len(invalid) > 0 {
		for range invalid {
			s.metrics.RecordBulkRow("rejected")
		}
		return nil, apperrors.ErrValidationWithFields("bulk submission contains invalid rows", invalid)
	}

	result := &BulkResult{Transactions: []TransactionDTO{}}

	for i, row := range cmd.Rows {
		dto, err := s.engine.Record(ctx, RecordTransactionCommand{
			ItemID:         row.ItemID,
			Type:           cmd.Type,
			Quantity:       row.Quantity,
			Personnel:      cmd.Personnel,
			OriginOrSource: cmd.OriginOrSource,
			RequestedBy:    cmd.RequestedBy,
			RequestedRole:  cmd.RequestedRole,
			OccurredAt:     cmd.OccurredAt,
		})
		if err != nil {
			result.Failures = append(result.Failures, BulkRowFailure{
				Index:  i,
				ItemID: row.ItemID,
				Reason: err.Error(),
			})
			s.metrics.RecordBulkRow("failed")
			continue
		}

		result.Transactions = append(result.Transactions, *dto)
		if dto.Status == string(domain.StatusPending) {
			result.Pending++
			s.metrics.RecordBulkRow("pending")
		} else {
			result.Applied++
			s.metrics.RecordBulkRow("applied")
		}
	}

	s.logger.Info("bulk submission processed",
		"rows", len(cmd.Rows),
		"applied", result.Applied,
		"pending", result.Pending,
		"failed", len(result.Failures),
	)

	return result, nil
}
