package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockledger/inventory-service/internal/domain"
	apperrors "github.com/stockledger/inventory-service/pkg/errors"
)

func newBulkService(env *testEnv) *BulkService {
	return NewBulkService(env.engine, env.metrics, testLogger())
}

func TestSubmitBatchAppliesValidRows(t *testing.T) {
	env := newTestEnv()
	bulk := newBulkService(env)
	first := seedItem(t, env, "SKU-1", 10, "branch-1")
	second := seedItem(t, env, "SKU-2", 10, "branch-1")

	result, err := bulk.SubmitBatch(context.Background(), BulkSubmitCommand{
		Type: domain.TransactionIn,
		Rows: []BulkRow{
			{ItemID: first.ID, Quantity: 5},
			{ItemID: second.ID, Quantity: 3},
		},
		Personnel:      "jamie",
		OriginOrSource: "Acme Supply",
		RequestedBy:    "jamie",
		RequestedRole:  domain.RoleManager,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Applied)
	assert.Len(t, result.Transactions, 2)
	assert.Equal(t, 15, env.items.quantity(first.ID))
	assert.Equal(t, 13, env.items.quantity(second.ID))
}

func TestSubmitBatchRejectsBatchWithInvalidRow(t *testing.T) {
	env := newTestEnv()
	bulk := newBulkService(env)
	item := seedItem(t, env, "SKU-1", 10, "branch-1")

	_, err := bulk.SubmitBatch(context.Background(), BulkSubmitCommand{
		Type: domain.TransactionIn,
		Rows: []BulkRow{
			{ItemID: item.ID, Quantity: 2},
			{ItemID: item.ID, Quantity: 3},
			{ItemID: item.ID, Quantity: 0},
		},
		Personnel:      "jamie",
		OriginOrSource: "Acme Supply",
		RequestedBy:    "jamie",
		RequestedRole:  domain.RoleManager,
	})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Details, "rows[2]")
	assert.Equal(t, 10, env.items.quantity(item.ID), "valid rows must not apply when the batch is rejected")
	assert.Equal(t, 0, env.txns.count())
}

func TestSubmitBatchRejectsAllInvalidShapes(t *testing.T) {
	env := newTestEnv()
	bulk := newBulkService(env)
	item := seedItem(t, env, "SKU-1", 10, "branch-1")

	_, err := bulk.SubmitBatch(context.Background(), BulkSubmitCommand{
		Type: domain.TransactionIn,
		Rows: []BulkRow{
			{ItemID: "", Quantity: 5},
			{ItemID: item.ID, Quantity: -2},
			{ItemID: item.ID, Quantity: 4},
		},
		Personnel:      "jamie",
		OriginOrSource: "Acme Supply",
		RequestedBy:    "jamie",
		RequestedRole:  domain.RoleManager,
	})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "no item selected", appErr.Details["rows[0]"])
	assert.Equal(t, "quantity must be positive", appErr.Details["rows[1]"])
	assert.Equal(t, 10, env.items.quantity(item.ID))
	assert.Equal(t, 0, env.txns.count())
}

func TestSubmitBatchRejectsEmptyBatch(t *testing.T) {
	env := newTestEnv()
	bulk := newBulkService(env)

	_, err := bulk.SubmitBatch(context.Background(), BulkSubmitCommand{
		Type:           domain.TransactionIn,
		Rows:           nil,
		Personnel:      "jamie",
		OriginOrSource: "Acme Supply",
		RequestedRole:  domain.RoleManager,
	})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)
	assert.Equal(t, 0, env.txns.count(), "nothing written for an empty batch")
}

func TestSubmitBatchReportsRowFailures(t *testing.T) {
	env := newTestEnv()
	bulk := newBulkService(env)
	item := seedItem(t, env, "SKU-1", 10, "branch-1")

	result, err := bulk.SubmitBatch(context.Background(), BulkSubmitCommand{
		Type: domain.TransactionOut,
		Rows: []BulkRow{
			{ItemID: item.ID, Quantity: 4},
			{ItemID: "missing-item", Quantity: 2},
			{ItemID: item.ID, Quantity: 100},
		},
		Personnel:      "jamie",
		OriginOrSource: "Shipment 42",
		RequestedBy:    "jamie",
		RequestedRole:  domain.RoleManager,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	require.Len(t, result.Failures, 2)
	assert.Equal(t, 1, result.Failures[0].Index)
	assert.Equal(t, 2, result.Failures[1].Index)
	assert.Equal(t, 6, env.items.quantity(item.ID))
}

func TestSubmitBatchStaffOutboundPends(t *testing.T) {
	env := newTestEnv()
	bulk := newBulkService(env)
	item := seedItem(t, env, "SKU-1", 10, "branch-1")

	result, err := bulk.SubmitBatch(context.Background(), BulkSubmitCommand{
		Type: domain.TransactionOut,
		Rows: []BulkRow{
			{ItemID: item.ID, Quantity: 4},
		},
		Personnel:      "sam",
		OriginOrSource: "Store front",
		RequestedBy:    "sam",
		RequestedRole:  domain.RoleStaff,
	})

	require.NoError(t, err)
	assert.Equal(t, 0, result.Applied)
	assert.Equal(t, 1, result.Pending)
	assert.Equal(t, 10, env.items.quantity(item.ID))
}

func TestSubmitBatchSharesOccurredAt(t *testing.T) {
	env := newTestEnv()
	bulk := newBulkService(env)
	first := seedItem(t, env, "SKU-1", 10, "branch-1")
	second := seedItem(t, env, "SKU-2", 10, "branch-1")
	occurred := mustParseTime(t, "2026-08-12T09:30:00Z")

	result, err := bulk.SubmitBatch(context.Background(), BulkSubmitCommand{
		Type: domain.TransactionIn,
		Rows: []BulkRow{
			{ItemID: first.ID, Quantity: 5},
			{ItemID: second.ID, Quantity: 3},
		},
		Personnel:      "jamie",
		OriginOrSource: "Acme Supply",
		RequestedBy:    "jamie",
		RequestedRole:  domain.RoleManager,
		OccurredAt:     occurred,
	})

	require.NoError(t, err)
	require.Len(t, result.Transactions, 2)
	for _, dto := range result.Transactions {
		assert.True(t, dto.CreatedAt.Equal(occurred), "row dated %v, want %v", dto.CreatedAt, occurred)
	}
}

func TestSubmitBatchUnknownType(t *testing.T) {
	env := newTestEnv()
	bulk := newBulkService(env)

	_, err := bulk.SubmitBatch(context.Background(), BulkSubmitCommand{
		Type: "ADJUST",
		Rows: []BulkRow{{ItemID: "item", Quantity: 1}},
	})

	assert.ErrorIs(t, err, domain.ErrInvalidTransactionType)
}
