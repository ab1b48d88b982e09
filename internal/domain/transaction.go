package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// TransactionType classifies stock movements
type TransactionType string

const (
	TransactionIn       TransactionType = "IN"
	TransactionOut      TransactionType = "OUT"
	TransactionTransfer TransactionType = "TRANSFER"
)

// IsValid reports whether the type is known
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionIn, TransactionOut, TransactionTransfer:
		return true
	}
	return false
}

// TransactionStatus tracks the approval lifecycle
type TransactionStatus string

const (
	StatusPending  TransactionStatus = "PENDING"
	StatusApproved TransactionStatus = "APPROVED"
	StatusRejected TransactionStatus = "REJECTED"
)

// ActorRole identifies who is recording a transaction
type ActorRole string

const (
	RoleAdmin   ActorRole = "ADMIN"
	RoleManager ActorRole = "MANAGER"
	RoleStaff   ActorRole = "STAFF"
)

// TransactionID uniquely identifies a transaction
type TransactionID struct {
	value string
}

// NewTransactionID generates a new transaction ID
func NewTransactionID() TransactionID {
	return TransactionID{
		value: fmt.Sprintf("TXN-%d-%s", time.Now().UnixNano(), uuid.New().String()[:8]),
	}
}

// TransactionIDFromString reconstitutes a TransactionID
func TransactionIDFromString(value string) (TransactionID, error) {
	if value == "" {
		return TransactionID{}, fmt.Errorf("transaction ID cannot be empty")
	}
	return TransactionID{value: value}, nil
}

func (id TransactionID) String() string {
	return id.value
}

// IsZero reports whether the ID is unset
func (id TransactionID) IsZero() bool {
	return id.value == ""
}

// MarshalBSONValue implements bson.ValueMarshaler
func (id TransactionID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(id.value)
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler
func (id *TransactionID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var value string
	if err := bson.UnmarshalValue(t, data, &value); err != nil {
		return err
	}
	id.value = value
	return nil
}

// Transaction is one recorded stock movement in the ledger
type Transaction struct {
	ID             TransactionID     `bson:"_id"`
	ItemID         string            `bson:"itemId"`
	ItemName       string            `bson:"itemName"`
	SKU            string            `bson:"sku,omitempty"`
	Type           TransactionType   `bson:"type"`
	Quantity       int               `bson:"quantity"`
	BranchID       string            `bson:"branchId"`
	TargetBranchID string            `bson:"targetBranchId,omitempty"`
	Personnel      string            `bson:"personnel,omitempty"`
	OriginOrSource string            `bson:"originOrSource,omitempty"`
	PlacementInfo  string            `bson:"placementInfo,omitempty"`
	Notes          string            `bson:"notes,omitempty"`
	Status         TransactionStatus `bson:"status"`
	RequestedBy    string            `bson:"requestedBy,omitempty"`
	ApprovedBy     string            `bson:"approvedBy,omitempty"`
	CreatedAt      time.Time         `bson:"createdAt"`
	UpdatedAt      time.Time         `bson:"updatedAt"`
}

// NewTransactionParams carries the inputs for NewTransaction
type NewTransactionParams struct {
	ItemID         string
	ItemName       string
	SKU            string
	Type           TransactionType
	Quantity       int
	BranchID       string
	TargetBranchID string
	Personnel      string
	OriginOrSource string
	PlacementInfo  string
	Notes          string
	RequestedBy    string
	RequestedRole  ActorRole
	OccurredAt     time.Time
}

// NewTransaction creates a validated transaction. Outbound movements recorded
// by staff start PENDING and move no stock until approved; everything else is
// approved on the spot.
func NewTransaction(p NewTransactionParams) (*Transaction, error) {
	if p.ItemID == "" {
		return nil, ErrMissingItem
	}
	if !p.Type.IsValid() {
		return nil, ErrInvalidTransactionType
	}
	if p.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if p.Personnel == "" {
		return nil, ErrMissingPersonnel
	}
	if p.OriginOrSource == "" {
		return nil, ErrMissingOrigin
	}
	if p.Type == TransactionTransfer {
		if p.TargetBranchID == "" {
			return nil, ErrMissingTargetBranch
		}
		if p.TargetBranchID == p.BranchID {
			return nil, ErrSameBranchTransfer
		}
	}

	status := StatusApproved
	if p.Type == TransactionOut && p.RequestedRole == RoleStaff {
		status = StatusPending
	}

	now := time.Now().UTC()
	createdAt := now
	if !p.OccurredAt.IsZero() {
		createdAt = p.OccurredAt.UTC()
	}
	txn := &Transaction{
		ID:             NewTransactionID(),
		ItemID:         p.ItemID,
		ItemName:       p.ItemName,
		SKU:            p.SKU,
		Type:           p.Type,
		Quantity:       p.Quantity,
		BranchID:       p.BranchID,
		TargetBranchID: p.TargetBranchID,
		Personnel:      p.Personnel,
		OriginOrSource: p.OriginOrSource,
		PlacementInfo:  p.PlacementInfo,
		Notes:          p.Notes,
		Status:         status,
		RequestedBy:    p.RequestedBy,
		CreatedAt:      createdAt,
		UpdatedAt:      now,
	}

	if status == StatusApproved {
		txn.ApprovedBy = p.RequestedBy
	}

	return txn, nil
}

// IsPending reports whether the transaction awaits approval
func (t *Transaction) IsPending() bool {
	return t.Status == StatusPending
}

// IsApproved reports whether the transaction has moved stock
func (t *Transaction) IsApproved() bool {
	return t.Status == StatusApproved
}

// Approve settles a pending transaction. APPROVED and REJECTED are terminal.
func (t *Transaction) Approve(approver string) error {
	if t.Status != StatusPending {
		return ErrTransactionNotPending
	}
	t.Status = StatusApproved
	t.ApprovedBy = approver
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// Reject settles a pending transaction without moving stock
func (t *Transaction) Reject(approver string) error {
	if t.Status != StatusPending {
		return ErrTransactionNotPending
	}
	t.Status = StatusRejected
	t.ApprovedBy = approver
	t.UpdatedAt = time.Now().UTC()
	return nil
}
