package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stockledger/inventory-service/pkg/mongodb"
)

// TxRunner executes a unit of repository writes inside a MongoDB transaction.
// The session context handed to fn joins every write made through it, so a
// failure anywhere aborts them all.
type TxRunner struct {
	client *mongodb.Client
}

// NewTxRunner creates a TxRunner backed by client's sessions
func NewTxRunner(client *mongodb.Client) *TxRunner {
	return &TxRunner{client: client}
}

// WithTransaction runs fn inside a session transaction. mongo.SessionContext
// satisfies context.Context, so repositories need no special handling.
func (r *TxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		return fn(sessCtx)
	})
}
