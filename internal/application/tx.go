package application

import (
	"context"
)

// TransactionRunner executes fn atomically against the datastore. Every write
// made through the ctx passed to fn is rolled back when fn returns an error.
type TransactionRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
