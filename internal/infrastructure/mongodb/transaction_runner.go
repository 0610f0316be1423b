package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// transactionalClient is the slice of the storage client the runner needs
type transactionalClient interface {
	WithTransaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) error) error
}

// SessionTransactionRunner runs functions inside a MongoDB multi-document
// transaction. Requires a replica set deployment.
type SessionTransactionRunner struct {
	client transactionalClient
}

func NewSessionTransactionRunner(client transactionalClient) *SessionTransactionRunner {
	return &SessionTransactionRunner{client: client}
}

func (r *SessionTransactionRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		return fn(sessCtx)
	})
}

func (r *SessionTransactionRunner) Transactional() bool { return true }

// NoopTransactionRunner runs functions directly, for standalone MongoDB
// deployments without transaction support. Writes are not atomic across
// collections.
type NoopTransactionRunner struct{}

func NewNoopTransactionRunner() *NoopTransactionRunner {
	return &NoopTransactionRunner{}
}

func (NoopTransactionRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (NoopTransactionRunner) Transactional() bool { return false }
