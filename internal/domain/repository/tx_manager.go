package repository

import "context"

// TxManager runs a function inside a database transaction. The transaction
// travels in the context; repositories pick it up transparently.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
