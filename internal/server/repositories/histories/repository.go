// Package histories stores the append-only per-account transaction history
// that backs delta retrieval for polling clients.
package histories

import (
	"context"

	"github.com/dmitrijs2005/paylink/internal/server/models"
)

// Repository is the persistence contract for transaction histories.
// Append is strictly append-only; nothing is ever reordered or deleted.
// Tail returns the rows past a length cursor in append order; it returns an
// empty slice when since is at or past the end.
type Repository interface {
	Append(ctx context.Context, principal string, entry models.TransactionEntry) error
	Tail(ctx context.Context, principal string, since int) ([]models.TransactionEntry, error)
	Length(ctx context.Context, principal string) (int, error)
}
