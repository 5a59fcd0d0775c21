// Package transfers stores the recorded-transfer index: the set of ledger
// transfer ids that have already produced history entries. It is the
// exactly-once guard for both recording paths.
package transfers

import "context"

// Repository is the persistence contract for the recorded-transfer index.
// Insert is insert-if-absent and returns common.ErrAlreadyRecorded when the
// transfer id was recorded before, which makes concurrent duplicates safe.
type Repository interface {
	Contains(ctx context.Context, transferID uint64) (bool, error)
	Insert(ctx context.Context, transferID uint64, from, to string) error
}
