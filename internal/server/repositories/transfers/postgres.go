package transfers

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/paylink/internal/common"
	"github.com/dmitrijs2005/paylink/internal/dbx"
)

// PostgresRepository persists the recorded-transfer index in the
// recorded_transfers table. The primary key on transfer_id makes Insert an
// atomic insert-if-absent.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Contains(ctx context.Context, transferID uint64) (bool, error) {
	query :=
		`SELECT EXISTS (SELECT 1 FROM recorded_transfers WHERE transfer_id = $1)
		 `

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, int64(transferID)).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, transferID uint64, from, to string) error {
	query :=
		`INSERT INTO recorded_transfers (transfer_id, from_principal, to_principal)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (transfer_id) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query, int64(transferID), from, to)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrAlreadyRecorded
	}

	return nil
}
