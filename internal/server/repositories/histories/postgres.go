package histories

import (
	"context"
	"fmt"
	"math/big"

	"github.com/dmitrijs2005/paylink/internal/dbx"
	"github.com/dmitrijs2005/paylink/internal/server/models"
)

// PostgresRepository persists history rows in the account_history table.
// Row ids are assigned by a sequence, so insertion order is the history
// order and OFFSET implements the length cursor directly.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, principal string, entry models.TransactionEntry) error {
	query :=
		`INSERT INTO account_history (principal, transfer_id, direction, counterparty, counterparty_pay_id, note, ts, amount)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 `

	_, err := r.db.ExecContext(ctx, query,
		principal, int64(entry.TransferID), string(entry.Direction), entry.Counterparty,
		entry.CounterpartyPayID, entry.Note, entry.Timestamp, entry.Amount.String())

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Tail(ctx context.Context, principal string, since int) ([]models.TransactionEntry, error) {
	if since < 0 {
		since = 0
	}

	query :=
		`SELECT transfer_id, direction, counterparty, counterparty_pay_id, note, ts, amount
		 FROM account_history
		 WHERE principal = $1
		 ORDER BY id
		 OFFSET $2
		 `

	rows, err := r.db.QueryContext(ctx, query, principal, since)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	entries := []models.TransactionEntry{}
	for rows.Next() {
		var (
			entry      models.TransactionEntry
			transferID int64
			direction  string
			amount     string
		)
		if err := rows.Scan(&transferID, &direction, &entry.Counterparty,
			&entry.CounterpartyPayID, &entry.Note, &entry.Timestamp, &amount); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		entry.TransferID = uint64(transferID)
		entry.Direction = models.Direction(direction)
		value, ok := new(big.Int).SetString(amount, 10)
		if !ok {
			return nil, fmt.Errorf("db error: malformed amount %q", amount)
		}
		entry.Amount = value
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return entries, nil
}

func (r *PostgresRepository) Length(ctx context.Context, principal string) (int, error) {
	query :=
		`SELECT count(*) FROM account_history
		 WHERE principal = $1
		 `

	var length int
	if err := r.db.QueryRowContext(ctx, query, principal).Scan(&length); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return length, nil
}
