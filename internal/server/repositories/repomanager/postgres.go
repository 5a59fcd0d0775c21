package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/paylink/internal/server/migrations"
	"github.com/dmitrijs2005/paylink/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/paylink/internal/server/repositories/chats"
	"github.com/dmitrijs2005/paylink/internal/server/repositories/histories"
	"github.com/dmitrijs2005/paylink/internal/server/repositories/transfers"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager keeps the money records (histories and the
// recorded-transfer index) in PostgreSQL. Accounts and chat aggregates stay
// in memory: they are mutated under per-aggregate locks held across the
// outbound ledger call and are served from authoritative in-process state.
type PostgresRepositoryManager struct {
	db        *sql.DB
	accounts  accounts.Repository
	chats     chats.Repository
	histories histories.Repository
	transfers transfers.Repository
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// NewPostgresRepositoryManager opens the database and builds the hybrid
// repository set.
func NewPostgresRepositoryManager(dsn string) (*PostgresRepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	return &PostgresRepositoryManager{
		db:        db,
		accounts:  accounts.NewMemoryRepository(),
		chats:     chats.NewMemoryRepository(),
		histories: histories.NewPostgresRepository(db),
		transfers: transfers.NewPostgresRepository(db),
	}, nil
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the managed connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, m.db, ".")
}

func (m *PostgresRepositoryManager) Accounts() accounts.Repository { return m.accounts }

func (m *PostgresRepositoryManager) Chats() chats.Repository { return m.chats }

func (m *PostgresRepositoryManager) Histories() histories.Repository { return m.histories }

func (m *PostgresRepositoryManager) Transfers() transfers.Repository { return m.transfers }

func (m *PostgresRepositoryManager) Close() error { return m.db.Close() }
