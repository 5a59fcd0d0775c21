package repomanager

import (
	"context"

	"github.com/dmitrijs2005/paylink/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/paylink/internal/server/repositories/chats"
	"github.com/dmitrijs2005/paylink/internal/server/repositories/histories"
	"github.com/dmitrijs2005/paylink/internal/server/repositories/transfers"
)

// MemoryRepositoryManager keeps everything in process memory. Used when no
// database DSN is configured, and throughout the test suites.
type MemoryRepositoryManager struct {
	accounts  accounts.Repository
	chats     chats.Repository
	histories histories.Repository
	transfers transfers.Repository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		accounts:  accounts.NewMemoryRepository(),
		chats:     chats.NewMemoryRepository(),
		histories: histories.NewMemoryRepository(),
		transfers: transfers.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(ctx context.Context) error { return nil }

func (m *MemoryRepositoryManager) Accounts() accounts.Repository { return m.accounts }

func (m *MemoryRepositoryManager) Chats() chats.Repository { return m.chats }

func (m *MemoryRepositoryManager) Histories() histories.Repository { return m.histories }

func (m *MemoryRepositoryManager) Transfers() transfers.Repository { return m.transfers }

func (m *MemoryRepositoryManager) Close() error { return nil }
