// Package repomanager wires concrete repository implementations together and
// exposes them to the service layer behind one interface.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/paylink/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/paylink/internal/server/repositories/chats"
	"github.com/dmitrijs2005/paylink/internal/server/repositories/histories"
	"github.com/dmitrijs2005/paylink/internal/server/repositories/transfers"
)

// RepositoryManager vends the four repositories and owns their shared
// resources (database handle, migrations).
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Accounts() accounts.Repository
	Chats() chats.Repository
	Histories() histories.Repository
	Transfers() transfers.Repository
	Close() error
}
