// Package history exposes the append-only per-account transaction history
// through a length-cursor delta API for polling clients.
package history

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/paylink/internal/common"
	"github.com/dmitrijs2005/paylink/internal/logging"
	"github.com/dmitrijs2005/paylink/internal/server/models"
	"github.com/dmitrijs2005/paylink/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/paylink/internal/server/repositories/histories"
)

type Service struct {
	accounts  accounts.Repository
	histories histories.Repository
	logger    logging.Logger
}

func NewService(ar accounts.Repository, hr histories.Repository, logger logging.Logger) *Service {
	return &Service{
		accounts:  ar,
		histories: hr,
		logger:    logger.With("module", "history_service"),
	}
}

// GetNewTransactions returns the caller's history rows past the given length
// cursor, in append order. A client that remembers the length of its last
// fetch gets exactly the rows added since then. Cursors at or past the end
// yield an empty slice, so polling with a stale cursor is harmless.
func (s *Service) GetNewTransactions(ctx context.Context, caller string, since int) ([]models.TransactionEntry, error) {
	if caller == "" {
		return nil, common.ErrAnonymousCaller
	}
	if _, err := s.accounts.Kind(ctx, caller); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAccountNotFound
		}
		return nil, err
	}
	if since < 0 {
		since = 0
	}
	return s.histories.Tail(ctx, caller, since)
}

// Length returns the caller's current history length, the cursor for the
// next GetNewTransactions call.
func (s *Service) Length(ctx context.Context, caller string) (int, error) {
	if caller == "" {
		return 0, common.ErrAnonymousCaller
	}
	if _, err := s.accounts.Kind(ctx, caller); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return 0, common.ErrAccountNotFound
		}
		return 0, err
	}
	return s.histories.Length(ctx, caller)
}
