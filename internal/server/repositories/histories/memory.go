package histories

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/paylink/internal/server/models"
)

type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string][]models.TransactionEntry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[string][]models.TransactionEntry)}
}

func (r *MemoryRepository) Append(ctx context.Context, principal string, entry models.TransactionEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[principal] = append(r.entries[principal], entry.Clone())
	return nil
}

func (r *MemoryRepository) Tail(ctx context.Context, principal string, since int) ([]models.TransactionEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := r.entries[principal]
	if since < 0 {
		since = 0
	}
	if since >= len(history) {
		return []models.TransactionEntry{}, nil
	}
	tail := make([]models.TransactionEntry, 0, len(history)-since)
	for _, entry := range history[since:] {
		tail = append(tail, entry.Clone())
	}
	return tail, nil
}

func (r *MemoryRepository) Length(ctx context.Context, principal string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries[principal]), nil
}
