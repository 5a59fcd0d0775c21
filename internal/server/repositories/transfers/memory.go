package transfers

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/paylink/internal/common"
)

type txInfo struct {
	from string
	to   string
}

type MemoryRepository struct {
	mu       sync.Mutex
	recorded map[uint64]txInfo
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{recorded: make(map[uint64]txInfo)}
}

func (r *MemoryRepository) Contains(ctx context.Context, transferID uint64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.recorded[transferID]
	return ok, nil
}

func (r *MemoryRepository) Insert(ctx context.Context, transferID uint64, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.recorded[transferID]; ok {
		return common.ErrAlreadyRecorded
	}
	r.recorded[transferID] = txInfo{from: from, to: to}
	return nil
}
