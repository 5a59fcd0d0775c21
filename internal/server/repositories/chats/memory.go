package chats

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/paylink/internal/common"
	"github.com/dmitrijs2005/paylink/internal/server/models"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	chats map[string]*models.Chat
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{chats: make(map[string]*models.Chat)}
}

func (r *MemoryRepository) Get(ctx context.Context, chatID string) (*models.Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chat, ok := r.chats[chatID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return chat.Clone(), nil
}

func (r *MemoryRepository) Save(ctx context.Context, chat *models.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.chats[chat.ID] = chat.Clone()
	return nil
}
