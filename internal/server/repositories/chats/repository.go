// Package chats stores Chat aggregates keyed by their deterministic id.
package chats

import (
	"context"

	"github.com/dmitrijs2005/paylink/internal/server/models"
)

// Repository is the persistence contract for chat aggregates. Get returns a
// deep copy; mutations become visible only through Save, so a failed
// operation commits nothing.
type Repository interface {
	Get(ctx context.Context, chatID string) (*models.Chat, error)
	Save(ctx context.Context, chat *models.Chat) error
}
