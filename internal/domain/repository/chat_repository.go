package repository

import (
	"context"
	"time"

	"roadrescue/internal/domain/entity"
)

type ChatRepository interface {
	CreateMessage(ctx context.Context, message *entity.ChatMessage) error
	// ListAfter returns messages created strictly after the cursor, oldest first.
	ListAfter(ctx context.Context, requestID string, after time.Time, limit int) ([]*entity.ChatMessage, error)
	// ListLatest returns the newest messages, newest first.
	ListLatest(ctx context.Context, requestID string, limit int) ([]*entity.ChatMessage, error)
	// LastMessage returns nil when the room has no messages.
	LastMessage(ctx context.Context, requestID string) (*entity.ChatMessage, error)
}
