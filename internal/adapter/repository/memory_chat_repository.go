package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"roadrescue/internal/domain/entity"
	"roadrescue/internal/domain/repository"
)

type memoryChatRepository struct {
	mu    sync.RWMutex
	rooms map[string][]*entity.ChatMessage
}

func NewMemoryChatRepository() repository.ChatRepository {
	return &memoryChatRepository{rooms: make(map[string][]*entity.ChatMessage)}
}

func (r *memoryChatRepository) CreateMessage(ctx context.Context, message *entity.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	cp := *message
	room := append(r.rooms[message.RequestID], &cp)
	sort.SliceStable(room, func(i, j int) bool { return room[i].CreatedAt.Before(room[j].CreatedAt) })
	r.rooms[message.RequestID] = room
	return nil
}

func (r *memoryChatRepository) ListAfter(ctx context.Context, requestID string, after time.Time, limit int) ([]*entity.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entity.ChatMessage
	for _, m := range r.rooms[requestID] {
		if !m.CreatedAt.After(after) {
			continue
		}
		cp := *m
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memoryChatRepository) ListLatest(ctx context.Context, requestID string, limit int) ([]*entity.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[requestID]
	var out []*entity.ChatMessage
	for i := len(room) - 1; i >= 0; i-- {
		cp := *room[i]
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memoryChatRepository) LastMessage(ctx context.Context, requestID string) (*entity.ChatMessage, error) {
	latest, err := r.ListLatest(ctx, requestID, 1)
	if err != nil || len(latest) == 0 {
		return nil, err
	}
	return latest[0], nil
}
