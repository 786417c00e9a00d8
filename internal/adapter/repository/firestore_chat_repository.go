package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"roadrescue/internal/domain/entity"
	"roadrescue/internal/domain/repository"
	"roadrescue/pkg/errors"
	"roadrescue/pkg/logger"
)

// Messages live in the rescue_requests/{id}/messages subcollection; the
// request doubles as the chat room.
type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) messages(requestID string) *firestore.CollectionRef {
	return r.client.Collection(requestsCollection).Doc(requestID).Collection(messagesCollection)
}

func (r *firestoreChatRepository) CreateMessage(ctx context.Context, message *entity.ChatMessage) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	_, err := r.messages(message.RequestID).Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

func (r *firestoreChatRepository) ListAfter(ctx context.Context, requestID string, after time.Time, limit int) ([]*entity.ChatMessage, error) {
	query := r.messages(requestID).
		Where("createdAt", ">", after).
		OrderBy("createdAt", firestore.Asc)
	if limit > 0 {
		query = query.Limit(limit)
	}
	return r.collect(ctx, requestID, query)
}

func (r *firestoreChatRepository) ListLatest(ctx context.Context, requestID string, limit int) ([]*entity.ChatMessage, error) {
	query := r.messages(requestID).OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}
	return r.collect(ctx, requestID, query)
}

func (r *firestoreChatRepository) LastMessage(ctx context.Context, requestID string) (*entity.ChatMessage, error) {
	latest, err := r.ListLatest(ctx, requestID, 1)
	if err != nil || len(latest) == 0 {
		return nil, err
	}
	return latest[0], nil
}

func (r *firestoreChatRepository) collect(ctx context.Context, requestID string, query firestore.Query) ([]*entity.ChatMessage, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	var messages []*entity.ChatMessage
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Error("Firestore error while iterating messages for request %s: %v", requestID, err)
			return nil, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.ChatMessage
		if err := doc.DataTo(&message); err != nil {
			return nil, errors.Internal("Failed to parse message data", err)
		}
		messages = append(messages, &message)
	}

	return messages, nil
}
