package repository

import (
	"context"
	stderrors "errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"roadrescue/pkg/errors"
)

const (
	usersCollection      = "users"
	userEmailsCollection = "user_emails"
	categoriesCollection = "service_categories"
	requestsCollection   = "rescue_requests"
	messagesCollection   = "messages"
	topicsCollection     = "community_topics"
	tipsCollection       = "community_tips"
)

// storeError maps a Firestore error onto the AppError taxonomy.
func storeError(resource, action string, err error) error {
	if status.Code(err) == codes.NotFound {
		return errors.NotFound(resource, err)
	}
	return errors.Internal("Failed to "+action, err)
}

func asAppError(err error, target **errors.AppError) bool {
	return stderrors.As(err, target)
}

// FirestoreHealth probes the store with a one document read.
type FirestoreHealth struct {
	client *firestore.Client
}

func NewFirestoreHealth(client *firestore.Client) *FirestoreHealth {
	return &FirestoreHealth{client: client}
}

func (h *FirestoreHealth) Ping(ctx context.Context) error {
	iter := h.client.Collection(categoriesCollection).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return err
	}
	return nil
}
