package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"roadrescue/internal/domain/entity"
	"roadrescue/internal/domain/repository"
	"roadrescue/pkg/errors"
)

type firestoreRescueRequestRepository struct {
	client *firestore.Client
}

func NewFirestoreRescueRequestRepository(client *firestore.Client) repository.RescueRequestRepository {
	return &firestoreRescueRequestRepository{client: client}
}

func (r *firestoreRescueRequestRepository) Create(ctx context.Context, req *entity.RescueRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	_, err := r.client.Collection(requestsCollection).Doc(req.ID).Create(ctx, req)
	if err != nil {
		return errors.Internal("Failed to create request", err)
	}
	return nil
}

func (r *firestoreRescueRequestRepository) GetByID(ctx context.Context, id string) (*entity.RescueRequest, error) {
	doc, err := r.client.Collection(requestsCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, storeError("Request", "get request", err)
	}

	var req entity.RescueRequest
	if err := doc.DataTo(&req); err != nil {
		return nil, errors.Internal("Failed to parse request data", err)
	}
	return &req, nil
}

// Update runs mutate inside a Firestore transaction. Firestore retries the
// closure on contention, so mutate must only touch the request it is given.
func (r *firestoreRescueRequestRepository) Update(ctx context.Context, id string, mutate repository.MutateFunc) (*entity.RescueRequest, error) {
	docRef := r.client.Collection(requestsCollection).Doc(id)
	var updated entity.RescueRequest

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			return storeError("Request", "get request", err)
		}

		var req entity.RescueRequest
		if err := doc.DataTo(&req); err != nil {
			return errors.Internal("Failed to parse request data", err)
		}
		if err := mutate(&req); err != nil {
			return err
		}

		updated = req
		return tx.Set(docRef, &req)
	})
	if err != nil {
		var appErr *errors.AppError
		if asAppError(err, &appErr) {
			return nil, appErr
		}
		return nil, errors.Internal("Failed to update request", err)
	}
	return &updated, nil
}

func (r *firestoreRescueRequestRepository) List(ctx context.Context, filter repository.RequestFilter) ([]*entity.RescueRequest, error) {
	query := r.client.Collection(requestsCollection).Query

	if filter.CustomerID != "" {
		query = query.Where("customerId", "==", filter.CustomerID)
	}
	if filter.CompanyID != "" {
		query = query.Where("assignedCompanyId", "==", filter.CompanyID)
	}
	switch len(filter.Statuses) {
	case 0:
	case 1:
		query = query.Where("status", "==", string(filter.Statuses[0]))
	default:
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		query = query.Where("status", "in", statuses)
	}
	if !filter.CreatedFrom.IsZero() {
		query = query.Where("createdAt", ">=", filter.CreatedFrom)
	}
	if !filter.CreatedTo.IsZero() {
		query = query.Where("createdAt", "<", filter.CreatedTo)
	}

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = repository.OrderByCreatedAt
	}
	// A range filter on createdAt forces createdAt to be the first ordering.
	if (!filter.CreatedFrom.IsZero() || !filter.CreatedTo.IsZero()) && orderBy != repository.OrderByCreatedAt {
		query = query.OrderBy(repository.OrderByCreatedAt, firestore.Desc)
	}
	query = query.OrderBy(orderBy, firestore.Desc)

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var requests []*entity.RescueRequest
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to list requests", err)
		}

		var req entity.RescueRequest
		if err := doc.DataTo(&req); err != nil {
			return nil, errors.Internal("Failed to parse request data", err)
		}
		requests = append(requests, &req)
	}

	return requests, nil
}
