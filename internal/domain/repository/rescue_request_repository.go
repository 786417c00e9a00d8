package repository

import (
	"context"
	"time"

	"roadrescue/internal/domain/entity"
)

const (
	OrderByCreatedAt = "createdAt"
	OrderByUpdatedAt = "updatedAt"
)

// RequestFilter narrows a request listing. Zero values mean "no constraint".
// Results are always ordered newest first on OrderBy.
type RequestFilter struct {
	CustomerID  string
	CompanyID   string
	Statuses    []entity.RequestStatus
	CreatedFrom time.Time
	CreatedTo   time.Time // exclusive
	OrderBy     string
	Limit       int
}

// MutateFunc receives the current stored request and changes it in place.
// Returning an error aborts the update and leaves the stored copy untouched.
type MutateFunc func(r *entity.RescueRequest) error

type RescueRequestRepository interface {
	Create(ctx context.Context, req *entity.RescueRequest) error
	GetByID(ctx context.Context, id string) (*entity.RescueRequest, error)
	// Update performs an atomic read-check-write of a single request.
	Update(ctx context.Context, id string, mutate MutateFunc) (*entity.RescueRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]*entity.RescueRequest, error)
}
