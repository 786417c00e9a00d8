package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"roadrescue/internal/domain/entity"
	"roadrescue/internal/domain/repository"
	"roadrescue/pkg/errors"
)

type memoryRescueRequestRepository struct {
	mu       sync.Mutex
	requests map[string]*entity.RescueRequest
}

func NewMemoryRescueRequestRepository() repository.RescueRequestRepository {
	return &memoryRescueRequestRepository{requests: make(map[string]*entity.RescueRequest)}
}

func (r *memoryRescueRequestRepository) Create(ctx context.Context, req *entity.RescueRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	r.requests[req.ID] = cloneRequest(req)
	return nil
}

func (r *memoryRescueRequestRepository) GetByID(ctx context.Context, id string) (*entity.RescueRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, errors.NotFound("Request", nil)
	}
	return cloneRequest(req), nil
}

func (r *memoryRescueRequestRepository) Update(ctx context.Context, id string, mutate repository.MutateFunc) (*entity.RescueRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.requests[id]
	if !ok {
		return nil, errors.NotFound("Request", nil)
	}

	working := cloneRequest(stored)
	if err := mutate(working); err != nil {
		return nil, err
	}
	r.requests[id] = cloneRequest(working)
	return working, nil
}

func (r *memoryRescueRequestRepository) List(ctx context.Context, filter repository.RequestFilter) ([]*entity.RescueRequest, error) {
	r.mu.Lock()
	var out []*entity.RescueRequest
	for _, req := range r.requests {
		if matchesRequestFilter(req, filter) {
			out = append(out, cloneRequest(req))
		}
	}
	r.mu.Unlock()

	byUpdated := filter.OrderBy == repository.OrderByUpdatedAt
	sort.SliceStable(out, func(i, j int) bool {
		if byUpdated {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func matchesRequestFilter(req *entity.RescueRequest, f repository.RequestFilter) bool {
	if f.CustomerID != "" && req.CustomerID != f.CustomerID {
		return false
	}
	if f.CompanyID != "" && req.AssignedCompanyID != f.CompanyID {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if req.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.CreatedFrom.IsZero() && req.CreatedAt.Before(f.CreatedFrom) {
		return false
	}
	if !f.CreatedTo.IsZero() && !req.CreatedAt.Before(f.CreatedTo) {
		return false
	}
	return true
}
