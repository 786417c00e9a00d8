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

type memoryCategoryRepository struct {
	mu         sync.RWMutex
	categories map[string]*entity.ServiceCategory
}

func NewMemoryCategoryRepository() repository.CategoryRepository {
	return &memoryCategoryRepository{categories: make(map[string]*entity.ServiceCategory)}
}

func (r *memoryCategoryRepository) List(ctx context.Context, activeOnly bool) ([]*entity.ServiceCategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entity.ServiceCategory
	for _, c := range r.categories {
		if activeOnly && !c.IsActive {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memoryCategoryRepository) GetByID(ctx context.Context, id string) (*entity.ServiceCategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[id]
	if !ok {
		return nil, errors.NotFound("Category", nil)
	}
	cp := *c
	return &cp, nil
}

func (r *memoryCategoryRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.ServiceCategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*entity.ServiceCategory, len(ids))
	for _, id := range ids {
		if c, ok := r.categories[id]; ok {
			cp := *c
			out[id] = &cp
		}
	}
	return out, nil
}

func (r *memoryCategoryRepository) Upsert(ctx context.Context, category *entity.ServiceCategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.categories {
		if existing.Key == category.Key {
			category.ID = id
			category.CreatedAt = existing.CreatedAt
			break
		}
	}
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	cp := *category
	r.categories[category.ID] = &cp
	return nil
}
