package repository

import (
	"context"

	"roadrescue/internal/domain/entity"
)

type CategoryRepository interface {
	List(ctx context.Context, activeOnly bool) ([]*entity.ServiceCategory, error)
	GetByID(ctx context.Context, id string) (*entity.ServiceCategory, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.ServiceCategory, error)
	// Upsert inserts or updates a category identified by its key.
	Upsert(ctx context.Context, category *entity.ServiceCategory) error
}
