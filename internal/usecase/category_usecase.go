package usecase

import (
	"context"
	"sort"

	"roadrescue/internal/domain/entity"
	"roadrescue/internal/domain/repository"
)

type CategoryUseCase struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryUseCase(categoryRepo repository.CategoryRepository) *CategoryUseCase {
	return &CategoryUseCase{categoryRepo: categoryRepo}
}

// ListActive returns active categories sorted by name.
func (uc *CategoryUseCase) ListActive(ctx context.Context) ([]*entity.ServiceCategory, error) {
	categories, err := uc.categoryRepo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}
