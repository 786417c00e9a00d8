package repository

import (
	"context"

	"roadrescue/internal/domain/entity"
)

// UserRepository stores accounts. Lookups return a NOT_FOUND AppError when
// the account does not exist; Create returns CONFLICT for a taken email.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	List(ctx context.Context) ([]*entity.User, error)
	ListCompanies(ctx context.Context, status entity.CompanyStatus) ([]*entity.User, error)
	// ListActiveCompaniesByCategory returns ACTIVE companies whose service
	// list contains categoryID.
	ListActiveCompaniesByCategory(ctx context.Context, categoryID string) ([]*entity.User, error)
}
