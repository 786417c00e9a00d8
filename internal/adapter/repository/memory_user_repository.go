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

type memoryUserRepository struct {
	mu      sync.RWMutex
	users   map[string]*entity.User
	byEmail map[string]string
}

func NewMemoryUserRepository() repository.UserRepository {
	return &memoryUserRepository{
		users:   make(map[string]*entity.User),
		byEmail: make(map[string]string),
	}
}

func (r *memoryUserRepository) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	email := entity.NormalizeEmail(user.Email)
	if _, taken := r.byEmail[email]; taken {
		return errors.Conflict("Email already exists")
	}
	user.Email = email
	r.users[user.ID] = cloneUser(user)
	r.byEmail[email] = user.ID
	return nil
}

func (r *memoryUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return cloneUser(u), nil
}

func (r *memoryUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[entity.NormalizeEmail(email)]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return cloneUser(r.users[id]), nil
}

func (r *memoryUserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*entity.User, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = cloneUser(u)
		}
	}
	return out, nil
}

func (r *memoryUserRepository) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return errors.NotFound("User", nil)
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *memoryUserRepository) List(ctx context.Context) ([]*entity.User, error) {
	return r.filter(func(*entity.User) bool { return true }), nil
}

func (r *memoryUserRepository) ListCompanies(ctx context.Context, status entity.CompanyStatus) ([]*entity.User, error) {
	return r.filter(func(u *entity.User) bool {
		c, ok := u.AsCompany()
		return ok && (status == "" || c.Status == status)
	}), nil
}

func (r *memoryUserRepository) ListActiveCompaniesByCategory(ctx context.Context, categoryID string) ([]*entity.User, error) {
	return r.filter(func(u *entity.User) bool {
		c, ok := u.AsCompany()
		if !ok || c.Status != entity.CompanyActive {
			return false
		}
		for _, id := range c.ServiceCategoryIDs {
			if id == categoryID {
				return true
			}
		}
		return false
	}), nil
}

// filter returns matches newest first, like the Firestore listing.
func (r *memoryUserRepository) filter(keep func(*entity.User) bool) []*entity.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entity.User
	for _, u := range r.users {
		if keep(u) {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
