package usecase

import (
	"context"
	"strings"
	"time"

	"roadrescue/internal/domain/entity"
	"roadrescue/internal/domain/repository"
	"roadrescue/pkg/errors"
	"roadrescue/pkg/logger"
)

// AdminUseCase moderates company onboarding.
type AdminUseCase struct {
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewAdminUseCase(userRepo repository.UserRepository) *AdminUseCase {
	return &AdminUseCase{userRepo: userRepo, now: time.Now}
}

func (uc *AdminUseCase) ListCompanies(ctx context.Context, status string) (entity.CompanyStatus, []*entity.User, error) {
	s := entity.CompanyStatus(strings.ToUpper(strings.TrimSpace(status)))
	if s == "" {
		s = entity.CompanyPending
	}
	switch s {
	case entity.CompanyPending, entity.CompanyActive, entity.CompanyRejected:
	default:
		return "", nil, errors.BadRequest("status must be PENDING, ACTIVE or REJECTED", nil)
	}

	companies, err := uc.userRepo.ListCompanies(ctx, s)
	return s, companies, err
}

// UpdateCompanyStatus approves or rejects a company account.
func (uc *AdminUseCase) UpdateCompanyStatus(ctx context.Context, id, status string) (*entity.User, error) {
	s := entity.CompanyStatus(strings.ToUpper(strings.TrimSpace(status)))
	if s != entity.CompanyActive && s != entity.CompanyRejected {
		return nil, errors.BadRequest("companyStatus must be ACTIVE or REJECTED", nil)
	}

	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return nil, errors.NotFound("Company", nil)
		}
		return nil, err
	}
	profile, ok := user.AsCompany()
	if !ok {
		return nil, errors.BadRequest("User is not a COMPANY", nil)
	}

	profile.Status = s
	user.UpdatedAt = uc.now()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("company %s is now %s", user.ID, s)
	return user, nil
}
