package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"roadrescue/internal/domain/entity"
	"roadrescue/internal/domain/repository"
	"roadrescue/pkg/errors"
)

const (
	DefaultSuggestRadiusKm = 10.0
	DefaultSuggestLimit    = 10
	MaxSuggestLimit        = 50
)

type CompanyUseCase struct {
	userRepo     repository.UserRepository
	categoryRepo repository.CategoryRepository
	now          func() time.Time
}

func NewCompanyUseCase(userRepo repository.UserRepository, categoryRepo repository.CategoryRepository) *CompanyUseCase {
	return &CompanyUseCase{
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		now:          time.Now,
	}
}

type ServiceInput struct {
	CategoryID string
	BasePrice  *float64
}

type UpdateProfileInput struct {
	Lat      *float64
	Lng      *float64
	Services []ServiceInput
}

func (uc *CompanyUseCase) GetProfile(ctx context.Context, companyID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return nil, errors.NotFound("Company", nil)
		}
		return nil, err
	}
	if _, ok := user.AsCompany(); !ok {
		return nil, errors.NotFound("Company", nil)
	}
	return user, nil
}

// UpdateProfile replaces the company's location and service list. Every
// category must exist and be active.
func (uc *CompanyUseCase) UpdateProfile(ctx context.Context, companyID string, input UpdateProfileInput) (*entity.User, error) {
	if input.Lat == nil || input.Lng == nil {
		return nil, errors.BadRequest("lat and lng are required", nil)
	}
	if !entity.ValidLatLng(*input.Lat, *input.Lng) {
		return nil, errors.BadRequest("lat/lng out of range", nil)
	}
	if len(input.Services) == 0 {
		return nil, errors.BadRequest("services must be a non-empty array", nil)
	}

	// Later entries for the same category win.
	index := map[string]int{}
	services := make([]entity.CompanyService, 0, len(input.Services))
	for _, s := range input.Services {
		categoryID := strings.TrimSpace(s.CategoryID)
		if categoryID == "" {
			return nil, errors.BadRequest("categoryId is required", nil)
		}
		if s.BasePrice == nil || *s.BasePrice < 0 {
			return nil, errors.BadRequest("basePrice must be a non-negative number", nil)
		}
		svc := entity.CompanyService{CategoryID: categoryID, BasePrice: *s.BasePrice}
		if i, seen := index[categoryID]; seen {
			services[i] = svc
			continue
		}
		index[categoryID] = len(services)
		services = append(services, svc)
	}

	ids := make([]string, 0, len(services))
	for _, s := range services {
		ids = append(ids, s.CategoryID)
	}
	categories, err := uc.categoryRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if c, ok := categories[id]; !ok || !c.IsActive {
			return nil, errors.BadRequest("Some categoryId is invalid/inactive", nil)
		}
	}

	user, err := uc.GetProfile(ctx, companyID)
	if err != nil {
		return nil, err
	}

	loc := entity.NewGeoPoint(*input.Lat, *input.Lng)
	user.Company.Location = &loc
	user.Company.SetServices(services)
	user.UpdatedAt = uc.now()

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

type SuggestInput struct {
	CategoryID string
	Lat        *float64
	Lng        *float64
	RadiusKm   *float64
	Limit      int
}

type CompanySuggestion struct {
	ID          string        `json:"id"`
	CompanyName string        `json:"companyName"`
	Phone       string        `json:"phone"`
	DistanceKm  float64       `json:"distanceKm"`
	BasePrice   float64       `json:"basePrice"`
	Location    entity.LatLng `json:"location"`
}

// Suggest finds ACTIVE companies offering a category within radiusKm of the
// point, nearest first. basePrice is the company's price for that category.
func (uc *CompanyUseCase) Suggest(ctx context.Context, input SuggestInput) ([]CompanySuggestion, error) {
	categoryID := strings.TrimSpace(input.CategoryID)
	if categoryID == "" {
		return nil, errors.BadRequest("categoryId is invalid", nil)
	}
	if input.Lat == nil || input.Lng == nil {
		return nil, errors.BadRequest("lat and lng are required", nil)
	}
	if !entity.ValidLatLng(*input.Lat, *input.Lng) {
		return nil, errors.BadRequest("lat/lng out of range", nil)
	}
	radius := DefaultSuggestRadiusKm
	if input.RadiusKm != nil {
		radius = *input.RadiusKm
	}
	if radius <= 0 {
		return nil, errors.BadRequest("radiusKm must be a positive number", nil)
	}
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	if limit > MaxSuggestLimit {
		limit = MaxSuggestLimit
	}

	if _, err := uc.categoryRepo.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return nil, errors.BadRequest("categoryId is invalid", nil)
		}
		return nil, err
	}

	companies, err := uc.userRepo.ListActiveCompaniesByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	origin := entity.NewGeoPoint(*input.Lat, *input.Lng)
	out := make([]CompanySuggestion, 0, len(companies))
	for _, u := range companies {
		profile, ok := u.AsCompany()
		if !ok || profile.Status != entity.CompanyActive || profile.Location == nil || !profile.Location.Valid() {
			continue
		}
		price, offers := profile.PriceFor(categoryID)
		if !offers {
			continue
		}
		distance := entity.DistanceKm(origin, *profile.Location)
		if distance > radius {
			continue
		}
		out = append(out, CompanySuggestion{
			ID:          u.ID,
			CompanyName: u.DisplayName(),
			Phone:       u.Phone,
			DistanceKm:  distance,
			BasePrice:   price,
			Location:    profile.Location.LatLng(),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	if len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].DistanceKm = entity.RoundTo(out[i].DistanceKm, 2)
	}
	return out, nil
}
