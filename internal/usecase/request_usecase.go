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

// RequestUseCase is the customer side of the request lifecycle.
type RequestUseCase struct {
	requestRepo  repository.RescueRequestRepository
	userRepo     repository.UserRepository
	categoryRepo repository.CategoryRepository
	publisher    EventPublisher
	metrics      DomainMetrics
	now          func() time.Time
}

func NewRequestUseCase(
	requestRepo repository.RescueRequestRepository,
	userRepo repository.UserRepository,
	categoryRepo repository.CategoryRepository,
	publisher EventPublisher,
	metrics DomainMetrics,
) *RequestUseCase {
	return &RequestUseCase{
		requestRepo:  requestRepo,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		publisher:    publisher,
		metrics:      metricsOrNoop(metrics),
		now:          time.Now,
	}
}

type CreateRequestInput struct {
	CustomerID   string
	CategoryID   string
	CompanyID    string
	IssueType    string
	Note         string
	ContactName  string
	ContactPhone string
	Lat          *float64
	Lng          *float64
	AddressText  string
}

// Create opens a PENDING request bound to the chosen company. The quoted
// price is the company's current base price for the category.
func (uc *RequestUseCase) Create(ctx context.Context, input CreateRequestInput) (*entity.RescueRequest, error) {
	issueType := strings.TrimSpace(input.IssueType)
	contactName := strings.TrimSpace(input.ContactName)
	contactPhone := strings.TrimSpace(input.ContactPhone)
	if issueType == "" || contactName == "" || contactPhone == "" {
		return nil, errors.BadRequest("issueType, contactName, contactPhone are required", nil)
	}
	if input.Lat == nil || input.Lng == nil {
		return nil, errors.BadRequest("lat and lng are required", nil)
	}
	if !entity.ValidLatLng(*input.Lat, *input.Lng) {
		return nil, errors.BadRequest("lat/lng out of range", nil)
	}
	categoryID := strings.TrimSpace(input.CategoryID)
	companyID := strings.TrimSpace(input.CompanyID)
	if categoryID == "" || companyID == "" {
		return nil, errors.BadRequest("categoryId and companyId are required", nil)
	}

	category, err := uc.categoryRepo.GetByID(ctx, categoryID)
	if err != nil && !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}
	if category == nil || !category.IsActive {
		return nil, errors.BadRequest("categoryId is invalid/inactive", nil)
	}

	company, err := uc.userRepo.GetByID(ctx, companyID)
	if err != nil && !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}
	profile, ok := company.AsCompany()
	if !ok {
		return nil, errors.BadRequest("companyId is invalid", nil)
	}
	if profile.Status != entity.CompanyActive {
		return nil, errors.BadRequest("Company is not ACTIVE", nil).With("companyStatus", profile.Status)
	}
	price, offers := profile.PriceFor(categoryID)
	if !offers {
		return nil, errors.BadRequest("Company does not offer this category", nil)
	}

	now := uc.now()
	req := &entity.RescueRequest{
		CustomerID:        input.CustomerID,
		CategoryID:        categoryID,
		AssignedCompanyID: companyID,
		QuotedBasePrice:   price,
		IssueType:         issueType,
		Note:              strings.TrimSpace(input.Note),
		ContactName:       contactName,
		ContactPhone:      contactPhone,
		Location:          entity.NewGeoPoint(*input.Lat, *input.Lng),
		AddressText:       strings.TrimSpace(input.AddressText),
		Status:            entity.StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	uc.metrics.RequestCreated(categoryID)
	logger.Debug("request %s created by %s for company %s", req.ID, req.CustomerID, companyID)
	return req, nil
}

// ListMine returns the customer's requests, newest first.
func (uc *RequestUseCase) ListMine(ctx context.Context, customerID, status string) ([]*entity.RescueRequest, error) {
	filter := repository.RequestFilter{CustomerID: customerID, OrderBy: repository.OrderByCreatedAt}
	if status != "" {
		s := entity.RequestStatus(strings.ToUpper(status))
		if !s.Valid() {
			return nil, errors.BadRequest("status is invalid", nil)
		}
		filter.Statuses = []entity.RequestStatus{s}
	}
	return uc.requestRepo.List(ctx, filter)
}

type RequestDetail struct {
	Request  *entity.RescueRequest
	Category *entity.ServiceCategory
	Company  *entity.User
	Customer *entity.User
}

// GetMine loads a request owned by the customer. Requests of other customers
// are reported as not found.
func (uc *RequestUseCase) GetMine(ctx context.Context, customerID, id string) (*RequestDetail, error) {
	req, err := uc.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.CustomerID != customerID {
		return nil, errors.NotFound("Request", nil)
	}

	detail := &RequestDetail{Request: req}
	if c, err := uc.categoryRepo.GetByID(ctx, req.CategoryID); err == nil {
		detail.Category = c
	}
	if req.AssignedCompanyID != "" {
		if u, err := uc.userRepo.GetByID(ctx, req.AssignedCompanyID); err == nil {
			detail.Company = u
		}
	}
	return detail, nil
}

// Confirm records the customer's rating on a COMPLETED request, once.
func (uc *RequestUseCase) Confirm(ctx context.Context, customerID, id string, rating int, review string) (*entity.RescueRequest, error) {
	if err := entity.ValidateRating(rating); err != nil {
		return nil, err
	}

	return uc.requestRepo.Update(ctx, id, func(r *entity.RescueRequest) error {
		if r.CustomerID != customerID {
			return errors.NotFound("Request", nil)
		}
		return r.Confirm(rating, review, uc.now())
	})
}

func (uc *RequestUseCase) Cancel(ctx context.Context, customerID, id, reason string) (*entity.RescueRequest, error) {
	var from entity.RequestStatus
	updated, err := uc.requestRepo.Update(ctx, id, func(r *entity.RescueRequest) error {
		if r.CustomerID != customerID {
			return errors.NotFound("Request", nil)
		}
		from = r.Status
		return r.Cancel(reason, entity.RoleCustomer, uc.now())
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.RequestTransition(string(from), string(updated.Status))
	notify(ctx, uc.publisher, updated.AssignedCompanyID, EventRequestCancelled, updated.ID, map[string]interface{}{
		"requestId":    updated.ID,
		"status":       updated.Status,
		"cancelReason": updated.CancelReason,
		"cancelledAt":  updated.CancelledAt,
	})
	return updated, nil
}
