package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"roadrescue/internal/domain/entity"
	"roadrescue/internal/domain/repository"
	"roadrescue/pkg/errors"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// CompanyRequestUseCase is the company side of the request lifecycle. A
// company only ever sees requests assigned to it; anything else is reported
// as not found so request ids of other tenants stay hidden.
type CompanyRequestUseCase struct {
	requestRepo  repository.RescueRequestRepository
	userRepo     repository.UserRepository
	categoryRepo repository.CategoryRepository
	publisher    EventPublisher
	metrics      DomainMetrics
	now          func() time.Time
}

func NewCompanyRequestUseCase(
	requestRepo repository.RescueRequestRepository,
	userRepo repository.UserRepository,
	categoryRepo repository.CategoryRepository,
	publisher EventPublisher,
	metrics DomainMetrics,
) *CompanyRequestUseCase {
	return &CompanyRequestUseCase{
		requestRepo:  requestRepo,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		publisher:    publisher,
		metrics:      metricsOrNoop(metrics),
		now:          time.Now,
	}
}

func errNotAssigned() *errors.AppError {
	return errors.New("NOT_FOUND", "Request not found (or not assigned to this company)", http.StatusNotFound, nil)
}

func parseStatus(raw string, def entity.RequestStatus) (entity.RequestStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	s := entity.RequestStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", errors.BadRequest("status is invalid", nil)
	}
	return s, nil
}

// List returns the company's requests in one status (PENDING by default),
// newest first.
func (uc *CompanyRequestUseCase) List(ctx context.Context, companyID, status string) (entity.RequestStatus, []*entity.RescueRequest, error) {
	s, err := parseStatus(status, entity.StatusPending)
	if err != nil {
		return "", nil, err
	}
	items, err := uc.requestRepo.List(ctx, repository.RequestFilter{
		CompanyID: companyID,
		Statuses:  []entity.RequestStatus{s},
		OrderBy:   repository.OrderByCreatedAt,
	})
	return s, items, err
}

// History lists finished work (COMPLETED by default), most recently
// updated first.
func (uc *CompanyRequestUseCase) History(ctx context.Context, companyID, status string, limit int) (entity.RequestStatus, []*entity.RescueRequest, error) {
	s, err := parseStatus(status, entity.StatusCompleted)
	if err != nil {
		return "", nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	items, err := uc.requestRepo.List(ctx, repository.RequestFilter{
		CompanyID: companyID,
		Statuses:  []entity.RequestStatus{s},
		OrderBy:   repository.OrderByUpdatedAt,
		Limit:     limit,
	})
	return s, items, err
}

func (uc *CompanyRequestUseCase) Detail(ctx context.Context, companyID, id string) (*RequestDetail, error) {
	req, err := uc.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.AssignedCompanyID != companyID {
		return nil, errors.NotFound("Request", nil)
	}

	detail := &RequestDetail{Request: req}
	if c, err := uc.categoryRepo.GetByID(ctx, req.CategoryID); err == nil {
		detail.Category = c
	}
	if u, err := uc.userRepo.GetByID(ctx, req.CustomerID); err == nil {
		detail.Customer = u
	}
	return detail, nil
}

// UpdateETA stores the arrival estimate. On a PENDING request this is the
// company accepting it and the request becomes ASSIGNED.
func (uc *CompanyRequestUseCase) UpdateETA(ctx context.Context, companyID, id string, etaMinutes *int) (*entity.RescueRequest, error) {
	if etaMinutes == nil || *etaMinutes < 0 {
		return nil, errors.BadRequest("etaMinutes must be a non-negative number", nil)
	}

	var from entity.RequestStatus
	updated, err := uc.requestRepo.Update(ctx, id, func(r *entity.RescueRequest) error {
		if r.AssignedCompanyID != companyID {
			return errNotAssigned()
		}
		from = r.Status
		return r.SetETA(*etaMinutes, uc.now())
	})
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return nil, errNotAssigned()
		}
		return nil, err
	}

	if from != updated.Status {
		uc.metrics.RequestTransition(string(from), string(updated.Status))
	}
	notify(ctx, uc.publisher, updated.CustomerID, EventRequestETA, updated.ID, map[string]interface{}{
		"requestId":  updated.ID,
		"status":     updated.Status,
		"etaMinutes": updated.EtaMinutes,
		"updatedAt":  updated.UpdatedAt,
	})
	return updated, nil
}

// UpdateStatus moves an owned request along ASSIGNED -> IN_PROGRESS ->
// COMPLETED. Rejected moves leave the stored request untouched.
func (uc *CompanyRequestUseCase) UpdateStatus(ctx context.Context, companyID, id, status string) (*entity.RescueRequest, error) {
	target := entity.RequestStatus(strings.ToUpper(strings.TrimSpace(status)))
	if err := entity.ValidateCompanyTarget(target); err != nil {
		return nil, err
	}

	var from entity.RequestStatus
	updated, err := uc.requestRepo.Update(ctx, id, func(r *entity.RescueRequest) error {
		if r.AssignedCompanyID != companyID {
			return errNotAssigned()
		}
		from = r.Status
		return r.TransitionTo(target, uc.now())
	})
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return nil, errNotAssigned()
		}
		return nil, err
	}

	uc.metrics.RequestTransition(string(from), string(updated.Status))
	notify(ctx, uc.publisher, updated.CustomerID, EventRequestStatus, updated.ID, map[string]interface{}{
		"requestId":   updated.ID,
		"status":      updated.Status,
		"completedAt": updated.CompletedAt,
		"updatedAt":   updated.UpdatedAt,
	})
	return updated, nil
}
