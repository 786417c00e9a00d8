package usecase

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"roadrescue/internal/domain/entity"
	"roadrescue/pkg/errors"
)

type lifecycle struct {
	*fixture
	customer *entity.User
	company  *entity.User
	other    *entity.User
	category *entity.ServiceCategory
}

func newLifecycle(t *testing.T) *lifecycle {
	f := newFixture(t)
	tire := f.category(t, "TIRE", "Tire repair", true)
	fuel := f.category(t, "FUEL", "Fuel delivery", true)
	return &lifecycle{
		fixture:  f,
		customer: f.customer(t, "customer@example.com", "An"),
		company: f.company(t, "k@example.com", "Rescue K", entity.CompanyActive, 10.78, 106.70,
			entity.CompanyService{CategoryID: fuel.ID, BasePrice: 50000},
			entity.CompanyService{CategoryID: tire.ID, BasePrice: 80000},
		),
		other: f.company(t, "other@example.com", "Rescue O", entity.CompanyActive, 10.79, 106.71,
			entity.CompanyService{CategoryID: tire.ID, BasePrice: 70000},
		),
		category: tire,
	}
}

func TestRequestLifecycle_Scenarios(t *testing.T) {
	l := newLifecycle(t)
	ctx := context.Background()
	l.publisher.On("PublishToUser", mock.Anything, l.customer.ID, EventRequestETA, mock.Anything).Return(nil).Once()
	l.publisher.On("PublishToUser", mock.Anything, l.customer.ID, EventRequestStatus, mock.Anything).Return(nil).Twice()

	// A: price snapshot from the company's price for exactly this category.
	req := l.openRequest(t, l.customer, l.company, l.category)
	assert.Equal(t, entity.StatusPending, req.Status)
	assert.Equal(t, 80000.0, req.QuotedBasePrice)
	assert.Equal(t, l.company.ID, req.AssignedCompanyID)

	companyUC := l.companyRequestUseCase()

	// B
	l.clock.Advance(time.Minute)
	updated, err := companyUC.UpdateETA(ctx, l.company.ID, req.ID, intPtr(15))
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAssigned, updated.Status)
	require.NotNil(t, updated.EtaMinutes)
	assert.Equal(t, 15, *updated.EtaMinutes)

	// C
	l.clock.Advance(time.Minute)
	updated, err = companyUC.UpdateStatus(ctx, l.company.ID, req.ID, "IN_PROGRESS")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInProgress, updated.Status)
	assert.Nil(t, updated.CompletedAt)

	l.clock.Advance(time.Minute)
	updated, err = companyUC.UpdateStatus(ctx, l.company.ID, req.ID, "COMPLETED")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)

	for _, target := range []string{"IN_PROGRESS", "COMPLETED"} {
		_, err = companyUC.UpdateStatus(ctx, l.company.ID, req.ID, target)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, errors.StatusOf(err))
	}

	// D
	customerUC := l.requestUseCase()
	confirmed, err := customerUC.Confirm(ctx, l.customer.ID, req.ID, 5, "  fast and polite ")
	require.NoError(t, err)
	require.NotNil(t, confirmed.CustomerRating)
	assert.Equal(t, 5, *confirmed.CustomerRating)
	assert.Equal(t, "fast and polite", confirmed.CustomerReview)
	assert.NotNil(t, confirmed.CustomerConfirmedAt)

	_, err = customerUC.Confirm(ctx, l.customer.ID, req.ID, 1, "changed my mind")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, errors.StatusOf(err))
	assert.Contains(t, err.Error(), "Already confirmed")

	stored, err := l.requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, *stored.CustomerRating)
	assert.Equal(t, "fast and polite", stored.CustomerReview)

	l.publisher.AssertExpectations(t)
}

func TestRequestLifecycle_CancelDefaultsReason(t *testing.T) {
	l := newLifecycle(t)
	l.publisher.On("PublishToUser", mock.Anything, l.company.ID, EventRequestCancelled, mock.Anything).Return(nil).Once()

	req := l.openRequest(t, l.customer, l.company, l.category)

	cancelled, err := l.requestUseCase().Cancel(context.Background(), l.customer.ID, req.ID, "")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, cancelled.Status)
	assert.Equal(t, "Customer cancelled", cancelled.CancelReason)
	assert.Equal(t, entity.RoleCustomer, cancelled.CancelledBy)
	assert.NotNil(t, cancelled.CancelledAt)

	_, err = l.requestUseCase().Cancel(context.Background(), l.customer.ID, req.ID, "again")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Request is already CANCELLED")

	l.publisher.AssertExpectations(t)
}

func TestRequestLifecycle_CrossTenantIsNotFound(t *testing.T) {
	l := newLifecycle(t)
	l.quietPublisher()
	ctx := context.Background()
	req := l.openRequest(t, l.customer, l.company, l.category)
	companyUC := l.companyRequestUseCase()

	_, err := companyUC.UpdateETA(ctx, l.other.ID, req.ID, intPtr(10))
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, errors.StatusOf(err))

	_, err = companyUC.UpdateStatus(ctx, l.other.ID, req.ID, "IN_PROGRESS")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, errors.StatusOf(err))

	_, err = companyUC.Detail(ctx, l.other.ID, req.ID)
	assert.Equal(t, http.StatusNotFound, errors.StatusOf(err))

	stranger := l.customer2(t)
	_, err = l.requestUseCase().GetMine(ctx, stranger.ID, req.ID)
	assert.Equal(t, http.StatusNotFound, errors.StatusOf(err))
	_, err = l.requestUseCase().Cancel(ctx, stranger.ID, req.ID, "")
	assert.Equal(t, http.StatusNotFound, errors.StatusOf(err))

	_, err = companyUC.UpdateETA(ctx, l.company.ID, "missing", intPtr(10))
	assert.Equal(t, http.StatusNotFound, errors.StatusOf(err))

	stored, err := l.requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, stored.Status)
	assert.Nil(t, stored.EtaMinutes)
}

func (l *lifecycle) customer2(t *testing.T) *entity.User {
	return l.fixture.customer(t, "stranger@example.com", "Binh")
}

func TestRequestLifecycle_RejectedTransitionsDoNotMutate(t *testing.T) {
	l := newLifecycle(t)
	l.quietPublisher()
	ctx := context.Background()
	req := l.openRequest(t, l.customer, l.company, l.category)
	companyUC := l.companyRequestUseCase()

	_, err := companyUC.UpdateStatus(ctx, l.company.ID, req.ID, "COMPLETED")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot move from PENDING to COMPLETED")

	_, err = companyUC.UpdateStatus(ctx, l.company.ID, req.ID, "CANCELLED")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status must be IN_PROGRESS or COMPLETED")

	_, err = l.requestUseCase().Confirm(ctx, l.customer.ID, req.ID, 4, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Only COMPLETED requests can be confirmed/reviewed")

	_, err = l.requestUseCase().Confirm(ctx, l.customer.ID, req.ID, 9, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rating must be 1..5")

	_, err = companyUC.UpdateETA(ctx, l.company.ID, req.ID, intPtr(-1))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, errors.StatusOf(err))

	stored, err := l.requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, stored.Status)
	assert.Nil(t, stored.EtaMinutes)
	assert.Nil(t, stored.CustomerRating)
	assert.Equal(t, req.UpdatedAt, stored.UpdatedAt)

	_, err = l.requestUseCase().Cancel(ctx, l.customer.ID, req.ID, "found help")
	require.NoError(t, err)

	_, err = companyUC.UpdateStatus(ctx, l.company.ID, req.ID, "IN_PROGRESS")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Request is CANCELLED")

	_, err = companyUC.UpdateETA(ctx, l.company.ID, req.ID, intPtr(5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot update ETA when status is CANCELLED")

	stored, err = l.requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, stored.Status)
	assert.Equal(t, "found help", stored.CancelReason)
	assert.Nil(t, stored.EtaMinutes)
}

func TestRequestLifecycle_ETAUpdateKeepsStatus(t *testing.T) {
	l := newLifecycle(t)
	l.quietPublisher()
	ctx := context.Background()
	req := l.openRequest(t, l.customer, l.company, l.category)
	companyUC := l.companyRequestUseCase()

	_, err := companyUC.UpdateETA(ctx, l.company.ID, req.ID, intPtr(20))
	require.NoError(t, err)
	_, err = companyUC.UpdateStatus(ctx, l.company.ID, req.ID, "IN_PROGRESS")
	require.NoError(t, err)

	updated, err := companyUC.UpdateETA(ctx, l.company.ID, req.ID, intPtr(5))
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInProgress, updated.Status)
	assert.Equal(t, 5, *updated.EtaMinutes)
}

func TestRequestLifecycle_PublishFailureDoesNotFailUpdate(t *testing.T) {
	l := newLifecycle(t)
	l.publisher.On("PublishToUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(assert.AnError)
	req := l.openRequest(t, l.customer, l.company, l.category)

	updated, err := l.companyRequestUseCase().UpdateETA(context.Background(), l.company.ID, req.ID, intPtr(12))
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAssigned, updated.Status)
}

func TestCreateRequest_Validation(t *testing.T) {
	l := newLifecycle(t)
	inactive := l.fixture.category(t, "LOCKOUT", "Lockout", false)
	battery := l.fixture.category(t, "BATTERY", "Battery", true)
	pending := l.fixture.company(t, "p@example.com", "Pending Co", entity.CompanyPending, 10.7, 106.7,
		entity.CompanyService{CategoryID: l.category.ID, BasePrice: 1})

	valid := func() CreateRequestInput {
		return CreateRequestInput{
			CustomerID:   l.customer.ID,
			CategoryID:   l.category.ID,
			CompanyID:    l.company.ID,
			IssueType:    "Flat",
			ContactName:  "An",
			ContactPhone: "0901",
			Lat:          floatPtr(10),
			Lng:          floatPtr(106),
		}
	}

	tests := []struct {
		name    string
		mutate  func(in *CreateRequestInput)
		message string
	}{
		{"missing contact", func(in *CreateRequestInput) { in.ContactPhone = " " }, "issueType, contactName, contactPhone are required"},
		{"missing lat", func(in *CreateRequestInput) { in.Lat = nil }, "lat and lng are required"},
		{"out of range", func(in *CreateRequestInput) { in.Lng = floatPtr(200) }, "lat/lng out of range"},
		{"missing company", func(in *CreateRequestInput) { in.CompanyID = "" }, "categoryId and companyId are required"},
		{"unknown category", func(in *CreateRequestInput) { in.CategoryID = "nope" }, "categoryId is invalid/inactive"},
		{"inactive category", func(in *CreateRequestInput) { in.CategoryID = inactive.ID }, "categoryId is invalid/inactive"},
		{"customer as company", func(in *CreateRequestInput) { in.CompanyID = l.customer.ID }, "companyId is invalid"},
		{"pending company", func(in *CreateRequestInput) { in.CompanyID = pending.ID }, "Company is not ACTIVE"},
		{"service not offered", func(in *CreateRequestInput) { in.CategoryID = battery.ID }, "Company does not offer this category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)
			_, err := l.requestUseCase().Create(context.Background(), in)
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, errors.StatusOf(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestCompanyRequests_ListAndHistory(t *testing.T) {
	l := newLifecycle(t)
	l.quietPublisher()
	ctx := context.Background()
	companyUC := l.companyRequestUseCase()

	first := l.openRequest(t, l.customer, l.company, l.category)
	l.clock.Advance(time.Minute)
	second := l.openRequest(t, l.customer, l.company, l.category)
	l.clock.Advance(time.Minute)
	l.openRequest(t, l.customer, l.other, l.category)

	status, pending, err := companyUC.List(ctx, l.company.ID, "")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, status)
	require.Len(t, pending, 2)
	assert.Equal(t, second.ID, pending[0].ID)

	for _, id := range []string{first.ID, second.ID} {
		l.clock.Advance(time.Minute)
		_, err = companyUC.UpdateETA(ctx, l.company.ID, id, intPtr(5))
		require.NoError(t, err)
		_, err = companyUC.UpdateStatus(ctx, l.company.ID, id, "IN_PROGRESS")
		require.NoError(t, err)
		_, err = companyUC.UpdateStatus(ctx, l.company.ID, id, "COMPLETED")
		require.NoError(t, err)
	}

	status, done, err := companyUC.History(ctx, l.company.ID, "", 0)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, status)
	require.Len(t, done, 2)
	assert.Equal(t, second.ID, done[0].ID, "most recently updated first")

	_, _, err = companyUC.List(ctx, l.company.ID, "bogus")
	assert.Equal(t, http.StatusBadRequest, errors.StatusOf(err))

	detail, err := companyUC.Detail(ctx, l.company.ID, first.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Customer)
	assert.Equal(t, l.customer.ID, detail.Customer.ID)
	require.NotNil(t, detail.Category)
	assert.Equal(t, "TIRE", detail.Category.Key)
}

func TestCustomerRequests_ListMineAndDetail(t *testing.T) {
	l := newLifecycle(t)
	l.quietPublisher()
	ctx := context.Background()

	req := l.openRequest(t, l.customer, l.company, l.category)
	l.clock.Advance(time.Minute)
	cancelled := l.openRequest(t, l.customer, l.company, l.category)
	_, err := l.requestUseCase().Cancel(ctx, l.customer.ID, cancelled.ID, "")
	require.NoError(t, err)

	all, err := l.requestUseCase().ListMine(ctx, l.customer.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyPending, err := l.requestUseCase().ListMine(ctx, l.customer.ID, "pending")
	require.NoError(t, err)
	require.Len(t, onlyPending, 1)
	assert.Equal(t, req.ID, onlyPending[0].ID)

	detail, err := l.requestUseCase().GetMine(ctx, l.customer.ID, req.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Company)
	assert.Equal(t, "Rescue K", detail.Company.DisplayName())
	assert.Equal(t, l.category.ID, detail.Category.ID)
}
