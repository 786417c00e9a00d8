package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	memrepo "roadrescue/internal/adapter/repository"
	"roadrescue/internal/domain/entity"
	"roadrescue/internal/domain/repository"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishToUser(ctx context.Context, userID, event string, payload interface{}) error {
	args := m.Called(ctx, userID, event, payload)
	return args.Error(0)
}

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	users      repository.UserRepository
	categories repository.CategoryRepository
	requests   repository.RescueRequestRepository
	chats      repository.ChatRepository
	topics     repository.CommunityTopicRepository
	tips       repository.CommunityTipRepository
	publisher  *mockPublisher
	clock      *testClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		users:      memrepo.NewMemoryUserRepository(),
		categories: memrepo.NewMemoryCategoryRepository(),
		requests:   memrepo.NewMemoryRescueRequestRepository(),
		chats:      memrepo.NewMemoryChatRepository(),
		topics:     memrepo.NewMemoryCommunityTopicRepository(),
		tips:       memrepo.NewMemoryCommunityTipRepository(),
		publisher:  &mockPublisher{},
		clock:      &testClock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)},
	}
}

// quietPublisher accepts every event without asserting on it.
func (f *fixture) quietPublisher() {
	f.publisher.On("PublishToUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}

func (f *fixture) category(t *testing.T, key, name string, active bool) *entity.ServiceCategory {
	t.Helper()
	c := &entity.ServiceCategory{Key: key, Name: name, IsActive: active, CreatedAt: f.clock.Now(), UpdatedAt: f.clock.Now()}
	require.NoError(t, f.categories.Upsert(context.Background(), c))
	return c
}

func (f *fixture) customer(t *testing.T, email, name string) *entity.User {
	t.Helper()
	u := entity.NewCustomer("", email, "hash", name, "0900000001", f.clock.Now())
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) company(t *testing.T, email, companyName string, status entity.CompanyStatus, lat, lng float64, services ...entity.CompanyService) *entity.User {
	t.Helper()
	u := entity.NewCompany("", email, "hash", "Owner "+companyName, "0900000002", companyName, f.clock.Now())
	u.Company.Status = status
	loc := entity.NewGeoPoint(lat, lng)
	u.Company.Location = &loc
	u.Company.SetServices(services)
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) requestUseCase() *RequestUseCase {
	uc := NewRequestUseCase(f.requests, f.users, f.categories, f.publisher, nil)
	uc.now = f.clock.Now
	return uc
}

func (f *fixture) companyRequestUseCase() *CompanyRequestUseCase {
	uc := NewCompanyRequestUseCase(f.requests, f.users, f.categories, f.publisher, nil)
	uc.now = f.clock.Now
	return uc
}

func (f *fixture) chatUseCase(limiter Limiter) *ChatUseCase {
	uc := NewChatUseCase(f.requests, f.chats, f.users, f.publisher, limiter, nil)
	uc.now = f.clock.Now
	return uc
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func principal(u *entity.User) *entity.Principal {
	return &entity.Principal{UserID: u.ID, Role: u.Role}
}

// openRequest creates a PENDING request from customer to company for category.
func (f *fixture) openRequest(t *testing.T, customer, company *entity.User, category *entity.ServiceCategory) *entity.RescueRequest {
	t.Helper()
	req, err := f.requestUseCase().Create(context.Background(), CreateRequestInput{
		CustomerID:   customer.ID,
		CategoryID:   category.ID,
		CompanyID:    company.ID,
		IssueType:    "Flat tire",
		ContactName:  "An",
		ContactPhone: "0901234567",
		Lat:          floatPtr(10.77),
		Lng:          floatPtr(106.70),
		AddressText:  "1 Le Loi",
	})
	require.NoError(t, err)
	return req
}
