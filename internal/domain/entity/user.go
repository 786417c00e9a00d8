package entity

import (
	"strings"
	"time"
)

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleCompany  Role = "COMPANY"
	RoleAdmin    Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleCompany, RoleAdmin:
		return true
	}
	return false
}

type CompanyStatus string

const (
	CompanyPending  CompanyStatus = "PENDING"
	CompanyActive   CompanyStatus = "ACTIVE"
	CompanyRejected CompanyStatus = "REJECTED"
)

type CompanyService struct {
	CategoryID string  `json:"categoryId" firestore:"categoryId"`
	BasePrice  float64 `json:"basePrice" firestore:"basePrice"`
}

// CompanyProfile holds the data only a COMPANY account has.
// ServiceCategoryIDs mirrors Services so the store can filter with array-contains.
type CompanyProfile struct {
	Name               string           `json:"companyName" firestore:"name"`
	Status             CompanyStatus    `json:"companyStatus" firestore:"status"`
	Location           *GeoPoint        `json:"companyLocation,omitempty" firestore:"location"`
	Services           []CompanyService `json:"companyServices" firestore:"services"`
	ServiceCategoryIDs []string         `json:"-" firestore:"serviceCategoryIds"`
}

// PriceFor returns the base price the company charges for categoryID.
func (p *CompanyProfile) PriceFor(categoryID string) (float64, bool) {
	for _, s := range p.Services {
		if s.CategoryID == categoryID {
			return s.BasePrice, true
		}
	}
	return 0, false
}

// SetServices replaces the service list and keeps the category index in sync.
func (p *CompanyProfile) SetServices(services []CompanyService) {
	p.Services = services
	ids := make([]string, 0, len(services))
	for _, s := range services {
		ids = append(ids, s.CategoryID)
	}
	p.ServiceCategoryIDs = ids
}

// User is an account. Company is non-nil iff Role == RoleCompany; build
// accounts through NewCustomer, NewCompany or NewAdmin to keep it that way.
type User struct {
	ID           string          `json:"id" firestore:"id"`
	Email        string          `json:"email" firestore:"email"`
	PasswordHash string          `json:"-" firestore:"passwordHash"`
	Role         Role            `json:"role" firestore:"role"`
	Name         string          `json:"name" firestore:"name"`
	Phone        string          `json:"phone,omitempty" firestore:"phone"`
	Company      *CompanyProfile `json:"company,omitempty" firestore:"company"`
	CreatedAt    time.Time       `json:"createdAt" firestore:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt" firestore:"updatedAt"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newAccount(id, email, passwordHash, name, phone string, role Role, now time.Time) *User {
	return &User{
		ID:           id,
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		Role:         role,
		Name:         strings.TrimSpace(name),
		Phone:        strings.TrimSpace(phone),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func NewCustomer(id, email, passwordHash, name, phone string, now time.Time) *User {
	return newAccount(id, email, passwordHash, name, phone, RoleCustomer, now)
}

func NewAdmin(id, email, passwordHash, name string, now time.Time) *User {
	return newAccount(id, email, passwordHash, name, "", RoleAdmin, now)
}

// NewCompany creates a company account awaiting admin approval.
func NewCompany(id, email, passwordHash, name, phone, companyName string, now time.Time) *User {
	u := newAccount(id, email, passwordHash, name, phone, RoleCompany, now)
	u.Company = &CompanyProfile{
		Name:               strings.TrimSpace(companyName),
		Status:             CompanyPending,
		Services:           []CompanyService{},
		ServiceCategoryIDs: []string{},
	}
	return u
}

// AsCompany returns the company profile, or false for non-company accounts.
func (u *User) AsCompany() (*CompanyProfile, bool) {
	if u == nil || u.Role != RoleCompany || u.Company == nil {
		return nil, false
	}
	return u.Company, true
}

// DisplayName prefers the company name for companies.
func (u *User) DisplayName() string {
	if c, ok := u.AsCompany(); ok && c.Name != "" {
		return c.Name
	}
	return u.Name
}
