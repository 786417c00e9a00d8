package handler

import (
	"time"

	"roadrescue/internal/domain/entity"
)

type userResponse struct {
	ID            string               `json:"id"`
	Email         string               `json:"email"`
	Role          entity.Role          `json:"role"`
	Name          string               `json:"name"`
	Phone         string               `json:"phone"`
	CompanyName   string               `json:"companyName,omitempty"`
	CompanyStatus entity.CompanyStatus `json:"companyStatus,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

func newUserResponse(u *entity.User) userResponse {
	out := userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		Name:      u.Name,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if profile, ok := u.AsCompany(); ok {
		out.CompanyName = profile.Name
		out.CompanyStatus = profile.Status
	}
	return out
}

type categoryRef struct {
	ID   string `json:"id"`
	Key  string `json:"key,omitempty"`
	Name string `json:"name,omitempty"`
}

type companyRef struct {
	ID            string               `json:"id"`
	CompanyName   string               `json:"companyName,omitempty"`
	Phone         string               `json:"phone,omitempty"`
	CompanyStatus entity.CompanyStatus `json:"companyStatus,omitempty"`
}

type customerRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// requestResponse is the public view of a rescue request. The projections
// are only filled on detail endpoints.
type requestResponse struct {
	ID                string               `json:"id"`
	Status            entity.RequestStatus `json:"status"`
	CustomerID        string               `json:"customerId"`
	CategoryID        string               `json:"categoryId"`
	AssignedCompanyID string               `json:"assignedCompanyId"`
	QuotedBasePrice   float64              `json:"quotedBasePrice"`
	EtaMinutes        *int                 `json:"etaMinutes"`

	IssueType    string         `json:"issueType"`
	Note         *string        `json:"note"`
	ContactName  string         `json:"contactName"`
	ContactPhone string         `json:"contactPhone"`
	AddressText  *string        `json:"addressText"`
	Location     *entity.LatLng `json:"location"`

	CompletedAt         *time.Time `json:"completedAt"`
	CustomerConfirmedAt *time.Time `json:"customerConfirmedAt"`
	CustomerRating      *int       `json:"customerRating"`
	CustomerReview      *string    `json:"customerReview"`

	CancelReason *string      `json:"cancelReason"`
	CancelledAt  *time.Time   `json:"cancelledAt"`
	CancelledBy  *entity.Role `json:"cancelledBy"`

	Category *categoryRef `json:"category,omitempty"`
	Company  *companyRef  `json:"company,omitempty"`
	Customer *customerRef `json:"customer,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func newRequestResponse(r *entity.RescueRequest) requestResponse {
	out := requestResponse{
		ID:                  r.ID,
		Status:              r.Status,
		CustomerID:          r.CustomerID,
		CategoryID:          r.CategoryID,
		AssignedCompanyID:   r.AssignedCompanyID,
		QuotedBasePrice:     r.QuotedBasePrice,
		EtaMinutes:          r.EtaMinutes,
		IssueType:           r.IssueType,
		Note:                optional(r.Note),
		ContactName:         r.ContactName,
		ContactPhone:        r.ContactPhone,
		AddressText:         optional(r.AddressText),
		CompletedAt:         r.CompletedAt,
		CustomerConfirmedAt: r.CustomerConfirmedAt,
		CustomerRating:      r.CustomerRating,
		CustomerReview:      optional(r.CustomerReview),
		CancelReason:        optional(r.CancelReason),
		CancelledAt:         r.CancelledAt,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
	if r.Location.Valid() {
		loc := r.Location.LatLng()
		out.Location = &loc
	}
	if r.CancelledBy != "" {
		by := r.CancelledBy
		out.CancelledBy = &by
	}
	return out
}

func newRequestResponses(items []*entity.RescueRequest) []requestResponse {
	out := make([]requestResponse, 0, len(items))
	for _, r := range items {
		out = append(out, newRequestResponse(r))
	}
	return out
}

func withCategory(out *requestResponse, c *entity.ServiceCategory, fallbackID string) {
	if c == nil {
		out.Category = &categoryRef{ID: fallbackID}
		return
	}
	out.Category = &categoryRef{ID: c.ID, Key: c.Key, Name: c.Name}
}

func withCompany(out *requestResponse, u *entity.User, fallbackID string) {
	if u == nil {
		out.Company = &companyRef{ID: fallbackID}
		return
	}
	ref := &companyRef{ID: u.ID, CompanyName: u.DisplayName(), Phone: u.Phone}
	if profile, ok := u.AsCompany(); ok {
		ref.CompanyStatus = profile.Status
	}
	out.Company = ref
}

func withCustomer(out *requestResponse, u *entity.User, fallbackID string) {
	if u == nil {
		out.Customer = &customerRef{ID: fallbackID}
		return
	}
	out.Customer = &customerRef{ID: u.ID, Name: u.Name, Phone: u.Phone, Email: u.Email}
}

// statusListResponse is a list filtered by one status.
type statusListResponse struct {
	Status string      `json:"status"`
	Count  int         `json:"count"`
	Items  interface{} `json:"items"`
}
