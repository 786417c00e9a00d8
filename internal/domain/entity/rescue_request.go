package entity

import (
	"fmt"
	"strings"
	"time"

	"roadrescue/pkg/errors"
)

type RequestStatus string

const (
	StatusPending    RequestStatus = "PENDING"
	StatusAssigned   RequestStatus = "ASSIGNED"
	StatusInProgress RequestStatus = "IN_PROGRESS"
	StatusCompleted  RequestStatus = "COMPLETED"
	StatusCancelled  RequestStatus = "CANCELLED"
)

var AllRequestStatuses = []RequestStatus{
	StatusPending, StatusAssigned, StatusInProgress, StatusCompleted, StatusCancelled,
}

func (s RequestStatus) Valid() bool {
	for _, v := range AllRequestStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Terminal reports whether the request can no longer progress.
func (s RequestStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

const DefaultCancelReason = "Customer cancelled"

// companyTransitions lists the status moves a company may make explicitly.
// PENDING -> ASSIGNED happens through SetETA instead.
var companyTransitions = map[RequestStatus][]RequestStatus{
	StatusAssigned:   {StatusInProgress},
	StatusInProgress: {StatusCompleted},
}

type RescueRequest struct {
	ID                string  `json:"id" firestore:"id"`
	CustomerID        string  `json:"customerId" firestore:"customerId"`
	CategoryID        string  `json:"categoryId" firestore:"categoryId"`
	AssignedCompanyID string  `json:"assignedCompanyId" firestore:"assignedCompanyId"`
	QuotedBasePrice   float64 `json:"quotedBasePrice" firestore:"quotedBasePrice"`

	IssueType    string   `json:"issueType" firestore:"issueType"`
	Note         string   `json:"note,omitempty" firestore:"note"`
	ContactName  string   `json:"contactName" firestore:"contactName"`
	ContactPhone string   `json:"contactPhone" firestore:"contactPhone"`
	Location     GeoPoint `json:"location" firestore:"location"`
	AddressText  string   `json:"addressText,omitempty" firestore:"addressText"`

	Status     RequestStatus `json:"status" firestore:"status"`
	EtaMinutes *int          `json:"etaMinutes" firestore:"etaMinutes"`

	CompletedAt  *time.Time `json:"completedAt" firestore:"completedAt"`
	CancelReason string     `json:"cancelReason,omitempty" firestore:"cancelReason"`
	CancelledAt  *time.Time `json:"cancelledAt,omitempty" firestore:"cancelledAt"`
	CancelledBy  Role       `json:"cancelledBy,omitempty" firestore:"cancelledBy"`

	CustomerRating      *int       `json:"customerRating" firestore:"customerRating"`
	CustomerReview      string     `json:"customerReview,omitempty" firestore:"customerReview"`
	CustomerConfirmedAt *time.Time `json:"customerConfirmedAt" firestore:"customerConfirmedAt"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// IsParty reports whether userID is the customer or the assigned company.
func (r *RescueRequest) IsParty(userID string) bool {
	return userID != "" && (r.CustomerID == userID || r.AssignedCompanyID == userID)
}

// SetETA records the company's arrival estimate. The first ETA on a PENDING
// request is the company accepting it.
func (r *RescueRequest) SetETA(minutes int, now time.Time) error {
	if minutes < 0 {
		return errors.BadRequest("etaMinutes must be a non-negative number", nil)
	}
	if r.Status.Terminal() {
		return errors.BadRequest(fmt.Sprintf("Cannot update ETA when status is %s", r.Status), nil)
	}

	eta := minutes
	r.EtaMinutes = &eta
	if r.Status == StatusPending {
		r.Status = StatusAssigned
	}
	r.UpdatedAt = now
	return nil
}

// ValidateCompanyTarget checks the target before the request is loaded.
func ValidateCompanyTarget(target RequestStatus) error {
	if target != StatusInProgress && target != StatusCompleted {
		return errors.BadRequest("status must be IN_PROGRESS or COMPLETED", nil)
	}
	return nil
}

// TransitionTo applies a company status update.
func (r *RescueRequest) TransitionTo(target RequestStatus, now time.Time) error {
	if err := ValidateCompanyTarget(target); err != nil {
		return err
	}
	if r.Status == StatusCancelled {
		return errors.BadRequest("Request is CANCELLED", nil)
	}
	if !CanTransition(r.Status, target) {
		return errors.BadRequest(fmt.Sprintf("Cannot move from %s to %s", r.Status, target), nil)
	}

	r.Status = target
	if target == StatusCompleted {
		t := now
		r.CompletedAt = &t
	}
	r.UpdatedAt = now
	return nil
}

func CanTransition(from, to RequestStatus) bool {
	for _, next := range companyTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return errors.BadRequest("rating must be 1..5", nil)
	}
	return nil
}

// Confirm stores the customer's one-time rating of a completed request.
func (r *RescueRequest) Confirm(rating int, review string, now time.Time) error {
	if err := ValidateRating(rating); err != nil {
		return err
	}
	if r.Status != StatusCompleted {
		return errors.BadRequest("Only COMPLETED requests can be confirmed/reviewed", nil)
	}
	if r.CustomerConfirmedAt != nil {
		return errors.BadRequest("Already confirmed", nil)
	}

	rate := rating
	t := now
	r.CustomerRating = &rate
	r.CustomerReview = strings.TrimSpace(review)
	r.CustomerConfirmedAt = &t
	r.UpdatedAt = now
	return nil
}

func (r *RescueRequest) Cancel(reason string, by Role, now time.Time) error {
	if r.Status == StatusCompleted {
		return errors.BadRequest("Cannot cancel a COMPLETED request", nil)
	}
	if r.Status == StatusCancelled {
		return errors.BadRequest("Request is already CANCELLED", nil)
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultCancelReason
	}
	t := now
	r.Status = StatusCancelled
	r.CancelReason = reason
	r.CancelledAt = &t
	r.CancelledBy = by
	r.UpdatedAt = now
	return nil
}
