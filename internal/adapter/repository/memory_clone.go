package repository

import (
	"time"

	"roadrescue/internal/domain/entity"
)

// The memory adapters hand out copies so callers can never mutate stored
// state without going through the repository.

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

func cloneGeo(p entity.GeoPoint) entity.GeoPoint {
	return entity.GeoPoint{Type: p.Type, Coordinates: append([]float64(nil), p.Coordinates...)}
}

func cloneUser(u *entity.User) *entity.User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Company != nil {
		profile := *u.Company
		profile.Services = append([]entity.CompanyService{}, u.Company.Services...)
		profile.ServiceCategoryIDs = append([]string{}, u.Company.ServiceCategoryIDs...)
		if u.Company.Location != nil {
			loc := cloneGeo(*u.Company.Location)
			profile.Location = &loc
		}
		c.Company = &profile
	}
	return &c
}

func cloneRequest(r *entity.RescueRequest) *entity.RescueRequest {
	if r == nil {
		return nil
	}
	c := *r
	c.Location = cloneGeo(r.Location)
	c.EtaMinutes = cloneInt(r.EtaMinutes)
	c.CustomerRating = cloneInt(r.CustomerRating)
	c.CompletedAt = cloneTime(r.CompletedAt)
	c.CancelledAt = cloneTime(r.CancelledAt)
	c.CustomerConfirmedAt = cloneTime(r.CustomerConfirmedAt)
	return &c
}

func cloneTopic(t *entity.CommunityTopic) *entity.CommunityTopic {
	c := *t
	c.Tags = append([]string{}, t.Tags...)
	c.Keywords = append([]string{}, t.Keywords...)
	return &c
}

func cloneTip(t *entity.CommunityTip) *entity.CommunityTip {
	c := *t
	c.Keywords = append([]string{}, t.Keywords...)
	return &c
}
