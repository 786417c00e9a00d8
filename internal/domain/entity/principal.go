package entity

import "time"

// Principal is the authenticated caller carried on the request context.
type Principal struct {
	UserID    string
	Role      Role
	TokenID   string
	ExpiresAt time.Time
}
