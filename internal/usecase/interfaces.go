package usecase

import (
	"context"
	"time"

	"roadrescue/internal/domain/entity"
	"roadrescue/pkg/logger"
)

// Realtime event names pushed to connected users.
const (
	EventRequestETA       = "request:eta"
	EventRequestStatus    = "request:status"
	EventRequestCancelled = "request:cancelled"
	EventChatMessage      = "chat:message"
)

type TokenService interface {
	Issue(userID string, role entity.Role) (string, *entity.Principal, error)
	Verify(token string) (*entity.Principal, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// EventPublisher delivers an event to every live connection of a user.
// Delivery is best effort; callers log failures and carry on.
type EventPublisher interface {
	PublishToUser(ctx context.Context, userID, event string, payload interface{}) error
}

type Limiter interface {
	Allow(key string) (bool, time.Duration)
}

type DomainMetrics interface {
	RequestCreated(categoryID string)
	RequestTransition(from, to string)
	ChatMessage(role string)
	RateLimited(limiter string)
}

type noopMetrics struct{}

func (noopMetrics) RequestCreated(string)            {}
func (noopMetrics) RequestTransition(string, string) {}
func (noopMetrics) ChatMessage(string)               {}
func (noopMetrics) RateLimited(string)               {}

func metricsOrNoop(m DomainMetrics) DomainMetrics {
	if m == nil {
		return noopMetrics{}
	}
	return m
}

// notify pushes an event after the state change has been stored. A failed
// push never fails the request.
func notify(ctx context.Context, p EventPublisher, userID, event, requestID string, payload interface{}) {
	if p == nil || userID == "" {
		return
	}
	if err := p.PublishToUser(ctx, userID, event, payload); err != nil {
		logger.LogTransitionError(requestID, event, err)
	}
}
