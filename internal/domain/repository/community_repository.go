package repository

import (
	"context"

	"roadrescue/internal/domain/entity"
)

type CommunityTopicRepository interface {
	Create(ctx context.Context, topic *entity.CommunityTopic) error
	GetByID(ctx context.Context, id string) (*entity.CommunityTopic, error)
	// List returns every topic carrying at least one of tags (all topics
	// when tags is empty).
	List(ctx context.Context, tags []string) ([]*entity.CommunityTopic, error)
	IncrementCounter(ctx context.Context, id, field string, delta int64) error
	SetFeatured(ctx context.Context, id string, featured bool) (*entity.CommunityTopic, error)
}

type CommunityTipRepository interface {
	Create(ctx context.Context, tip *entity.CommunityTip) error
	GetByID(ctx context.Context, id string) (*entity.CommunityTip, error)
	List(ctx context.Context) ([]*entity.CommunityTip, error)
	Update(ctx context.Context, tip *entity.CommunityTip) error
	Delete(ctx context.Context, id string) error
}

const (
	TopicViews   = "viewsCount"
	TopicUpvotes = "upvotesCount"
	TopicAdvices = "advicesCount"
)
