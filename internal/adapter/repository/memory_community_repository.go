package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"roadrescue/internal/domain/entity"
	"roadrescue/internal/domain/repository"
	"roadrescue/pkg/errors"
)

type memoryCommunityTopicRepository struct {
	mu     sync.Mutex
	topics map[string]*entity.CommunityTopic
}

func NewMemoryCommunityTopicRepository() repository.CommunityTopicRepository {
	return &memoryCommunityTopicRepository{topics: make(map[string]*entity.CommunityTopic)}
}

func (r *memoryCommunityTopicRepository) Create(ctx context.Context, topic *entity.CommunityTopic) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if topic.ID == "" {
		topic.ID = uuid.New().String()
	}
	r.topics[topic.ID] = cloneTopic(topic)
	return nil
}

func (r *memoryCommunityTopicRepository) GetByID(ctx context.Context, id string) (*entity.CommunityTopic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.topics[id]
	if !ok {
		return nil, errors.NotFound("Topic", nil)
	}
	return cloneTopic(t), nil
}

func (r *memoryCommunityTopicRepository) List(ctx context.Context, tags []string) ([]*entity.CommunityTopic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := make(map[string]bool, len(tags))
	for _, t := range tags {
		want[t] = true
	}

	var out []*entity.CommunityTopic
	for _, t := range r.topics {
		if len(want) > 0 && !hasAnyTag(t.Tags, want) {
			continue
		}
		out = append(out, cloneTopic(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func hasAnyTag(tags []string, want map[string]bool) bool {
	for _, t := range tags {
		if want[t] {
			return true
		}
	}
	return false
}

func (r *memoryCommunityTopicRepository) IncrementCounter(ctx context.Context, id, field string, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.topics[id]
	if !ok {
		return errors.NotFound("Topic", nil)
	}
	switch field {
	case repository.TopicViews:
		t.ViewsCount += delta
	case repository.TopicUpvotes:
		t.UpvotesCount += delta
	case repository.TopicAdvices:
		t.AdvicesCount += delta
	default:
		return errors.BadRequest("unknown counter "+field, nil)
	}
	return nil
}

func (r *memoryCommunityTopicRepository) SetFeatured(ctx context.Context, id string, featured bool) (*entity.CommunityTopic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.topics[id]
	if !ok {
		return nil, errors.NotFound("Topic", nil)
	}
	t.IsFeatured = featured
	return cloneTopic(t), nil
}

type memoryCommunityTipRepository struct {
	mu   sync.Mutex
	tips map[string]*entity.CommunityTip
}

func NewMemoryCommunityTipRepository() repository.CommunityTipRepository {
	return &memoryCommunityTipRepository{tips: make(map[string]*entity.CommunityTip)}
}

func (r *memoryCommunityTipRepository) Create(ctx context.Context, tip *entity.CommunityTip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tip.ID == "" {
		tip.ID = uuid.New().String()
	}
	r.tips[tip.ID] = cloneTip(tip)
	return nil
}

func (r *memoryCommunityTipRepository) GetByID(ctx context.Context, id string) (*entity.CommunityTip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tips[id]
	if !ok {
		return nil, errors.NotFound("Tip", nil)
	}
	return cloneTip(t), nil
}

func (r *memoryCommunityTipRepository) List(ctx context.Context) ([]*entity.CommunityTip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entity.CommunityTip, 0, len(r.tips))
	for _, t := range r.tips {
		out = append(out, cloneTip(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryCommunityTipRepository) Update(ctx context.Context, tip *entity.CommunityTip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tips[tip.ID]; !ok {
		return errors.NotFound("Tip", nil)
	}
	r.tips[tip.ID] = cloneTip(tip)
	return nil
}

func (r *memoryCommunityTipRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tips[id]; !ok {
		return errors.NotFound("Tip", nil)
	}
	delete(r.tips, id)
	return nil
}
