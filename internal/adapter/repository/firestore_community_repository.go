package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"roadrescue/internal/domain/entity"
	"roadrescue/internal/domain/repository"
	"roadrescue/pkg/errors"
)

type firestoreCommunityTopicRepository struct {
	client *firestore.Client
}

func NewFirestoreCommunityTopicRepository(client *firestore.Client) repository.CommunityTopicRepository {
	return &firestoreCommunityTopicRepository{client: client}
}

func (r *firestoreCommunityTopicRepository) Create(ctx context.Context, topic *entity.CommunityTopic) error {
	if topic.ID == "" {
		topic.ID = uuid.New().String()
	}
	if _, err := r.client.Collection(topicsCollection).Doc(topic.ID).Set(ctx, topic); err != nil {
		return errors.Internal("Failed to create topic", err)
	}
	return nil
}

func (r *firestoreCommunityTopicRepository) GetByID(ctx context.Context, id string) (*entity.CommunityTopic, error) {
	doc, err := r.client.Collection(topicsCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, storeError("Topic", "get topic", err)
	}
	var topic entity.CommunityTopic
	if err := doc.DataTo(&topic); err != nil {
		return nil, errors.Internal("Failed to parse topic data", err)
	}
	return &topic, nil
}

func (r *firestoreCommunityTopicRepository) List(ctx context.Context, tags []string) ([]*entity.CommunityTopic, error) {
	query := r.client.Collection(topicsCollection).Query
	if len(tags) > 0 {
		query = query.Where("tags", "array-contains-any", tags)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var topics []*entity.CommunityTopic
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to list topics", err)
		}
		var topic entity.CommunityTopic
		if err := doc.DataTo(&topic); err != nil {
			return nil, errors.Internal("Failed to parse topic data", err)
		}
		topics = append(topics, &topic)
	}

	sort.Slice(topics, func(i, j int) bool { return topics[i].CreatedAt.After(topics[j].CreatedAt) })
	return topics, nil
}

func (r *firestoreCommunityTopicRepository) IncrementCounter(ctx context.Context, id, field string, delta int64) error {
	_, err := r.client.Collection(topicsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: field, Value: firestore.Increment(delta)},
	})
	if err != nil {
		return storeError("Topic", "update topic counter", err)
	}
	return nil
}

func (r *firestoreCommunityTopicRepository) SetFeatured(ctx context.Context, id string, featured bool) (*entity.CommunityTopic, error) {
	_, err := r.client.Collection(topicsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "isFeatured", Value: featured},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return nil, storeError("Topic", "feature topic", err)
	}
	return r.GetByID(ctx, id)
}

type firestoreCommunityTipRepository struct {
	client *firestore.Client
}

func NewFirestoreCommunityTipRepository(client *firestore.Client) repository.CommunityTipRepository {
	return &firestoreCommunityTipRepository{client: client}
}

func (r *firestoreCommunityTipRepository) Create(ctx context.Context, tip *entity.CommunityTip) error {
	if tip.ID == "" {
		tip.ID = uuid.New().String()
	}
	if _, err := r.client.Collection(tipsCollection).Doc(tip.ID).Set(ctx, tip); err != nil {
		return errors.Internal("Failed to create tip", err)
	}
	return nil
}

func (r *firestoreCommunityTipRepository) GetByID(ctx context.Context, id string) (*entity.CommunityTip, error) {
	doc, err := r.client.Collection(tipsCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, storeError("Tip", "get tip", err)
	}
	var tip entity.CommunityTip
	if err := doc.DataTo(&tip); err != nil {
		return nil, errors.Internal("Failed to parse tip data", err)
	}
	return &tip, nil
}

func (r *firestoreCommunityTipRepository) List(ctx context.Context) ([]*entity.CommunityTip, error) {
	iter := r.client.Collection(tipsCollection).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var tips []*entity.CommunityTip
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to list tips", err)
		}
		var tip entity.CommunityTip
		if err := doc.DataTo(&tip); err != nil {
			return nil, errors.Internal("Failed to parse tip data", err)
		}
		tips = append(tips, &tip)
	}
	return tips, nil
}

func (r *firestoreCommunityTipRepository) Update(ctx context.Context, tip *entity.CommunityTip) error {
	_, err := r.client.Collection(tipsCollection).Doc(tip.ID).Update(ctx, []firestore.Update{
		{Path: "title", Value: tip.Title},
		{Path: "solution", Value: tip.Solution},
		{Path: "keywords", Value: tip.Keywords},
		{Path: "updatedAt", Value: tip.UpdatedAt},
	})
	if err != nil {
		return storeError("Tip", "update tip", err)
	}
	return nil
}

func (r *firestoreCommunityTipRepository) Delete(ctx context.Context, id string) error {
	ref := r.client.Collection(tipsCollection).Doc(id)
	if _, err := ref.Get(ctx); err != nil {
		return storeError("Tip", "get tip", err)
	}
	if _, err := ref.Delete(ctx); err != nil {
		return errors.Internal("Failed to delete tip", err)
	}
	return nil
}
