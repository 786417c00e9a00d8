package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"roadrescue/internal/domain/entity"
	"roadrescue/internal/domain/repository"
	"roadrescue/pkg/errors"
)

type firestoreCategoryRepository struct {
	client *firestore.Client
}

func NewFirestoreCategoryRepository(client *firestore.Client) repository.CategoryRepository {
	return &firestoreCategoryRepository{client: client}
}

func (r *firestoreCategoryRepository) List(ctx context.Context, activeOnly bool) ([]*entity.ServiceCategory, error) {
	query := r.client.Collection(categoriesCollection).Query
	if activeOnly {
		query = query.Where("isActive", "==", true)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var categories []*entity.ServiceCategory
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to list categories", err)
		}
		var c entity.ServiceCategory
		if err := doc.DataTo(&c); err != nil {
			return nil, errors.Internal("Failed to parse category data", err)
		}
		categories = append(categories, &c)
	}

	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (r *firestoreCategoryRepository) GetByID(ctx context.Context, id string) (*entity.ServiceCategory, error) {
	doc, err := r.client.Collection(categoriesCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, storeError("Category", "get category", err)
	}
	var c entity.ServiceCategory
	if err := doc.DataTo(&c); err != nil {
		return nil, errors.Internal("Failed to parse category data", err)
	}
	return &c, nil
}

func (r *firestoreCategoryRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.ServiceCategory, error) {
	out := make(map[string]*entity.ServiceCategory, len(ids))
	var refs []*firestore.DocumentRef
	seen := map[string]bool{}
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		refs = append(refs, r.client.Collection(categoriesCollection).Doc(id))
	}
	if len(refs) == 0 {
		return out, nil
	}

	docs, err := r.client.GetAll(ctx, refs)
	if err != nil {
		return nil, errors.Internal("Failed to get categories", err)
	}
	for _, doc := range docs {
		if !doc.Exists() {
			continue
		}
		var c entity.ServiceCategory
		if err := doc.DataTo(&c); err != nil {
			return nil, errors.Internal("Failed to parse category data", err)
		}
		out[c.ID] = &c
	}
	return out, nil
}

// Upsert keys categories by their upper-case key so reseeding is idempotent.
func (r *firestoreCategoryRepository) Upsert(ctx context.Context, category *entity.ServiceCategory) error {
	now := time.Now()
	iter := r.client.Collection(categoriesCollection).Where("key", "==", category.Key).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	switch {
	case err == iterator.Done:
		if category.ID == "" {
			category.ID = category.Key
		}
		category.CreatedAt = now
	case err != nil:
		return errors.Internal("Failed to look up category", err)
	default:
		var existing entity.ServiceCategory
		if err := doc.DataTo(&existing); err != nil {
			return errors.Internal("Failed to parse category data", err)
		}
		category.ID = existing.ID
		category.CreatedAt = existing.CreatedAt
	}
	category.UpdatedAt = now

	if _, err := r.client.Collection(categoriesCollection).Doc(category.ID).Set(ctx, category); err != nil {
		return errors.Internal("Failed to save category", err)
	}
	return nil
}
