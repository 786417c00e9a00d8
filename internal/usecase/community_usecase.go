package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"roadrescue/internal/domain/entity"
	"roadrescue/internal/domain/repository"
	"roadrescue/pkg/errors"
)

const (
	SortFeatured = "featured"
	SortTop      = "top"
	SortNew      = "new"
)

type CommunityUseCase struct {
	topicRepo repository.CommunityTopicRepository
	tipRepo   repository.CommunityTipRepository
	userRepo  repository.UserRepository
	now       func() time.Time
}

func NewCommunityUseCase(
	topicRepo repository.CommunityTopicRepository,
	tipRepo repository.CommunityTipRepository,
	userRepo repository.UserRepository,
) *CommunityUseCase {
	return &CommunityUseCase{
		topicRepo: topicRepo,
		tipRepo:   tipRepo,
		userRepo:  userRepo,
		now:       time.Now,
	}
}

type Author struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email,omitempty"`
	Role  entity.Role `json:"role"`
}

type TopicQuery struct {
	Sort   string
	Q      string
	Tags   []string
	Offset int
	Limit  int
}

type TopicWithAuthor struct {
	Topic  *entity.CommunityTopic
	Author *Author
}

type TopicPage struct {
	Items []TopicWithAuthor
	Total int64
}

type TipQuery struct {
	Q      string
	Offset int
	Limit  int
}

type TipWithAuthor struct {
	Tip    *entity.CommunityTip
	Author *Author
}

type TipPage struct {
	Items []TipWithAuthor
	Total int64
}

func checkLength(field string, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		return errors.BadRequest(fmt.Sprintf("%s must be between %d and %d chars", field, min, max), nil)
	}
	return nil
}

// ParseTags splits a comma separated tag list.
func ParseTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return entity.NormalizeTags(strings.Split(raw, ","))
}

func sortTopics(topics []*entity.CommunityTopic, mode string) {
	less := func(a, b *entity.CommunityTopic) bool { return a.CreatedAt.After(b.CreatedAt) }
	switch mode {
	case SortTop:
		less = func(a, b *entity.CommunityTopic) bool {
			if a.UpvotesCount != b.UpvotesCount {
				return a.UpvotesCount > b.UpvotesCount
			}
			if a.AdvicesCount != b.AdvicesCount {
				return a.AdvicesCount > b.AdvicesCount
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
	case SortFeatured:
		less = func(a, b *entity.CommunityTopic) bool {
			if a.IsFeatured != b.IsFeatured {
				return a.IsFeatured
			}
			if a.UpvotesCount != b.UpvotesCount {
				return a.UpvotesCount > b.UpvotesCount
			}
			if a.AdvicesCount != b.AdvicesCount {
				return a.AdvicesCount > b.AdvicesCount
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
	}
	sort.SliceStable(topics, func(i, j int) bool { return less(topics[i], topics[j]) })
}

func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func (uc *CommunityUseCase) authors(ctx context.Context, ids []string, withEmail bool) (map[string]*Author, error) {
	users, err := uc.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*Author, len(users))
	for id, u := range users {
		a := &Author{ID: u.ID, Name: u.Name, Role: u.Role}
		if withEmail {
			a.Email = u.Email
		}
		out[id] = a
	}
	return out, nil
}

func (uc *CommunityUseCase) ListTopics(ctx context.Context, query TopicQuery) (*TopicPage, error) {
	mode := strings.ToLower(strings.TrimSpace(query.Sort))
	if mode == "" {
		mode = SortFeatured
	}
	if mode != SortFeatured && mode != SortTop && mode != SortNew {
		return nil, errors.BadRequest("sort must be featured, top or new", nil)
	}

	all, err := uc.topicRepo.List(ctx, entity.NormalizeTags(query.Tags))
	if err != nil {
		return nil, err
	}
	matched := make([]*entity.CommunityTopic, 0, len(all))
	for _, t := range all {
		if entity.MatchesQuery(t.Keywords, query.Q) {
			matched = append(matched, t)
		}
	}
	sortTopics(matched, mode)

	window := page(matched, query.Offset, query.Limit)
	ids := make([]string, 0, len(window))
	for _, t := range window {
		ids = append(ids, t.CreatedBy)
	}
	authors, err := uc.authors(ctx, ids, false)
	if err != nil {
		return nil, err
	}

	items := make([]TopicWithAuthor, 0, len(window))
	for _, t := range window {
		items = append(items, TopicWithAuthor{Topic: t, Author: authors[t.CreatedBy]})
	}
	return &TopicPage{Items: items, Total: int64(len(matched))}, nil
}

type CreateTopicInput struct {
	Title   string
	Content string
	Tags    []string
}

func (uc *CommunityUseCase) CreateTopic(ctx context.Context, userID string, input CreateTopicInput) (*entity.CommunityTopic, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, errors.BadRequest("title and content are required", nil)
	}
	if err := checkLength("title", title, entity.TitleMinLength, entity.TitleMaxLength); err != nil {
		return nil, err
	}
	if err := checkLength("content", content, entity.BodyMinLength, entity.BodyMaxLength); err != nil {
		return nil, err
	}

	tags := entity.NormalizeTags(input.Tags)
	now := uc.now()
	topic := &entity.CommunityTopic{
		Title:     title,
		Content:   content,
		Tags:      tags,
		CreatedBy: userID,
		Keywords:  entity.Keywords(append([]string{title, content}, tags...)...),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.topicRepo.Create(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

// GetTopic returns a topic and counts the view.
func (uc *CommunityUseCase) GetTopic(ctx context.Context, id string) (*TopicWithAuthor, error) {
	if err := uc.topicRepo.IncrementCounter(ctx, id, repository.TopicViews, 1); err != nil {
		return nil, err
	}
	topic, err := uc.topicRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	authors, err := uc.authors(ctx, []string{topic.CreatedBy}, false)
	if err != nil {
		return nil, err
	}
	return &TopicWithAuthor{Topic: topic, Author: authors[topic.CreatedBy]}, nil
}

func (uc *CommunityUseCase) UpvoteTopic(ctx context.Context, id string) (*entity.CommunityTopic, error) {
	if err := uc.topicRepo.IncrementCounter(ctx, id, repository.TopicUpvotes, 1); err != nil {
		return nil, err
	}
	return uc.topicRepo.GetByID(ctx, id)
}

func (uc *CommunityUseCase) SetFeatured(ctx context.Context, id string, featured bool) (*entity.CommunityTopic, error) {
	return uc.topicRepo.SetFeatured(ctx, id, featured)
}

func (uc *CommunityUseCase) listTips(ctx context.Context, query TipQuery, withEmail bool) (*TipPage, error) {
	all, err := uc.tipRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]*entity.CommunityTip, 0, len(all))
	for _, t := range all {
		if entity.MatchesQuery(t.Keywords, query.Q) {
			matched = append(matched, t)
		}
	}

	window := page(matched, query.Offset, query.Limit)
	ids := make([]string, 0, len(window))
	for _, t := range window {
		ids = append(ids, t.CreatedBy)
	}
	authors, err := uc.authors(ctx, ids, withEmail)
	if err != nil {
		return nil, err
	}

	items := make([]TipWithAuthor, 0, len(window))
	for _, t := range window {
		items = append(items, TipWithAuthor{Tip: t, Author: authors[t.CreatedBy]})
	}
	return &TipPage{Items: items, Total: int64(len(matched))}, nil
}

func (uc *CommunityUseCase) ListTips(ctx context.Context, query TipQuery) (*TipPage, error) {
	return uc.listTips(ctx, query, false)
}

// AdminListTips is ListTips with the author's email included.
func (uc *CommunityUseCase) AdminListTips(ctx context.Context, query TipQuery) (*TipPage, error) {
	return uc.listTips(ctx, query, true)
}

func (uc *CommunityUseCase) CreateTip(ctx context.Context, userID, title, solution string) (*entity.CommunityTip, error) {
	title = strings.TrimSpace(title)
	solution = strings.TrimSpace(solution)
	if title == "" || solution == "" {
		return nil, errors.BadRequest("title and solution are required", nil)
	}
	if err := validateTip(title, solution); err != nil {
		return nil, err
	}

	now := uc.now()
	tip := &entity.CommunityTip{
		Title:     title,
		Solution:  solution,
		CreatedBy: userID,
		Keywords:  entity.Keywords(title, solution),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.tipRepo.Create(ctx, tip); err != nil {
		return nil, err
	}
	return tip, nil
}

func validateTip(title, solution string) error {
	if err := checkLength("title", title, entity.TitleMinLength, entity.TitleMaxLength); err != nil {
		return err
	}
	return checkLength("solution", solution, entity.BodyMinLength, entity.BodyMaxLength)
}

// UpdateTip edits whichever of title and solution is given.
func (uc *CommunityUseCase) UpdateTip(ctx context.Context, id string, title, solution *string) (*entity.CommunityTip, error) {
	if title == nil && solution == nil {
		return nil, errors.BadRequest("title or solution is required", nil)
	}

	tip, err := uc.tipRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if title != nil {
		tip.Title = strings.TrimSpace(*title)
	}
	if solution != nil {
		tip.Solution = strings.TrimSpace(*solution)
	}
	if err := validateTip(tip.Title, tip.Solution); err != nil {
		return nil, err
	}

	tip.Keywords = entity.Keywords(tip.Title, tip.Solution)
	tip.UpdatedAt = uc.now()
	if err := uc.tipRepo.Update(ctx, tip); err != nil {
		return nil, err
	}
	return tip, nil
}

func (uc *CommunityUseCase) DeleteTip(ctx context.Context, id string) error {
	return uc.tipRepo.Delete(ctx, id)
}
