package handler

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"roadrescue/internal/adapter/api/middleware"
	"roadrescue/internal/domain/entity"
	"roadrescue/internal/usecase"
	"roadrescue/pkg/response"
	"roadrescue/pkg/utils"
)

const (
	communityDefaultLimit = 10
	communityMaxLimit     = 50
)

type CommunityHandler struct {
	communityUseCase *usecase.CommunityUseCase
}

func NewCommunityHandler(communityUseCase *usecase.CommunityUseCase) *CommunityHandler {
	return &CommunityHandler{
		communityUseCase: communityUseCase,
	}
}

type createTopicRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags" validate:"max=50,dive,max=40"`
}

type createTipRequest struct {
	Title    string `json:"title"`
	Solution string `json:"solution"`
}

type updateTipRequest struct {
	Title    *string `json:"title"`
	Solution *string `json:"solution"`
}

type featureRequest struct {
	IsFeatured *bool `json:"isFeatured" validate:"required"`
}

type topicSummary struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	ContentPreview string          `json:"contentPreview"`
	Tags           []string        `json:"tags"`
	IsFeatured     bool            `json:"isFeatured"`
	ViewsCount     int64           `json:"viewsCount"`
	AdvicesCount   int64           `json:"advicesCount"`
	UpvotesCount   int64           `json:"upvotesCount"`
	CreatedBy      *usecase.Author `json:"createdBy"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type topicResponse struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Content      string          `json:"content"`
	Tags         []string        `json:"tags"`
	IsFeatured   bool            `json:"isFeatured"`
	ViewsCount   int64           `json:"viewsCount"`
	AdvicesCount int64           `json:"advicesCount"`
	UpvotesCount int64           `json:"upvotesCount"`
	CreatedBy    *usecase.Author `json:"createdBy,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type tipResponse struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Solution  string          `json:"solution"`
	CreatedBy *usecase.Author `json:"createdBy,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func newTopicResponse(t *entity.CommunityTopic, author *usecase.Author) topicResponse {
	return topicResponse{
		ID:           t.ID,
		Title:        t.Title,
		Content:      t.Content,
		Tags:         tagsOrEmpty(t.Tags),
		IsFeatured:   t.IsFeatured,
		ViewsCount:   t.ViewsCount,
		AdvicesCount: t.AdvicesCount,
		UpvotesCount: t.UpvotesCount,
		CreatedBy:    author,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func newTipResponse(t *entity.CommunityTip, author *usecase.Author) tipResponse {
	return tipResponse{
		ID:        t.ID,
		Title:     t.Title,
		Solution:  t.Solution,
		CreatedBy: author,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// ListTopics handles GET /community/topics?sort=featured|top|new&q=&tags=FUEL,TIRE&page=&limit=
func (h *CommunityHandler) ListTopics(c echo.Context) error {
	p := utils.GetPaginationParams(c, communityDefaultLimit, communityMaxLimit)
	result, err := h.communityUseCase.ListTopics(c.Request().Context(), usecase.TopicQuery{
		Sort:   c.QueryParam("sort"),
		Q:      c.QueryParam("q"),
		Tags:   usecase.ParseTags(strings.Join(c.QueryParams()["tags"], ",")),
		Offset: p.Offset,
		Limit:  p.Limit,
	})
	if err != nil {
		return response.Error(c, err)
	}

	items := make([]topicSummary, 0, len(result.Items))
	for _, it := range result.Items {
		t := it.Topic
		items = append(items, topicSummary{
			ID:             t.ID,
			Title:          t.Title,
			ContentPreview: t.Preview(),
			Tags:           tagsOrEmpty(t.Tags),
			IsFeatured:     t.IsFeatured,
			ViewsCount:     t.ViewsCount,
			AdvicesCount:   t.AdvicesCount,
			UpvotesCount:   t.UpvotesCount,
			CreatedBy:      it.Author,
			CreatedAt:      t.CreatedAt,
			UpdatedAt:      t.UpdatedAt,
		})
	}
	return response.Paginated(c, items, len(items), result.Total, p.Page, p.Limit)
}

func (h *CommunityHandler) CreateTopic(c echo.Context) error {
	var req createTopicRequest
	if err := bindBody(c, &req); err != nil {
		return response.Error(c, err)
	}

	topic, err := h.communityUseCase.CreateTopic(c.Request().Context(), middleware.PrincipalFrom(c).UserID, usecase.CreateTopicInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, newTopicResponse(topic, nil))
}

// GetTopic returns one topic and counts the view.
func (h *CommunityHandler) GetTopic(c echo.Context) error {
	result, err := h.communityUseCase.GetTopic(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, newTopicResponse(result.Topic, result.Author))
}

func (h *CommunityHandler) UpvoteTopic(c echo.Context) error {
	topic, err := h.communityUseCase.UpvoteTopic(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{
		"id":           topic.ID,
		"upvotesCount": topic.UpvotesCount,
	})
}

func (h *CommunityHandler) FeatureTopic(c echo.Context) error {
	var req featureRequest
	if err := bindBody(c, &req); err != nil {
		return response.Error(c, err)
	}

	topic, err := h.communityUseCase.SetFeatured(c.Request().Context(), c.Param("id"), *req.IsFeatured)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, newTopicResponse(topic, nil))
}

func (h *CommunityHandler) listTips(c echo.Context, admin bool) error {
	p := utils.GetPaginationParams(c, communityDefaultLimit, communityMaxLimit)
	query := usecase.TipQuery{Q: c.QueryParam("q"), Offset: p.Offset, Limit: p.Limit}

	var (
		result *usecase.TipPage
		err    error
	)
	if admin {
		result, err = h.communityUseCase.AdminListTips(c.Request().Context(), query)
	} else {
		result, err = h.communityUseCase.ListTips(c.Request().Context(), query)
	}
	if err != nil {
		return response.Error(c, err)
	}

	items := make([]tipResponse, 0, len(result.Items))
	for _, it := range result.Items {
		var author *usecase.Author
		if admin {
			author = it.Author
		}
		items = append(items, newTipResponse(it.Tip, author))
	}
	return response.Paginated(c, items, len(items), result.Total, p.Page, p.Limit)
}

// ListTips handles GET /community/tips?q=&page=&limit=
func (h *CommunityHandler) ListTips(c echo.Context) error {
	return h.listTips(c, false)
}

// AdminListTips is ListTips with each tip's author.
func (h *CommunityHandler) AdminListTips(c echo.Context) error {
	return h.listTips(c, true)
}

func (h *CommunityHandler) CreateTip(c echo.Context) error {
	var req createTipRequest
	if err := bindBody(c, &req); err != nil {
		return response.Error(c, err)
	}

	tip, err := h.communityUseCase.CreateTip(c.Request().Context(), middleware.PrincipalFrom(c).UserID, req.Title, req.Solution)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, newTipResponse(tip, nil))
}

func (h *CommunityHandler) UpdateTip(c echo.Context) error {
	var req updateTipRequest
	if err := bindBody(c, &req); err != nil {
		return response.Error(c, err)
	}

	tip, err := h.communityUseCase.UpdateTip(c.Request().Context(), c.Param("id"), req.Title, req.Solution)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, newTipResponse(tip, nil))
}

func (h *CommunityHandler) DeleteTip(c echo.Context) error {
	id := c.Param("id")
	if err := h.communityUseCase.DeleteTip(c.Request().Context(), id); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{"ok": true, "id": id})
}
