package handler

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"roadrescue/internal/adapter/api/middleware"
	"roadrescue/internal/domain/entity"
	"roadrescue/internal/usecase"
	"roadrescue/pkg/errors"
	"roadrescue/pkg/response"
	"roadrescue/pkg/utils"
)

// ChatHandler serves the per-request chat rooms.
type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type messagesResponse struct {
	Room          *usecase.RoomMeta     `json:"room"`
	RequestID     string                `json:"requestId"`
	Count         int                   `json:"count"`
	Items         []*entity.ChatMessage `json:"items"`
	RequestStatus entity.RequestStatus  `json:"requestStatus"`
}

// Rooms lists the caller's chat rooms.
func (h *ChatHandler) Rooms(c echo.Context) error {
	rooms, err := h.chatUseCase.Rooms(c.Request().Context(), middleware.PrincipalFrom(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, rooms, len(rooms))
}

// Messages handles GET /chat/rooms/:requestId/messages?after=ISO&limit=50.
func (h *ChatHandler) Messages(c echo.Context) error {
	var after *time.Time
	if raw := strings.TrimSpace(c.QueryParam("after")); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return response.Error(c, errors.BadRequest("after must be an ISO date", err))
		}
		after = &t
	}
	limit := utils.QueryInt(c, "limit", usecase.DefaultMessageLimit)

	page, err := h.chatUseCase.Messages(c.Request().Context(), middleware.PrincipalFrom(c), c.Param("requestId"), after, limit)
	if err != nil {
		return response.Error(c, err)
	}

	items := page.Messages
	if items == nil {
		items = []*entity.ChatMessage{}
	}
	return response.Success(c, messagesResponse{
		Room:          page.Room,
		RequestID:     page.RequestID,
		Count:         len(items),
		Items:         items,
		RequestStatus: page.RequestStatus,
	})
}

func (h *ChatHandler) Send(c echo.Context) error {
	var req sendMessageRequest
	if err := bindBody(c, &req); err != nil {
		return response.Error(c, err)
	}

	msg, err := h.chatUseCase.Send(c.Request().Context(), middleware.PrincipalFrom(c), c.Param("requestId"), req.Text)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, msg)
}
