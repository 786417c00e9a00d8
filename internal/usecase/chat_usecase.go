package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"roadrescue/internal/domain/entity"
	"roadrescue/internal/domain/repository"
	"roadrescue/pkg/errors"
)

const (
	DefaultMessageLimit = 50
	MaxMessageLimit     = 200
	MaxChatRooms        = 50

	defaultCompanyTitle  = "Công ty cứu hộ"
	defaultCustomerTitle = "Khách hàng"
)

// Room chat opens once a company has responded and is readable forever
// after, but only writable while the request is still active.
type ChatUseCase struct {
	requestRepo repository.RescueRequestRepository
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	publisher   EventPublisher
	limiter     Limiter
	metrics     DomainMetrics
	now         func() time.Time
}

func NewChatUseCase(
	requestRepo repository.RescueRequestRepository,
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	publisher EventPublisher,
	limiter Limiter,
	metrics DomainMetrics,
) *ChatUseCase {
	return &ChatUseCase{
		requestRepo: requestRepo,
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		publisher:   publisher,
		limiter:     limiter,
		metrics:     metricsOrNoop(metrics),
		now:         time.Now,
	}
}

type RoomPeer struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  entity.Role `json:"role"`
}

type RoomMeta struct {
	RequestID   string               `json:"requestId"`
	Status      entity.RequestStatus `json:"status"`
	IssueType   string               `json:"issueType"`
	AddressText string               `json:"addressText"`
	Peer        *RoomPeer            `json:"peer"`
	Title       string               `json:"title"`
	Subtitle    string               `json:"subtitle"`
}

type LastMessage struct {
	Text       string      `json:"text"`
	SenderRole entity.Role `json:"senderRole"`
	CreatedAt  time.Time   `json:"createdAt"`
}

type RoomSummary struct {
	RequestID   string               `json:"requestId"`
	Status      entity.RequestStatus `json:"status"`
	IssueType   string               `json:"issueType"`
	AddressText string               `json:"addressText"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	Peer        *RoomPeer            `json:"peer"`
	LastMessage *LastMessage         `json:"lastMessage"`
}

type MessagePage struct {
	Room          *RoomMeta
	RequestID     string
	Messages      []*entity.ChatMessage
	RequestStatus entity.RequestStatus
}

func requireChatRole(p *entity.Principal) error {
	if p == nil {
		return errors.Unauthorized("Unauthorized", nil)
	}
	if p.Role != entity.RoleCustomer && p.Role != entity.RoleCompany {
		return errors.Forbidden("Only CUSTOMER/COMPANY can use chat", nil)
	}
	return nil
}

// isMember reports whether the caller is the request's customer or its
// assigned company, acting in that role.
func isMember(req *entity.RescueRequest, p *entity.Principal) bool {
	switch p.Role {
	case entity.RoleCustomer:
		return req.CustomerID == p.UserID
	case entity.RoleCompany:
		return req.AssignedCompanyID == p.UserID
	}
	return false
}

func peerOf(u *entity.User) *RoomPeer {
	if u == nil {
		return nil
	}
	return &RoomPeer{ID: u.ID, Name: u.DisplayName(), Email: u.Email, Role: u.Role}
}

func (uc *ChatUseCase) peerFor(ctx context.Context, req *entity.RescueRequest, viewer entity.Role) *RoomPeer {
	peerID := req.AssignedCompanyID
	if viewer == entity.RoleCompany {
		peerID = req.CustomerID
	}
	if peerID == "" {
		return nil
	}
	u, err := uc.userRepo.GetByID(ctx, peerID)
	if err != nil {
		return nil
	}
	return peerOf(u)
}

func roomMeta(req *entity.RescueRequest, viewer entity.Role, peer *RoomPeer) *RoomMeta {
	meta := &RoomMeta{
		RequestID:   req.ID,
		Status:      req.Status,
		IssueType:   req.IssueType,
		AddressText: req.AddressText,
		Peer:        peer,
	}

	if viewer == entity.RoleCustomer {
		meta.Title = defaultCompanyTitle
		if req.IssueType != "" {
			meta.Subtitle = "Sự cố: " + req.IssueType
		}
	} else {
		meta.Title = defaultCustomerTitle
		if req.AddressText != "" {
			meta.Subtitle = "Địa chỉ: " + req.AddressText
		}
	}
	if peer != nil && peer.Name != "" {
		meta.Title = peer.Name
	}
	return meta
}

// Access resolves the room for a request. Non-members get not found; a
// PENDING request has no room yet.
func (uc *ChatUseCase) Access(ctx context.Context, p *entity.Principal, requestID string) (*entity.RescueRequest, *RoomMeta, error) {
	if err := requireChatRole(p); err != nil {
		return nil, nil, err
	}

	req, err := uc.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if !isMember(req, p) {
		return nil, nil, errors.NotFound("Request", nil)
	}
	if req.Status == entity.StatusPending {
		return nil, nil, errors.BadRequest("Chat is not available until company responds (ASSIGNED).", nil)
	}

	return req, roomMeta(req, p.Role, uc.peerFor(ctx, req, p.Role)), nil
}

// Rooms lists the caller's open or finished rooms, most recently active
// first.
func (uc *ChatUseCase) Rooms(ctx context.Context, p *entity.Principal) ([]RoomSummary, error) {
	if err := requireChatRole(p); err != nil {
		return nil, err
	}

	filter := repository.RequestFilter{
		Statuses: []entity.RequestStatus{
			entity.StatusAssigned, entity.StatusInProgress, entity.StatusCompleted, entity.StatusCancelled,
		},
		OrderBy: repository.OrderByUpdatedAt,
		Limit:   MaxChatRooms,
	}
	if p.Role == entity.RoleCustomer {
		filter.CustomerID = p.UserID
	} else {
		filter.CompanyID = p.UserID
	}

	requests, err := uc.requestRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	peerIDs := make([]string, 0, len(requests))
	for _, r := range requests {
		if p.Role == entity.RoleCustomer {
			peerIDs = append(peerIDs, r.AssignedCompanyID)
		} else {
			peerIDs = append(peerIDs, r.CustomerID)
		}
	}
	peers, err := uc.userRepo.GetByIDs(ctx, peerIDs)
	if err != nil {
		return nil, err
	}

	rooms := make([]RoomSummary, 0, len(requests))
	for i, r := range requests {
		room := RoomSummary{
			RequestID:   r.ID,
			Status:      r.Status,
			IssueType:   r.IssueType,
			AddressText: r.AddressText,
			UpdatedAt:   r.UpdatedAt,
			Peer:        peerOf(peers[peerIDs[i]]),
		}
		last, err := uc.chatRepo.LastMessage(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		if last != nil {
			room.LastMessage = &LastMessage{Text: last.Text, SenderRole: last.SenderRole, CreatedAt: last.CreatedAt}
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

// Messages returns messages in chronological order. With a cursor only
// messages strictly after it are returned; without one, the latest limit
// messages.
func (uc *ChatUseCase) Messages(ctx context.Context, p *entity.Principal, requestID string, after *time.Time, limit int) (*MessagePage, error) {
	req, meta, err := uc.Access(ctx, p, requestID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	if limit > MaxMessageLimit {
		limit = MaxMessageLimit
	}

	var msgs []*entity.ChatMessage
	if after != nil {
		msgs, err = uc.chatRepo.ListAfter(ctx, requestID, *after, limit)
		if err != nil {
			return nil, err
		}
	} else {
		msgs, err = uc.chatRepo.ListLatest(ctx, requestID, limit)
		if err != nil {
			return nil, err
		}
		for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
			msgs[i], msgs[j] = msgs[j], msgs[i]
		}
	}

	return &MessagePage{
		Room:          meta,
		RequestID:     requestID,
		Messages:      msgs,
		RequestStatus: req.Status,
	}, nil
}

func (uc *ChatUseCase) Send(ctx context.Context, p *entity.Principal, requestID, text string) (*entity.ChatMessage, error) {
	req, _, err := uc.Access(ctx, p, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status.Terminal() {
		return nil, errors.BadRequest("Request ended. Chat is read-only.", nil)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.BadRequest("text is required", nil)
	}
	if utf8.RuneCountInString(text) > entity.MaxChatMessageLength {
		return nil, errors.BadRequest(fmt.Sprintf("text must be at most %d chars", entity.MaxChatMessageLength), nil)
	}

	if uc.limiter != nil {
		if ok, retry := uc.limiter.Allow(p.UserID); !ok {
			uc.metrics.RateLimited("chat")
			return nil, errors.TooManyRequests("Too many messages, slow down").
				With("retryAfter", int(retry.Seconds())+1)
		}
	}

	msg := &entity.ChatMessage{
		RequestID:  requestID,
		SenderID:   p.UserID,
		SenderRole: p.Role,
		Text:       text,
		CreatedAt:  uc.now(),
	}
	if err := uc.chatRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	uc.metrics.ChatMessage(string(msg.SenderRole))
	recipient := req.AssignedCompanyID
	if p.Role == entity.RoleCompany {
		recipient = req.CustomerID
	}
	notify(ctx, uc.publisher, recipient, EventChatMessage, requestID, msg)
	return msg, nil
}
