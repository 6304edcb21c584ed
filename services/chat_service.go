package services

import (
	"context"
	"dialog-hub/contract"
	"dialog-hub/domain"
	"dialog-hub/runtime"
	"math"
	"time"
)

type IChatService interface {
	Presence(user domain.UserID) PresenceView
	UnreadTotal(ctx context.Context, user domain.UserID) (int, error)
	UnreadInDialog(ctx context.Context, user domain.UserID, dialog domain.DialogID) (int, error)
	Dialogs(ctx context.Context, user domain.UserID) ([]DialogView, error)
	Messages(ctx context.Context, user domain.UserID, dialog domain.DialogID, since uint64) ([]domain.Message, error)
	Send(ctx context.Context, user domain.UserID, dialog domain.DialogID, text string) (domain.Message, error)
	MarkRead(ctx context.Context, user domain.UserID, dialog domain.DialogID, upTo uint64) (uint64, error)
	Block(ctx context.Context, user domain.UserID, dialog domain.DialogID) error
	Unblock(ctx context.Context, user domain.UserID, dialog domain.DialogID) error
	Delete(ctx context.Context, user domain.UserID, dialog domain.DialogID) error
}

type PresenceView struct {
	UserID   domain.UserID `json:"user_id"`
	Online   bool          `json:"online"`
	LastSeen *time.Time    `json:"last_seen,omitempty"`
}

// DialogView is one row of a user's dialog list.
type DialogView struct {
	ID                domain.DialogID `json:"id"`
	Participant       domain.UserID   `json:"participant_id"`
	ParticipantOnline bool            `json:"participant_online"`
	Blocked           bool            `json:"blocked"`
	BlockedByMe       bool            `json:"blocked_by_me"`
	Unread            int             `json:"unread_count"`
	CreatedAt         time.Time       `json:"created_at"`
}

var _ IChatService = (*ChatService)(nil)

// ChatService is the read and moderation surface used by the REST endpoints.
// Every mutation goes through the router so it is ordered with live traffic.
type ChatService struct {
	router   *runtime.Router
	unread   *runtime.Unread
	registry *runtime.Registry
	dialogs  contract.IDialogStore
}

func NewChatService(router *runtime.Router, unread *runtime.Unread, registry *runtime.Registry, dialogs contract.IDialogStore) *ChatService {
	return &ChatService{router: router, unread: unread, registry: registry, dialogs: dialogs}
}

func (s *ChatService) Presence(user domain.UserID) PresenceView {
	view := PresenceView{UserID: user, Online: s.registry.IsOnline(user)}
	if at, ok := s.registry.LastSeen(user); ok {
		view.LastSeen = &at
	}
	return view
}

func (s *ChatService) UnreadTotal(ctx context.Context, user domain.UserID) (int, error) {
	return s.unread.Count(ctx, user)
}

func (s *ChatService) UnreadInDialog(ctx context.Context, user domain.UserID, dialog domain.DialogID) (int, error) {
	return s.unread.CountInDialog(ctx, user, dialog)
}

// Dialogs lists the dialogs user has not hidden, newest first.
func (s *ChatService) Dialogs(ctx context.Context, user domain.UserID) ([]DialogView, error) {
	dialogs, err := s.dialogs.DialogsOf(ctx, user)
	if err != nil {
		return nil, err
	}
	views := make([]DialogView, 0, len(dialogs))
	for i := len(dialogs) - 1; i >= 0; i-- {
		dialog := dialogs[i]
		if dialog.IsDeletedFor(user) {
			continue
		}
		unread, err := s.unread.CountInDialog(ctx, user, dialog.ID)
		if err != nil {
			return nil, err
		}
		other := dialog.Other(user)
		views = append(views, DialogView{
			ID:                dialog.ID,
			Participant:       other,
			ParticipantOnline: s.registry.IsOnline(other),
			Blocked:           dialog.IsBlocked(),
			BlockedByMe:       dialog.BlockedBy != nil && *dialog.BlockedBy == user,
			Unread:            unread,
			CreatedAt:         dialog.CreatedAt,
		})
	}
	return views, nil
}

func (s *ChatService) Messages(ctx context.Context, user domain.UserID, dialog domain.DialogID, since uint64) ([]domain.Message, error) {
	return s.router.CatchUp(ctx, user, dialog, since)
}

func (s *ChatService) Send(ctx context.Context, user domain.UserID, dialog domain.DialogID, text string) (domain.Message, error) {
	return s.router.Send(ctx, user, dialog, text)
}

// MarkRead marks messages up to upTo as read, or every message when upTo is 0.
// It returns the highest sequence that changed, 0 when nothing did.
func (s *ChatService) MarkRead(ctx context.Context, user domain.UserID, dialog domain.DialogID, upTo uint64) (uint64, error) {
	if upTo == 0 {
		upTo = math.MaxUint64
	}
	return s.router.Read(ctx, user, dialog, upTo)
}

func (s *ChatService) Block(ctx context.Context, user domain.UserID, dialog domain.DialogID) error {
	return s.router.Block(ctx, user, dialog)
}

func (s *ChatService) Unblock(ctx context.Context, user domain.UserID, dialog domain.DialogID) error {
	return s.router.Unblock(ctx, user, dialog)
}

func (s *ChatService) Delete(ctx context.Context, user domain.UserID, dialog domain.DialogID) error {
	return s.router.SoftDelete(ctx, user, dialog)
}
