//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_store.go -package=mocks
package contract

import (
	"context"
	"dialog-hub/domain"
	"time"
)

// IDialogStore is the authoritative record of dialogs.
// Dialog creation belongs to the first-message flow; the conversation layer
// only mutates block and soft-delete state.
type IDialogStore interface {
	CreateDialog(ctx context.Context, a, b domain.UserID) (domain.Dialog, error)
	GetDialog(ctx context.Context, id domain.DialogID) (domain.Dialog, error)
	SetBlocked(ctx context.Context, id domain.DialogID, by *domain.UserID) error
	SetDeletedFor(ctx context.Context, id domain.DialogID, user domain.UserID) error
	ClearDeletedFor(ctx context.Context, id domain.DialogID, users []domain.UserID) error
	DialogsOf(ctx context.Context, user domain.UserID) ([]domain.Dialog, error)
}

// IMessageLog is the append-only, per-dialog sequenced message log.
type IMessageLog interface {
	// Append assigns the next sequence of the dialog and persists the message atomically.
	Append(ctx context.Context, dialog domain.DialogID, sender domain.UserID, body string, at time.Time) (domain.Message, error)
	// MarkDelivered sets delivered_at on the given sequences when still unset.
	MarkDelivered(ctx context.Context, dialog domain.DialogID, sequences []uint64, at time.Time) error
	// MarkRead sets read_at on messages up to upTo not sent by reader and returns the ones that changed.
	MarkRead(ctx context.Context, dialog domain.DialogID, reader domain.UserID, upTo uint64, at time.Time) ([]domain.Message, error)
	// ListSince returns the messages with a sequence strictly greater than since, in order.
	ListSince(ctx context.Context, dialog domain.DialogID, since uint64) ([]domain.Message, error)
	CountUnread(ctx context.Context, dialog domain.DialogID, user domain.UserID) (int, error)
}
