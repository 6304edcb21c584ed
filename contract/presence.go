//go:generate go run go.uber.org/mock/mockgen -source=presence.go -destination=../mocks/mock_presence.go -package=mocks
package contract

import (
	"context"
	"dialog-hub/domain"
	"dialog-hub/domain/event"
	"time"

	"github.com/google/uuid"
)

// Outbound is a live connection as seen by the registry and the router.
// Enqueue never blocks: a full queue closes the connection.
type Outbound interface {
	ID() uuid.UUID
	UserID() domain.UserID
	LastSeen() time.Time
	Enqueue(evt event.Outbound) error
	Close(code int, reason string)
}

type IRegistry interface {
	Register(conn Outbound) bool
	Unregister(conn Outbound) bool
	ConnectionsOf(user domain.UserID) []Outbound
	IsOnline(user domain.UserID) bool
}

// IPresenceMirror publishes presence transitions outside of the process.
type IPresenceMirror interface {
	SetOnline(ctx context.Context, user domain.UserID) error
	SetOffline(ctx context.Context, user domain.UserID, at time.Time) error
}
