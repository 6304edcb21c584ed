package runtime

import (
	"context"
	"dialog-hub/domain"
	"dialog-hub/domain/event"
	"dialog-hub/errors"
	"dialog-hub/repositories"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// fakeConn records the events pushed to a live connection.
type fakeConn struct {
	id       uuid.UUID
	user     domain.UserID
	mu       sync.Mutex
	events   []event.Outbound
	lastSeen time.Time
	closed   bool
	code     int
}

func newFakeConn(user domain.UserID) *fakeConn {
	return &fakeConn{id: uuid.New(), user: user, lastSeen: time.Now()}
}

func (c *fakeConn) ID() uuid.UUID { return c.id }

func (c *fakeConn) UserID() domain.UserID { return c.user }

func (c *fakeConn) LastSeen() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

func (c *fakeConn) Enqueue(evt event.Outbound) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.ErrConnectionClosed
	}
	c.events = append(c.events, evt)
	return nil
}

func (c *fakeConn) Close(code int, _ string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		c.code = code
	}
}

func (c *fakeConn) setLastSeen(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSeen = at
}

func (c *fakeConn) received() []event.Outbound {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]event.Outbound(nil), c.events...)
}

func receivedOf[T event.Outbound](c *fakeConn) []T {
	var result []T
	for _, evt := range c.received() {
		if e, ok := evt.(T); ok {
			result = append(result, e)
		}
	}
	return result
}

type fixture struct {
	dialogs  *repositories.DialogRepository
	messages *repositories.MessageRepository
	registry *Registry
	router   *Router
	unread   *Unread
	changes  chan PresenceChange
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	log := testLogger()
	dialogs, err := repositories.NewDialogRepository(db, log)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = dialogs.Close()
		_ = db.Close()
	})

	messages := repositories.NewMessageRepository(db, log)
	registry := NewRegistry(4)
	changes := make(chan PresenceChange, 16)
	return fixture{
		dialogs:  dialogs,
		messages: messages,
		registry: registry,
		router:   NewRouter(log, dialogs, messages, registry, 0).WithPresenceChanges(changes),
		unread:   NewUnread(dialogs, messages),
		changes:  changes,
	}
}

func (f fixture) dialog(t *testing.T, a, b domain.UserID) domain.Dialog {
	t.Helper()
	dialog, err := f.dialogs.CreateDialog(context.Background(), a, b)
	require.NoError(t, err)
	return dialog
}

func testLogger() *slog.Logger {
	return logs.GetLoggerFromLevel(slog.LevelDebug)
}
