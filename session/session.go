// Package session drives one live WebSocket connection.
// A session owns two loops: the read loop decodes client frames and hands
// them to a Dispatcher, the write loop drains a bounded outbound queue.
package session

import (
	"context"
	"dialog-hub/contract"
	"dialog-hub/domain"
	"dialog-hub/domain/event"
	"dialog-hub/errors"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// Close codes outside the IANA range used by this server.
const (
	CloseIdleTimeout = 4002
)

// Conn is the subset of *websocket.Conn a session needs.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type Dispatcher interface {
	Dispatch(ctx context.Context, conn contract.Outbound, in event.Inbound) error
}

type DispatchFunc func(ctx context.Context, conn contract.Outbound, in event.Inbound) error

func (f DispatchFunc) Dispatch(ctx context.Context, conn contract.Outbound, in event.Inbound) error {
	return f(ctx, conn, in)
}

// Lifecycle is implemented by dispatchers that track open connections.
// Connected runs once the write loop is draining, before the first frame is read.
type Lifecycle interface {
	Connected(ctx context.Context, conn contract.Outbound)
	Disconnected(ctx context.Context, conn contract.Outbound)
}

type Options struct {
	QueueSize           int
	WriteTimeout        time.Duration
	MaxProtocolFailures int
}

var _ contract.Outbound = (*Session)(nil)

type Session struct {
	id       uuid.UUID
	user     domain.UserID
	openedAt time.Time
	lastSeen atomic.Int64
	conn     Conn
	log      *slog.Logger
	options  Options

	outbound   chan []byte
	done       chan struct{}
	writerDone chan struct{}
	closeOnce  sync.Once
	closeCode  int
	closeText  string
}

func New(conn Conn, user domain.UserID, log *slog.Logger, options Options) *Session {
	if options.QueueSize <= 0 {
		options.QueueSize = 64
	}
	if options.MaxProtocolFailures <= 0 {
		options.MaxProtocolFailures = 5
	}
	if options.WriteTimeout <= 0 {
		options.WriteTimeout = 10 * time.Second
	}
	id := uuid.New()
	s := &Session{
		id:         id,
		user:       user,
		openedAt:   time.Now(),
		conn:       conn,
		log:        log.With("connection_id", id, "user_id", user),
		options:    options,
		outbound:   make(chan []byte, options.QueueSize),
		done:       make(chan struct{}),
		writerDone: make(chan struct{}),
	}
	s.lastSeen.Store(s.openedAt.UnixNano())
	return s
}

func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) UserID() domain.UserID { return s.user }

func (s *Session) OpenedAt() time.Time { return s.openedAt }

func (s *Session) LastSeen() time.Time { return time.Unix(0, s.lastSeen.Load()) }

// Done is closed once the session starts closing.
func (s *Session) Done() <-chan struct{} { return s.done }

// CloseCode is the WebSocket close code the session terminated with, 0 while open.
func (s *Session) CloseCode() int {
	select {
	case <-s.done:
		return s.closeCode
	default:
		return 0
	}
}

// Enqueue never blocks. A full queue means the client cannot keep up:
// the session is closed and ErrBackpressure returned.
func (s *Session) Enqueue(evt event.Outbound) error {
	select {
	case <-s.done:
		return errors.ErrConnectionClosed
	default:
	}

	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode %s: %w", evt.EventType(), err)
	}

	select {
	case s.outbound <- data:
		return nil
	default:
		s.log.Warn("Outbound queue overflow, closing connection", "capacity", cap(s.outbound))
		s.Close(websocket.CloseTryAgainLater, "outbound queue overflow")
		return errors.ErrBackpressure
	}
}

// Close is idempotent; the first code and reason win.
func (s *Session) Close(code int, reason string) {
	s.closeOnce.Do(func() {
		s.closeCode = code
		s.closeText = reason
		close(s.done)
	})
}

// Run reads frames until the connection ends. It blocks, and it returns
// only after the write loop has sent the close frame.
func (s *Session) Run(ctx context.Context, dispatcher Dispatcher) error {
	go s.writePump()
	defer func() {
		s.Close(websocket.CloseNormalClosure, "")
		<-s.writerDone
	}()
	if lifecycle, ok := dispatcher.(Lifecycle); ok {
		lifecycle.Connected(ctx, s)
		defer lifecycle.Disconnected(context.WithoutCancel(ctx), s)
	}

	go func() {
		select {
		case <-ctx.Done():
			s.Close(websocket.CloseGoingAway, "server shutting down")
		case <-s.done:
		}
	}()

	failures := 0
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
				return nil
			default:
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		s.lastSeen.Store(time.Now().UnixNano())

		in, err := event.Decode(data)
		if err != nil {
			failures++
			s.log.Debug("Dropping malformed event", "error", err, "failures", failures)
			_ = s.Enqueue(event.NewError(err, 0))
			if failures >= s.options.MaxProtocolFailures {
				s.Close(websocket.ClosePolicyViolation, "too many malformed events")
				return fmt.Errorf("%w: %d consecutive failures", errors.ErrProtocol, failures)
			}
			continue
		}
		failures = 0

		if err = dispatcher.Dispatch(ctx, s, in); err != nil {
			s.log.Debug("Request rejected", "type", in.InboundType(), "error", err)
			_ = s.Enqueue(event.NewError(err, event.DialogOf(in)))
		}
	}
}

func (s *Session) writePump() {
	defer close(s.writerDone)
	for {
		// Closing takes priority over pending frames
		select {
		case <-s.done:
			s.shutdown()
			return
		default:
		}

		select {
		case data := <-s.outbound:
			if err := s.write(websocket.TextMessage, data); err != nil {
				s.log.Debug("Write failed", "error", err)
				s.Close(websocket.CloseInternalServerErr, "write failure")
			}
		case <-s.done:
			s.shutdown()
			return
		}
	}
}

func (s *Session) shutdown() {
	_ = s.write(websocket.CloseMessage, websocket.FormatCloseMessage(s.closeCode, s.closeText))
	_ = s.conn.Close()
	discarded := 0
	for {
		select {
		case <-s.outbound:
			discarded++
		default:
			s.log.Debug("Connection closed", "code", s.closeCode, "reason", s.closeText, "discarded", discarded)
			return
		}
	}
}

func (s *Session) write(messageType int, data []byte) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.options.WriteTimeout)); err != nil {
		return err
	}
	return s.conn.WriteMessage(messageType, data)
}
