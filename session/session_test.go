package session

import (
	"context"
	"dialog-hub/contract"
	"dialog-hub/domain/event"
	"dialog-hub/errors"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type frame struct {
	messageType int
	data        []byte
}

// fakeConn feeds scripted frames to the read loop and records what the write loop sends.
type fakeConn struct {
	inbound chan []byte
	closed  chan struct{}
	once    sync.Once

	mu      sync.Mutex
	written []frame
}

func newFakeConn() *fakeConn {
	return &fakeConn{inbound: make(chan []byte, 16), closed: make(chan struct{})}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case data := <-c.inbound:
		return websocket.TextMessage, data, nil
	case <-c.closed:
		return 0, nil, fmt.Errorf("use of closed connection")
	}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, frame{messageType: messageType, data: data})
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) frames() []frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]frame(nil), c.written...)
}

func (c *fakeConn) textTypes() []event.Type {
	var types []event.Type
	for _, f := range c.frames() {
		if f.messageType != websocket.TextMessage {
			continue
		}
		var env struct {
			Type event.Type `json:"type"`
		}
		_ = json.Unmarshal(f.data, &env)
		types = append(types, env.Type)
	}
	return types
}

func (c *fakeConn) closeCode() int {
	for _, f := range c.frames() {
		if f.messageType == websocket.CloseMessage && len(f.data) >= 2 {
			return int(binary.BigEndian.Uint16(f.data[:2]))
		}
	}
	return 0
}

func testLogger() *slog.Logger {
	return logs.GetLoggerFromLevel(slog.LevelDebug)
}

func TestSession_Enqueue_OverflowClosesSession(t *testing.T) {
	req := require.New(t)
	conn := newFakeConn()
	s := New(conn, 1, testLogger(), Options{QueueSize: 2})

	// Given a client that never drains its queue
	req.NoError(s.Enqueue(event.NewPong()))
	req.NoError(s.Enqueue(event.NewPong()))

	// When one more event arrives
	err := s.Enqueue(event.NewPong())

	// Then the session is terminated for backpressure
	req.ErrorIs(err, errors.ErrBackpressure)
	req.Equal(websocket.CloseTryAgainLater, s.CloseCode())
	select {
	case <-s.Done():
	default:
		req.Fail("session should be closing")
	}

	// And later events are refused without blocking
	req.ErrorIs(s.Enqueue(event.NewPong()), errors.ErrConnectionClosed)
}

func TestSession_Close_IsIdempotent(t *testing.T) {
	req := require.New(t)
	s := New(newFakeConn(), 1, testLogger(), Options{})

	s.Close(CloseIdleTimeout, "idle timeout")
	s.Close(websocket.CloseNormalClosure, "")

	req.Equal(CloseIdleTimeout, s.CloseCode())
}

func TestSession_Run_AnswersPing(t *testing.T) {
	req := require.New(t)
	conn := newFakeConn()
	s := New(conn, 1, testLogger(), Options{})
	dispatcher := DispatchFunc(func(_ context.Context, c contract.Outbound, in event.Inbound) error {
		if _, ok := in.(event.Ping); ok {
			return c.Enqueue(event.NewPong())
		}
		return nil
	})

	result := make(chan error, 1)
	go func() { result <- s.Run(context.Background(), dispatcher) }()

	// When the client pings
	conn.inbound <- []byte(`{"type":"ping"}`)

	// Then a pong is written
	req.Eventually(func() bool {
		types := conn.textTypes()
		return len(types) == 1 && types[0] == event.PongType
	}, time.Second, 10*time.Millisecond)

	// When the client goes away
	s.Close(websocket.CloseNormalClosure, "")
	req.NoError(<-result)
	req.Equal(websocket.CloseNormalClosure, conn.closeCode())
}

func TestSession_Run_ReportsRejectedRequests(t *testing.T) {
	req := require.New(t)
	conn := newFakeConn()
	s := New(conn, 1, testLogger(), Options{})
	dispatcher := DispatchFunc(func(context.Context, contract.Outbound, event.Inbound) error {
		return errors.ErrBlocked
	})

	go func() { _ = s.Run(context.Background(), dispatcher) }()
	defer s.Close(websocket.CloseNormalClosure, "")

	conn.inbound <- []byte(`{"type":"send","dialog_id":7,"text":"hi"}`)

	req.Eventually(func() bool {
		for _, f := range conn.frames() {
			var e event.Error
			if json.Unmarshal(f.data, &e) == nil && e.Type == event.ErrorType {
				return e.Code == errors.CodeBlocked && e.DialogID == 7
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)

	// The connection stays open after a rejected request
	req.Zero(s.CloseCode())
}

func TestSession_Run_ClosesAfterProtocolBudget(t *testing.T) {
	req := require.New(t)
	conn := newFakeConn()
	s := New(conn, 1, testLogger(), Options{MaxProtocolFailures: 3})
	dispatched := 0
	dispatcher := DispatchFunc(func(context.Context, contract.Outbound, event.Inbound) error {
		dispatched++
		return nil
	})

	// Given two malformed frames, a valid one resetting the budget, then three malformed
	conn.inbound <- []byte(`not json`)
	conn.inbound <- []byte(`{"type":"unknown"}`)
	conn.inbound <- []byte(`{"type":"ping"}`)
	conn.inbound <- []byte(`{"type":"send"}`)
	conn.inbound <- []byte(`{"type":"read","dialog_id":1}`)
	conn.inbound <- []byte(`{}`)

	// When the session runs
	err := s.Run(context.Background(), dispatcher)

	// Then the connection is closed for policy violation
	req.ErrorIs(err, errors.ErrProtocol)
	req.Equal(websocket.ClosePolicyViolation, s.CloseCode())
	req.Equal(websocket.ClosePolicyViolation, conn.closeCode())
	req.Equal(1, dispatched)
}

func TestSession_Run_StopsOnContextCancel(t *testing.T) {
	req := require.New(t)
	conn := newFakeConn()
	s := New(conn, 1, testLogger(), Options{})
	ctx, cancel := context.WithCancel(context.Background())

	result := make(chan error, 1)
	go func() { result <- s.Run(ctx, DispatchFunc(func(context.Context, contract.Outbound, event.Inbound) error { return nil })) }()

	cancel()

	select {
	case err := <-result:
		req.NoError(err)
	case <-time.After(time.Second):
		req.Fail("session should stop with its context")
	}
	req.Equal(websocket.CloseGoingAway, s.CloseCode())
}

type lifecycleDispatcher struct {
	DispatchFunc
	mu     sync.Mutex
	events []string
}

func (d *lifecycleDispatcher) Connected(_ context.Context, conn contract.Outbound) {
	d.mu.Lock()
	d.events = append(d.events, "connected")
	d.mu.Unlock()
	_ = conn.Enqueue(event.NewConnected(conn.UserID()))
}

func (d *lifecycleDispatcher) Disconnected(context.Context, contract.Outbound) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, "disconnected")
}

func (d *lifecycleDispatcher) seen() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.events...)
}

func TestSession_Run_NotifiesLifecycle(t *testing.T) {
	req := require.New(t)
	conn := newFakeConn()
	s := New(conn, 5, testLogger(), Options{})
	dispatcher := &lifecycleDispatcher{
		DispatchFunc: func(context.Context, contract.Outbound, event.Inbound) error { return nil },
	}

	result := make(chan error, 1)
	go func() { result <- s.Run(context.Background(), dispatcher) }()

	// Then frames enqueued on connect are written
	req.Eventually(func() bool {
		types := conn.textTypes()
		return len(types) == 1 && types[0] == event.ConnectedType
	}, time.Second, 10*time.Millisecond)

	// When the connection ends
	s.Close(websocket.CloseNormalClosure, "")
	req.NoError(<-result)

	// Then the dispatcher saw both ends of the lifecycle
	req.Equal([]string{"connected", "disconnected"}, dispatcher.seen())
}
