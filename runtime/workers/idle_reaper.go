package workers

import (
	"context"
	"dialog-hub/contract"
	"dialog-hub/session"
	"log/slog"
	"time"
)

type idleLister interface {
	Idle(cutoff time.Time) []contract.Outbound
}

var _ contract.Worker = (*IdleReaper)(nil)

// IdleReaper closes connections that sent nothing, pings included, for longer than timeout.
type IdleReaper struct {
	log      *slog.Logger
	registry idleLister
	timeout  time.Duration
	interval time.Duration
	now      func() time.Time
}

func NewIdleReaper(log *slog.Logger, registry idleLister, timeout, interval time.Duration) *IdleReaper {
	return &IdleReaper{log: log, registry: registry, timeout: timeout, interval: interval, now: time.Now}
}

func (w *IdleReaper) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping idle reaper")
			return nil
		case <-ticker.C:
			w.Reap()
		}
	}
}

// Reap closes the idle connections once and returns how many were closed.
func (w *IdleReaper) Reap() int {
	idle := w.registry.Idle(w.now().Add(-w.timeout))
	for _, conn := range idle {
		w.log.Info("Closing idle connection", "connection_id", conn.ID(), "user_id", conn.UserID(), "last_seen", conn.LastSeen())
		conn.Close(session.CloseIdleTimeout, "idle timeout")
	}
	return len(idle)
}
