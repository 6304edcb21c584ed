package workers

import (
	"context"
	"dialog-hub/contract"
	"dialog-hub/domain"
	"dialog-hub/domain/event"
	"dialog-hub/runtime"
	"log/slog"
	"time"
)

var _ contract.Worker = (*PresenceMirrorWorker)(nil)

// PresenceMirrorWorker copies presence transitions to an external store so
// other services can read them. Online entries carry a TTL, refreshed on every
// tick for users still connected, so a crashed process stops advertising them.
type PresenceMirrorWorker struct {
	log             *slog.Logger
	mirror          contract.IPresenceMirror
	changes         <-chan runtime.PresenceChange
	online          func() []domain.UserID
	refreshInterval time.Duration
}

func NewPresenceMirrorWorker(
	log *slog.Logger,
	mirror contract.IPresenceMirror,
	changes <-chan runtime.PresenceChange,
	online func() []domain.UserID,
	refreshInterval time.Duration,
) *PresenceMirrorWorker {
	return &PresenceMirrorWorker{
		log:             log,
		mirror:          mirror,
		changes:         changes,
		online:          online,
		refreshInterval: refreshInterval,
	}
}

func (w *PresenceMirrorWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping presence mirror")
			return nil
		case change := <-w.changes:
			w.apply(ctx, change)
		case <-ticker.C:
			for _, user := range w.online() {
				if err := w.mirror.SetOnline(ctx, user); err != nil {
					w.log.Warn("Presence refresh failed", "user_id", user, "error", err)
					break
				}
			}
		}
	}
}

func (w *PresenceMirrorWorker) apply(ctx context.Context, change runtime.PresenceChange) {
	var err error
	switch change.State {
	case event.Online:
		err = w.mirror.SetOnline(ctx, change.User)
	case event.Offline:
		err = w.mirror.SetOffline(ctx, change.User, change.At)
	}
	if err != nil {
		w.log.Warn("Presence mirror failed", "user_id", change.User, "state", change.State, "error", err)
	}
}
