package runtime

import (
	"context"
	"dialog-hub/contract"
	"dialog-hub/domain"
	"dialog-hub/domain/event"
	"dialog-hub/errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/samber/lo"
)

// PresenceChange is published on every 0→1 and 1→0 transition of a user's connection count.
type PresenceChange struct {
	User  domain.UserID
	State event.PresenceState
	At    time.Time
}

// Router is the single writer of dialog state.
// Every mutation of a dialog runs under that dialog's lock, which makes the
// lock the linearization point for sequence assignment and fan-out order.
type Router struct {
	log           *slog.Logger
	dialogs       contract.IDialogStore
	messages      contract.IMessageLog
	registry      contract.IRegistry
	locks         *KeyedMutex[domain.DialogID]
	users         *KeyedMutex[domain.UserID]
	maxBodyLength int
	now           func() time.Time
	changes       chan<- PresenceChange
}

func NewRouter(
	log *slog.Logger,
	dialogs contract.IDialogStore,
	messages contract.IMessageLog,
	registry contract.IRegistry,
	maxBodyLength int,
) *Router {
	return &Router{
		log:           log,
		dialogs:       dialogs,
		messages:      messages,
		registry:      registry,
		locks:         NewKeyedMutex[domain.DialogID](),
		users:         NewKeyedMutex[domain.UserID](),
		maxBodyLength: maxBodyLength,
		now:           time.Now,
	}
}

// WithPresenceChanges makes the router publish presence transitions on ch.
// Publishing never blocks; a full channel drops the change.
func (r *Router) WithPresenceChanges(ch chan<- PresenceChange) *Router {
	r.changes = ch
	return r
}

func (r *Router) WithClock(now func() time.Time) *Router {
	r.now = now
	return r
}

// Send appends body to the dialog and pushes it to the recipient's live connections.
// The sender's connections all receive an ack carrying the assigned sequence.
// Nothing is pushed when persistence fails.
func (r *Router) Send(ctx context.Context, sender domain.UserID, dialogID domain.DialogID, body string) (domain.Message, error) {
	body, err := domain.NormalizeBody(body, r.maxBodyLength)
	if err != nil {
		return domain.Message{}, err
	}

	unlock := r.locks.Lock(dialogID)
	defer unlock()

	dialog, err := r.dialogs.GetDialog(ctx, dialogID)
	if err != nil {
		return domain.Message{}, err
	}
	if err = dialog.CanSend(sender); err != nil {
		return domain.Message{}, fmt.Errorf("%w: user %d, dialog %d", err, sender, dialogID)
	}

	message, err := r.messages.Append(ctx, dialogID, sender, body, r.now())
	if err != nil {
		return domain.Message{}, err
	}

	// New activity brings a soft-deleted dialog back for both sides
	if len(dialog.DeletedFor) > 0 {
		if err = r.dialogs.ClearDeletedFor(ctx, dialogID, dialog.DeletedFor); err != nil {
			r.log.Warn("Failed to resurrect dialog", "dialog_id", dialogID, "error", err)
		}
	}

	recipient := dialog.Other(sender)
	if r.push(r.registry.ConnectionsOf(recipient), event.NewMessage(message)) > 0 {
		at := r.now()
		if err = r.messages.MarkDelivered(ctx, dialogID, []uint64{message.Sequence}, at); err != nil {
			r.log.Warn("Failed to record delivery", "dialog_id", dialogID, "sequence", message.Sequence, "error", err)
		} else {
			message.MarkDelivered(at)
		}
	}
	r.push(r.registry.ConnectionsOf(sender), event.NewAck(message))

	r.log.Debug("Message routed", "dialog_id", dialogID, "sender", sender, "sequence", message.Sequence)
	return message, nil
}

// Read marks messages up to upTo as read by reader and returns the new high-water mark.
// It returns 0 when nothing changed, which also means no receipt is emitted.
func (r *Router) Read(ctx context.Context, reader domain.UserID, dialogID domain.DialogID, upTo uint64) (uint64, error) {
	if upTo == 0 {
		return 0, nil
	}

	unlock := r.locks.Lock(dialogID)
	defer unlock()

	dialog, err := r.participantDialog(ctx, reader, dialogID)
	if err != nil {
		return 0, err
	}

	changed, err := r.messages.MarkRead(ctx, dialogID, reader, upTo, r.now())
	if err != nil {
		return 0, err
	}
	if len(changed) == 0 {
		return 0, nil
	}

	highest := lo.Max(lo.Map(changed, func(m domain.Message, _ int) uint64 { return m.Sequence }))
	receipt := event.NewReadReceipt(dialogID, highest, reader)
	r.push(r.registry.ConnectionsOf(dialog.Other(reader)), receipt)
	r.push(r.registry.ConnectionsOf(reader), receipt)
	return highest, nil
}

// Typing forwards a typing indicator to the other participant.
// Indicators are dropped silently while the dialog is blocked.
func (r *Router) Typing(ctx context.Context, user domain.UserID, dialogID domain.DialogID) error {
	dialog, err := r.participantDialog(ctx, user, dialogID)
	if err != nil {
		return err
	}
	if dialog.IsBlocked() {
		return nil
	}
	r.push(r.registry.ConnectionsOf(dialog.Other(user)), event.NewTyping(dialogID, user))
	return nil
}

func (r *Router) Block(ctx context.Context, by domain.UserID, dialogID domain.DialogID) error {
	unlock := r.locks.Lock(dialogID)
	defer unlock()

	dialog, err := r.participantDialog(ctx, by, dialogID)
	if err != nil {
		return err
	}
	switch {
	case dialog.BlockedBy == nil:
		return r.dialogs.SetBlocked(ctx, dialogID, &by)
	case *dialog.BlockedBy == by:
		return nil
	default:
		return fmt.Errorf("%w: dialog %d", errors.ErrAlreadyBlocked, dialogID)
	}
}

func (r *Router) Unblock(ctx context.Context, by domain.UserID, dialogID domain.DialogID) error {
	unlock := r.locks.Lock(dialogID)
	defer unlock()

	dialog, err := r.participantDialog(ctx, by, dialogID)
	if err != nil {
		return err
	}
	switch {
	case dialog.BlockedBy == nil:
		return nil
	case *dialog.BlockedBy != by:
		return fmt.Errorf("%w: dialog %d", errors.ErrNotBlocker, dialogID)
	default:
		return r.dialogs.SetBlocked(ctx, dialogID, nil)
	}
}

// SoftDelete hides the dialog from user's list. Messages and the other side are untouched.
func (r *Router) SoftDelete(ctx context.Context, user domain.UserID, dialogID domain.DialogID) error {
	unlock := r.locks.Lock(dialogID)
	defer unlock()

	dialog, err := r.participantDialog(ctx, user, dialogID)
	if err != nil {
		return err
	}
	if dialog.IsDeletedFor(user) {
		return nil
	}
	return r.dialogs.SetDeletedFor(ctx, dialogID, user)
}

// CatchUp returns the messages after since. Messages addressed to user that
// were never pushed to a live connection count as delivered from now on.
func (r *Router) CatchUp(ctx context.Context, user domain.UserID, dialogID domain.DialogID, since uint64) ([]domain.Message, error) {
	unlock := r.locks.Lock(dialogID)
	defer unlock()

	if _, err := r.participantDialog(ctx, user, dialogID); err != nil {
		return nil, err
	}
	messages, err := r.messages.ListSince(ctx, dialogID, since)
	if err != nil {
		return nil, err
	}
	if err = r.inferDelivery(ctx, user, dialogID, messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// Connected registers conn, replays the messages that reached nobody while
// the user was away and announces the user when it was offline.
// The user's dialogs stay locked from registration until their replay is
// queued, so a live message never overtakes an older replayed one.
// Connect and disconnect of one user are serialized, which keeps the
// presence events seen by peers in transition order.
func (r *Router) Connected(ctx context.Context, conn contract.Outbound) {
	user := conn.UserID()
	unlockUser := r.users.Lock(user)
	defer unlockUser()

	dialogs, err := r.dialogs.DialogsOf(ctx, user)
	if err != nil {
		r.log.Warn("Failed to list dialogs for replay", "user_id", user, "error", err)
	}
	ids := lo.Uniq(lo.Map(dialogs, func(d domain.Dialog, _ int) domain.DialogID { return d.ID }))
	slices.Sort(ids)

	// Ascending order keeps two users connecting at once from deadlocking
	unlocks := lo.Map(ids, func(id domain.DialogID, _ int) func() { return r.locks.Lock(id) })
	first := r.registry.Register(conn)
	for _, id := range ids {
		if err = r.replay(ctx, conn, id); err != nil {
			r.log.Warn("Replay failed", "user_id", user, "dialog_id", id, "error", err)
		}
	}
	for i := len(unlocks) - 1; i >= 0; i-- {
		unlocks[i]()
	}

	if first {
		r.announce(user, event.Online, dialogs)
	}
}

// Disconnected unregisters conn and announces the user once its last connection is gone.
func (r *Router) Disconnected(ctx context.Context, conn contract.Outbound) {
	user := conn.UserID()
	unlockUser := r.users.Lock(user)
	defer unlockUser()

	if !r.registry.Unregister(conn) {
		return
	}
	dialogs, err := r.dialogs.DialogsOf(ctx, user)
	if err != nil {
		r.log.Warn("Failed to list dialogs for presence", "user_id", user, "error", err)
	}
	r.announce(user, event.Offline, dialogs)
}

// Dispatch executes one inbound frame on behalf of conn.
func (r *Router) Dispatch(ctx context.Context, conn contract.Outbound, in event.Inbound) error {
	switch e := in.(type) {
	case event.Send:
		_, err := r.Send(ctx, conn.UserID(), e.DialogID, e.Text)
		return err
	case event.Read:
		_, err := r.Read(ctx, conn.UserID(), e.DialogID, e.UpToSequence)
		return err
	case event.TypingRequest:
		return r.Typing(ctx, conn.UserID(), e.DialogID)
	case event.Ping:
		return conn.Enqueue(event.NewPong())
	default:
		return fmt.Errorf("%w: unsupported event %q", errors.ErrProtocol, in.InboundType())
	}
}

// replay must run with the dialog lock held.
func (r *Router) replay(ctx context.Context, conn contract.Outbound, dialogID domain.DialogID) error {
	messages, err := r.messages.ListSince(ctx, dialogID, 0)
	if err != nil {
		return err
	}
	pending := lo.Filter(messages, func(m domain.Message, _ int) bool {
		return m.SenderID != conn.UserID() && !m.IsDelivered()
	})
	if len(pending) == 0 {
		return nil
	}
	delivered := lo.Filter(pending, func(m domain.Message, _ int) bool {
		return conn.Enqueue(event.NewMessage(m)) == nil
	})
	return r.inferDelivery(ctx, conn.UserID(), dialogID, delivered)
}

func (r *Router) inferDelivery(ctx context.Context, user domain.UserID, dialogID domain.DialogID, messages []domain.Message) error {
	pending := lo.FilterMap(messages, func(m domain.Message, _ int) (uint64, bool) {
		return m.Sequence, m.SenderID != user && !m.IsDelivered()
	})
	if len(pending) == 0 {
		return nil
	}
	at := r.now()
	if err := r.messages.MarkDelivered(ctx, dialogID, pending, at); err != nil {
		return err
	}
	for i := range messages {
		if messages[i].SenderID != user {
			messages[i].MarkDelivered(at)
		}
	}
	return nil
}

// announce tells the online peers of user about a presence transition.
// Callers hold the user's lock.
func (r *Router) announce(user domain.UserID, state event.PresenceState, dialogs []domain.Dialog) {
	at := r.now()
	if r.changes != nil {
		select {
		case r.changes <- PresenceChange{User: user, State: state, At: at}:
		default:
			r.log.Debug("Presence change dropped", "user_id", user, "state", state)
		}
	}

	peers := lo.Uniq(lo.Map(dialogs, func(d domain.Dialog, _ int) domain.UserID { return d.Other(user) }))
	presence := event.NewPresence(user, state)
	for _, peer := range peers {
		r.push(r.registry.ConnectionsOf(peer), presence)
	}
}

func (r *Router) participantDialog(ctx context.Context, user domain.UserID, dialogID domain.DialogID) (domain.Dialog, error) {
	dialog, err := r.dialogs.GetDialog(ctx, dialogID)
	if err != nil {
		return domain.Dialog{}, err
	}
	if !dialog.IsParticipant(user) {
		return domain.Dialog{}, fmt.Errorf("%w: user %d, dialog %d", errors.ErrNotParticipant, user, dialogID)
	}
	return dialog, nil
}

// push enqueues evt on every connection and returns how many accepted it.
// A connection whose queue overflows closes itself; it is simply skipped here.
func (r *Router) push(conns []contract.Outbound, evt event.Outbound) int {
	accepted := 0
	for _, conn := range conns {
		if err := conn.Enqueue(evt); err != nil {
			r.log.Debug("Event not enqueued", "connection_id", conn.ID(), "type", evt.EventType(), "error", err)
			continue
		}
		accepted++
	}
	return accepted
}
