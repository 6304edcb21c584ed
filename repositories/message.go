package repositories

import (
	"context"
	"dialog-hub/contract"
	"dialog-hub/domain"
	"dialog-hub/errors"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// maxConflictRetries bounds optimistic retries when two transactions touch the same keys.
const maxConflictRetries = 5

var _ contract.IMessageLog = (*MessageRepository)(nil)

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) *MessageRepository {
	return &MessageRepository{db: db, log: log}
}

// Append persists a message under "msg:{dialog}:{sequence}".
// The sequence counter is read and bumped in the same transaction as the
// message write, so a sequence is never assigned without its message and
// never reused.
func (m *MessageRepository) Append(_ context.Context, dialog domain.DialogID, sender domain.UserID, body string, at time.Time) (domain.Message, error) {
	var message domain.Message
	err := update(m.db, func(txn *badger.Txn) error {
		last := uint64(0)
		item, err := txn.Get(sequenceKey(dialog))
		switch {
		case err == nil:
			if err = item.Value(func(val []byte) error {
				last = decodeUint64(val)
				return nil
			}); err != nil {
				return err
			}
		case !stderrors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		message = domain.Message{
			ID:        uuid.New(),
			DialogID:  dialog,
			SenderID:  sender,
			Sequence:  last + 1,
			Body:      body,
			CreatedAt: at.UTC(),
		}
		if err = putMessage(txn, message); err != nil {
			return err
		}
		return txn.Set(sequenceKey(dialog), encodeUint64(message.Sequence))
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("append to dialog %d: %w", dialog, err)
	}
	return message, nil
}

func (m *MessageRepository) MarkDelivered(_ context.Context, dialog domain.DialogID, sequences []uint64, at time.Time) error {
	if len(sequences) == 0 {
		return nil
	}
	return update(m.db, func(txn *badger.Txn) error {
		for _, sequence := range lo.Uniq(sequences) {
			message, err := getMessage(txn, dialog, sequence)
			if err != nil {
				return err
			}
			if message.MarkDelivered(at.UTC()) {
				if err = putMessage(txn, message); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// MarkRead stamps read_at on every message up to upTo that reader received and has not read yet.
// It returns the messages that changed, in sequence order.
func (m *MessageRepository) MarkRead(_ context.Context, dialog domain.DialogID, reader domain.UserID, upTo uint64, at time.Time) ([]domain.Message, error) {
	var changed []domain.Message
	err := update(m.db, func(txn *badger.Txn) error {
		changed = nil
		messages, err := scanMessages(txn, dialog, 0, upTo)
		if err != nil {
			return err
		}
		for _, message := range messages {
			if !message.IsUnreadFor(reader) {
				continue
			}
			message.MarkRead(at.UTC())
			if err = putMessage(txn, message); err != nil {
				return err
			}
			changed = append(changed, message)
		}
		return nil
	})
	return changed, err
}

func (m *MessageRepository) ListSince(_ context.Context, dialog domain.DialogID, since uint64) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		var err error
		messages, err = scanMessages(txn, dialog, since, 0)
		return err
	})
	return messages, err
}

func (m *MessageRepository) CountUnread(_ context.Context, dialog domain.DialogID, user domain.UserID) (int, error) {
	count := 0
	err := m.db.View(func(txn *badger.Txn) error {
		messages, err := scanMessages(txn, dialog, 0, 0)
		if err != nil {
			return err
		}
		count = lo.CountBy(messages, func(message domain.Message) bool {
			return message.IsUnreadFor(user)
		})
		return nil
	})
	return count, err
}

// LastSequence returns the highest sequence assigned in dialog, 0 when empty.
func (m *MessageRepository) LastSequence(_ context.Context, dialog domain.DialogID) (uint64, error) {
	var last uint64
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sequenceKey(dialog))
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			last = decodeUint64(val)
			return nil
		})
	})
	return last, err
}

// scanMessages returns messages with since < sequence <= upTo; upTo 0 means no upper bound.
func scanMessages(txn *badger.Txn, dialog domain.DialogID, since, upTo uint64) ([]domain.Message, error) {
	var messages []domain.Message
	prefix := dialogMessagesPrefix(dialog)
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(messageKey(dialog, since+1)); it.ValidForPrefix(prefix); it.Next() {
		var message domain.Message
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &message)
		})
		if err != nil {
			return nil, err
		}
		if upTo > 0 && message.Sequence > upTo {
			break
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func getMessage(txn *badger.Txn, dialog domain.DialogID, sequence uint64) (domain.Message, error) {
	var message domain.Message
	item, err := txn.Get(messageKey(dialog, sequence))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return message, fmt.Errorf("%w: dialog %d sequence %d", errors.ErrMessageNotFound, dialog, sequence)
	}
	if err != nil {
		return message, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &message)
	})
	return message, err
}

func putMessage(txn *badger.Txn, message domain.Message) error {
	bytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return txn.Set(messageKey(message.DialogID, message.Sequence), bytes)
}

// update runs fn in a read-write transaction, retrying on optimistic conflicts.
func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = db.Update(fn)
		if !stderrors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}
