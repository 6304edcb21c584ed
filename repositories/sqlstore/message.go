package sqlstore

import (
	"context"
	"database/sql"
	"dialog-hub/contract"
	"dialog-hub/domain"
	"dialog-hub/errors"
	stderrors "errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var _ contract.IMessageLog = (*MessageLog)(nil)

type MessageLog struct {
	db *sqlx.DB
}

func NewMessageLog(db *sqlx.DB) *MessageLog {
	return &MessageLog{db: db}
}

type messageRow struct {
	ID          string `db:"id"`
	DialogID    int64  `db:"dialog_id"`
	Sequence    int64  `db:"sequence"`
	SenderID    int64  `db:"sender_id"`
	Body        string `db:"body"`
	CreatedAt   string `db:"created_at"`
	DeliveredAt string `db:"delivered_at"`
	ReadAt      string `db:"read_at"`
}

func (r messageRow) toMessage() (domain.Message, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return domain.Message{}, err
	}
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return domain.Message{}, err
	}
	deliveredAt, err := parseOptionalTime(r.DeliveredAt)
	if err != nil {
		return domain.Message{}, err
	}
	readAt, err := parseOptionalTime(r.ReadAt)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:          id,
		DialogID:    domain.DialogID(r.DialogID),
		SenderID:    domain.UserID(r.SenderID),
		Sequence:    uint64(r.Sequence),
		Body:        r.Body,
		CreatedAt:   createdAt,
		DeliveredAt: deliveredAt,
		ReadAt:      readAt,
	}, nil
}

// sqliteSequence bounds a sequence to the signed range SQLite stores.
// No stored sequence can exceed it, so clamping keeps comparisons intact.
func sqliteSequence(sequence uint64) int64 {
	return int64(min(sequence, math.MaxInt64))
}

const selectMessage = `SELECT id, dialog_id, sequence, sender_id, body, created_at, delivered_at, read_at FROM messages`

// Append assigns MAX(sequence)+1 inside the insert transaction.
// The (dialog_id, sequence) primary key rejects any duplicate outright.
func (l *MessageLog) Append(ctx context.Context, dialog domain.DialogID, sender domain.UserID, body string, at time.Time) (domain.Message, error) {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Message{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var last int64
	if err = tx.GetContext(ctx, &last, `SELECT COALESCE(MAX(sequence), 0) FROM messages WHERE dialog_id = ?`, int64(dialog)); err != nil {
		return domain.Message{}, err
	}
	message := domain.Message{
		ID:        uuid.New(),
		DialogID:  dialog,
		SenderID:  sender,
		Sequence:  uint64(last + 1),
		Body:      body,
		CreatedAt: at.UTC(),
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO messages (id, dialog_id, sequence, sender_id, body, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		message.ID.String(), int64(dialog), int64(message.Sequence), int64(sender), body, formatTime(message.CreatedAt))
	if err != nil {
		return domain.Message{}, fmt.Errorf("append to dialog %d: %w", dialog, err)
	}
	if err = tx.Commit(); err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

func (l *MessageLog) MarkDelivered(ctx context.Context, dialog domain.DialogID, sequences []uint64, at time.Time) error {
	if len(sequences) == 0 {
		return nil
	}
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, sequence := range sequences {
		var row messageRow
		if err = tx.GetContext(ctx, &row, selectMessage+` WHERE dialog_id = ? AND sequence = ?`, int64(dialog), sqliteSequence(sequence)); err != nil {
			if stderrors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: dialog %d sequence %d", errors.ErrMessageNotFound, dialog, sequence)
			}
			return fmt.Errorf("load dialog %d sequence %d: %w", dialog, sequence, err)
		}
		message, err := row.toMessage()
		if err != nil {
			return err
		}
		if !message.MarkDelivered(at.UTC()) {
			continue
		}
		if _, err = tx.ExecContext(ctx, `UPDATE messages SET delivered_at = ? WHERE dialog_id = ? AND sequence = ?`,
			formatOptionalTime(message.DeliveredAt), int64(dialog), int64(sequence)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (l *MessageLog) MarkRead(ctx context.Context, dialog domain.DialogID, reader domain.UserID, upTo uint64, at time.Time) ([]domain.Message, error) {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var rows []messageRow
	err = tx.SelectContext(ctx, &rows,
		selectMessage+` WHERE dialog_id = ? AND sequence <= ? AND sender_id != ? AND read_at = '' ORDER BY sequence`,
		int64(dialog), sqliteSequence(upTo), int64(reader))
	if err != nil {
		return nil, err
	}

	changed := make([]domain.Message, 0, len(rows))
	for _, row := range rows {
		message, err := row.toMessage()
		if err != nil {
			return nil, err
		}
		message.MarkRead(at.UTC())
		_, err = tx.ExecContext(ctx, `UPDATE messages SET delivered_at = ?, read_at = ? WHERE dialog_id = ? AND sequence = ?`,
			formatOptionalTime(message.DeliveredAt), formatOptionalTime(message.ReadAt), int64(dialog), int64(message.Sequence))
		if err != nil {
			return nil, err
		}
		changed = append(changed, message)
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return changed, nil
}

func (l *MessageLog) ListSince(ctx context.Context, dialog domain.DialogID, since uint64) ([]domain.Message, error) {
	if since >= math.MaxInt64 {
		return []domain.Message{}, nil
	}
	var rows []messageRow
	err := l.db.SelectContext(ctx, &rows,
		selectMessage+` WHERE dialog_id = ? AND sequence > ? ORDER BY sequence`, int64(dialog), int64(since))
	if err != nil {
		return nil, err
	}
	messages := make([]domain.Message, 0, len(rows))
	for _, row := range rows {
		message, err := row.toMessage()
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func (l *MessageLog) CountUnread(ctx context.Context, dialog domain.DialogID, user domain.UserID) (int, error) {
	var count int
	err := l.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM messages WHERE dialog_id = ? AND sender_id != ? AND read_at = ''`, int64(dialog), int64(user))
	return count, err
}
