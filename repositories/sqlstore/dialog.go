package sqlstore

import (
	"context"
	"database/sql"
	"dialog-hub/contract"
	"dialog-hub/domain"
	"dialog-hub/errors"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
)

var _ contract.IDialogStore = (*DialogStore)(nil)

type DialogStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewDialogStore(db *sqlx.DB) *DialogStore {
	return &DialogStore{db: db, now: time.Now}
}

type dialogRow struct {
	ID           int64         `db:"id"`
	ParticipantA int64         `db:"participant_a"`
	ParticipantB int64         `db:"participant_b"`
	BlockedBy    sql.NullInt64 `db:"blocked_by"`
	DeletedFor   string        `db:"deleted_for"`
	CreatedAt    string        `db:"created_at"`
}

func (r dialogRow) toDialog() (domain.Dialog, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return domain.Dialog{}, err
	}
	dialog := domain.Dialog{
		ID:           domain.DialogID(r.ID),
		ParticipantA: domain.UserID(r.ParticipantA),
		ParticipantB: domain.UserID(r.ParticipantB),
		CreatedAt:    createdAt,
	}
	if blockedBy := nullInt(r.BlockedBy); blockedBy != nil {
		dialog.BlockedBy = lo.ToPtr(domain.UserID(*blockedBy))
	}
	if err = json.Unmarshal([]byte(r.DeletedFor), &dialog.DeletedFor); err != nil {
		return domain.Dialog{}, fmt.Errorf("deleted_for of dialog %d: %w", r.ID, err)
	}
	if len(dialog.DeletedFor) == 0 {
		dialog.DeletedFor = nil
	}
	return dialog, nil
}

const selectDialog = `SELECT id, participant_a, participant_b, blocked_by, deleted_for, created_at FROM dialogs`

// CreateDialog returns the dialog of the pair, creating it on first contact.
// Participants are stored in ascending order so the pair is unique regardless of who writes first.
func (s *DialogStore) CreateDialog(ctx context.Context, a, b domain.UserID) (domain.Dialog, error) {
	if a == b {
		return domain.Dialog{}, fmt.Errorf("%w: participants must differ (%d)", errors.ErrInvalidDialog, a)
	}
	low, high := min(a, b), max(a, b)
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO dialogs (participant_a, participant_b, created_at) VALUES (?, ?, ?)`,
		int64(low), int64(high), formatTime(s.now()))
	if err != nil {
		return domain.Dialog{}, err
	}
	var row dialogRow
	if err = s.db.GetContext(ctx, &row, selectDialog+` WHERE participant_a = ? AND participant_b = ?`, int64(low), int64(high)); err != nil {
		return domain.Dialog{}, err
	}
	return row.toDialog()
}

func (s *DialogStore) GetDialog(ctx context.Context, id domain.DialogID) (domain.Dialog, error) {
	return s.getDialog(ctx, s.db, id)
}

func (s *DialogStore) SetBlocked(ctx context.Context, id domain.DialogID, by *domain.UserID) error {
	var blockedBy sql.NullInt64
	if by != nil {
		blockedBy = sql.NullInt64{Int64: int64(*by), Valid: true}
	}
	res, err := s.db.ExecContext(ctx, `UPDATE dialogs SET blocked_by = ? WHERE id = ?`, blockedBy, int64(id))
	if err != nil {
		return err
	}
	return expectOneRow(res, id)
}

func (s *DialogStore) SetDeletedFor(ctx context.Context, id domain.DialogID, user domain.UserID) error {
	return s.mutate(ctx, id, func(d domain.Dialog) domain.Dialog {
		return d.WithDeletedFor(user)
	})
}

func (s *DialogStore) ClearDeletedFor(ctx context.Context, id domain.DialogID, users []domain.UserID) error {
	return s.mutate(ctx, id, func(d domain.Dialog) domain.Dialog {
		return d.WithoutDeletedFor(users...)
	})
}

func (s *DialogStore) DialogsOf(ctx context.Context, user domain.UserID) ([]domain.Dialog, error) {
	var rows []dialogRow
	err := s.db.SelectContext(ctx, &rows,
		selectDialog+` WHERE participant_a = ? OR participant_b = ? ORDER BY id`, int64(user), int64(user))
	if err != nil {
		return nil, err
	}
	dialogs := make([]domain.Dialog, 0, len(rows))
	for _, row := range rows {
		dialog, err := row.toDialog()
		if err != nil {
			return nil, err
		}
		dialogs = append(dialogs, dialog)
	}
	return dialogs, nil
}

func (s *DialogStore) mutate(ctx context.Context, id domain.DialogID, fn func(domain.Dialog) domain.Dialog) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	dialog, err := s.getDialog(ctx, tx, id)
	if err != nil {
		return err
	}
	updated := fn(dialog)
	deletedFor, err := json.Marshal(lo.Ternary(updated.DeletedFor == nil, []domain.UserID{}, updated.DeletedFor))
	if err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `UPDATE dialogs SET deleted_for = ? WHERE id = ?`, string(deletedFor), int64(id)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *DialogStore) getDialog(ctx context.Context, q sqlx.QueryerContext, id domain.DialogID) (domain.Dialog, error) {
	var row dialogRow
	err := sqlx.GetContext(ctx, q, &row, selectDialog+` WHERE id = ?`, int64(id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return domain.Dialog{}, fmt.Errorf("%w: %d", errors.ErrDialogNotFound, id)
	}
	if err != nil {
		return domain.Dialog{}, err
	}
	return row.toDialog()
}

func expectOneRow(res sql.Result, id domain.DialogID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", errors.ErrDialogNotFound, id)
	}
	return nil
}
