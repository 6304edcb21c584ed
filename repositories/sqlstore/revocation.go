package sqlstore

import (
	"context"
	"dialog-hub/contract"
	"time"

	"github.com/jmoiron/sqlx"
)

var _ contract.IRevocationList = (*RevocationList)(nil)

// RevocationList is the SQLite denylist of token ids. Expired rows are
// ignored on read and purged on the next Revoke.
type RevocationList struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewRevocationList(db *sqlx.DB) *RevocationList {
	return &RevocationList{db: db, now: time.Now}
}

func (r *RevocationList) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	now := r.now()
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= ?`, formatTime(now)); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO revoked_tokens (token_id, expires_at) VALUES (?, ?)
		 ON CONFLICT(token_id) DO UPDATE SET expires_at = excluded.expires_at`,
		tokenID, formatTime(now.Add(ttl))); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *RevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM revoked_tokens WHERE token_id = ? AND expires_at > ?`,
		tokenID, formatTime(r.now()))
	return count > 0, err
}
