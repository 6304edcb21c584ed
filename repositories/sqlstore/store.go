// Package sqlstore persists dialogs and messages in SQLite.
// It is the alternative to the Badger repositories for deployments that
// want the data queryable with plain SQL.
package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS dialogs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	participant_a INTEGER NOT NULL,
	participant_b INTEGER NOT NULL,
	blocked_by    INTEGER,
	deleted_for   TEXT NOT NULL DEFAULT '[]',
	created_at    TEXT NOT NULL,
	UNIQUE (participant_a, participant_b)
);

CREATE TABLE IF NOT EXISTS messages (
	id           TEXT NOT NULL UNIQUE,
	dialog_id    INTEGER NOT NULL REFERENCES dialogs(id),
	sequence     INTEGER NOT NULL,
	sender_id    INTEGER NOT NULL,
	body         TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	delivered_at TEXT NOT NULL DEFAULT '',
	read_at      TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (dialog_id, sequence)
);

CREATE INDEX IF NOT EXISTS idx_messages_unread ON messages (dialog_id, sender_id, read_at);

CREATE TABLE IF NOT EXISTS revoked_tokens (
	token_id   TEXT PRIMARY KEY,
	expires_at TEXT NOT NULL
);
`

// Open creates the schema when missing. A single connection serializes writers,
// which is what keeps sequence assignment linear.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return db, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func parseOptionalTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseTime(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}
