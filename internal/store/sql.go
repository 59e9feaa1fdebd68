package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLBackend persists session state in the session_state table, one row per
// (session id, field). Works over sqlite and postgres; placeholder style is
// rewritten per driver.
type SQLBackend struct {
	db       *sql.DB
	postgres bool
}

func NewSQLBackend(db *sql.DB, driver string) *SQLBackend {
	return &SQLBackend{db: db, postgres: driver == "postgres"}
}

func (b *SQLBackend) Get(ctx context.Context, sid, key string) ([]byte, error) {
	var value []byte
	err := b.db.QueryRowContext(ctx,
		b.rebind(`SELECT value FROM session_state WHERE session_id = ? AND key = ?`),
		sid, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session_state get %s: %w", key, err)
	}
	return value, nil
}

func (b *SQLBackend) Set(ctx context.Context, sid, key string, value []byte) error {
	_, err := b.db.ExecContext(ctx,
		b.rebind(`INSERT INTO session_state(session_id, key, value, updated_at)
			VALUES(?,?,?,?)
			ON CONFLICT(session_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`),
		sid, key, value, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("session_state set %s: %w", key, err)
	}
	return nil
}

func (b *SQLBackend) Delete(ctx context.Context, sid string, keys ...string) error {
	for _, key := range keys {
		if _, err := b.db.ExecContext(ctx,
			b.rebind(`DELETE FROM session_state WHERE session_id = ? AND key = ?`),
			sid, key,
		); err != nil {
			return fmt.Errorf("session_state delete %s: %w", key, err)
		}
	}
	return nil
}

// rebind converts ?-style placeholders to $n for postgres.
func (b *SQLBackend) rebind(query string) string {
	if !b.postgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&sb, "$%d", n)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
