package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/soyeahso/botline/internal/directline"
)

// sessionKey is the single well-known key the record lives under.
const sessionKey = "current"

// SQLiteSessionStore implements directline.SessionStore backed by SQLite.
type SQLiteSessionStore struct {
	db *DB
}

// NewSQLiteSessionStore creates a session store using the given database.
func NewSQLiteSessionStore(db *DB) *SQLiteSessionStore {
	return &SQLiteSessionStore{db: db}
}

// Load returns the persisted session record, or (nil, nil) when absent.
func (s *SQLiteSessionStore) Load(ctx context.Context) (*directline.SessionRecord, error) {
	var data string
	err := s.db.sql.QueryRowContext(ctx,
		`SELECT record FROM session WHERE key = ?`, sessionKey,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	var rec directline.SessionRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decoding session record: %w", err)
	}
	return &rec, nil
}

// Save upserts the session record. Idempotent.
func (s *SQLiteSessionStore) Save(ctx context.Context, rec directline.SessionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding session record: %w", err)
	}

	_, err = s.db.sql.ExecContext(ctx,
		`INSERT INTO session (key, record, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at`,
		sessionKey, string(data), time.Now().UTC().Format(time.DateTime),
	)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Clear removes the persisted record.
func (s *SQLiteSessionStore) Clear(ctx context.Context) error {
	if _, err := s.db.sql.ExecContext(ctx, `DELETE FROM session WHERE key = ?`, sessionKey); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
