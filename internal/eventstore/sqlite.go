package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	build_id TEXT NOT NULL,
	event_type TEXT NOT NULL,
	at_ms INTEGER NOT NULL,
	payload BLOB NOT NULL,
	metadata TEXT
);
CREATE INDEX IF NOT EXISTS idx_events_build ON events(build_id);
CREATE INDEX IF NOT EXISTS idx_events_at ON events(at_ms);
`

const selectEvents = "SELECT id, build_id, event_type, at_ms, payload, metadata FROM events"

// SQLiteStore keeps the history in a single SQLite file next to the build cache.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (creating if needed) the database at path. ":memory:" gives a
// throwaway store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, historyErr(ErrOpen, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, historyErr(ErrOpen, err)
	}
	// an in-memory database lives on exactly one connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, historyErr(ErrSchema, err)
	}
	return &SQLiteStore{db: db}, nil
}

// Append stores e. Timestamps are kept with millisecond precision.
func (s *SQLiteStore) Append(ctx context.Context, e Event) error {
	var meta []byte
	if md := e.Metadata(); len(md) > 0 {
		var err error
		if meta, err = json.Marshal(md); err != nil {
			return historyErr(ErrAppend, fmt.Errorf("marshal metadata: %w", err))
		}
	}
	payload := e.Payload()
	if payload == nil {
		payload = []byte("{}")
	}
	at := e.Timestamp()
	if at.IsZero() {
		at = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (build_id, event_type, at_ms, payload, metadata) VALUES (?, ?, ?, ?, ?)",
		e.BuildID(), e.Type(), at.UnixMilli(), payload, meta,
	)
	if err != nil {
		return historyErr(ErrAppend, err)
	}
	return nil
}

// ForBuild returns the events of buildID.
func (s *SQLiteStore) ForBuild(ctx context.Context, buildID string) ([]Event, error) {
	return s.query(ctx, selectEvents+" WHERE build_id = ? ORDER BY id", buildID)
}

// Since returns every event stamped at or after t.
func (s *SQLiteStore) Since(ctx context.Context, t time.Time) ([]Event, error) {
	return s.query(ctx, selectEvents+" WHERE at_ms >= ? ORDER BY id", t.UnixMilli())
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, historyErr(ErrQuery, err)
	}
	defer func() { _ = rows.Close() }()

	var events []Event
	for rows.Next() {
		r := &record{}
		var atMS int64
		var meta []byte
		if err := rows.Scan(&r.id, &r.buildID, &r.kind, &atMS, &r.payload, &meta); err != nil {
			return nil, historyErr(ErrQuery, fmt.Errorf("scan event: %w", err))
		}
		r.at = time.UnixMilli(atMS)
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &r.metadata); err != nil {
				return nil, historyErr(ErrQuery, fmt.Errorf("decode metadata of event %d: %w", r.id, err))
			}
		}
		events = append(events, r)
	}
	if err := rows.Err(); err != nil {
		return nil, historyErr(ErrQuery, err)
	}
	return events, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
