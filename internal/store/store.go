// Package store persists tasks, events and pages in SQLite and hands the
// calendar a fresh snapshot per render.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"portalcal/internal/calendar"
	"portalcal/internal/model"
)

// ErrNotFound is returned when a record with the given key does not exist.
var ErrNotFound = errors.New("not found")

// ErrExists is returned when a write would take a key another record holds.
var ErrExists = errors.New("already exists")

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	due TEXT NOT NULL,
	priority TEXT NOT NULL DEFAULT 'IMPORTANT',
	completed INTEGER NOT NULL DEFAULT 0,
	post_id TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	org TEXT NOT NULL DEFAULT '',
	date TEXT NOT NULL,
	all_day INTEGER NOT NULL DEFAULT 0,
	source TEXT NOT NULL DEFAULT 'CUSTOM',
	source_link TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	feed_id TEXT NOT NULL DEFAULT '',
	feed_uid TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS events_feed ON events (feed_id);
CREATE TABLE IF NOT EXISTS pages (
	name TEXT PRIMARY KEY,
	url TEXT NOT NULL,
	image TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL DEFAULT 'INTEREST'
);`
	_, err := s.db.Exec(ddl)
	return err
}

// Snapshot is the full set of dated records at one point in time.
type Snapshot struct {
	Tasks  []model.Task  `json:"tasks"`
	Events []model.Event `json:"events"`
}

// Items projects the snapshot for the calendar engine, tasks first.
func (s Snapshot) Items() []calendar.Item {
	out := make([]calendar.Item, 0, len(s.Tasks)+len(s.Events))
	for _, t := range s.Tasks {
		out = append(out, t.Item())
	}
	for _, e := range s.Events {
		out = append(out, e.Item())
	}
	return out
}

// Snapshot loads every task and event.
func (s *Store) Snapshot(ctx context.Context) (Snapshot, error) {
	tasks, err := s.ListTasks(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	events, err := s.ListEvents(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Tasks: tasks, Events: events}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
