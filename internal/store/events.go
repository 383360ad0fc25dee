package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"portalcal/internal/model"
)

const eventColumns = `id, title, description, org, date, all_day, source, source_link, image_url, feed_id, feed_uid, created_at, updated_at`

func scanEvent(row rowScanner) (model.Event, error) {
	var e model.Event
	var date, source, created, updated string
	var allDay int
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Org, &date, &allDay, &source,
		&e.SourceLink, &e.ImageURL, &e.FeedID, &e.FeedUID, &created, &updated); err != nil {
		return model.Event{}, err
	}
	e.Date = parseTime(date)
	e.AllDay = allDay == 1
	e.Source = model.EventSource(source)
	e.CreatedAt = parseTime(created)
	e.UpdatedAt = parseTime(updated)
	return e, nil
}

// ListEvents returns all events ordered by date.
func (s *Store) ListEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY date, id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Store) GetEvent(ctx context.Context, id string) (model.Event, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?;`, id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, ErrNotFound
	}
	return e, err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) insertEvent(ctx context.Context, db execer, e model.Event) (model.Event, error) {
	e.ID = uuid.NewString()
	now := s.now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = now
	}
	if e.Source == "" {
		e.Source = model.SourceCustom
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		e.ID, e.Title, e.Description, e.Org, formatTime(e.Date), boolInt(e.AllDay), string(e.Source),
		e.SourceLink, e.ImageURL, e.FeedID, e.FeedUID, formatTime(e.CreatedAt), formatTime(e.UpdatedAt))
	if err != nil {
		return model.Event{}, err
	}
	return e, nil
}

// CreateEvent stores e under a new ID and returns the stored event.
func (s *Store) CreateEvent(ctx context.Context, e model.Event) (model.Event, error) {
	return s.insertEvent(ctx, s.db, e)
}

func (s *Store) UpdateEvent(ctx context.Context, e model.Event) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE events SET title = ?, description = ?, org = ?, date = ?, all_day = ?, source = ?, source_link = ?, image_url = ?, updated_at = ? WHERE id = ?;`,
		e.Title, e.Description, e.Org, formatTime(e.Date), boolInt(e.AllDay), string(e.Source),
		e.SourceLink, e.ImageURL, formatTime(e.UpdatedAt), e.ID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?;`, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// UpsertFeedEvents replaces every event imported from feedID with events in
// a single transaction, so readers never see a half-synced feed.
func (s *Store) UpsertFeedEvents(ctx context.Context, feedID string, events []model.Event) (int, error) {
	if feedID == "" {
		return 0, errors.New("feed id is empty")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE feed_id = ?;`, feedID); err != nil {
		return 0, fmt.Errorf("clear feed %s: %w", feedID, err)
	}
	for _, e := range events {
		e.FeedID = feedID
		e.Source = model.SourceFeed
		if _, err := s.insertEvent(ctx, tx, e); err != nil {
			return 0, fmt.Errorf("insert feed event %s: %w", e.FeedUID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(events), nil
}
