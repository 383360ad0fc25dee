package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"portalcal/internal/calendar"
	"portalcal/internal/model"
)

const taskColumns = `id, title, description, due, priority, completed, post_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (model.Task, error) {
	var t model.Task
	var due, prio, created, updated string
	var completed int
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &due, &prio, &completed, &t.PostID, &created, &updated); err != nil {
		return model.Task{}, err
	}
	t.DueDate = parseTime(due)
	t.Priority = calendar.Priority(prio)
	t.Completed = completed == 1
	t.CreatedAt = parseTime(created)
	t.UpdatedAt = parseTime(updated)
	return t, nil
}

// ListTasks returns all tasks ordered by due date.
func (s *Store) ListTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY due, id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) GetTask(ctx context.Context, id string) (model.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?;`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, ErrNotFound
	}
	return t, err
}

// CreateTask stores t under a new ID and returns the stored task.
func (s *Store) CreateTask(ctx context.Context, t model.Task) (model.Task, error) {
	t.ID = uuid.NewString()
	now := s.now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
	if t.Priority == "" {
		t.Priority = calendar.PriorityImportant
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		t.ID, t.Title, t.Description, formatTime(t.DueDate), string(t.Priority), boolInt(t.Completed),
		t.PostID, formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (s *Store) UpdateTask(ctx context.Context, t model.Task) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, due = ?, priority = ?, completed = ?, post_id = ?, updated_at = ? WHERE id = ?;`,
		t.Title, t.Description, formatTime(t.DueDate), string(t.Priority), boolInt(t.Completed), t.PostID,
		formatTime(t.UpdatedAt), t.ID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// ToggleTask flips the completion flag and returns the updated task.
func (s *Store) ToggleTask(ctx context.Context, id string) (model.Task, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET completed = 1 - completed, updated_at = ? WHERE id = ?;`,
		formatTime(s.now()), id)
	if err != nil {
		return model.Task{}, err
	}
	if err := checkAffected(res); err != nil {
		return model.Task{}, err
	}
	return s.GetTask(ctx, id)
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?;`, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}
