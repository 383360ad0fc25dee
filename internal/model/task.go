package model

import (
	"errors"
	"strings"
	"time"

	"portalcal/internal/calendar"
)

// Task is a to-do with a due date. Tasks never recur.
type Task struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	DueDate     time.Time         `json:"due_date"`
	Priority    calendar.Priority `json:"priority"`
	Completed   bool              `json:"completed"`

	// PostID links the task to the announcement it was created from.
	PostID string `json:"post_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Item projects the task for the calendar engine.
func (t Task) Item() calendar.Item {
	it := calendar.Item{
		ID:        t.ID,
		Kind:      calendar.KindTask,
		Date:      t.DueDate,
		Title:     t.Title,
		Completed: t.Completed,
	}
	if t.Description != "" {
		it.Keywords = []string{t.Description}
	}
	return it
}

// NewTask contains information needed to create a new Task. Dates arrive as
// strings so that plain "2006-01-02" values are accepted.
type NewTask struct {
	Title       string `json:"title" validate:"notblank"`
	Description string `json:"description"`
	DueDate     string `json:"due_date" validate:"required"`
	Priority    string `json:"priority" validate:"omitempty,oneof=URGENT IMPORTANT LATER"`
	PostID      string `json:"post_id"`
}

// Build validates nt and returns the task it describes. Dates without an
// offset are read in now's location, and the due date may not fall on a day
// before now.
func (nt *NewTask) Build(now time.Time) (Task, error) {
	nt.Title = cleanString(nt.Title)
	nt.Description = strings.TrimSpace(nt.Description)
	nt.Priority = strings.ToUpper(strings.TrimSpace(nt.Priority))

	if err := Validate.Struct(nt); err != nil {
		return Task{}, err
	}

	due, err := calendar.ParseDate(nt.DueDate, now.Location())
	if err != nil {
		return Task{}, NewValidationError(err, FieldError{Field: "due_date", Error: "due date is not a valid date"})
	}
	if startOfDay(due.In(now.Location())).Before(startOfDay(now)) {
		return Task{}, NewValidationError(
			errors.New("due date in the past"),
			FieldError{Field: "due_date", Error: "due date cannot be in the past"},
		)
	}
	prio, _ := calendar.ParsePriority(nt.Priority)

	return Task{
		Title:       nt.Title,
		Description: nt.Description,
		DueDate:     due,
		Priority:    prio,
		PostID:      strings.TrimSpace(nt.PostID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UpdateTask defines what may be changed on an existing Task. Empty fields
// keep the current value.
type UpdateTask struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	DueDate     string  `json:"due_date"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=URGENT IMPORTANT LATER"`
	Completed   *bool   `json:"completed"`
}

// Apply validates u and returns orig with the changes applied. Unlike
// creation, an edit may keep or set a past due date.
func (u *UpdateTask) Apply(orig Task, now time.Time) (Task, error) {
	u.Priority = strings.ToUpper(strings.TrimSpace(u.Priority))
	if err := Validate.Struct(u); err != nil {
		return Task{}, err
	}

	t := orig
	if title := cleanString(u.Title); title != "" {
		t.Title = title
	}
	if u.Description != nil {
		t.Description = strings.TrimSpace(*u.Description)
	}
	if strings.TrimSpace(u.DueDate) != "" {
		due, err := calendar.ParseDate(u.DueDate, now.Location())
		if err != nil {
			return Task{}, NewValidationError(err, FieldError{Field: "due_date", Error: "due date is not a valid date"})
		}
		t.DueDate = due
	}
	if u.Priority != "" {
		t.Priority, _ = calendar.ParsePriority(u.Priority)
	}
	if u.Completed != nil {
		t.Completed = *u.Completed
	}
	t.UpdatedAt = now
	return t, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
