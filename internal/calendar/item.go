package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind tells tasks and events apart.
type Kind string

const (
	KindTask  Kind = "task"
	KindEvent Kind = "event"
)

// ParseKind accepts "task"/"tasks" and "event"/"events". An empty string
// means "any kind" and is returned as "".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "any":
		return "", nil
	case "task", "tasks":
		return KindTask, nil
	case "event", "events":
		return KindEvent, nil
	default:
		return "", fmt.Errorf("calendar: unknown kind %q", s)
	}
}

// Priority is the badge level of a task. It has no scheduling effect.
type Priority string

const (
	PriorityUrgent    Priority = "URGENT"
	PriorityImportant Priority = "IMPORTANT"
	PriorityLater     Priority = "LATER"
)

// Rank orders priorities from most to least pressing; unknown values sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityImportant:
		return 1
	case PriorityLater:
		return 2
	default:
		return 3
	}
}

// ParsePriority accepts the enumeration names as well as low/medium/high.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "URGENT", "HIGH":
		return PriorityUrgent, nil
	case "IMPORTANT", "MEDIUM", "":
		return PriorityImportant, nil
	case "LATER", "LOW":
		return PriorityLater, nil
	default:
		return "", fmt.Errorf("calendar: unknown priority %q", s)
	}
}

// Item is the common projection of a task or an event consumed by the grid
// and agenda builders. Kind-specific details (priority, organizer, links)
// stay on the source records and are looked up by ID by whoever renders them.
type Item struct {
	ID    string    `json:"id"`
	Kind  Kind      `json:"kind"`
	Date  time.Time `json:"date"`
	Title string    `json:"title"`

	// Completed is meaningful for tasks only.
	Completed bool `json:"completed,omitempty"`

	// Keywords is extra text matched by agenda search, e.g. an event's
	// organizer and description.
	Keywords []string `json:"keywords,omitempty"`
}

// IsPending reports whether the item is an open task.
func (it Item) IsPending() bool {
	return it.Kind == KindTask && !it.Completed
}

// Record is a loosely typed dated item as it arrives from an import file or
// any other source that has not validated its dates yet.
type Record struct {
	ID        string   `json:"id"`
	Kind      Kind     `json:"kind"`
	Date      string   `json:"date"`
	Title     string   `json:"title"`
	Completed bool     `json:"completed,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
}

// Warning reports a data-quality problem with one input item. Warnings are
// not errors: the item is left out and the rest of the computation goes on.
type Warning struct {
	ItemID string `json:"item_id"`
	Reason string `json:"reason"`
}

func (w Warning) String() string {
	return w.ItemID + ": " + w.Reason
}

var errEmptyDate = errors.New("empty date")

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate parses the date formats accepted from clients and import files.
// Values without an explicit offset are interpreted in loc.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errEmptyDate
	}
	if loc == nil {
		loc = time.Local
	}
	var firstErr error
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, fmt.Errorf("calendar: unparseable date %q: %w", raw, firstErr)
}

// FromRecords converts records into items. Records whose date is missing or
// cannot be parsed are skipped and reported as warnings.
func FromRecords(records []Record, loc *time.Location) ([]Item, []Warning) {
	items := make([]Item, 0, len(records))
	var warnings []Warning
	for _, r := range records {
		t, err := ParseDate(r.Date, loc)
		if err != nil {
			reason := "unparseable date " + quote(r.Date)
			if errors.Is(err, errEmptyDate) {
				reason = "missing date"
			}
			warnings = append(warnings, Warning{ItemID: r.ID, Reason: reason})
			continue
		}
		kind := r.Kind
		if kind == "" {
			kind = KindEvent
		}
		items = append(items, Item{
			ID:        r.ID,
			Kind:      kind,
			Date:      t,
			Title:     r.Title,
			Completed: r.Completed,
			Keywords:  append([]string(nil), r.Keywords...),
		})
	}
	return items, warnings
}

// Sanitize drops items whose date is the zero time, which is how a
// collaborator signals a date it could not read.
func Sanitize(items []Item) ([]Item, []Warning) {
	out := make([]Item, 0, len(items))
	var warnings []Warning
	for _, it := range items {
		if it.Date.IsZero() {
			warnings = append(warnings, Warning{ItemID: it.ID, Reason: "missing date"})
			continue
		}
		out = append(out, it)
	}
	return out, warnings
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}
