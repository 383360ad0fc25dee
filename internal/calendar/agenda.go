package calendar

import (
	"fmt"
	"sort"
	"strings"
)

// SortOrder orders an agenda by full date.
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

// DefaultSortOrder is the order an agenda of kind gets when none is asked
// for: events newest first, tasks and mixed agendas oldest first.
func DefaultSortOrder(kind Kind) SortOrder {
	if kind == KindEvent {
		return SortNewest
	}
	return SortOldest
}

// ParseSortOrder accepts "newest" and "oldest". Empty means the default order
// for kind.
func ParseSortOrder(s string, kind Kind) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultSortOrder(kind), nil
	case SortOldest:
		return SortOldest, nil
	case SortNewest:
		return SortNewest, nil
	default:
		return "", fmt.Errorf("calendar: unknown sort order %q", s)
	}
}

// CompletionFilter narrows an agenda by task completion.
type CompletionFilter string

const (
	CompletionAny       CompletionFilter = ""
	CompletionPending   CompletionFilter = "pending"
	CompletionCompleted CompletionFilter = "completed"
)

// ParseCompletionFilter accepts pending/completed and the boolean spellings
// used by query strings ("false" keeps pending tasks, "true" completed ones).
func ParseCompletionFilter(s string) (CompletionFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any", "all":
		return CompletionAny, nil
	case "pending", "open", "false":
		return CompletionPending, nil
	case "completed", "done", "true":
		return CompletionCompleted, nil
	default:
		return "", fmt.Errorf("calendar: unknown completion filter %q", s)
	}
}

func (f CompletionFilter) keep(it Item) bool {
	switch f {
	case CompletionPending:
		return !it.Completed
	case CompletionCompleted:
		return it.Kind == KindTask && it.Completed
	default:
		return true
	}
}

// AgendaOptions controls BuildAgenda.
type AgendaOptions struct {
	Sort       SortOrder        `json:"sort"`
	Query      string           `json:"query,omitempty"`
	Completion CompletionFilter `json:"completion,omitempty"`
}

// Matches reports whether an item passes the query and completion filters.
// The query is matched as typed, spaces included, ignoring case.
func (o AgendaOptions) Matches(it Item) bool {
	if !o.Completion.keep(it) {
		return false
	}
	if o.Query == "" {
		return true
	}
	q := strings.ToLower(o.Query)
	if strings.Contains(strings.ToLower(it.Title), q) {
		return true
	}
	for _, kw := range it.Keywords {
		if strings.Contains(strings.ToLower(kw), q) {
			return true
		}
	}
	return false
}

// BuildAgenda returns the filtered, date-ordered list view of items. It works
// on a copy: the input slice is never reordered. Items with equal dates keep
// their input order. Items without a date are left out.
func BuildAgenda(items []Item, opts AgendaOptions) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Date.IsZero() {
			continue
		}
		if opts.Matches(it) {
			out = append(out, it)
		}
	}

	newest := opts.Sort == SortNewest
	sort.SliceStable(out, func(i, j int) bool {
		if newest {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// PendingCount counts open tasks in the unfiltered collection.
func PendingCount(items []Item) int {
	n := 0
	for _, it := range items {
		if it.IsPending() {
			n++
		}
	}
	return n
}
