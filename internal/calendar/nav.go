package calendar

import "time"

// ViewState is the navigation state of a calendar view. It is a plain value:
// transitions return a new state and never modify the receiver, so it can be
// round-tripped through JSON between requests.
type ViewState struct {
	Month YearMonth `json:"month"`
}

// NewViewState starts a view on the month containing now.
func NewViewState(now time.Time) ViewState {
	return ViewState{Month: MonthOf(now)}
}

// Prev moves one month back; January rolls over to December of the
// previous year.
func (s ViewState) Prev() ViewState {
	return ViewState{Month: s.Normalize().Month.AddMonths(-1)}
}

// Next moves one month forward; December rolls over to January of the
// next year.
func (s ViewState) Next() ViewState {
	return ViewState{Month: s.Normalize().Month.AddMonths(1)}
}

// Today jumps back to the month containing now.
func (s ViewState) Today(now time.Time) ViewState {
	return NewViewState(now)
}

// Normalize repairs a state that arrived from outside (for example a client
// sending month 13). A zero state is left as is; callers decide which month
// an empty state means.
func (s ViewState) Normalize() ViewState {
	if s.Month.IsZero() {
		return s
	}
	return ViewState{Month: s.Month.Normalize()}
}

// Action names a navigation transition.
type Action string

const (
	ActionPrev  Action = "prev"
	ActionNext  Action = "next"
	ActionToday Action = "today"
)

// Apply runs the named transition. Unknown actions report ok=false and
// return the state unchanged.
func (s ViewState) Apply(a Action, now time.Time) (ViewState, bool) {
	if s.Month.IsZero() {
		s = NewViewState(now)
	}
	switch a {
	case ActionPrev:
		return s.Prev(), true
	case ActionNext:
		return s.Next(), true
	case ActionToday:
		return s.Today(now), true
	default:
		return s, false
	}
}
