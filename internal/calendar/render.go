package calendar

import "time"

// RenderOptions groups the knobs of one render cycle.
type RenderOptions struct {
	Grid   GridOptions
	Bind   BindOptions
	Agenda AgendaOptions
}

// View is everything a page needs for one render: the bound grid, the agenda
// list and the pending count, all computed from the same snapshot.
type View struct {
	Month    YearMonth     `json:"month"`
	Title    string        `json:"title"`
	Headers  []string      `json:"headers"`
	Weeks    [][]BoundCell `json:"weeks"`
	Agenda   []Item        `json:"agenda"`
	Pending  int           `json:"pending"`
	Warnings []Warning     `json:"warnings,omitempty"`
}

// Render computes a View. Data flows one way: the snapshot feeds the grid
// binder and, independently, the agenda builder; neither sees the other's
// output. A zero state renders the month containing today.
func Render(state ViewState, items []Item, today time.Time, opts RenderOptions) View {
	return render(nil, state, items, today, opts)
}

func render(m *Memo, state ViewState, items []Item, today time.Time, opts RenderOptions) View {
	state = state.Normalize()
	if state.Month.IsZero() {
		state = NewViewState(today.In(opts.Grid.location()))
	}

	clean, warnings := Sanitize(items)

	var cells []DayCell
	var agenda []Item
	if m != nil {
		cells = m.Grid(state.Month, today, opts.Grid)
		agenda = m.Agenda(clean, opts.Agenda)
	} else {
		cells = BuildMonthGrid(state.Month, today, opts.Grid)
		agenda = BuildAgenda(clean, opts.Agenda)
	}

	return View{
		Month:    state.Month,
		Title:    state.Month.Title(),
		Headers:  WeekdayHeaders(opts.Grid.WeekStart),
		Weeks:    Weeks(Bind(cells, clean, opts.Bind)),
		Agenda:   agenda,
		Pending:  PendingCount(clean),
		Warnings: warnings,
	}
}
