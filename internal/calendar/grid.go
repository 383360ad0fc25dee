// Package calendar holds the grid and agenda engine behind the portal's
// calendar and events pages.
//
// Everything here is a pure function of its inputs: the month being viewed,
// the current date and an immutable snapshot of dated items. Callers load a
// fresh snapshot per render and hand it in; nothing in this package keeps or
// mutates item collections.
package calendar

import "time"

// DayCell is a single square of the month grid.
type DayCell struct {
	Date time.Time `json:"date"`

	// IsCurrentMonth is false for padding days borrowed from the previous or
	// next month to complete a week row.
	IsCurrentMonth bool `json:"is_current_month"`

	// IsToday is set only for the viewed month's own cells; a padding cell
	// carrying today's date stays false.
	IsToday bool `json:"is_today"`
}

// GridOptions controls grid layout.
type GridOptions struct {
	// WeekStart is the weekday shown in the first column. The zero value is
	// Sunday.
	WeekStart time.Weekday

	// Location is the display timezone used for cell dates. If nil,
	// time.Local is used.
	Location *time.Location
}

func (o GridOptions) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

// LeadingPadding returns how many days of the previous month precede the 1st
// in the first row.
func LeadingPadding(ym YearMonth, weekStart time.Weekday) int {
	return columnOf(ym.First(time.UTC).Weekday(), weekStart)
}

// TrailingPadding returns how many days of the next month follow the last day
// in the final row.
func TrailingPadding(ym YearMonth, weekStart time.Weekday) int {
	return 6 - columnOf(ym.Last(time.UTC).Weekday(), weekStart)
}

func columnOf(day, weekStart time.Weekday) int {
	return (int(day) - int(weekStart%7) + 7) % 7
}

// BuildMonthGrid lays out the viewed month as a sequence of day cells in
// reading order. The result always has a multiple of 7 cells (28, 35 or 42):
//
//	leading padding (previous month, ascending) ++ the month's days ++
//	trailing padding (next month)
//
// today is compared by calendar day in opts.Location.
func BuildMonthGrid(ym YearMonth, today time.Time, opts GridOptions) []DayCell {
	ym = ym.Normalize()
	loc := opts.location()
	leading := LeadingPadding(ym, opts.WeekStart)
	trailing := TrailingPadding(ym, opts.WeekStart)
	days := ym.Days()

	todayLocal := today.In(loc)
	cells := make([]DayCell, 0, leading+days+trailing)

	// time.Date normalizes day 0, -1, ... into the previous month and
	// days past the end into the next one.
	for i := leading; i > 0; i-- {
		cells = append(cells, DayCell{
			Date: time.Date(ym.Year, ym.Month, 1-i, 0, 0, 0, 0, loc),
		})
	}
	for d := 1; d <= days; d++ {
		date := time.Date(ym.Year, ym.Month, d, 0, 0, 0, 0, loc)
		cells = append(cells, DayCell{
			Date:           date,
			IsCurrentMonth: true,
			IsToday:        !today.IsZero() && SameDay(date, todayLocal),
		})
	}
	for i := 1; i <= trailing; i++ {
		cells = append(cells, DayCell{
			Date: time.Date(ym.Year, ym.Month+1, i, 0, 0, 0, 0, loc),
		})
	}
	return cells
}

// Weeks splits a grid into rows of seven cells.
func Weeks[T any](cells []T) [][]T {
	rows := make([][]T, 0, (len(cells)+6)/7)
	for start := 0; start < len(cells); start += 7 {
		end := start + 7
		if end > len(cells) {
			end = len(cells)
		}
		rows = append(rows, cells[start:end])
	}
	return rows
}

// WeekdayHeaders returns short weekday labels starting from weekStart.
func WeekdayHeaders(weekStart time.Weekday) []string {
	out := make([]string, 7)
	for i := range out {
		out[i] = time.Weekday((int(weekStart) + i) % 7).String()[:3]
	}
	return out
}
