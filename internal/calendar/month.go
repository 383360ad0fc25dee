package calendar

import (
	"fmt"
	"strings"
	"time"
)

const layoutMonth = "2006-01"

// YearMonth identifies a displayed month. It carries no day component, so a
// value always stands for the 1st of that month.
type YearMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// MonthOf returns the month containing t, as seen in t's own location.
func MonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseYearMonth parses "2006-01" (surrounding whitespace is ignored).
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse(layoutMonth, strings.TrimSpace(s))
	if err != nil {
		return YearMonth{}, fmt.Errorf("calendar: invalid month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

// Normalize folds out-of-range month numbers into the year, the same way
// time.Date does (month 13 of 2024 is January 2025, month 0 is December).
func (ym YearMonth) Normalize() YearMonth {
	return MonthOf(time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC))
}

// AddMonths moves n months forward (or backward for negative n). The day is
// pinned to the 1st before adding so that long months never spill over.
func (ym YearMonth) AddMonths(n int) YearMonth {
	return MonthOf(time.Date(ym.Year, ym.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC))
}

// First returns midnight of the 1st of the month in loc.
func (ym YearMonth) First(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, loc)
}

// Last returns midnight of the last day of the month in loc.
func (ym YearMonth) Last(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(ym.Year, ym.Month+1, 0, 0, 0, 0, 0, loc)
}

// Days returns the number of days in the month.
func (ym YearMonth) Days() int {
	return ym.Last(time.UTC).Day()
}

func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

func (ym YearMonth) IsZero() bool {
	return ym.Year == 0 && ym.Month == 0
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Title renders the heading shown above a grid, e.g. "March 2025".
func (ym YearMonth) Title() string {
	return fmt.Sprintf("%s %d", ym.Month, ym.Year)
}
