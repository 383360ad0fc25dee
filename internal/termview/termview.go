// Package termview prints the month grid and agenda for a terminal.
package termview

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"portalcal/internal/calendar"
)

const defaultCellWidth = 14

// Styles controls the look of the rendered views.
type Styles struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
	Padding lipgloss.Style
	Today   lipgloss.Style
	Marker  lipgloss.Style
	More    lipgloss.Style
	Done    lipgloss.Style
	Date    lipgloss.Style

	Priority map[calendar.Priority]lipgloss.Style

	// CellWidth is the width of one day column. Zero means 14.
	CellWidth int
}

// DefaultStyles uses the portal's maroon and green.
func DefaultStyles() Styles {
	maroon := lipgloss.Color("#7b1113")
	green := lipgloss.Color("#014421")
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(maroon),
		Header:  lipgloss.NewStyle().Bold(true).Faint(true),
		Cell:    lipgloss.NewStyle(),
		Padding: lipgloss.NewStyle().Faint(true),
		Today:   lipgloss.NewStyle().Bold(true).Underline(true).Foreground(maroon),
		Marker:  lipgloss.NewStyle().Foreground(green),
		More:    lipgloss.NewStyle().Italic(true).Faint(true),
		Done:    lipgloss.NewStyle().Strikethrough(true).Faint(true),
		Date:    lipgloss.NewStyle().Faint(true),
		Priority: map[calendar.Priority]lipgloss.Style{
			calendar.PriorityUrgent:    lipgloss.NewStyle().Bold(true).Foreground(maroon),
			calendar.PriorityImportant: lipgloss.NewStyle().Foreground(lipgloss.Color("#b8860b")),
			calendar.PriorityLater:     lipgloss.NewStyle().Faint(true),
		},
	}
}

// PlainStyles draws the same layout without colors or attributes.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title: plain, Header: plain, Cell: plain, Padding: plain, Today: plain,
		Marker: plain, More: plain, Done: plain, Date: plain,
	}
}

func (st Styles) cellWidth() int {
	if st.CellWidth <= 0 {
		return defaultCellWidth
	}
	return st.CellWidth
}

// Month renders a bound month view as a grid of fixed-width cells. Each
// cell shows the day number, a marker when it has items (! for open tasks),
// the preview titles and the "+K more" overflow.
func Month(v calendar.View, st Styles) string {
	width := st.cellWidth()
	height := 1
	for _, week := range v.Weeks {
		for _, c := range week {
			if n := 1 + len(c.Preview); c.More > 0 {
				height = max(height, n+1)
			} else {
				height = max(height, n)
			}
		}
	}

	var headers []string
	for _, h := range v.Headers {
		headers = append(headers, st.Header.Width(width).Render(h))
	}

	lines := []string{
		st.Title.Render(v.Title),
		lipgloss.JoinHorizontal(lipgloss.Top, headers...),
	}
	for _, week := range v.Weeks {
		cells := make([]string, 0, len(week))
		for _, c := range week {
			cells = append(cells, renderCell(c, st, width, height))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(lines, "\n")
}

func renderCell(c calendar.BoundCell, st Styles, width, height int) string {
	num := strconv.Itoa(c.Date.Day())
	switch {
	case c.IsToday:
		num = st.Today.Render(num)
	case !c.IsCurrentMonth:
		num = st.Padding.Render(num)
	}
	if c.HasPending {
		num += " " + st.Marker.Render("!")
	} else if c.HasItems {
		num += " " + st.Marker.Render("•")
	}

	rows := []string{num}
	for _, it := range c.Preview {
		title := truncate(it.Title, width-1)
		if it.Completed {
			title = st.Done.Render(title)
		}
		rows = append(rows, title)
	}
	if c.More > 0 {
		rows = append(rows, st.More.Render(fmt.Sprintf("+%d more", c.More)))
	}

	base := st.Cell
	if !c.IsCurrentMonth {
		base = st.Padding
	}
	return base.Width(width).Height(height).Render(strings.Join(rows, "\n"))
}

// AgendaLine is one agenda item together with the details the terminal view
// shows next to it.
type AgendaLine struct {
	calendar.Item

	// Priority is set for tasks.
	Priority calendar.Priority

	// Org is the organizer of an event.
	Org string
}

// Agenda renders an agenda list, one item per line, with the date first.
// Tasks get a priority badge and completed ones are struck through.
func Agenda(lines []AgendaLine, st Styles) string {
	if len(lines) == 0 {
		return st.More.Render("Nothing scheduled.")
	}
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		var b strings.Builder
		b.WriteString(st.Date.Render(when(l)))
		b.WriteString("  ")
		if l.Kind == calendar.KindTask {
			b.WriteString(badge(l.Priority, st))
			b.WriteString(" ")
		}
		title := l.Title
		if l.Completed {
			title = st.Done.Render(title)
		}
		b.WriteString(title)
		if l.Org != "" {
			b.WriteString(st.Date.Render(" · " + l.Org))
		}
		out = append(out, b.String())
	}
	return strings.Join(out, "\n")
}

func when(l AgendaLine) string {
	if l.Date.Hour() == 0 && l.Date.Minute() == 0 {
		return l.Date.Format("Mon Jan _2      ")
	}
	return l.Date.Format("Mon Jan _2 15:04")
}

func badge(p calendar.Priority, st Styles) string {
	if p == "" {
		p = calendar.PriorityImportant
	}
	label := "[" + string(p)[:1] + "]"
	if s, ok := st.Priority[p]; ok {
		return s.Render(label)
	}
	return label
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
