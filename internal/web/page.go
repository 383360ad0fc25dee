package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"portalcal/internal/calendar"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.New("").Funcs(template.FuncMap{
	"day": func(t time.Time) string { return t.Format("2006-01-02") },
	"when": func(t time.Time) string {
		if t.Hour() == 0 && t.Minute() == 0 {
			return t.Format("Mon, Jan 2")
		}
		return t.Format("Mon, Jan 2 · 3:04 PM")
	},
}).ParseFS(templateFS, "templates/*.html"))

type calendarPage struct {
	View      calendar.View
	Agenda    []entry
	Month     string
	Prev      string
	PrevTitle string
	Next      string
	NextTitle string
}

// handleCalendarPage renders the month page. It takes the same query
// parameters as /api/calendar and is the target of the PNG snapshot.
func (s *Server) handleCalendarPage(c echo.Context) error {
	q, err := parseViewQuery(c)
	if err != nil {
		return err
	}
	v, sn, err := s.render(c, q)
	if err != nil {
		return err
	}
	for i := range v.Agenda {
		v.Agenda[i].Date = v.Agenda[i].Date.In(s.loc)
	}
	state := calendar.ViewState{Month: v.Month}
	prev, next := state.Prev().Month, state.Next().Month
	page := calendarPage{
		View:      v,
		Agenda:    sn.entries(v.Agenda),
		Month:     v.Month.String(),
		Prev:      prev.String(),
		PrevTitle: prev.Title(),
		Next:      next.String(),
		NextTitle: next.Title(),
	}

	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, "calendar.html", page); err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}
