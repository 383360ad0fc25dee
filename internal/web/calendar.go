package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"portalcal/internal/calendar"
	"portalcal/internal/model"
	"portalcal/internal/store"
)

// snapshot is one consistent read of the store, indexed for detail lookups.
type snapshot struct {
	items  []calendar.Item
	tasks  map[string]model.Task
	events map[string]model.Event
}

func (s *Server) loadSnapshot(ctx context.Context) (snapshot, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return snapshot{}, err
	}
	out := snapshot{
		items:  snap.Items(),
		tasks:  make(map[string]model.Task, len(snap.Tasks)),
		events: make(map[string]model.Event, len(snap.Events)),
	}
	for _, t := range snap.Tasks {
		out.tasks[t.ID] = t
	}
	for _, e := range snap.Events {
		out.events[e.ID] = e
	}
	return out, nil
}

// entry is an agenda or day item with the record it was projected from.
type entry struct {
	calendar.Item
	Task  *model.Task  `json:"task,omitempty"`
	Event *model.Event `json:"event,omitempty"`
}

func (sn snapshot) entries(items []calendar.Item) []entry {
	out := make([]entry, 0, len(items))
	for _, it := range items {
		e := entry{Item: it}
		switch it.Kind {
		case calendar.KindTask:
			if t, ok := sn.tasks[it.ID]; ok {
				e.Task = &t
			}
		case calendar.KindEvent:
			if ev, ok := sn.events[it.ID]; ok {
				e.Event = &ev
			}
		}
		out = append(out, e)
	}
	return out
}

// viewQuery holds the query parameters shared by the calendar endpoints.
type viewQuery struct {
	state   calendar.ViewState
	kind    calendar.Kind
	pending bool
	agenda  calendar.AgendaOptions
}

func badRequest(msg string, err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, msg).SetInternal(err)
}

func parseViewQuery(c echo.Context) (viewQuery, error) {
	var q viewQuery
	if raw := c.QueryParam("month"); raw != "" {
		ym, err := calendar.ParseYearMonth(raw)
		if err != nil {
			return q, badRequest("month must look like 2006-01", err)
		}
		q.state = calendar.ViewState{Month: ym}
	}
	if raw := c.QueryParam("kind"); raw != "" {
		k, err := calendar.ParseKind(raw)
		if err != nil {
			return q, badRequest("kind must be task or event", err)
		}
		q.kind = k
	}
	q.pending = strings.EqualFold(c.QueryParam("pending"), "true")

	sort, err := calendar.ParseSortOrder(c.QueryParam("sort"), q.kind)
	if err != nil {
		return q, badRequest("sort must be newest or oldest", err)
	}
	completion, err := calendar.ParseCompletionFilter(c.QueryParam("completed"))
	if err != nil {
		return q, badRequest("completed must be true or false", err)
	}
	q.agenda = calendar.AgendaOptions{
		Sort:       sort,
		Query:      c.QueryParam("q"),
		Completion: completion,
	}
	return q, nil
}

func (s *Server) renderOptions(q viewQuery) calendar.RenderOptions {
	opts := s.cfg.RenderOptions()
	opts.Agenda = q.agenda
	if q.pending {
		opts.Bind.Filter = calendar.PendingOnly
	}
	return opts
}

func filterKind(items []calendar.Item, kind calendar.Kind) []calendar.Item {
	if kind == "" {
		return items
	}
	keep := calendar.OfKind(kind)
	out := make([]calendar.Item, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// calendarResponse is a rendered month plus the navigation state the client
// sends back to /api/view.
type calendarResponse struct {
	calendar.View
	State calendar.ViewState `json:"state"`
	Prev  string             `json:"prev"`
	Next  string             `json:"next"`
}

func (s *Server) render(c echo.Context, q viewQuery) (calendar.View, snapshot, error) {
	sn, err := s.loadSnapshot(c.Request().Context())
	if err != nil {
		return calendar.View{}, sn, err
	}
	items := filterKind(sn.items, q.kind)
	return s.memo.Render(q.state, items, s.today(), s.renderOptions(q)), sn, nil
}

func (s *Server) handleCalendar(c echo.Context) error {
	q, err := parseViewQuery(c)
	if err != nil {
		return err
	}
	v, _, err := s.render(c, q)
	if err != nil {
		return err
	}
	state := calendar.ViewState{Month: v.Month}
	return c.JSON(http.StatusOK, calendarResponse{
		View:  v,
		State: state,
		Prev:  state.Prev().Month.String(),
		Next:  state.Next().Month.String(),
	})
}

// handleDay lists everything dated on one calendar day, with details.
func (s *Server) handleDay(c echo.Context) error {
	raw := c.QueryParam("date")
	if raw == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date is required")
	}
	day, err := calendar.ParseDate(raw, s.loc)
	if err != nil {
		return badRequest("date must look like 2006-01-02", err)
	}
	kind, err := calendar.ParseKind(c.QueryParam("kind"))
	if err != nil {
		return badRequest("kind must be task or event", err)
	}
	sn, err := s.loadSnapshot(c.Request().Context())
	if err != nil {
		return err
	}
	clean, _ := calendar.Sanitize(sn.items)
	y, m, d := day.In(s.loc).Date()
	cell := calendar.DayCell{Date: time.Date(y, m, d, 0, 0, 0, 0, s.loc), IsCurrentMonth: true}
	items := calendar.ItemsForCell(cell, filterKind(clean, kind))
	return c.JSON(http.StatusOK, echo.Map{
		"date":  cell.Date.Format("2006-01-02"),
		"items": sn.entries(items),
	})
}

// handleView applies a navigation action to the posted state. An empty body
// means the month containing today.
func (s *Server) handleView(c echo.Context) error {
	var state calendar.ViewState
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&state); err != nil {
			return err
		}
	}
	next, ok := state.Normalize().Apply(calendar.Action(c.Param("action")), s.today())
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown action "+c.Param("action"))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"state": next,
		"month": next.Month.String(),
		"title": next.Month.Title(),
	})
}

func (s *Server) handleAgenda(c echo.Context) error {
	q, err := parseViewQuery(c)
	if err != nil {
		return err
	}
	sn, err := s.loadSnapshot(c.Request().Context())
	if err != nil {
		return err
	}
	clean, warnings := calendar.Sanitize(filterKind(sn.items, q.kind))
	agenda := s.memo.Agenda(clean, q.agenda)
	return c.JSON(http.StatusOK, echo.Map{
		"items":    sn.entries(agenda),
		"pending":  calendar.PendingCount(clean),
		"warnings": warnings,
	})
}

func (s *Server) handleSync(c echo.Context) error {
	if s.syncer == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "feed sync is not configured")
	}
	results, err := s.syncer.RunOnce(c.Request().Context())
	type feedStatus struct {
		ID        string   `json:"id"`
		Events    int      `json:"events"`
		FromCache bool     `json:"from_cache"`
		Truncated []string `json:"truncated,omitempty"`
		Error     string   `json:"error,omitempty"`
	}
	out := make([]feedStatus, 0, len(results))
	for _, r := range results {
		st := feedStatus{ID: r.ID, Events: r.Events, FromCache: r.FromCache, Truncated: r.Truncated}
		if r.Err != nil {
			st.Error = r.Err.Error()
		}
		out = append(out, st)
	}
	code := http.StatusOK
	if err != nil {
		code = http.StatusBadGateway
	}
	return c.JSON(code, echo.Map{"feeds": out})
}

var _ Store = (*store.Cache)(nil)
var _ Store = (*store.Store)(nil)
