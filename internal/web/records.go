package web

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"portalcal/internal/model"
	"portalcal/internal/store"
)

func (s *Server) listTasks(c echo.Context) error {
	tasks, err := s.store.ListTasks(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

func (s *Server) getTask(c echo.Context) error {
	t, err := s.store.GetTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) createTask(c echo.Context) error {
	var req model.NewTask
	if err := c.Bind(&req); err != nil {
		return err
	}
	t, err := req.Build(s.today())
	if err != nil {
		return err
	}
	t, err = s.store.CreateTask(c.Request().Context(), t)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

func (s *Server) updateTask(c echo.Context) error {
	ctx := c.Request().Context()
	orig, err := s.store.GetTask(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	var req model.UpdateTask
	if err := c.Bind(&req); err != nil {
		return err
	}
	t, err := req.Apply(orig, s.today())
	if err != nil {
		return err
	}
	if err := s.store.UpdateTask(ctx, t); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) toggleTask(c echo.Context) error {
	t, err := s.store.ToggleTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) deleteTask(c echo.Context) error {
	if err := s.store.DeleteTask(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) listEvents(c echo.Context) error {
	events, err := s.store.ListEvents(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

func (s *Server) getEvent(c echo.Context) error {
	e, err := s.store.GetEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (s *Server) createEvent(c echo.Context) error {
	var req model.NewEvent
	if err := c.Bind(&req); err != nil {
		return err
	}
	e, err := req.Build(s.today())
	if err != nil {
		return err
	}
	e, err = s.store.CreateEvent(c.Request().Context(), e)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, e)
}

// errFeedOwned rejects edits to imported events; the next sync would undo
// them.
var errFeedOwned = echo.NewHTTPError(http.StatusConflict, "imported feed events are read-only")

func (s *Server) updateEvent(c echo.Context) error {
	ctx := c.Request().Context()
	orig, err := s.store.GetEvent(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	if orig.Source == model.SourceFeed {
		return errFeedOwned
	}
	var req model.NewEvent
	if err := c.Bind(&req); err != nil {
		return err
	}
	e, err := req.Update(orig, s.today())
	if err != nil {
		return err
	}
	if err := s.store.UpdateEvent(ctx, e); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (s *Server) deleteEvent(c echo.Context) error {
	ctx := c.Request().Context()
	orig, err := s.store.GetEvent(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	if orig.Source == model.SourceFeed {
		return errFeedOwned
	}
	if err := s.store.DeleteEvent(ctx, orig.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// listPages returns the page directory grouped by type. ?q= narrows it by
// name.
func (s *Server) listPages(c echo.Context) error {
	pages, err := s.store.SearchPages(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	groups := model.GroupPages(pages)
	if groups == nil {
		groups = []model.PageGroup{}
	}
	return c.JSON(http.StatusOK, echo.Map{"groups": groups, "count": len(pages)})
}

func (s *Server) getPage(c echo.Context) error {
	p, err := s.store.GetPage(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) createPage(c echo.Context) error {
	var p model.Page
	if err := c.Bind(&p); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := s.store.GetPage(ctx, p.Name); err == nil {
		return store.ErrExists
	}
	if err := s.store.SavePage(ctx, p); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// updatePage replaces a page. A different name in the body renames it.
func (s *Server) updatePage(c echo.Context) error {
	ctx := c.Request().Context()
	orig, err := s.store.GetPage(ctx, c.Param("name"))
	if err != nil {
		return err
	}
	var p model.Page
	if err := c.Bind(&p); err != nil {
		return err
	}
	if p.Name == "" {
		p.Name = orig.Name
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdatePage(ctx, orig.Name, p); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) deletePage(c echo.Context) error {
	if err := s.store.DeletePage(c.Request().Context(), c.Param("name")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
