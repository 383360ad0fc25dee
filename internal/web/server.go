// Package web serves the calendar page and the JSON API.
package web

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"portalcal/internal/calendar"
	"portalcal/internal/config"
	"portalcal/internal/feedsync"
	appLog "portalcal/internal/log"
	"portalcal/internal/model"
	"portalcal/internal/store"
)

// Store is the persistence the handlers need. Both *store.Store and
// *store.Cache satisfy it.
type Store interface {
	Snapshot(ctx context.Context) (store.Snapshot, error)

	ListTasks(ctx context.Context) ([]model.Task, error)
	GetTask(ctx context.Context, id string) (model.Task, error)
	CreateTask(ctx context.Context, t model.Task) (model.Task, error)
	UpdateTask(ctx context.Context, t model.Task) error
	ToggleTask(ctx context.Context, id string) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error

	ListEvents(ctx context.Context) ([]model.Event, error)
	GetEvent(ctx context.Context, id string) (model.Event, error)
	CreateEvent(ctx context.Context, e model.Event) (model.Event, error)
	UpdateEvent(ctx context.Context, e model.Event) error
	DeleteEvent(ctx context.Context, id string) error

	SearchPages(ctx context.Context, q string) ([]model.Page, error)
	GetPage(ctx context.Context, name string) (model.Page, error)
	SavePage(ctx context.Context, p model.Page) error
	UpdatePage(ctx context.Context, name string, p model.Page) error
	DeletePage(ctx context.Context, name string) error
}

// Syncer triggers an immediate feed import.
type Syncer interface {
	RunOnce(ctx context.Context) ([]feedsync.FeedResult, error)
}

type Server struct {
	cfg    *config.Config
	store  Store
	syncer Syncer
	memo   *calendar.Memo
	loc    *time.Location
	now    func() time.Time
	e      *echo.Echo
}

// NewServer builds the echo instance and registers every route. syncer may
// be nil, in which case POST /api/sync reports 503.
func NewServer(cfg *config.Config, st Store, syncer Syncer, debug bool) *Server {
	s := &Server{
		cfg:    cfg,
		store:  st,
		syncer: syncer,
		memo:   calendar.NewMemo(0),
		loc:    cfg.Location(),
		now:    time.Now,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = debug
	e.JSONSerializer = sonicSerializer{}
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(requestLogger())
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled for mutating routes")
		e.Use(s.basicAuth())
	}
	s.e = e
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.e
}

// Start serves on cfg.Listen until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- s.e.Start(s.cfg.Listen)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.e.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	e := s.e
	e.GET("/health", s.handleHealth)
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/calendar")
	})
	e.GET("/calendar", s.handleCalendarPage)

	api := e.Group("/api")
	api.GET("/calendar", s.handleCalendar)
	api.GET("/calendar/day", s.handleDay)
	api.POST("/view/:action", s.handleView)
	api.GET("/agenda", s.handleAgenda)
	api.POST("/sync", s.handleSync)

	api.GET("/tasks", s.listTasks)
	api.POST("/tasks", s.createTask)
	api.GET("/tasks/:id", s.getTask)
	api.PUT("/tasks/:id", s.updateTask)
	api.DELETE("/tasks/:id", s.deleteTask)
	api.POST("/tasks/:id/toggle", s.toggleTask)

	api.GET("/events", s.listEvents)
	api.POST("/events", s.createEvent)
	api.GET("/events/:id", s.getEvent)
	api.PUT("/events/:id", s.updateEvent)
	api.DELETE("/events/:id", s.deleteEvent)

	api.GET("/pages", s.listPages)
	api.POST("/pages", s.createPage)
	api.GET("/pages/:name", s.getPage)
	api.PUT("/pages/:name", s.updatePage)
	api.DELETE("/pages/:name", s.deletePage)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// today is the current instant in the display zone.
func (s *Server) today() time.Time {
	return s.now().In(s.loc)
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuth guards every request that can change data. Reads stay public.
func (s *Server) basicAuth() echo.MiddlewareFunc {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Realm: "portalcal",
		Skipper: func(c echo.Context) bool {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return true
			}
			return false
		},
		Validator: func(u, p string, _ echo.Context) (bool, error) {
			return secureCompare(u, username) && secureCompare(p, password), nil
		},
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			appLog.Debug("http request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration", time.Since(start).String(),
			)
			return err
		}
	}
}

// handleError maps handler errors to responses: validation failures are 400
// with a field map, missing records 404, name clashes 409, anything else 500.
func (s *Server) handleError(err error, c echo.Context) {
	var code int
	var message any

	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		code = httpErr.Code
		message = httpErr.Message
	case model.IsValidation(err):
		code = http.StatusBadRequest
		message = echo.Map{"error": "validation failed", "fields": model.FieldErrors(err)}
	case errors.Is(err, store.ErrNotFound):
		code = http.StatusNotFound
		message = "not found"
	case errors.Is(err, store.ErrExists):
		code = http.StatusConflict
		message = "a page with this name already exists"
	default:
		code = http.StatusInternalServerError
		message = http.StatusText(code)
		appLog.Error("request failed", err, "method", c.Request().Method, "path", c.Request().URL.Path)
	}

	if m, ok := message.(string); ok {
		if c.Echo().Debug && code == http.StatusInternalServerError {
			m = err.Error()
		}
		message = echo.Map{"error": m}
	}

	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, message)
	}
	if err != nil {
		appLog.Error("write error response", err)
	}
}

// sonicSerializer is echo's JSON codec backed by sonic.
type sonicSerializer struct{}

func (sonicSerializer) Serialize(c echo.Context, i any, indent string) error {
	enc := sonic.ConfigStd.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (sonicSerializer) Deserialize(c echo.Context, i any) error {
	err := sonic.ConfigStd.NewDecoder(c.Request().Body).Decode(i)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
	}
	return nil
}
