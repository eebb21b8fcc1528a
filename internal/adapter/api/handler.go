package api

import (
	"context"
	"github.com/burenotti/healthtrack/internal/adapter/storage"
	"github.com/burenotti/healthtrack/internal/app/authapp"
	"github.com/burenotti/healthtrack/internal/app/entryapp"
	"github.com/burenotti/healthtrack/internal/app/goalapp"
	"github.com/burenotti/healthtrack/internal/app/unitofwork"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	slogecho "github.com/samber/slog-echo"
	"log/slog"
	"net/http"
	"time"
)

type Server struct {
	handler      *echo.Echo
	logger       *slog.Logger
	addr         string
	db           *storage.DB
	authService  *authapp.Service
	goalService  *goalapp.Service
	entryService *entryapp.Service
	msgBus       unitofwork.MessageBus
	validator    *validator.Validate
	registry     *prometheus.Registry
	metrics      *Metrics
	timeouts     Timeouts
}

type Timeouts struct {
	Read       time.Duration
	ReadHeader time.Duration
	Write      time.Duration
	Idle       time.Duration
}

func NewServer(opt ...Option) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		handler:   e,
		logger:    slog.Default(),
		validator: newValidator(),
		timeouts: Timeouts{
			Read:       10 * time.Second,
			ReadHeader: 5 * time.Second,
			Write:      10 * time.Second,
			Idle:       10 * time.Second,
		},
	}

	for _, opt := range opt {
		opt(s)
	}

	e.Server.ReadTimeout = s.timeouts.Read
	e.Server.ReadHeaderTimeout = s.timeouts.ReadHeader
	e.Server.WriteTimeout = s.timeouts.Write
	e.Server.IdleTimeout = s.timeouts.Idle
	e.Server.MaxHeaderBytes = 4096

	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(s.registry)
	}

	e.Use(middleware.RequestID())
	e.Use(slogecho.NewWithConfig(s.logger, slogecho.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelInfo,
		ServerErrorLevel: slog.LevelError,
		WithRequestID:    true,
	}))
	e.Use(middleware.Recover())
	e.Use(s.metrics.Middleware())

	s.Mount()
	return s
}

func (s *Server) Mount() {
	s.handler.GET("/healthz", s.Healthz)
	s.handler.GET("/metrics", echo.WrapHandler(s.metrics.Handler(s.registry)))

	api := s.handler.Group("/api")
	s.MountAuth(api)
	s.MountGoals(api)
	s.MountEntries(api)
}

func (s *Server) Start() error {
	return s.handler.Start(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.handler.Shutdown(ctx)
}

// ServeHTTP lets the server be mounted into another mux or driven by httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

type healthzResponse struct {
	Status string `json:"status"`
}

func (s *Server) Healthz(c echo.Context) error {
	if s.db == nil || s.db.DB == nil {
		s.logger.Error("database is not configured")
		return c.JSON(http.StatusServiceUnavailable, healthzResponse{Status: "unavailable"})
	}
	if err := s.db.PingContext(c.Request().Context()); err != nil {
		s.logger.Error("database is unreachable", "error", err)
		return c.JSON(http.StatusServiceUnavailable, healthzResponse{Status: "unavailable"})
	}
	return c.JSON(http.StatusOK, healthzResponse{Status: "ok"})
}
