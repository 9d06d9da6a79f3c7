// Package server exposes collected intelligence over a read-only HTTP API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/crowsnest-io/crowsnest/internal/briefing"
	"github.com/crowsnest-io/crowsnest/internal/config"
	"github.com/crowsnest-io/crowsnest/internal/store"
)

// Server serves the latest persisted artifacts. It never triggers
// collection or analysis; pipeline runs happen through the CLI.
type Server struct {
	echo   *echo.Echo
	store  *store.Store
	logger *zap.Logger
	config config.ServerConfig
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// New creates the HTTP server.
func New(st *store.Store, logger *zap.Logger, cfg config.ServerConfig) (*Server, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:   e,
		store:  st,
		logger: logger.Named("server"),
		config: cfg,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.GET("/reports/latest", s.handleLatestReport)
	v1.GET("/briefings/latest", s.handleLatestBriefing)
	v1.GET("/dashboard/latest", s.handleLatestDashboard)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleLatestReport serves the most recent strategic intelligence report.
func (s *Server) handleLatestReport(c echo.Context) error {
	return s.serveLatest(c, s.store.ReportsDir(), "strategic-intelligence-")
}

// handleLatestBriefing serves the most recent briefing of the requested
// type. The type query parameter defaults to executive_summary.
func (s *Server) handleLatestBriefing(c echo.Context) error {
	briefingType := c.QueryParam("type")
	if briefingType == "" {
		briefingType = briefing.TypeExecutiveSummary
	}

	known := false
	for _, t := range briefing.Types() {
		if t == briefingType {
			known = true
			break
		}
	}
	if !known {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("unknown briefing type %q", briefingType))
	}

	dir := filepath.Join(s.store.ReportsDir(), "briefings")
	return s.serveLatest(c, dir, "strategic-briefing-"+briefingType+"-")
}

// handleLatestDashboard serves the most recent summary dashboard output.
func (s *Server) handleLatestDashboard(c echo.Context) error {
	dir := filepath.Join(s.store.ReportsDir(), "intelligence")
	return s.serveLatest(c, dir, "summary_dashboard-")
}

func (s *Server) serveLatest(c echo.Context, dir, prefix string) error {
	path, err := s.store.Latest(dir, prefix)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "no artifact available")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Error("artifact not readable", zap.String("path", path), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "artifact not readable")
	}

	return c.JSONBlob(http.StatusOK, data)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
