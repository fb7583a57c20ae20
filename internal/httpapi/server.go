package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/CalixtheMattei/apple-store-500-analytics/internal/db"
)

const (
	defaultRunLimit = 25
	maxRunLimit     = 200
)

// Store is the read surface the monitoring API needs: run and cohort
// metadata plus a liveness probe.
type Store interface {
	Ping(ctx context.Context) error
	RecentRuns(ctx context.Context, limit int) ([]db.PipelineRun, error)
	LatestRun(ctx context.Context) (*db.PipelineRun, error)
	CohortsForRun(ctx context.Context, runUUID string) ([]db.CohortRecord, error)
}

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server exposes run-level and cohort-level metadata for operational
// monitoring. It is read-only; the pipeline itself never goes through HTTP.
type Server struct {
	store  Store
	logger zerolog.Logger
	opts   Options
}

func NewServer(store Store, logger zerolog.Logger, opts Options) *Server {
	if strings.TrimSpace(opts.Host) == "" {
		opts.Host = "0.0.0.0"
	}
	if opts.Port <= 0 {
		opts.Port = 8090
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 30 * time.Second
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	return &Server{
		store:  store,
		logger: logger,
		opts:   opts,
	}
}

// Start runs the server until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := s.newEcho()

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
		s.logger.Info().Str("addr", addr).Msg("monitoring API listening")
		errCh <- e.Start(addr)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	}
}

func (s *Server) newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = s.opts.ReadTimeout
	e.Server.WriteTimeout = s.opts.WriteTimeout

	e.Use(middleware.Recover())

	e.GET("/healthz", s.handleHealth)
	e.GET("/api/runs", s.handleRuns)
	e.GET("/api/runs/latest", s.handleLatestRun)
	e.GET("/api/runs/:run_uuid/cohorts", s.handleRunCohorts)

	return e
}

func (s *Server) handleHealth(c echo.Context) error {
	if err := s.store.Ping(c.Request().Context()); err != nil {
		s.logger.Error().Err(err).Msg("health check failed")
		return internalError(c, "store unreachable")
	}
	return success(c, map[string]string{"database": "ok"})
}

func (s *Server) handleRuns(c echo.Context) error {
	limit := defaultRunLimit
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return fail(c, http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = min(parsed, maxRunLimit)
	}

	runs, err := s.store.RecentRuns(c.Request().Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("list runs failed")
		return internalError(c, "failed to list runs")
	}
	return success(c, map[string]any{"runs": runs})
}

func (s *Server) handleLatestRun(c echo.Context) error {
	run, err := s.store.LatestRun(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("latest run lookup failed")
		return internalError(c, "failed to load latest run")
	}
	if run == nil {
		return fail(c, http.StatusNotFound, "no runs recorded yet")
	}
	return success(c, map[string]any{"run": run})
}

func (s *Server) handleRunCohorts(c echo.Context) error {
	runUUID := strings.TrimSpace(c.Param("run_uuid"))
	if runUUID == "" {
		return fail(c, http.StatusBadRequest, "run UUID is required")
	}

	cohorts, err := s.store.CohortsForRun(c.Request().Context(), runUUID)
	if err != nil {
		if db.IsNotFound(err) {
			return fail(c, http.StatusNotFound, "run not found")
		}
		s.logger.Error().Err(err).Str("run_uuid", runUUID).Msg("cohort lookup failed")
		return internalError(c, "failed to load cohorts")
	}
	return success(c, map[string]any{"cohorts": cohorts})
}
