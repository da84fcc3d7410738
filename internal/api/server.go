// Package api assembles the HTTP server: HTML pages, the JSON API and the
// metrics endpoint, behind logging and metrics middleware.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	apihandler "github.com/newthinker/signaldeck/internal/api/handler/api"
	"github.com/newthinker/signaldeck/internal/api/handler/web"
	"github.com/newthinker/signaldeck/internal/dashboard"
	"github.com/newthinker/signaldeck/internal/metrics"
	"github.com/newthinker/signaldeck/internal/watchlist"
	"go.uber.org/zap"
)

// Server represents the HTTP server for the dashboard
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
}

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	TemplatesDir string
	MetricsPath  string
}

// Dependencies are the components the routes serve. Health and Metrics
// are optional.
type Dependencies struct {
	Dashboard   *dashboard.Dashboard
	Preferences *watchlist.Preferences
	Health      apihandler.HealthChecker
	Metrics     *metrics.Registry
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Dashboard == nil {
		return nil, errors.New("dashboard is required")
	}

	mux := http.NewServeMux()
	s := &Server{
		logger: logger,
		mux:    mux,
	}

	if err := s.setupRoutes(cfg, deps); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	var handler http.Handler = mux
	if deps.Metrics != nil {
		handler = metrics.HTTPMiddleware(deps.Metrics)(handler)
	}
	handler = metrics.LoggingMiddleware(logger)(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) error {
	var prefs web.Preferences
	var apiPrefs apihandler.PreferencesStore
	if deps.Preferences != nil {
		prefs = deps.Preferences
		apiPrefs = deps.Preferences
	}

	webHandler, err := web.NewHandler(cfg.TemplatesDir, deps.Dashboard, prefs, s.logger.Named("web"))
	if err != nil {
		return fmt.Errorf("creating web handler: %w", err)
	}

	// Web UI routes
	s.mux.HandleFunc("GET /{$}", webHandler.Home)
	s.mux.HandleFunc("GET /portfolio", webHandler.Portfolio)
	s.mux.HandleFunc("GET /chart/{symbol}", webHandler.Chart)
	s.mux.HandleFunc("POST /watchlist", webHandler.AddSymbol)
	s.mux.HandleFunc("POST /watchlist/{symbol}/remove", webHandler.RemoveSymbol)
	s.mux.HandleFunc("POST /watchlist/{symbol}/toggle", webHandler.ToggleSymbol)
	s.mux.HandleFunc("POST /refresh", webHandler.Refresh)
	s.mux.HandleFunc("POST /preferences/dark-mode", webHandler.ToggleDarkMode)

	// JSON API routes

	watchlistHandler := apihandler.NewWatchlistHandler(deps.Dashboard)
	s.mux.HandleFunc("GET /api/watchlist", watchlistHandler.List)
	s.mux.HandleFunc("POST /api/watchlist", watchlistHandler.Add)
	s.mux.HandleFunc("DELETE /api/watchlist/{symbol}", watchlistHandler.Remove)
	s.mux.HandleFunc("POST /api/watchlist/{symbol}/toggle", watchlistHandler.Toggle)

	s.mux.HandleFunc("GET /api/signals", apihandler.NewSignalsHandler(deps.Dashboard).List)
	s.mux.HandleFunc("GET /api/portfolio", apihandler.NewPortfolioHandler(deps.Dashboard).Get)
	s.mux.HandleFunc("GET /api/chart/{symbol}", apihandler.NewChartHandler(deps.Dashboard).Get)

	refreshHandler := apihandler.NewRefreshHandler(deps.Dashboard)
	s.mux.HandleFunc("GET /api/refresh", refreshHandler.State)
	s.mux.HandleFunc("POST /api/refresh", refreshHandler.Trigger)

	if apiPrefs != nil {
		prefsHandler := apihandler.NewPreferencesHandler(apiPrefs)
		s.mux.HandleFunc("GET /api/preferences", prefsHandler.Get)
		s.mux.HandleFunc("PUT /api/preferences/dark-mode", prefsHandler.SetDarkMode)
		s.mux.HandleFunc("POST /api/preferences/dark-mode/toggle", prefsHandler.ToggleDarkMode)
	}

	s.mux.HandleFunc("GET /api/health", apihandler.NewHealthHandler(deps.Health).Get)

	if deps.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.mux.Handle("GET "+path, deps.Metrics.Handler())
	}

	return nil
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
