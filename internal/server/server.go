// Package server provides the HTTP server and routing for the sizing engine.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/sizer/internal/config"
	"github.com/aristath/sizer/internal/database"
	"github.com/aristath/sizer/internal/modules/history"
	historyhandlers "github.com/aristath/sizer/internal/modules/history/handlers"
	"github.com/aristath/sizer/internal/modules/portfolio"
	portfoliohandlers "github.com/aristath/sizer/internal/modules/portfolio/handlers"
	"github.com/aristath/sizer/internal/modules/risk"
	riskhandlers "github.com/aristath/sizer/internal/modules/risk/handlers"
	"github.com/aristath/sizer/internal/modules/sizing"
	sizinghandlers "github.com/aristath/sizer/internal/modules/sizing/handlers"
	"github.com/aristath/sizer/internal/modules/snapshots"
	snapshothandlers "github.com/aristath/sizer/internal/modules/snapshots/handlers"
)

// Config holds server configuration
type Config struct {
	Log         zerolog.Logger
	Config      *config.Config
	PortfolioDB *database.DB
	ConfigDB    *database.DB
	HistoryDB   *database.DB

	Dispatcher   *sizing.Dispatcher
	RiskEngine   *risk.Engine
	PortfolioSvc *portfolio.Service
	HistoryDBC   *history.HistoryDB
	HistorySvc   *history.Service
	SnapshotRepo *snapshots.Repository
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            Config
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		cfg:    cfg,
		systemHandlers: NewSystemHandlers(
			cfg.Log,
			cfg.Config.DataDir,
			[]*database.DB{cfg.PortfolioDB, cfg.ConfigDB, cfg.HistoryDB},
		),
	}

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.systemHandlers.HandleHealth)

	sizingHandler := sizinghandlers.NewHandler(s.cfg.Dispatcher, s.log)
	riskHandler := riskhandlers.NewHandler(s.cfg.RiskEngine, s.cfg.PortfolioSvc, s.log)
	portfolioHandler := portfoliohandlers.NewHandler(s.cfg.PortfolioSvc, s.log)
	historyHandler := historyhandlers.NewHandler(s.cfg.HistoryDBC, s.cfg.HistorySvc, s.log)
	snapshotHandler := snapshothandlers.NewHandler(s.cfg.SnapshotRepo, s.log)

	s.router.Route("/api", func(r chi.Router) {
		sizingHandler.RegisterRoutes(r)
		riskHandler.RegisterRoutes(r)
		portfolioHandler.RegisterRoutes(r)
		historyHandler.RegisterRoutes(r)
		snapshotHandler.RegisterRoutes(r)

		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandlers.HandleSystemStatus)
			r.Get("/database/stats", s.systemHandlers.HandleDatabaseStats)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Config.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
