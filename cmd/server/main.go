// Package main is the entry point for the position sizing and risk
// validation service. It exposes the sizing calculators, the risk validation
// engine, and the portfolio state they draw on over a REST API, and runs the
// background jobs that keep exposure snapshots and databases healthy.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aristath/sizer/internal/config"
	"github.com/aristath/sizer/internal/database"
	"github.com/aristath/sizer/internal/modules/history"
	"github.com/aristath/sizer/internal/modules/portfolio"
	"github.com/aristath/sizer/internal/modules/risk"
	"github.com/aristath/sizer/internal/modules/settings"
	"github.com/aristath/sizer/internal/modules/sizing"
	"github.com/aristath/sizer/internal/modules/snapshots"
	"github.com/aristath/sizer/internal/scheduler"
	"github.com/aristath/sizer/internal/server"
	"github.com/aristath/sizer/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Pretty:  true,
		Service: "sizer",
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting sizer")

	// Three databases: current portfolio state, runtime settings, and price
	// history for ATR support.
	portfolioDB, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "portfolio.db"),
		Name: "portfolio",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open portfolio database")
	}
	defer portfolioDB.Close()

	configDB, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "config.db"),
		Name: "config",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open config database")
	}
	defer configDB.Close()

	historyDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "history.db"),
		Name:    "history",
		Profile: database.ProfileCache,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history database")
	}
	defer historyDB.Close()

	for _, db := range []*database.DB{portfolioDB, configDB, historyDB} {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("database", db.Name()).Msg("Failed to migrate database")
		}
	}

	// Repositories and services
	settingsRepo := settings.NewRepository(configDB.Conn(), log)
	accountRepo := portfolio.NewAccountRepository(portfolioDB.Conn(), log)
	positionRepo := portfolio.NewPositionRepository(portfolioDB.Conn(), log)
	portfolioSvc := portfolio.NewService(accountRepo, positionRepo, settingsRepo, log)

	dispatcher := sizing.NewDispatcher(log)
	riskEngine := risk.NewEngine(log)

	historyDBC := history.NewHistoryDB(historyDB.Conn(), log)
	historySvc := history.NewService(historyDBC, log)

	snapshotRepo := snapshots.NewRepository(portfolioDB.Conn(), log)
	snapshotSvc := snapshots.NewService(portfolioSvc, snapshotRepo, log)

	// Background jobs
	sched := scheduler.New(log)
	if err := scheduler.RegisterMaintenanceJobs(sched, snapshotSvc, []*database.DB{portfolioDB, configDB, historyDB}); err != nil {
		log.Fatal().Err(err).Msg("Failed to register maintenance jobs")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:          log,
		Config:       cfg,
		PortfolioDB:  portfolioDB,
		ConfigDB:     configDB,
		HistoryDB:    historyDB,
		Dispatcher:   dispatcher,
		RiskEngine:   riskEngine,
		PortfolioSvc: portfolioSvc,
		HistoryDBC:   historyDBC,
		HistorySvc:   historySvc,
		SnapshotRepo: snapshotRepo,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Shutdown complete")
}
