// Package main is the entry point for the NeuroTradX personal-finance service.
// It serves portfolio risk analysis, user accounts, tax summaries and market
// insights over HTTP, backed by sqlite and a handful of external data providers.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neurotradx/neurotradx/internal/config"
	"github.com/neurotradx/neurotradx/internal/di"
	markethandlers "github.com/neurotradx/neurotradx/internal/modules/market/handlers"
	optimizationhandlers "github.com/neurotradx/neurotradx/internal/modules/optimization/handlers"
	settingshandlers "github.com/neurotradx/neurotradx/internal/modules/settings/handlers"
	taxhandlers "github.com/neurotradx/neurotradx/internal/modules/tax/handlers"
	usershandlers "github.com/neurotradx/neurotradx/internal/modules/users/handlers"
	"github.com/neurotradx/neurotradx/internal/scheduler"
	"github.com/neurotradx/neurotradx/internal/server"
	"github.com/neurotradx/neurotradx/pkg/logger"
)

// main loads configuration, wires dependencies, starts the scheduler and the
// HTTP server, then waits for SIGINT/SIGTERM and shuts everything down.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting NeuroTradX")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(log)

	// Stored settings override environment values inside Wire
	container, jobs, err := di.Wire(ctx, cfg, sched, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	srv := server.New(server.Config{
		Log:       log,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		DataDir:   cfg.DataDir,
		Databases: container.Databases(),
		Jobs:      jobs.All(),
		Routes: []server.RouteRegistrar{
			optimizationhandlers.NewHandler(container.OptimizationService, log),
			usershandlers.NewHandler(container.UserService, log),
			taxhandlers.NewHandler(log),
			markethandlers.NewHandler(container.MarketService, log),
		},
		APIRoutes: []server.RouteRegistrar{
			settingshandlers.NewHandler(container.SettingsService, log),
		},
	})

	sched.Start()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")
	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
