package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/neurotradx/neurotradx/internal/config"
	"github.com/neurotradx/neurotradx/internal/scheduler"
)

// Wire initializes all dependencies and returns a fully configured container.
// Order of operations:
//  1. Initialize databases
//  2. Initialize repositories
//  3. Apply settings overrides to cfg
//  4. Initialize services
//  5. Register jobs
func Wire(ctx context.Context, cfg *config.Config, sched *scheduler.Scheduler, log zerolog.Logger) (*Container, *JobInstances, error) {
	container, err := InitializeDatabases(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize databases: %w", err)
	}

	InitializeRepositories(container, log)

	if err := cfg.UpdateFromSettings(container.SettingsRepo); err != nil {
		container.Close()
		return nil, nil, fmt.Errorf("failed to apply stored settings: %w", err)
	}

	if err := InitializeServices(ctx, container, cfg, log); err != nil {
		container.Close()
		return nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	jobs, err := RegisterJobs(container, cfg, sched, log)
	if err != nil {
		container.Close()
		return nil, nil, fmt.Errorf("failed to register jobs: %w", err)
	}

	log.Info().Msg("Dependency injection wiring completed successfully")
	return container, jobs, nil
}
