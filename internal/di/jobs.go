package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/neurotradx/neurotradx/internal/config"
	"github.com/neurotradx/neurotradx/internal/scheduler"
)

// RegisterJobs creates maintenance jobs and schedules them on sched
func RegisterJobs(container *Container, cfg *config.Config, sched *scheduler.Scheduler, log zerolog.Logger) (*JobInstances, error) {
	jobs := &JobInstances{
		WALCheckpoint:  scheduler.NewWALCheckpointJob(log, container.Databases()...),
		IntegrityCheck: scheduler.NewIntegrityCheckJob(log, container.Databases()...),
	}

	if err := sched.AddJob(cfg.MaintenanceSchedule, jobs.WALCheckpoint); err != nil {
		return nil, fmt.Errorf("failed to register %s job: %w", jobs.WALCheckpoint.Name(), err)
	}
	if err := sched.AddJob("0 0 3 * * *", jobs.IntegrityCheck); err != nil {
		return nil, fmt.Errorf("failed to register %s job: %w", jobs.IntegrityCheck.Name(), err)
	}

	return jobs, nil
}
