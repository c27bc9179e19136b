package scheduler

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/neurotradx/neurotradx/internal/database"
)

// IntegrityCheckJob verifies integrity of the SQLite databases
type IntegrityCheckJob struct {
	databases []*database.DB
	log       zerolog.Logger
}

// NewIntegrityCheckJob creates a new IntegrityCheckJob
func NewIntegrityCheckJob(log zerolog.Logger, databases ...*database.DB) *IntegrityCheckJob {
	return &IntegrityCheckJob{
		databases: databases,
		log:       log.With().Str("job", "integrity_check").Logger(),
	}
}

// Name returns the job name
func (j *IntegrityCheckJob) Name() string {
	return "integrity_check"
}

// Run executes PRAGMA integrity_check on each database and stops at the
// first corrupted one.
func (j *IntegrityCheckJob) Run() error {
	for _, db := range j.databases {
		if db == nil {
			continue
		}

		var result string
		if err := db.Conn().QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
			return fmt.Errorf("integrity check failed for %s: %w", db.Name(), err)
		}
		if result != "ok" {
			j.log.Error().Str("database", db.Name()).Str("result", result).Msg("Database integrity check failed")
			return fmt.Errorf("database %s is corrupted: %s", db.Name(), result)
		}

		j.log.Debug().Str("database", db.Name()).Msg("Database integrity OK")
	}

	j.log.Info().Msg("Database integrity check passed")
	return nil
}
