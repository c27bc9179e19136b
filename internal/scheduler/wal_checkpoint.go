package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/neurotradx/neurotradx/internal/database"
)

// walTruncateFrames is the WAL size, in frames, above which the job
// escalates from a passive to a truncating checkpoint.
const walTruncateFrames = 1000

// WALCheckpointJob checkpoints the write-ahead log of each database
type WALCheckpointJob struct {
	databases []*database.DB
	timeout   time.Duration
	log       zerolog.Logger
}

// NewWALCheckpointJob creates a new WALCheckpointJob. Nil databases are ignored.
func NewWALCheckpointJob(log zerolog.Logger, databases ...*database.DB) *WALCheckpointJob {
	return &WALCheckpointJob{
		databases: databases,
		timeout:   30 * time.Second,
		log:       log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

// Name returns the job name
func (j *WALCheckpointJob) Name() string {
	return "wal_checkpoint"
}

// Run checkpoints every database. Failures are logged and do not stop the
// remaining databases.
func (j *WALCheckpointJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	checked := 0
	for _, db := range j.databases {
		if db == nil {
			continue
		}

		res, err := db.WALCheckpoint(ctx, "PASSIVE")
		if err != nil {
			j.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to checkpoint WAL")
			continue
		}

		if res.LogFrames > walTruncateFrames {
			j.log.Warn().
				Str("database", db.Name()).
				Int("wal_frames", res.LogFrames).
				Int("checkpointed", res.Checkpointed).
				Msg("WAL file is large, truncating")
			if _, err := db.WALCheckpoint(ctx, "TRUNCATE"); err != nil {
				j.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to truncate WAL")
			}
		} else {
			j.log.Debug().
				Str("database", db.Name()).
				Int("wal_frames", res.LogFrames).
				Msg("WAL checkpoint status OK")
		}
		checked++
	}

	j.log.Info().Int("checked", checked).Msg("WAL checkpoint completed")
	return nil
}
