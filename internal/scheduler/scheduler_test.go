package scheduler

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testingpkg "github.com/neurotradx/neurotradx/internal/testing"
)

type countingJob struct {
	runs int
	err  error
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run() error {
	j.runs++
	return j.err
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(zerolog.Nop())

	require.NoError(t, s.AddJob("0 */15 * * * *", &countingJob{}))
	require.NoError(t, s.AddJob("@every 1h", &countingJob{}))
	assert.Equal(t, 2, s.Entries())

	assert.Error(t, s.AddJob("not a schedule", &countingJob{}))
	assert.Equal(t, 2, s.Entries())

	s.Start()
	s.Stop()
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{err: errors.New("boom")}

	assert.Error(t, s.RunNow(job))
	s.run(job)
	assert.Equal(t, 2, job.runs)
}

func TestWALCheckpointJob(t *testing.T) {
	users := testingpkg.NewTestDB(t, "users")
	cfg := testingpkg.NewTestDB(t, "config")

	_, err := cfg.Conn().Exec("INSERT INTO settings (key, value, updated_at) VALUES ('k', 'v', 0)")
	require.NoError(t, err)

	job := NewWALCheckpointJob(zerolog.Nop(), users, nil, cfg)
	assert.Equal(t, "wal_checkpoint", job.Name())
	assert.NoError(t, job.Run())
}

func TestIntegrityCheckJob(t *testing.T) {
	db := testingpkg.NewTestDB(t, "users")

	job := NewIntegrityCheckJob(zerolog.Nop(), db, nil)
	assert.Equal(t, "integrity_check", job.Name())
	assert.NoError(t, job.Run())
}

func TestIntegrityCheckJob_ClosedDatabase(t *testing.T) {
	db := testingpkg.NewTestDB(t, "users")
	require.NoError(t, db.Close())

	assert.Error(t, NewIntegrityCheckJob(zerolog.Nop(), db).Run())
}
