package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// SlowThreshold is the duration above which Timer.Stop logs a warning.
const SlowThreshold = 10 * time.Second

// Timer is a simple performance timer for measuring operation duration
type Timer struct {
	start time.Time
	name  string
	log   zerolog.Logger
}

// NewTimer creates a new timer with the given name
func NewTimer(name string, log zerolog.Logger) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
		log:   log,
	}
}

// Stop logs the elapsed time at debug level, or warn once past SlowThreshold.
func (t *Timer) Stop() time.Duration {
	duration := time.Since(t.start)

	if duration > SlowThreshold {
		t.log.Warn().
			Str("operation", t.name).
			Dur("duration", duration).
			Msg("Slow operation detected")
		return duration
	}

	t.log.Debug().
		Str("operation", t.name).
		Dur("duration_ms", duration).
		Msg("Performance measurement")
	return duration
}

// OperationTimer returns a function that stops a timer, for use with defer.
func OperationTimer(operation string, log zerolog.Logger) func() {
	t := NewTimer(operation, log)
	return func() { t.Stop() }
}
