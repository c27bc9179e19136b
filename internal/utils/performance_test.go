package utils

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestTimer_LogsOperation(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	d := NewTimer("analyze", log).Stop()

	assert.GreaterOrEqual(t, int64(d), int64(0))
	assert.Contains(t, buf.String(), `"operation":"analyze"`)
	assert.Contains(t, buf.String(), "Performance measurement")
}

func TestOperationTimer(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	stop := OperationTimer("snapshots", log)
	stop()

	assert.Contains(t, buf.String(), `"operation":"snapshots"`)
}
