package di

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurotradx/neurotradx/internal/config"
	"github.com/neurotradx/neurotradx/internal/modules/settings"
	"github.com/neurotradx/neurotradx/internal/scheduler"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir:  t.TempDir(),
		Port:     8001,
		LogLevel: "info",
		Optimizer: config.OptimizerConfig{
			RiskFreeRate:          0.02,
			TradingPeriodsPerYear: 252,
			MaxResamples:          3,
			MaxSamples:            100,
		},
		MarketData: config.MarketDataConfig{
			Provider: "yahoo",
			Timeout:  time.Second,
		},
		Narrative: config.NarrativeConfig{
			Provider: "none",
			Timeout:  time.Second,
		},
		MaintenanceSchedule: "0 */15 * * * *",
	}
}

func TestWire(t *testing.T) {
	cfg := testConfig(t)
	sched := scheduler.New(zerolog.Nop())

	container, jobs, err := Wire(context.Background(), cfg, sched, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.NotNil(t, container.UsersDB)
	assert.NotNil(t, container.ConfigDB)
	assert.NotNil(t, container.OptimizationService)
	assert.NotNil(t, container.UserService)
	assert.NotNil(t, container.MarketService)
	assert.NotNil(t, container.SettingsService)
	assert.Nil(t, container.EODHDClient)
	assert.False(t, container.Narrator.Enabled())

	assert.Len(t, jobs.All(), 2)
	assert.Equal(t, 2, sched.Entries())
	assert.NoError(t, jobs.WALCheckpoint.Run())
	assert.NoError(t, jobs.IntegrityCheck.Run())
}

func TestWire_StoredSettingsOverrideConfig(t *testing.T) {
	cfg := testConfig(t)

	first, _, err := Wire(context.Background(), cfg, scheduler.New(zerolog.Nop()), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, first.SettingsService.Set(settings.KeyRiskFreeRate, 0.045))
	first.Close()

	second, _, err := Wire(context.Background(), cfg, scheduler.New(zerolog.Nop()), zerolog.Nop())
	require.NoError(t, err)
	defer second.Close()
	assert.Equal(t, 0.045, cfg.Optimizer.RiskFreeRate)
}

func TestWire_EODHDProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.MarketData.Provider = "eodhd"
	cfg.MarketData.EODHDToken = "token"

	container, _, err := Wire(context.Background(), cfg, scheduler.New(zerolog.Nop()), zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()
	assert.NotNil(t, container.EODHDClient)
}

func TestWire_BadSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaintenanceSchedule = "whenever"

	_, _, err := Wire(context.Background(), cfg, scheduler.New(zerolog.Nop()), zerolog.Nop())
	assert.Error(t, err)
}
