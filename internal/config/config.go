// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/neurotradx/neurotradx/internal/modules/settings"
)

// Config holds application configuration
type Config struct {
	DataDir   string // always absolute
	Port      int
	LogLevel  string
	LogPretty bool
	DevMode   bool

	Optimizer  OptimizerConfig
	MarketData MarketDataConfig
	Narrative  NarrativeConfig

	MaintenanceSchedule string // cron spec with seconds field
}

// OptimizerConfig holds portfolio scoring defaults
type OptimizerConfig struct {
	RiskFreeRate          float64
	TradingPeriodsPerYear int
	Seed                  uint64 // 0 seeds from the clock
	MaxResamples          int
	MaxSamples            int // upper bound for the optional best-of-N search
}

// MarketDataConfig selects and configures the price loader
type MarketDataConfig struct {
	Provider   string // yahoo or eodhd
	BaseURL    string // empty uses the provider default
	EODHDToken string
	Timeout    time.Duration
}

// NarrativeConfig configures the generative-AI commentary provider
type NarrativeConfig struct {
	Provider    string // gemini, openai, webhook or none
	EndpointURL string
	APIKey      string
	Model       string
	Timeout     time.Duration
}

// Load reads configuration from .env and environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("NEUROTRADX_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:   absDataDir,
		Port:      getEnvAsInt("PORT", 8001),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", false),
		DevMode:   getEnvAsBool("DEV_MODE", false),
		Optimizer: OptimizerConfig{
			RiskFreeRate:          getEnvAsFloat("RISK_FREE_RATE", 0.02),
			TradingPeriodsPerYear: getEnvAsInt("TRADING_PERIODS_PER_YEAR", 252),
			Seed:                  uint64(getEnvAsInt("OPTIMIZER_SEED", 0)),
			MaxResamples:          getEnvAsInt("OPTIMIZER_MAX_RESAMPLES", 3),
			MaxSamples:            getEnvAsInt("OPTIMIZER_MAX_SAMPLES", 10000),
		},
		MarketData: MarketDataConfig{
			Provider:   strings.ToLower(getEnv("MARKET_DATA_PROVIDER", "yahoo")),
			BaseURL:    getEnv("MARKET_DATA_BASE_URL", ""),
			EODHDToken: getEnv("EODHD_API_TOKEN", ""),
			Timeout:    getEnvAsDuration("MARKET_DATA_TIMEOUT", 30*time.Second),
		},
		Narrative: NarrativeConfig{
			Provider:    strings.ToLower(getEnv("NARRATIVE_PROVIDER", "none")),
			EndpointURL: getEnv("NARRATIVE_ENDPOINT_URL", ""),
			APIKey:      getEnv("NARRATIVE_API_KEY", ""),
			Model:       getEnv("NARRATIVE_MODEL", ""),
			Timeout:     getEnvAsDuration("NARRATIVE_TIMEOUT", 15*time.Second),
		},
		MaintenanceSchedule: getEnv("MAINTENANCE_SCHEDULE", "0 */15 * * * *"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SettingsReader is the subset of the settings repository used to override env values.
type SettingsReader interface {
	Get(key string) (*string, error)
}

var _ SettingsReader = (*settings.Repository)(nil)

// UpdateFromSettings overrides env values with non-empty values from the settings database.
// Call it once the config database is open.
func (c *Config) UpdateFromSettings(repo SettingsReader) error {
	str := func(key string, dst *string) error {
		v, err := repo.Get(key)
		if err != nil {
			return fmt.Errorf("failed to get %s from settings: %w", key, err)
		}
		if v != nil && *v != "" {
			*dst = *v
		}
		return nil
	}

	strs := []struct {
		key string
		dst *string
	}{
		{settings.KeyNarrativeProvider, &c.Narrative.Provider},
		{settings.KeyNarrativeModel, &c.Narrative.Model},
		{settings.KeyNarrativeEndpointURL, &c.Narrative.EndpointURL},
		{settings.KeyNarrativeAPIKey, &c.Narrative.APIKey},
		{settings.KeyEODHDAPIToken, &c.MarketData.EODHDToken},
	}
	for _, s := range strs {
		if err := str(s.key, s.dst); err != nil {
			return err
		}
	}

	var raw string
	if err := str(settings.KeyRiskFreeRate, &raw); err != nil {
		return err
	}
	if raw != "" {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			c.Optimizer.RiskFreeRate = f
		}
	}

	for _, n := range []struct {
		key string
		dst *int
	}{
		{settings.KeyTradingPeriods, &c.Optimizer.TradingPeriodsPerYear},
		{settings.KeyOptimizerMaxResamples, &c.Optimizer.MaxResamples},
	} {
		raw = ""
		if err := str(n.key, &raw); err != nil {
			return err
		}
		if raw == "" {
			continue
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			*n.dst = int(f)
		}
	}

	return c.Validate()
}

// Validate checks configuration values
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Optimizer.TradingPeriodsPerYear <= 0 {
		return fmt.Errorf("trading periods per year must be positive, got %d", c.Optimizer.TradingPeriodsPerYear)
	}
	if c.Optimizer.MaxResamples < 0 {
		return fmt.Errorf("optimizer max resamples must not be negative")
	}
	if c.Optimizer.MaxSamples < 1 {
		return fmt.Errorf("optimizer max samples must be at least 1")
	}

	switch c.MarketData.Provider {
	case "yahoo":
	case "eodhd":
		if c.MarketData.EODHDToken == "" {
			return fmt.Errorf("EODHD_API_TOKEN is required when MARKET_DATA_PROVIDER=eodhd")
		}
	default:
		return fmt.Errorf("unknown market data provider %q", c.MarketData.Provider)
	}

	switch c.Narrative.Provider {
	case "none", "gemini", "openai":
	case "webhook":
		if c.Narrative.EndpointURL == "" {
			return fmt.Errorf("NARRATIVE_ENDPOINT_URL is required for the webhook provider")
		}
	default:
		return fmt.Errorf("unknown narrative provider %q", c.Narrative.Provider)
	}
	if c.Narrative.Timeout <= 0 {
		return fmt.Errorf("narrative timeout must be positive")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
