package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/neurotradx/neurotradx/internal/clients/eodhd"
	"github.com/neurotradx/neurotradx/internal/clients/yahoo"
	"github.com/neurotradx/neurotradx/internal/config"
	"github.com/neurotradx/neurotradx/internal/insights"
	"github.com/neurotradx/neurotradx/internal/marketdata"
	"github.com/neurotradx/neurotradx/internal/modules/market"
	"github.com/neurotradx/neurotradx/internal/modules/optimization"
	"github.com/neurotradx/neurotradx/internal/modules/settings"
	"github.com/neurotradx/neurotradx/internal/modules/users"
)

// InitializeServices creates clients and services. cfg must already carry
// any overrides from the settings database.
func InitializeServices(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	// Yahoo also backs market snapshots, so it exists whatever the price provider.
	yahooBaseURL := ""
	if cfg.MarketData.Provider == "yahoo" {
		yahooBaseURL = cfg.MarketData.BaseURL
	}
	container.YahooClient = yahoo.NewClient(yahooBaseURL, cfg.MarketData.Timeout, log)

	var fetcher marketdata.HistoryFetcher
	switch cfg.MarketData.Provider {
	case "eodhd":
		container.EODHDClient = eodhd.NewClient(cfg.MarketData.BaseURL, cfg.MarketData.EODHDToken, cfg.MarketData.Timeout, log)
		fetcher = marketdata.NewEODHDFetcher(container.EODHDClient)
	default:
		fetcher = marketdata.NewYahooFetcher(container.YahooClient)
	}
	container.PriceLoader = marketdata.NewLoader(fetcher, log)

	narrator, err := insights.New(ctx, insights.Config{
		Provider:    cfg.Narrative.Provider,
		EndpointURL: cfg.Narrative.EndpointURL,
		APIKey:      cfg.Narrative.APIKey,
		Model:       cfg.Narrative.Model,
		Timeout:     cfg.Narrative.Timeout,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create narrative adapter: %w", err)
	}
	container.Narrator = narrator

	container.SettingsService = settings.NewService(container.SettingsRepo, log)
	container.UserService = users.NewService(container.UserRepo, narrator, bcrypt.DefaultCost, log)
	container.OptimizationService = optimization.NewService(container.PriceLoader, narrator, optimization.ServiceConfig{
		RiskFreeRate:          cfg.Optimizer.RiskFreeRate,
		TradingPeriodsPerYear: cfg.Optimizer.TradingPeriodsPerYear,
		Seed:                  cfg.Optimizer.Seed,
		MaxResamples:          cfg.Optimizer.MaxResamples,
		MaxSamples:            cfg.Optimizer.MaxSamples,
	}, log)
	container.MarketService = market.NewService(container.YahooClient, narrator, log)

	log.Info().
		Str("market_data", cfg.MarketData.Provider).
		Bool("narrative", narrator.Enabled()).
		Msg("Services initialized")
	return nil
}
