package optimization

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurotradx/neurotradx/internal/insights"
)

type stubLoader struct {
	series  *PriceSeries
	err     error
	symbols []string
	start   time.Time
	end     time.Time
}

func (s *stubLoader) LoadPrices(_ context.Context, symbols []string, start, end time.Time) (*PriceSeries, error) {
	s.symbols, s.start, s.end = symbols, start, end
	return s.series, s.err
}

type stubNarrator struct {
	assessment insights.Assessment
	got        *insights.RiskPayload
}

func (s *stubNarrator) AssessRisk(_ context.Context, p insights.RiskPayload) insights.Assessment {
	s.got = &p
	return s.assessment
}

func defaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		RiskFreeRate:          0.02,
		TradingPeriodsPerYear: 252,
		MaxResamples:          3,
		MaxSamples:            1000,
	}
}

func TestAnalyze_ReturnsScoredPortfolio(t *testing.T) {
	loader := &stubLoader{series: twoAssetSeries()}
	narrator := &stubNarrator{assessment: insights.Assessment{Status: insights.StatusOK, Provider: "webhook", Text: "Concentrated."}}
	svc := NewService(loader, narrator, defaultServiceConfig(), zerolog.Nop())

	seed := uint64(42)
	result, err := svc.Analyze(context.Background(), AnalyzeRequest{
		Tickers:   []string{" a ", "b", "A"},
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Seed:      &seed,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, loader.symbols)
	assert.Equal(t, []string{"A", "B"}, result.Tickers)
	assert.InDelta(t, 1.0, WeightVector(result.Weights).Sum(), tolerance)
	assert.Equal(t, uint64(42), result.Seed)
	assert.Equal(t, 3, result.Observations)
	assert.Equal(t, "2024-01-01", result.StartDate)
	assert.Equal(t, 1, result.Samples)

	mean, cov, err := Estimate(twoAssetSeries())
	require.NoError(t, err)
	expected, err := Score(result.Weights, mean, cov, 0.02, 252)
	require.NoError(t, err)
	assert.Equal(t, expected.ExpectedAnnualReturn, result.PortfolioReturn)
	assert.Equal(t, expected.AnnualVolatility, result.PortfolioRisk)
	assert.Equal(t, expected.SharpeRatio, result.SharpeRatio)

	assert.True(t, result.RiskAssessment.OK())
	require.NotNil(t, narrator.got)
	assert.Equal(t, result.Weights, narrator.got.Weights)
	assert.Equal(t, result.PortfolioRisk, narrator.got.Risk)
}

func TestAnalyze_SameSeedSameResult(t *testing.T) {
	svc := NewService(&stubLoader{series: twoAssetSeries()}, nil, defaultServiceConfig(), zerolog.Nop())
	seed := uint64(99)

	r1, err := svc.Analyze(context.Background(), AnalyzeRequest{Tickers: []string{"A", "B"}, Seed: &seed})
	require.NoError(t, err)
	r2, err := svc.Analyze(context.Background(), AnalyzeRequest{Tickers: []string{"A", "B"}, Seed: &seed})
	require.NoError(t, err)

	assert.Equal(t, r1.Weights, r2.Weights)
	assert.Equal(t, r1.SharpeRatio, r2.SharpeRatio)
}

func TestAnalyze_ConfiguredSeedIsUsed(t *testing.T) {
	cfg := defaultServiceConfig()
	cfg.Seed = 7
	svc := NewService(&stubLoader{series: twoAssetSeries()}, nil, cfg, zerolog.Nop())

	result, err := svc.Analyze(context.Background(), AnalyzeRequest{Tickers: []string{"A", "B"}})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), result.Seed)
	assert.Equal(t, insights.StatusDisabled, result.RiskAssessment.Status)
}

func TestAnalyze_NarrativeFailureKeepsNumbers(t *testing.T) {
	narrator := &stubNarrator{assessment: insights.Assessment{
		Status: insights.StatusUnavailable,
		Error:  "webhook returned status 503",
	}}
	svc := NewService(&stubLoader{series: twoAssetSeries()}, narrator, defaultServiceConfig(), zerolog.Nop())

	result, err := svc.Analyze(context.Background(), AnalyzeRequest{Tickers: []string{"A", "B"}})
	require.NoError(t, err)
	assert.Equal(t, insights.StatusUnavailable, result.RiskAssessment.Status)
	assert.NotZero(t, result.PortfolioRisk)
	assert.Len(t, result.Weights, 2)
}

func TestAnalyze_DefaultDateRange(t *testing.T) {
	loader := &stubLoader{series: twoAssetSeries()}
	svc := NewService(loader, nil, defaultServiceConfig(), zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC) }

	_, err := svc.Analyze(context.Background(), AnalyzeRequest{Tickers: []string{"A", "B"}})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC), loader.start)
	assert.Equal(t, time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC), loader.end)
}

func TestAnalyze_RequestOverrides(t *testing.T) {
	svc := NewService(&stubLoader{series: twoAssetSeries()}, nil, defaultServiceConfig(), zerolog.Nop())
	seed := uint64(5)
	rf := 0.0
	periods := 504

	result, err := svc.Analyze(context.Background(), AnalyzeRequest{
		Tickers:               []string{"A", "B"},
		Seed:                  &seed,
		RiskFreeRate:          &rf,
		TradingPeriodsPerYear: &periods,
	})
	require.NoError(t, err)
	assert.Equal(t, 504, result.Periods)
	assert.Equal(t, 0.0, result.RiskFreeRate)
	assert.InDelta(t, result.PortfolioReturn/result.PortfolioRisk, result.SharpeRatio, tolerance)
}

func TestAnalyze_Search(t *testing.T) {
	svc := NewService(&stubLoader{series: twoAssetSeries()}, nil, defaultServiceConfig(), zerolog.Nop())
	seed := uint64(3)

	single, err := svc.Analyze(context.Background(), AnalyzeRequest{Tickers: []string{"A", "B"}, Seed: &seed})
	require.NoError(t, err)
	searched, err := svc.Analyze(context.Background(), AnalyzeRequest{Tickers: []string{"A", "B"}, Seed: &seed, Samples: 100})
	require.NoError(t, err)

	assert.Equal(t, 100, searched.Samples)
	assert.GreaterOrEqual(t, searched.SharpeRatio, single.SharpeRatio)
}

func TestAnalyze_Errors(t *testing.T) {
	loaderDown := errors.New("dial tcp: connection refused")
	periods := 0
	nanRate := math.NaN()
	hugeRate := 1e308

	tests := []struct {
		name    string
		loader  *stubLoader
		req     AnalyzeRequest
		wantErr []error
	}{
		{
			name:    "no tickers",
			loader:  &stubLoader{},
			req:     AnalyzeRequest{Tickers: []string{" ", ""}},
			wantErr: []error{ErrInvalidRequest},
		},
		{
			name:   "reversed dates",
			loader: &stubLoader{},
			req: AnalyzeRequest{
				Tickers:   []string{"A"},
				StartDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
				EndDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			},
			wantErr: []error{ErrInvalidRequest},
		},
		{
			name:    "non-positive periods",
			loader:  &stubLoader{},
			req:     AnalyzeRequest{Tickers: []string{"A"}, TradingPeriodsPerYear: &periods},
			wantErr: []error{ErrInvalidRequest},
		},
		{
			name:    "NaN risk-free rate",
			loader:  &stubLoader{series: twoAssetSeries()},
			req:     AnalyzeRequest{Tickers: []string{"A", "B"}, RiskFreeRate: &nanRate},
			wantErr: []error{ErrInvalidRequest},
		},
		{
			name:    "overflowing sharpe ratio",
			loader:  &stubLoader{series: twoAssetSeries()},
			req:     AnalyzeRequest{Tickers: []string{"A", "B"}, RiskFreeRate: &hugeRate},
			wantErr: []error{ErrNonFiniteResult},
		},
		{
			name:    "too many samples",
			loader:  &stubLoader{},
			req:     AnalyzeRequest{Tickers: []string{"A"}, Samples: 5000},
			wantErr: []error{ErrInvalidRequest},
		},
		{
			name:    "loader failure",
			loader:  &stubLoader{err: loaderDown},
			req:     AnalyzeRequest{Tickers: []string{"A"}},
			wantErr: []error{ErrInsufficientData, ErrLoaderFailed},
		},
		{
			name:    "loader found nothing",
			loader:  &stubLoader{err: newStatsError("load", ErrInsufficientData, "no prices")},
			req:     AnalyzeRequest{Tickers: []string{"A"}},
			wantErr: []error{ErrInsufficientData},
		},
		{
			name:    "single observation",
			loader:  &stubLoader{series: series(map[string][]float64{"A": {100}}, "A")},
			req:     AnalyzeRequest{Tickers: []string{"A"}},
			wantErr: []error{ErrInsufficientData},
		},
		{
			name:    "constant prices",
			loader:  &stubLoader{series: series(map[string][]float64{"A": {5, 5, 5}}, "A")},
			req:     AnalyzeRequest{Tickers: []string{"A"}},
			wantErr: []error{ErrDegenerateVolatility},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.loader, nil, defaultServiceConfig(), zerolog.Nop())
			_, err := svc.Analyze(context.Background(), tt.req)
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestAnalyze_ObservationsCountAlignedRows(t *testing.T) {
	withGap := series(map[string][]float64{
		"A": {100, 110, 999, 121},
		"B": {50, 49, math.NaN(), 50},
	}, "A", "B")
	svc := NewService(&stubLoader{series: withGap}, nil, defaultServiceConfig(), zerolog.Nop())

	result, err := svc.Analyze(context.Background(), AnalyzeRequest{Tickers: []string{"A", "B"}})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Observations)
}
