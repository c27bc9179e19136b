package optimization

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/neurotradx/neurotradx/internal/insights"
	"github.com/neurotradx/neurotradx/internal/utils"
)

// HighCorrelationThreshold is the |correlation| at which a pair is reported.
const HighCorrelationThreshold = 0.8

var (
	// ErrInvalidRequest means the request itself was malformed.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrLoaderFailed means the price source could not be reached or answered with an error.
	ErrLoaderFailed = errors.New("price loader failed")
)

// PriceLoader produces an aligned price series for a set of symbols.
type PriceLoader interface {
	LoadPrices(ctx context.Context, symbols []string, start, end time.Time) (*PriceSeries, error)
}

// RiskNarrator comments on a scored portfolio. It never fails; failures are
// reported inside the returned assessment.
type RiskNarrator interface {
	AssessRisk(ctx context.Context, p insights.RiskPayload) insights.Assessment
}

// ServiceConfig holds defaults applied when a request leaves a field unset.
type ServiceConfig struct {
	RiskFreeRate          float64
	TradingPeriodsPerYear int
	Seed                  uint64 // 0 draws a fresh seed per request
	MaxResamples          int
	MaxSamples            int
}

// AnalyzeRequest describes one analysis. Nil pointers use service defaults.
type AnalyzeRequest struct {
	Tickers               []string
	StartDate             time.Time
	EndDate               time.Time
	RiskFreeRate          *float64
	TradingPeriodsPerYear *int
	Seed                  *uint64
	Samples               int // >1 keeps the best-Sharpe of that many draws
}

// AnalysisResult is the caller-facing outcome of Analyze.
type AnalysisResult struct {
	Tickers         []string            `json:"tickers"`
	Weights         []float64           `json:"weights"`
	PortfolioReturn float64             `json:"portfolio_return"`
	PortfolioRisk   float64             `json:"portfolio_risk"`
	SharpeRatio     float64             `json:"sharpe_ratio"`
	RiskAssessment  insights.Assessment `json:"risk_assessment"`
	MeanReturns     map[string]float64  `json:"mean_returns"`
	Correlations    []CorrelationPair   `json:"high_correlations"`
	Observations    int                 `json:"observations"`
	StartDate       string              `json:"start_date"`
	EndDate         string              `json:"end_date"`
	RiskFreeRate    float64             `json:"risk_free_rate"`
	Periods         int                 `json:"trading_periods_per_year"`
	Seed            uint64              `json:"seed"`
	Samples         int                 `json:"samples"`
}

// Service runs the load, estimate, sample and narrate pipeline.
type Service struct {
	loader   PriceLoader
	narrator RiskNarrator
	cfg      ServiceConfig
	now      func() time.Time
	log      zerolog.Logger
}

// NewService creates a new optimization service. narrator may be nil.
func NewService(loader PriceLoader, narrator RiskNarrator, cfg ServiceConfig, log zerolog.Logger) *Service {
	if cfg.TradingPeriodsPerYear <= 0 {
		cfg.TradingPeriodsPerYear = DefaultTradingPeriodsPerYear
	}
	if cfg.MaxSamples <= 0 {
		cfg.MaxSamples = 1
	}
	return &Service{
		loader:   loader,
		narrator: narrator,
		cfg:      cfg,
		now:      time.Now,
		log:      log.With().Str("service", "optimization").Logger(),
	}
}

// Analyze loads prices for the requested tickers and scores one random
// long-only allocation. A narrative failure leaves the numeric result intact.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalysisResult, error) {
	defer utils.OperationTimer("portfolio_analysis", s.log)()

	tickers, err := normalizeTickers(req.Tickers)
	if err != nil {
		return nil, err
	}

	end := req.EndDate
	if end.IsZero() {
		end = s.now().UTC()
	}
	start := req.StartDate
	if start.IsZero() {
		start = end.AddDate(-1, 0, 0)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end date must be after start date", ErrInvalidRequest)
	}

	rf := s.cfg.RiskFreeRate
	if req.RiskFreeRate != nil {
		rf = *req.RiskFreeRate
	}
	if math.IsNaN(rf) || math.IsInf(rf, 0) {
		return nil, fmt.Errorf("%w: risk-free rate must be a finite number", ErrInvalidRequest)
	}
	periods := s.cfg.TradingPeriodsPerYear
	if req.TradingPeriodsPerYear != nil {
		if *req.TradingPeriodsPerYear <= 0 {
			return nil, fmt.Errorf("%w: trading periods per year must be positive", ErrInvalidRequest)
		}
		periods = *req.TradingPeriodsPerYear
	}
	samples := req.Samples
	if samples <= 0 {
		samples = 1
	}
	if samples > s.cfg.MaxSamples {
		return nil, fmt.Errorf("%w: samples must be at most %d", ErrInvalidRequest, s.cfg.MaxSamples)
	}
	seed := s.seed(req.Seed)

	prices, err := s.loader.LoadPrices(ctx, tickers, start, end)
	if err != nil {
		if errors.Is(err, ErrInsufficientData) {
			return nil, err
		}
		return nil, &StatsError{
			Op:    "load",
			Kind:  ErrInsufficientData,
			Cause: fmt.Errorf("%w: %v", ErrLoaderFailed, err),
		}
	}

	mean, cov, err := Estimate(prices)
	if err != nil {
		return nil, err
	}

	sampler := NewSampler(seed, s.cfg.MaxResamples)
	var (
		weights WeightVector
		metrics PortfolioMetrics
	)
	if samples > 1 {
		weights, metrics, err = sampler.Search(mean, cov, rf, periods, samples)
	} else {
		weights, metrics, err = sampler.Optimize(mean, cov, rf, periods)
	}
	if err != nil {
		return nil, err
	}

	result := &AnalysisResult{
		Tickers:         mean.Tickers,
		Weights:         weights,
		PortfolioReturn: metrics.ExpectedAnnualReturn,
		PortfolioRisk:   metrics.AnnualVolatility,
		SharpeRatio:     metrics.SharpeRatio,
		MeanReturns:     mean.Map(),
		Correlations:    cov.Correlations(HighCorrelationThreshold),
		Observations:    mean.Observations,
		StartDate:       start.Format(time.DateOnly),
		EndDate:         end.Format(time.DateOnly),
		RiskFreeRate:    rf,
		Periods:         periods,
		Seed:            seed,
		Samples:         samples,
		RiskAssessment:  insights.Assessment{Status: insights.StatusDisabled},
	}

	if s.narrator != nil {
		result.RiskAssessment = s.narrator.AssessRisk(ctx, insights.RiskPayload{
			Tickers: mean.Tickers,
			Weights: weights,
			Returns: mean.Values,
			Risk:    metrics.AnnualVolatility,
		})
	}

	s.log.Info().
		Strs("tickers", tickers).
		Int("observations", result.Observations).
		Uint64("seed", seed).
		Float64("sharpe", result.SharpeRatio).
		Str("narrative", string(result.RiskAssessment.Status)).
		Msg("Portfolio analyzed")

	return result, nil
}

func (s *Service) seed(requested *uint64) uint64 {
	if requested != nil {
		return *requested
	}
	if s.cfg.Seed != 0 {
		return s.cfg.Seed
	}
	return rand.Uint64()
}

func normalizeTickers(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: at least one ticker is required", ErrInvalidRequest)
	}
	return out, nil
}
