package optimization

import (
	"errors"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// pcgIncrement decorrelates the PCG stream from its state seed.
const pcgIncrement = 0x9e3779b97f4a7c15

// Sampler draws random long-only allocations and scores them.
// A Sampler is not safe for concurrent use; create one per request.
type Sampler struct {
	uniform      distuv.Uniform
	maxResamples int
}

// NewSampler creates a sampler whose draws are fully determined by seed.
// maxResamples bounds how many extra draws Optimize makes when a drawn
// allocation has zero volatility.
func NewSampler(seed uint64, maxResamples int) *Sampler {
	return NewSamplerFromSource(rand.NewPCG(seed, seed^pcgIncrement), maxResamples)
}

// NewSamplerFromSource creates a sampler over an arbitrary random source.
func NewSamplerFromSource(src rand.Source, maxResamples int) *Sampler {
	if maxResamples < 0 {
		maxResamples = 0
	}
	return &Sampler{
		uniform:      distuv.Uniform{Min: 0, Max: 1, Src: src},
		maxResamples: maxResamples,
	}
}

// Draw returns n independent uniform values normalized by their sum:
// one point on the probability simplex.
// n <= 0 gives an empty vector.
func (s *Sampler) Draw(n int) WeightVector {
	if n <= 0 {
		return WeightVector{}
	}
	w := make(WeightVector, n)
	for {
		sum := 0.0
		for i := range w {
			w[i] = s.uniform.Rand()
			sum += w[i]
		}
		if sum > 0 {
			for i := range w {
				w[i] /= sum
			}
			return w
		}
	}
}

// Optimize evaluates exactly one random allocation. It is not a search: the
// returned weights are a single draw, redrawn at most maxResamples times
// while the drawn portfolio has zero volatility.
// periods <= 0 uses DefaultTradingPeriodsPerYear.
func (s *Sampler) Optimize(mean MeanReturnVector, cov CovarianceMatrix, riskFreeRate float64, periods int) (WeightVector, PortfolioMetrics, error) {
	n, err := checkDimensions(mean, cov)
	if err != nil {
		return nil, PortfolioMetrics{}, err
	}

	for attempt := 0; ; attempt++ {
		w := s.Draw(n)
		metrics, err := Score(w, mean, cov, riskFreeRate, periods)
		if err == nil {
			return w, metrics, nil
		}
		if !errors.Is(err, ErrDegenerateVolatility) || attempt >= s.maxResamples {
			return nil, PortfolioMetrics{}, err
		}
	}
}

// Search draws samples allocations and keeps the one with the highest Sharpe
// ratio. Allocations with zero volatility are ignored.
func (s *Sampler) Search(mean MeanReturnVector, cov CovarianceMatrix, riskFreeRate float64, periods, samples int) (WeightVector, PortfolioMetrics, error) {
	n, err := checkDimensions(mean, cov)
	if err != nil {
		return nil, PortfolioMetrics{}, err
	}
	if samples < 1 {
		samples = 1
	}

	var (
		best        WeightVector
		bestMetrics PortfolioMetrics
		lastErr     error
	)
	for i := 0; i < samples; i++ {
		w := s.Draw(n)
		metrics, err := Score(w, mean, cov, riskFreeRate, periods)
		if err != nil {
			lastErr = err
			continue
		}
		if best == nil || metrics.SharpeRatio > bestMetrics.SharpeRatio {
			best, bestMetrics = w, metrics
		}
	}

	if best == nil {
		return nil, PortfolioMetrics{}, lastErr
	}
	return best, bestMetrics, nil
}

// Score annualizes the expected return and volatility of a given allocation
// and computes its Sharpe ratio:
//
//	return     = (Σ w_i·mean_i) × periods
//	volatility = sqrt(wᵀ·Σ·w) × sqrt(periods)
//	sharpe     = (return − riskFreeRate) / volatility
func Score(weights WeightVector, mean MeanReturnVector, cov CovarianceMatrix, riskFreeRate float64, periods int) (PortfolioMetrics, error) {
	n, err := checkDimensions(mean, cov)
	if err != nil {
		return PortfolioMetrics{}, err
	}
	if len(weights) != n {
		return PortfolioMetrics{}, newStatsError("score", ErrDimensionMismatch,
			"%d weights for %d assets", len(weights), n)
	}
	if periods <= 0 {
		periods = DefaultTradingPeriodsPerYear
	}

	w := mat.NewVecDense(n, append([]float64(nil), weights...))
	mu := mat.NewVecDense(n, append([]float64(nil), mean.Values...))

	ret := mat.Dot(w, mu) * float64(periods)
	variance := mat.Inner(w, cov.sym, w)
	if variance < 0 && variance > -1e-15 {
		variance = 0
	}
	vol := math.Sqrt(variance) * math.Sqrt(float64(periods))

	if !(vol > 0) || math.IsInf(vol, 0) {
		return PortfolioMetrics{}, newStatsError("score", ErrDegenerateVolatility,
			"annual volatility is %g", vol)
	}

	sharpe := (ret - riskFreeRate) / vol
	if !isFinite(ret) || !isFinite(sharpe) {
		return PortfolioMetrics{}, newStatsError("score", ErrNonFiniteResult,
			"annual return %g, sharpe ratio %g", ret, sharpe)
	}

	return PortfolioMetrics{
		ExpectedAnnualReturn: ret,
		AnnualVolatility:     vol,
		SharpeRatio:          sharpe,
	}, nil
}

func checkDimensions(mean MeanReturnVector, cov CovarianceMatrix) (int, error) {
	n := len(mean.Values)
	if n == 0 {
		return 0, newStatsError("score", ErrDimensionMismatch, "no assets")
	}
	if cov.Dim() != n {
		return 0, newStatsError("score", ErrDimensionMismatch,
			"covariance matrix size %d doesn't match %d mean returns", cov.Dim(), n)
	}
	if len(mean.Tickers) > 0 && len(cov.Tickers) > 0 {
		if len(mean.Tickers) != len(cov.Tickers) {
			return 0, newStatsError("score", ErrDimensionMismatch, "ticker lists differ in length")
		}
		for i := range mean.Tickers {
			if mean.Tickers[i] != cov.Tickers[i] {
				return 0, newStatsError("score", ErrDimensionMismatch,
					"ticker order differs at %d: %s vs %s", i, mean.Tickers[i], cov.Tickers[i])
			}
		}
	}
	return n, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
