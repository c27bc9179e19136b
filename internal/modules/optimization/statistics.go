package optimization

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// minReturnObservations is the smallest return sample with a defined N-1 covariance.
const minReturnObservations = 2

// Estimate converts prices to simple periodic returns and derives the
// arithmetic mean return per ticker and the Bessel-corrected sample covariance.
// Rows with a missing price in any ticker are dropped first. At least three
// aligned prices (two returns) are required, since the N-1 covariance of a
// single return is undefined; fewer gives ErrInsufficientData. It is a pure
// function of its input.
func Estimate(prices *PriceSeries) (MeanReturnVector, CovarianceMatrix, error) {
	if err := prices.Validate(); err != nil {
		return MeanReturnVector{}, CovarianceMatrix{}, err
	}

	aligned := prices.Aligned()
	if aligned.Len() < 2 {
		return MeanReturnVector{}, CovarianceMatrix{}, newStatsError("estimate", ErrInsufficientData,
			"need at least 2 aligned observations, got %d", aligned.Len())
	}

	returns := SimpleReturns(aligned)
	obs, n := returns.Dims()
	if obs < minReturnObservations {
		return MeanReturnVector{}, CovarianceMatrix{}, newStatsError("estimate", ErrInsufficientData,
			"need at least %d returns for a sample covariance, got %d", minReturnObservations, obs)
	}

	means := make([]float64, n)
	for j := 0; j < n; j++ {
		means[j] = stat.Mean(mat.Col(nil, j, returns), nil)
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, returns, nil)

	tickers := append([]string(nil), aligned.Tickers...)
	return MeanReturnVector{Tickers: tickers, Values: means, Observations: aligned.Len()},
		CovarianceMatrix{Tickers: tickers, sym: &cov},
		nil
}

// SimpleReturns returns the (rows-1) x tickers matrix of r_t = p_t/p_{t-1} - 1.
// The input must be aligned.
func SimpleReturns(prices *PriceSeries) *mat.Dense {
	rows := prices.Len() - 1
	if rows < 1 {
		return &mat.Dense{}
	}

	out := mat.NewDense(rows, len(prices.Tickers), nil)
	for j, t := range prices.Tickers {
		col := prices.Prices[t]
		for i := 1; i < len(col); i++ {
			out.Set(i-1, j, col[i]/col[i-1]-1)
		}
	}
	return out
}

// CorrelationPair is a ticker pair whose return correlation crossed a threshold.
type CorrelationPair struct {
	Ticker1     string  `json:"ticker1"`
	Ticker2     string  `json:"ticker2"`
	Correlation float64 `json:"correlation"`
}

// Correlations lists pairs with |correlation| >= threshold. Zero-variance
// tickers have no defined correlation and are skipped.
func (c CovarianceMatrix) Correlations(threshold float64) []CorrelationPair {
	n := c.Dim()
	pairs := make([]CorrelationPair, 0)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			vi, vj := c.At(i, i), c.At(j, j)
			if vi <= 0 || vj <= 0 {
				continue
			}
			corr := c.At(i, j) / math.Sqrt(vi*vj)
			if math.Abs(corr) >= threshold {
				pairs = append(pairs, CorrelationPair{
					Ticker1:     c.ticker(i),
					Ticker2:     c.ticker(j),
					Correlation: corr,
				})
			}
		}
	}
	return pairs
}

func (c CovarianceMatrix) ticker(i int) string {
	if i < len(c.Tickers) {
		return c.Tickers[i]
	}
	return strconv.Itoa(i)
}
