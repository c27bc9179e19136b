package optimization

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

// DefaultTradingPeriodsPerYear is the annualization factor for daily returns.
const DefaultTradingPeriodsPerYear = 252

// PriceSeries is a date-indexed table of adjusted close prices.
// Prices[ticker][i] is the price of ticker on Dates[i].
type PriceSeries struct {
	Dates   []time.Time
	Tickers []string
	Prices  map[string][]float64
}

// NewPriceSeries creates an empty series for the given tickers.
func NewPriceSeries(tickers []string) *PriceSeries {
	ps := &PriceSeries{
		Tickers: append([]string(nil), tickers...),
		Prices:  make(map[string][]float64, len(tickers)),
	}
	for _, t := range tickers {
		ps.Prices[t] = nil
	}
	return ps
}

// Len returns the number of rows.
func (ps *PriceSeries) Len() int {
	if ps == nil || len(ps.Tickers) == 0 {
		return 0
	}
	return len(ps.Prices[ps.Tickers[0]])
}

// Validate checks the table shape: non-empty unique tickers, equal column
// lengths and, when dates are present, strictly ascending dates.
func (ps *PriceSeries) Validate() error {
	if ps == nil || len(ps.Tickers) == 0 {
		return newStatsError("validate", ErrInsufficientData, "no tickers")
	}

	seen := make(map[string]struct{}, len(ps.Tickers))
	rows := -1
	for _, t := range ps.Tickers {
		if t == "" {
			return newStatsError("validate", ErrInsufficientData, "empty ticker symbol")
		}
		if _, dup := seen[t]; dup {
			return newStatsError("validate", ErrInsufficientData, "duplicate ticker %s", t)
		}
		seen[t] = struct{}{}

		col, ok := ps.Prices[t]
		if !ok {
			return newStatsError("validate", ErrInsufficientData, "missing prices for %s", t)
		}
		if rows == -1 {
			rows = len(col)
		} else if len(col) != rows {
			return newStatsError("validate", ErrDimensionMismatch,
				"%s has %d prices, expected %d", t, len(col), rows)
		}
	}

	if len(ps.Dates) > 0 {
		if len(ps.Dates) != rows {
			return newStatsError("validate", ErrDimensionMismatch,
				"%d dates for %d price rows", len(ps.Dates), rows)
		}
		for i := 1; i < len(ps.Dates); i++ {
			if !ps.Dates[i].After(ps.Dates[i-1]) {
				return newStatsError("validate", ErrInsufficientData, "dates not strictly ascending at row %d", i)
			}
		}
	}

	return nil
}

// Aligned returns a copy without rows where any ticker has a missing
// (NaN, infinite or non-positive) price.
func (ps *PriceSeries) Aligned() *PriceSeries {
	out := NewPriceSeries(ps.Tickers)
	for i := 0; i < ps.Len(); i++ {
		if !ps.rowComplete(i) {
			continue
		}
		if len(ps.Dates) > 0 {
			out.Dates = append(out.Dates, ps.Dates[i])
		}
		for _, t := range ps.Tickers {
			out.Prices[t] = append(out.Prices[t], ps.Prices[t][i])
		}
	}
	return out
}

func (ps *PriceSeries) rowComplete(i int) bool {
	for _, t := range ps.Tickers {
		p := ps.Prices[t][i]
		if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
			return false
		}
	}
	return true
}

// MeanReturnVector holds the arithmetic mean periodic return per ticker.
type MeanReturnVector struct {
	Tickers []string
	Values  []float64
	// Observations is the number of aligned price rows the means came from.
	Observations int
}

// Get returns the mean return of ticker.
func (m MeanReturnVector) Get(ticker string) (float64, bool) {
	for i, t := range m.Tickers {
		if t == ticker {
			return m.Values[i], true
		}
	}
	return 0, false
}

// Map returns the vector keyed by ticker.
func (m MeanReturnVector) Map() map[string]float64 {
	out := make(map[string]float64, len(m.Tickers))
	for i, t := range m.Tickers {
		out[t] = m.Values[i]
	}
	return out
}

// CovarianceMatrix is the sample covariance of periodic returns, indexed by ticker order.
type CovarianceMatrix struct {
	Tickers []string
	sym     *mat.SymDense
}

// NewCovarianceMatrix builds a matrix from row-major values. Only the upper
// triangle is read, so the result is exactly symmetric.
func NewCovarianceMatrix(tickers []string, rows [][]float64) (CovarianceMatrix, error) {
	n := len(rows)
	if n == 0 {
		return CovarianceMatrix{}, newStatsError("covariance", ErrDimensionMismatch, "empty matrix")
	}
	if len(tickers) != 0 && len(tickers) != n {
		return CovarianceMatrix{}, newStatsError("covariance", ErrDimensionMismatch,
			"%d tickers for a %dx%d matrix", len(tickers), n, n)
	}

	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		if len(rows[i]) != n {
			return CovarianceMatrix{}, newStatsError("covariance", ErrDimensionMismatch,
				"row %d has %d columns, expected %d", i, len(rows[i]), n)
		}
		for j := i; j < n; j++ {
			sym.SetSym(i, j, rows[i][j])
		}
	}
	return CovarianceMatrix{Tickers: append([]string(nil), tickers...), sym: sym}, nil
}

// Dim returns the matrix order, 0 for an empty matrix.
func (c CovarianceMatrix) Dim() int {
	if c.sym == nil {
		return 0
	}
	return c.sym.SymmetricDim()
}

// At returns element (i, j).
func (c CovarianceMatrix) At(i, j int) float64 {
	return c.sym.At(i, j)
}

// Sym exposes the matrix for gonum operations. Callers must not modify it.
func (c CovarianceMatrix) Sym() mat.Symmetric {
	return c.sym
}

// Rows returns the matrix as nested slices.
func (c CovarianceMatrix) Rows() [][]float64 {
	n := c.Dim()
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			out[i][j] = c.sym.At(i, j)
		}
	}
	return out
}

// WeightVector is one allocation per ticker; non-negative and summing to 1.
type WeightVector []float64

// Sum returns the total weight.
func (w WeightVector) Sum() float64 {
	s := 0.0
	for _, v := range w {
		s += v
	}
	return s
}

// PortfolioMetrics are the annualized figures of one allocation.
type PortfolioMetrics struct {
	ExpectedAnnualReturn float64 `json:"expected_annual_return"`
	AnnualVolatility     float64 `json:"annual_volatility"`
	SharpeRatio          float64 `json:"sharpe_ratio"`
}
