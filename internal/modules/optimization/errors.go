package optimization

import (
	"errors"
	"fmt"
)

// Error taxonomy of the statistics and scoring pipeline. Use errors.Is to classify.
var (
	// ErrInsufficientData means fewer than two usable observations or no tickers.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrDimensionMismatch means the mean vector and covariance matrix disagree.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrDegenerateVolatility means the scored portfolio has zero volatility.
	ErrDegenerateVolatility = errors.New("degenerate volatility")
	// ErrNonFiniteResult means a scored metric overflowed or became NaN.
	ErrNonFiniteResult = errors.New("non-finite result")
)

// StatsError carries the failing operation, its taxonomy kind and, when the
// failure came from a collaborator, the underlying cause.
type StatsError struct {
	Op     string
	Kind   error
	Detail string
	Cause  error
}

func (e *StatsError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *StatsError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func newStatsError(op string, kind error, format string, args ...interface{}) error {
	return &StatsError{Op: op, Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
