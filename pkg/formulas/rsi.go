// Package formulas wraps technical-indicator calculations.
package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// CalculateRSI returns the latest Relative Strength Index over length periods,
// or nil when there are fewer than length+1 closes.
//
//	RSI = 100 - 100 / (1 + average gain / average loss)
func CalculateRSI(closes []float64, length int) *float64 {
	if length < 2 || len(closes) < length+1 {
		return nil
	}

	rsi := talib.Rsi(closes, length)
	if len(rsi) > 0 && !math.IsNaN(rsi[len(rsi)-1]) {
		result := rsi[len(rsi)-1]
		return &result
	}
	return nil
}
