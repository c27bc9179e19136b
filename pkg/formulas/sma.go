package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// CalculateSMA returns the latest simple moving average over length periods,
// or nil when there are fewer than length closes.
func CalculateSMA(closes []float64, length int) *float64 {
	if length < 1 || len(closes) < length {
		return nil
	}

	sma := talib.Sma(closes, length)
	if len(sma) > 0 && !math.IsNaN(sma[len(sma)-1]) {
		result := sma[len(sma)-1]
		return &result
	}
	return nil
}
