// Package market builds per-symbol market snapshots and a portfolio-level
// trend summary.
package market

import "fmt"

// NotAvailable marks a metric the data source did not provide.
const NotAvailable = "N/A"

// CategorizeBeta buckets a beta into a risk label.
func CategorizeBeta(beta *float64) string {
	switch {
	case beta == nil:
		return NotAvailable
	case *beta < 0.8:
		return "Moderately Low"
	case *beta <= 1.2:
		return "Moderate"
	default:
		return "Moderately High"
	}
}

// FormatMarketCap renders a capitalisation in trillions at or above 1e12,
// otherwise in billions.
func FormatMarketCap(marketCap *float64) string {
	if marketCap == nil {
		return NotAvailable
	}
	if *marketCap >= 1e12 {
		return fmt.Sprintf("$%.2fT", *marketCap/1e12)
	}
	return fmt.Sprintf("$%.2fB", *marketCap/1e9)
}
