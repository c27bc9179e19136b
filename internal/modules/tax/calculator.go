// Package tax estimates capital-gains tax on a submitted portfolio.
package tax

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ShortTermHoldingDays is the longest holding period taxed as short-term.
const ShortTermHoldingDays = 365

var (
	shortTermRate = decimal.RequireFromString("0.15")
	longTermRate  = decimal.RequireFromString("0.10")
)

var taxableTypes = map[string]bool{
	"stock":       true,
	"mutual_fund": true,
	"crypto":      true,
	"gold":        true,
}

// Asset is one holding as submitted by the client.
type Asset struct {
	Name          string          `json:"name,omitempty"`
	Type          string          `json:"type"`
	PurchaseDate  string          `json:"purchase_date"` // YYYY-MM-DD
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// Summary totals gains and tax by holding period.
type Summary struct {
	ShortTermGains decimal.Decimal `json:"short_term_gains"`
	LongTermGains  decimal.Decimal `json:"long_term_gains"`
	STTTax         decimal.Decimal `json:"stt_tax"`
	LTCGTax        decimal.Decimal `json:"ltcg_tax"`
	TotalTax       decimal.Decimal `json:"total_tax"`
	Counted        int             `json:"counted"`
	Skipped        int             `json:"skipped"`
}

// Calculate classifies each asset by holding period at now and applies the
// short- or long-term rate to its gain. Losses reduce the totals. Records
// missing a date, price or quantity, or with an unparseable date, are skipped;
// non-taxable asset types are ignored.
func Calculate(assets []Asset, now time.Time) Summary {
	var s Summary

	for _, a := range assets {
		if a.PurchaseDate == "" || a.PurchasePrice.IsZero() || a.CurrentPrice.IsZero() || a.Quantity.IsZero() {
			s.Skipped++
			continue
		}
		purchased, err := time.ParseInLocation(time.DateOnly, a.PurchaseDate, now.Location())
		if err != nil {
			s.Skipped++
			continue
		}
		if !taxableTypes[strings.ToLower(strings.TrimSpace(a.Type))] {
			continue
		}

		gain := a.CurrentPrice.Sub(a.PurchasePrice).Mul(a.Quantity)
		if HoldingDays(purchased, now) <= ShortTermHoldingDays {
			s.ShortTermGains = s.ShortTermGains.Add(gain)
			s.STTTax = s.STTTax.Add(gain.Mul(shortTermRate))
		} else {
			s.LongTermGains = s.LongTermGains.Add(gain)
			s.LTCGTax = s.LTCGTax.Add(gain.Mul(longTermRate))
		}
		s.Counted++
	}

	s.TotalTax = s.STTTax.Add(s.LTCGTax)
	return s
}

// HoldingDays returns the number of whole days between purchase and now.
func HoldingDays(purchased, now time.Time) int {
	return int(now.Sub(purchased).Hours() / 24)
}
