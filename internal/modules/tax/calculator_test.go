package tax

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var now = time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

func TestCalculate_ShortAndLongTerm(t *testing.T) {
	assets := []Asset{
		{Type: "stock", PurchaseDate: "2025-01-15", PurchasePrice: d("100"), CurrentPrice: d("150"), Quantity: d("10")},
		{Type: "Mutual_Fund", PurchaseDate: "2020-03-01", PurchasePrice: d("20.5"), CurrentPrice: d("30.5"), Quantity: d("100")},
		{Type: "crypto", PurchaseDate: "2024-12-01", PurchasePrice: d("0.1"), CurrentPrice: d("0.3"), Quantity: d("3")},
	}

	s := Calculate(assets, now)

	assert.True(t, s.ShortTermGains.Equal(d("500.6")), s.ShortTermGains.String())
	assert.True(t, s.STTTax.Equal(d("75.09")), s.STTTax.String())
	assert.True(t, s.LongTermGains.Equal(d("1000")), s.LongTermGains.String())
	assert.True(t, s.LTCGTax.Equal(d("100")), s.LTCGTax.String())
	assert.True(t, s.TotalTax.Equal(d("175.09")), s.TotalTax.String())
	assert.Equal(t, 3, s.Counted)
	assert.Equal(t, 0, s.Skipped)
}

func TestCalculate_BoundaryIsShortTerm(t *testing.T) {
	purchased := now.AddDate(0, 0, -365).Format(time.DateOnly)
	s := Calculate([]Asset{
		{Type: "gold", PurchaseDate: purchased, PurchasePrice: d("10"), CurrentPrice: d("20"), Quantity: d("1")},
	}, now)

	assert.True(t, s.ShortTermGains.Equal(d("10")))
	assert.True(t, s.LongTermGains.IsZero())

	purchased = now.AddDate(0, 0, -367).Format(time.DateOnly)
	s = Calculate([]Asset{
		{Type: "gold", PurchaseDate: purchased, PurchasePrice: d("10"), CurrentPrice: d("20"), Quantity: d("1")},
	}, now)
	assert.True(t, s.LongTermGains.Equal(d("10")))
}

func TestCalculate_LossesReduceTax(t *testing.T) {
	s := Calculate([]Asset{
		{Type: "stock", PurchaseDate: "2025-05-01", PurchasePrice: d("50"), CurrentPrice: d("40"), Quantity: d("2")},
	}, now)

	assert.True(t, s.ShortTermGains.Equal(d("-20")))
	assert.True(t, s.STTTax.Equal(d("-3")))
}

func TestCalculate_SkipsIncompleteAndIgnoresUnknownTypes(t *testing.T) {
	s := Calculate([]Asset{
		{Type: "stock", PurchasePrice: d("1"), CurrentPrice: d("2"), Quantity: d("1")},
		{Type: "stock", PurchaseDate: "2025-01-01", CurrentPrice: d("2"), Quantity: d("1")},
		{Type: "stock", PurchaseDate: "01/01/2025", PurchasePrice: d("1"), CurrentPrice: d("2"), Quantity: d("1")},
		{Type: "real_estate", PurchaseDate: "2025-01-01", PurchasePrice: d("1"), CurrentPrice: d("2"), Quantity: d("1")},
	}, now)

	assert.Equal(t, 3, s.Skipped)
	assert.Equal(t, 0, s.Counted)
	assert.True(t, s.TotalTax.IsZero())
}

func TestHoldingDays(t *testing.T) {
	purchased := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 29, HoldingDays(purchased, now))
	assert.Equal(t, 0, HoldingDays(now, now))
}
