package marketdata

import (
	"context"
	"time"

	"github.com/neurotradx/neurotradx/internal/clients/eodhd"
	"github.com/neurotradx/neurotradx/internal/clients/yahoo"
)

// Close is one daily closing price.
type Close struct {
	Date  time.Time
	Price float64
}

// HistoryFetcher returns daily closes for a single symbol.
type HistoryFetcher interface {
	FetchCloses(ctx context.Context, symbol string, start, end time.Time) ([]Close, error)
}

// YahooFetcher reads adjusted closes from Yahoo Finance.
type YahooFetcher struct {
	client *yahoo.Client
}

// NewYahooFetcher wraps a Yahoo client
func NewYahooFetcher(client *yahoo.Client) *YahooFetcher {
	return &YahooFetcher{client: client}
}

// FetchCloses implements HistoryFetcher
func (f *YahooFetcher) FetchCloses(ctx context.Context, symbol string, start, end time.Time) ([]Close, error) {
	bars, err := f.client.GetHistoricalPrices(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	out := make([]Close, 0, len(bars))
	for _, b := range bars {
		out = append(out, Close{Date: b.Date, Price: b.AdjClose})
	}
	return out, nil
}

// EODHDFetcher reads adjusted closes from EODHD.
type EODHDFetcher struct {
	client *eodhd.Client
}

// NewEODHDFetcher wraps an EODHD client
func NewEODHDFetcher(client *eodhd.Client) *EODHDFetcher {
	return &EODHDFetcher{client: client}
}

// FetchCloses implements HistoryFetcher
func (f *EODHDFetcher) FetchCloses(ctx context.Context, symbol string, start, end time.Time) ([]Close, error) {
	bars, err := f.client.GetEOD(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	out := make([]Close, 0, len(bars))
	for _, b := range bars {
		day, err := b.Day()
		if err != nil {
			continue
		}
		price := b.AdjustedClose
		if price.IsZero() {
			price = b.Close
		}
		out = append(out, Close{Date: day, Price: price.InexactFloat64()})
	}
	return out, nil
}
