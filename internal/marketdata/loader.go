// Package marketdata loads aligned price histories for portfolio analysis.
package marketdata

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/neurotradx/neurotradx/internal/modules/optimization"
)

const maxConcurrentFetches = 4

// Loader fetches closes for several symbols and aligns them on common dates.
type Loader struct {
	fetcher HistoryFetcher
	log     zerolog.Logger
}

// NewLoader creates a new loader
func NewLoader(fetcher HistoryFetcher, log zerolog.Logger) *Loader {
	return &Loader{
		fetcher: fetcher,
		log:     log.With().Str("component", "price_loader").Logger(),
	}
}

// LoadPrices returns closes for every symbol on the dates all of them traded,
// in ascending date order. A symbol with no data yields ErrInsufficientData.
func (l *Loader) LoadPrices(ctx context.Context, symbols []string, start, end time.Time) (*optimization.PriceSeries, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: no symbols requested", optimization.ErrInsufficientData)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("end date %s is not after start date %s",
			end.Format(time.DateOnly), start.Format(time.DateOnly))
	}

	histories := make([]map[time.Time]float64, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, symbol := range symbols {
		g.Go(func() error {
			closes, err := l.fetcher.FetchCloses(gctx, symbol, start, end)
			if err != nil {
				return fmt.Errorf("failed to load prices for %s: %w", symbol, err)
			}
			byDay := make(map[time.Time]float64, len(closes))
			for _, c := range closes {
				// Later bars for the same day replace earlier ones
				byDay[day(c.Date)] = c.Price
			}
			if len(byDay) == 0 {
				return fmt.Errorf("%w: no prices for %s", optimization.ErrInsufficientData, symbol)
			}
			histories[i] = byDay
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dates := commonDates(histories)
	series := optimization.NewPriceSeries(symbols)
	series.Dates = dates
	for i, symbol := range symbols {
		col := make([]float64, len(dates))
		for j, d := range dates {
			col[j] = histories[i][d]
		}
		series.Prices[symbol] = col
	}

	l.log.Debug().
		Strs("symbols", symbols).
		Int("rows", len(dates)).
		Msg("Loaded aligned price history")

	if len(dates) == 0 {
		return nil, fmt.Errorf("%w: no common trading dates", optimization.ErrInsufficientData)
	}
	return series, nil
}

func commonDates(histories []map[time.Time]float64) []time.Time {
	if len(histories) == 0 {
		return nil
	}
	var dates []time.Time
	for d := range histories[0] {
		shared := true
		for _, h := range histories[1:] {
			if _, ok := h[d]; !ok {
				shared = false
				break
			}
		}
		if shared {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
