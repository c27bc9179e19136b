package market

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/neurotradx/neurotradx/internal/clients/yahoo"
	"github.com/neurotradx/neurotradx/internal/insights"
	"github.com/neurotradx/neurotradx/internal/utils"
	"github.com/neurotradx/neurotradx/pkg/formulas"
)

const (
	// DefaultDays is the snapshot window when the caller gives none.
	DefaultDays = 56
	// MaxDays caps the snapshot window.
	MaxDays = 365

	rsiPeriod      = 14
	smaPeriod      = 20
	insightCloses  = 5
	maxConcurrency = 4
)

// QuoteSource provides recent bars and fundamentals.
type QuoteSource interface {
	GetRecentPrices(ctx context.Context, symbol string, days int) ([]yahoo.HistoricalPrice, error)
	GetSummary(ctx context.Context, symbol string) (*yahoo.Summary, error)
}

// SymbolNarrator comments on recent closes of a symbol.
type SymbolNarrator interface {
	SymbolInsight(ctx context.Context, symbol string, closes []float64) insights.Assessment
}

// Service builds market snapshots
type Service struct {
	quotes   QuoteSource
	narrator SymbolNarrator
	log      zerolog.Logger
}

// NewService creates a new market service. narrator may be nil.
func NewService(quotes QuoteSource, narrator SymbolNarrator, log zerolog.Logger) *Service {
	return &Service{
		quotes:   quotes,
		narrator: narrator,
		log:      log.With().Str("service", "market").Logger(),
	}
}

// Snapshots fetches every symbol concurrently. A failing symbol yields a
// snapshot with Error set; it never fails the batch.
func (s *Service) Snapshots(ctx context.Context, symbols []string, days int, exchange string) []Snapshot {
	defer utils.OperationTimer("market_snapshots", s.log)()

	if days <= 0 {
		days = DefaultDays
	}
	if days > MaxDays {
		days = MaxDays
	}

	out := make([]Snapshot, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)
	for i, symbol := range symbols {
		symbol = yahoo.ExchangeSymbol(symbol, exchange)
		g.Go(func() error {
			out[i] = s.snapshot(gctx, symbol, days)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (s *Service) snapshot(ctx context.Context, symbol string, days int) Snapshot {
	bars, err := s.quotes.GetRecentPrices(ctx, symbol, days)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to fetch prices")
		return Snapshot{Symbol: symbol, Error: fmt.Sprintf("failed to fetch data for %s", symbol)}
	}
	if len(bars) == 0 {
		return Snapshot{Symbol: symbol, Error: fmt.Sprintf("No data found for %s in the last %d days.", symbol, days)}
	}

	first, last := bars[0], bars[len(bars)-1]
	closes := make([]float64, len(bars))
	low, high := math.Inf(1), math.Inf(-1)
	for i, b := range bars {
		closes[i] = b.Close
		low = math.Min(low, b.Low)
		high = math.Max(high, b.High)
	}

	snap := Snapshot{
		Symbol:         symbol,
		LastPrice:      last.Close,
		Volume:         last.Volume,
		DayRange:       fmt.Sprintf("%.2f - %.2f", last.Low, last.High),
		EightWeekRange: fmt.Sprintf("%.2f - %.2f", low, high),
		MarketCap:      NotAvailable,
		Beta:           NotAvailable,
		RSI:            formulas.CalculateRSI(closes, rsiPeriod),
		SMA:            formulas.CalculateSMA(closes, smaPeriod),
	}
	if first.Close != 0 {
		snap.ChangePercent = (last.Close - first.Close) / first.Close * 100
	}

	if summary, err := s.quotes.GetSummary(ctx, symbol); err != nil {
		s.log.Debug().Err(err).Str("symbol", symbol).Msg("No fundamentals")
	} else {
		snap.MarketCap = FormatMarketCap(summary.MarketCap)
		snap.Beta = CategorizeBeta(summary.Beta)
	}

	if s.narrator != nil {
		tail := closes
		if len(tail) > insightCloses {
			tail = tail[len(tail)-insightCloses:]
		}
		a := s.narrator.SymbolInsight(ctx, symbol, tail)
		snap.Insight = &a
	}

	return snap
}
