// Package yahoo is a Yahoo Finance chart and quote-summary client.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com"
	userAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
)

// Client is a Yahoo Finance API client
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a new Yahoo Finance client. An empty baseURL uses the public API.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log.With().Str("client", "yahoo").Logger(),
	}
}

// ExchangeSymbol appends the Yahoo suffix for Indian exchanges: NSE -> .NS, BSE -> .BO.
// Other exchanges, and symbols that already carry a suffix, are returned unchanged.
func ExchangeSymbol(symbol, exchange string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if strings.Contains(symbol, ".") {
		return symbol
	}
	switch strings.ToUpper(exchange) {
	case "NSE":
		return symbol + ".NS"
	case "BSE":
		return symbol + ".BO"
	}
	return symbol
}

// GetHistoricalPrices fetches daily bars in [start, end).
func (c *Client) GetHistoricalPrices(ctx context.Context, symbol string, start, end time.Time) ([]HistoricalPrice, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(end.Unix(), 10))
	params.Set("events", "div,splits")
	return c.chart(ctx, symbol, params)
}

// GetRecentPrices fetches the last days calendar days of daily bars.
func (c *Client) GetRecentPrices(ctx context.Context, symbol string, days int) ([]HistoricalPrice, error) {
	if days <= 0 {
		days = 30
	}
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", fmt.Sprintf("%dd", days))
	return c.chart(ctx, symbol, params)
}

func (c *Client) chart(ctx context.Context, symbol string, params url.Values) ([]HistoricalPrice, error) {
	reqURL := c.baseURL + "/v8/finance/chart/" + url.PathEscape(symbol) + "?" + params.Encode()

	var result chartResponse
	if err := c.getJSON(ctx, reqURL, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch chart for %s: %w", symbol, err)
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart error for %s: %s", symbol, result.Chart.Error.Description)
	}
	if len(result.Chart.Result) == 0 {
		return nil, nil
	}

	r := result.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return nil, nil
	}
	q := r.Indicators.Quote[0]

	var adj []*float64
	if len(r.Indicators.AdjClose) > 0 {
		adj = r.Indicators.AdjClose[0].AdjClose
	}

	prices := make([]HistoricalPrice, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		closePrice := at(q.Close, i)
		if closePrice == nil {
			// Exchange holiday or missing bar
			continue
		}

		p := HistoricalPrice{
			Date:     time.Unix(ts, 0).UTC(),
			Close:    *closePrice,
			AdjClose: *closePrice,
		}
		if v := at(q.Open, i); v != nil {
			p.Open = *v
		}
		if v := at(q.High, i); v != nil {
			p.High = *v
		}
		if v := at(q.Low, i); v != nil {
			p.Low = *v
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			p.Volume = *q.Volume[i]
		}
		if v := at(adj, i); v != nil {
			p.AdjClose = *v
		}
		prices = append(prices, p)
	}

	c.log.Debug().Str("symbol", symbol).Int("bars", len(prices)).Msg("Fetched chart")
	return prices, nil
}

// GetSummary fetches market capitalisation and beta.
func (c *Client) GetSummary(ctx context.Context, symbol string) (*Summary, error) {
	reqURL := c.baseURL + "/v10/finance/quoteSummary/" + url.PathEscape(symbol) + "?modules=summaryDetail"

	var result summaryResponse
	if err := c.getJSON(ctx, reqURL, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch summary for %s: %w", symbol, err)
	}
	if result.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yahoo summary error for %s: %s", symbol, result.QuoteSummary.Error.Description)
	}
	if len(result.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no summary returned for %s", symbol)
	}

	d := result.QuoteSummary.Result[0].SummaryDetail
	return &Summary{
		Symbol:    symbol,
		MarketCap: d.MarketCap.Raw,
		Beta:      d.Beta.Raw,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if len(body) > 200 {
			body = body[:200]
		}
		return fmt.Errorf("yahoo returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func at(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}
