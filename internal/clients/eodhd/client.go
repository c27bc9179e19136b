// Package eodhd fetches end-of-day prices from eodhd.com.
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultBaseURL = "https://eodhd.com/api"
	dateLayout     = "2006-01-02"
)

// EODPrice is one end-of-day bar. Prices keep their exact decimal form.
type EODPrice struct {
	Date          string          `json:"date"`
	Open          decimal.Decimal `json:"open"`
	High          decimal.Decimal `json:"high"`
	Low           decimal.Decimal `json:"low"`
	Close         decimal.Decimal `json:"close"`
	AdjustedClose decimal.Decimal `json:"adjusted_close"`
	Volume        int64           `json:"volume"`
}

// Day parses the bar date.
func (p EODPrice) Day() (time.Time, error) {
	return time.Parse(dateLayout, p.Date)
}

// Client is an EODHD API client
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a new EODHD client
func NewClient(baseURL, token string, timeout time.Duration, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With().Str("client", "eodhd").Logger(),
	}
}

// GetEOD fetches daily bars for symbol between from and to, inclusive.
func (c *Client) GetEOD(ctx context.Context, symbol string, from, to time.Time) ([]EODPrice, error) {
	if c.token == "" {
		return nil, fmt.Errorf("eodhd api token is not configured")
	}

	params := url.Values{}
	params.Set("fmt", "json")
	params.Set("api_token", c.token)
	params.Set("from", from.Format(dateLayout))
	params.Set("to", to.Format(dateLayout))
	reqURL := fmt.Sprintf("%s/eod/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch eod for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if len(body) > 200 {
			body = body[:200]
		}
		return nil, fmt.Errorf("eodhd returned status %d for %s: %s", resp.StatusCode, symbol, string(body))
	}

	var prices []EODPrice
	if err := json.Unmarshal(body, &prices); err != nil {
		return nil, fmt.Errorf("failed to parse eod response for %s: %w", symbol, err)
	}

	c.log.Debug().Str("symbol", symbol).Int("bars", len(prices)).Msg("Fetched EOD prices")
	return prices, nil
}
