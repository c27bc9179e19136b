package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartFixture = `{
  "chart": {
    "result": [{
      "timestamp": [1704153600, 1704240000, 1704326400],
      "indicators": {
        "quote": [{
          "open":   [99.0, null, 110.0],
          "high":   [101.0, null, 122.0],
          "low":    [98.0, null, 109.0],
          "close":  [100.0, null, 121.0],
          "volume": [1000, null, 3000]
        }],
        "adjclose": [{"adjclose": [99.5, null, 120.5]}]
      }
    }],
    "error": null
  }
}`

func newTestClient(serverURL string) *Client {
	client := NewClient("", time.Second, zerolog.Nop())
	client.baseURL = serverURL
	return client
}

func TestGetHistoricalPrices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "1704067200", r.URL.Query().Get("period1"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(chartFixture))
	}))
	defer server.Close()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	prices, err := newTestClient(server.URL).GetHistoricalPrices(context.Background(), "AAPL", start, start.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, prices, 2, "null bars are skipped")

	assert.Equal(t, time.Unix(1704153600, 0).UTC(), prices[0].Date)
	assert.Equal(t, 100.0, prices[0].Close)
	assert.Equal(t, 99.5, prices[0].AdjClose)
	assert.Equal(t, int64(1000), prices[0].Volume)
	assert.Equal(t, 120.5, prices[1].AdjClose)
	assert.Equal(t, 122.0, prices[1].High)
}

func TestGetRecentPrices_UsesRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "56d", r.URL.Query().Get("range"))
		_, _ = w.Write([]byte(chartFixture))
	}))
	defer server.Close()

	prices, err := newTestClient(server.URL).GetRecentPrices(context.Background(), "MSFT", 56)
	require.NoError(t, err)
	assert.Len(t, prices, 2)
}

func TestGetHistoricalPrices_AdjCloseFallsBackToClose(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[{"timestamp":[1704153600],"indicators":{"quote":[{"close":[42.0]}]}}],"error":null}}`))
	}))
	defer server.Close()

	prices, err := newTestClient(server.URL).GetHistoricalPrices(context.Background(), "X", time.Now().AddDate(0, 0, -1), time.Now())
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, 42.0, prices[0].AdjClose)
}

func TestGetHistoricalPrices_ChartError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetHistoricalPrices(context.Background(), "NOPE", time.Now().AddDate(0, 0, -7), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delisted")
}

func TestGetHistoricalPrices_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetRecentPrices(context.Background(), "AAPL", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestGetSummary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v10/finance/quoteSummary/AAPL", r.URL.Path)
		assert.Equal(t, "summaryDetail", r.URL.Query().Get("modules"))
		_, _ = w.Write([]byte(`{"quoteSummary":{"result":[{"summaryDetail":{"marketCap":{"raw":2.9e12,"fmt":"2.9T"},"beta":{"raw":1.29}}}],"error":null}}`))
	}))
	defer server.Close()

	summary, err := newTestClient(server.URL).GetSummary(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, summary.MarketCap)
	require.NotNil(t, summary.Beta)
	assert.Equal(t, 2.9e12, *summary.MarketCap)
	assert.Equal(t, 1.29, *summary.Beta)
}

func TestGetSummary_MissingFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"quoteSummary":{"result":[{"summaryDetail":{}}],"error":null}}`))
	}))
	defer server.Close()

	summary, err := newTestClient(server.URL).GetSummary(context.Background(), "BTC-USD")
	require.NoError(t, err)
	assert.Nil(t, summary.MarketCap)
	assert.Nil(t, summary.Beta)
}

func TestExchangeSymbol(t *testing.T) {
	assert.Equal(t, "RELIANCE.NS", ExchangeSymbol("reliance", "NSE"))
	assert.Equal(t, "TCS.BO", ExchangeSymbol("TCS", "bse"))
	assert.Equal(t, "AAPL", ExchangeSymbol("AAPL", ""))
	assert.Equal(t, "INFY.NS", ExchangeSymbol("INFY.NS", "BSE"))
}
