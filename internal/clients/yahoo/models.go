package yahoo

import "time"

// HistoricalPrice represents a single daily OHLCV bar
type HistoricalPrice struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   int64     `json:"volume"`
	AdjClose float64   `json:"adj_close"`
}

// Summary holds the fundamentals used by market insights. Nil means unknown.
type Summary struct {
	Symbol    string   `json:"symbol"`
	MarketCap *float64 `json:"market_cap,omitempty"`
	Beta      *float64 `json:"beta,omitempty"`
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type rawValue struct {
	Raw *float64 `json:"raw"`
}

type summaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail struct {
				MarketCap rawValue `json:"marketCap"`
				Beta      rawValue `json:"beta"`
			} `json:"summaryDetail"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}
