package market

import "github.com/neurotradx/neurotradx/internal/insights"

// Snapshot summarises one symbol over the requested window. When Error is set
// the remaining fields are zero.
type Snapshot struct {
	Symbol         string               `json:"symbol"`
	LastPrice      float64              `json:"last_price"`
	ChangePercent  float64              `json:"change_percentage"`
	Volume         int64                `json:"volume"`
	DayRange       string               `json:"day_range"`
	EightWeekRange string               `json:"eight_week_range"`
	MarketCap      string               `json:"market_cap"`
	Beta           string               `json:"beta"`
	RSI            *float64             `json:"rsi_14,omitempty"`
	SMA            *float64             `json:"sma_20,omitempty"`
	Insight        *insights.Assessment `json:"ai_insight,omitempty"`
	Error          string               `json:"error,omitempty"`
}

// Recommendation is the portfolio-level action suggested by trend counts.
type Recommendation string

const (
	RecommendInvest Recommendation = "Consider investing in the portfolio as most stocks are trending upward."
	RecommendAvoid  Recommendation = "Consider selling or avoiding the portfolio as most stocks are trending downward."
	RecommendHold   Recommendation = "Consider holding the portfolio as trends are mixed."
)

// Performer is a symbol with its change over the window.
type Performer struct {
	Symbol        string  `json:"symbol"`
	ChangePercent float64 `json:"change_percentage"`
}

// Summary aggregates snapshots that have data.
type Summary struct {
	TotalAnalyzed        int            `json:"total_analyzed"`
	UpwardTrends         int            `json:"upward_trends"`
	UpwardPercent        float64        `json:"upward_percentage"`
	DownwardTrends       int            `json:"downward_trends"`
	DownwardPercent      float64        `json:"downward_percentage"`
	BestPerformer        Performer      `json:"best_performer"`
	WorstPerformer       Performer      `json:"worst_performer"`
	AverageChangePercent float64        `json:"average_change_percentage"`
	Recommendation       Recommendation `json:"recommendation"`
}
