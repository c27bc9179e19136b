package settings

// Setting keys understood by the service.
const (
	KeyRiskFreeRate          = "risk_free_rate"
	KeyTradingPeriods        = "trading_periods_per_year"
	KeyOptimizerMaxResamples = "optimizer_max_resamples"
	KeyNarrativeProvider     = "narrative_provider"
	KeyNarrativeModel        = "narrative_model"
	KeyNarrativeEndpointURL  = "narrative_endpoint_url"
	KeyNarrativeAPIKey       = "narrative_api_key"
	KeyEODHDAPIToken         = "eodhd_api_token"
)

type kind int

const (
	kindString kind = iota
	kindFloat
	kindInt
)

type definition struct {
	kind        kind
	min, max    float64
	secret      bool
	options     []string
	description string
}

var definitions = map[string]definition{
	KeyRiskFreeRate:          {kind: kindFloat, min: -0.05, max: 0.5, description: "Annual risk-free rate used for the Sharpe ratio"},
	KeyTradingPeriods:        {kind: kindInt, min: 1, max: 366, description: "Return periods per year used for annualization"},
	KeyOptimizerMaxResamples: {kind: kindInt, min: 0, max: 100, description: "Redraws allowed when a sampled portfolio has zero volatility"},
	KeyNarrativeProvider:     {kind: kindString, options: []string{"gemini", "openai", "webhook", "none"}, description: "Narrative provider"},
	KeyNarrativeModel:        {kind: kindString, description: "Narrative model name"},
	KeyNarrativeEndpointURL:  {kind: kindString, description: "Narrative endpoint override"},
	KeyNarrativeAPIKey:       {kind: kindString, secret: true, description: "Narrative provider credential"},
	KeyEODHDAPIToken:         {kind: kindString, secret: true, description: "EODHD API token"},
}

// SettingUpdate is the request body of PUT /api/settings/{key}.
type SettingUpdate struct {
	Value interface{} `json:"value"`
}

// Setting is a single entry returned by GET /api/settings.
type Setting struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	Secret      bool   `json:"secret,omitempty"`
}

const maskedValue = "********"
