package insights

import (
	"context"
	"encoding/json"
	"fmt"
)

const analystSystemPrompt = "You are a cautious portfolio risk analyst. " +
	"Answer in plain prose, at most 150 words, without recommending specific trades."

// RiskPayload is the scored portfolio sent for a risk assessment.
type RiskPayload struct {
	Tickers []string  `json:"tickers"`
	Weights []float64 `json:"weights"`
	Returns []float64 `json:"returns"` // mean periodic return per ticker
	Risk    float64   `json:"risk"`    // annual volatility
}

// Preferences are a user's stated goals, used for an investment strategy.
type Preferences struct {
	FinancialGoal        string `json:"financial_goal"`
	RiskTolerance        string `json:"risk_tolerance"`
	InvestmentPreference string `json:"investment_preference"`
}

// SymbolPayload carries recent closes of one symbol.
type SymbolPayload struct {
	Symbol string    `json:"symbol"`
	Prices []float64 `json:"prices"`
}

// AssessRisk asks the provider to comment on a scored portfolio.
func (a *Adapter) AssessRisk(ctx context.Context, p RiskPayload) Assessment {
	return a.generate(ctx, request{
		Kind:    "risk_assessment",
		System:  analystSystemPrompt,
		Prompt:  "Assess the risk of this portfolio. Weights align with tickers, returns are mean daily returns and risk is annualized volatility.\n" + mustJSON(p),
		Payload: p,
	})
}

// Strategy asks the provider for a personalised investment strategy.
func (a *Adapter) Strategy(ctx context.Context, p Preferences) Assessment {
	return a.generate(ctx, request{
		Kind:    "investment_strategy",
		System:  "You are a financial planning assistant. Give a short, general investment strategy in plain prose.",
		Prompt:  "Suggest an investment strategy for an investor with these preferences:\n" + mustJSON(p),
		Payload: p,
	})
}

// SymbolInsight asks the provider to comment on the latest prices of a symbol.
func (a *Adapter) SymbolInsight(ctx context.Context, symbol string, closes []float64) Assessment {
	p := SymbolPayload{Symbol: symbol, Prices: closes}
	return a.generate(ctx, request{
		Kind:    "symbol_insight",
		System:  analystSystemPrompt,
		Prompt:  fmt.Sprintf("Give a one-paragraph insight on %s given its most recent closing prices:\n%s", symbol, mustJSON(p)),
		Payload: p,
	})
}

func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}
