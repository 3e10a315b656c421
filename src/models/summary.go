package models

// InvestmentSummary is the consolidated roll-up over one or more instrument
// collections. GainLoss and GainLossPct are derived at the aggregate level
// from the totals, never by summing per-instrument percentages.
type InvestmentSummary struct {
	TotalPrincipal    float64 `json:"totalPrincipal"`
	TotalCurrentValue float64 `json:"totalCurrentValue"`
	TotalFaceValue    float64 `json:"totalFaceValue"`
	InstrumentCount   int     `json:"instrumentCount"`
	GainLoss          float64 `json:"gainLoss"`
	GainLossPct       float64 `json:"gainLossPct"`
}
