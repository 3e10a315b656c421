package collection

import (
	"github.com/shopspring/decimal"

	"github.com/username/portview/src/models"
)

// Summarize rolls one or many normalized collections into a consolidated
// summary. The sums run over decimals so the result is exact and invariant
// under permutation of the input; missing numeric fields contribute zero.
// Gain/loss and its percentage are derived from the totals here, never by
// summing per-instrument percentages.
func Summarize(collections ...[]models.Instrument) models.InvestmentSummary {
	principal := decimal.Zero
	current := decimal.Zero
	face := decimal.Zero
	count := 0

	for _, coll := range collections {
		for _, inst := range coll {
			principal = principal.Add(decimal.NewFromFloat(inst.Principal()))
			current = current.Add(decimal.NewFromFloat(inst.CurrentValue()))
			face = face.Add(decimal.NewFromFloat(inst.FaceValue()))
			count++
		}
	}

	gain := current.Sub(principal)
	pct := decimal.Zero
	if principal.IsPositive() {
		pct = gain.Div(principal).Mul(decimal.NewFromInt(100)).Round(2)
	}

	summary := models.InvestmentSummary{
		InstrumentCount: count,
	}
	summary.TotalPrincipal, _ = principal.Float64()
	summary.TotalCurrentValue, _ = current.Float64()
	summary.TotalFaceValue, _ = face.Float64()
	summary.GainLoss, _ = gain.Float64()
	summary.GainLossPct, _ = pct.Float64()
	return summary
}
