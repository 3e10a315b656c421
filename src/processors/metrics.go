package processors

import (
	"math"
	"time"

	"github.com/username/portview/src/models"
	"github.com/username/portview/src/utils"
)

// MultipleBadge labels a pre-computed private-equity multiple (TVPI or DPI).
type MultipleBadge string

const (
	BadgeStrong   MultipleBadge = "strong"
	BadgePositive MultipleBadge = "positive"
	BadgeNeutral  MultipleBadge = "neutral"
)

// InstrumentMetrics is the scalar metric set derived from one instrument.
// Fields that do not apply to the variant stay at their zero value; absent
// inputs are treated as zero rather than faulting.
type InstrumentMetrics struct {
	GainLoss        float64        `json:"gainLoss"`
	GainLossPct     float64        `json:"gainLossPct"`
	DaysToMaturity  int            `json:"daysToMaturity,omitempty"`
	HasMaturity     bool           `json:"hasMaturity"`
	MaturityStatus  MaturityStatus `json:"maturityStatus"`
	AccruedCoupon   float64        `json:"accruedCoupon,omitempty"`
	YieldToDatePct  float64        `json:"yieldToDatePct,omitempty"`
	TVPIBadge       MultipleBadge  `json:"tvpiBadge,omitempty"`
	DPIBadge        MultipleBadge  `json:"dpiBadge,omitempty"`
	UnrealizedValue float64        `json:"unrealizedValue,omitempty"`
	PctCalled       float64        `json:"pctCalled,omitempty"`
	AveragePrice    float64        `json:"averagePrice,omitempty"`
	CurrentPrice    float64        `json:"currentPrice,omitempty"`
}

// GainLoss is current value minus principal.
func GainLoss(currentValue, principal float64) float64 {
	return currentValue - principal
}

// GainLossPercent is the gain/loss relative to principal, in percent.
// A non-positive principal yields 0; never divides by zero.
func GainLossPercent(currentValue, principal float64) float64 {
	if principal <= 0 {
		return 0
	}
	return utils.RoundFloat((currentValue-principal)/principal*100, 2)
}

// AccruedCoupon estimates the coupon accrued over a bond's tenor:
// face x (rate/100) x (tenorDays/365).
func AccruedCoupon(face, ratePct float64, tenorDays int) float64 {
	return face * (ratePct / 100) * (float64(tenorDays) / 365)
}

// YieldToDate is accrued interest relative to the invested amount, in
// percent. Zero invested amount yields 0.
func YieldToDate(interestAccrued, invested float64) float64 {
	if invested == 0 {
		return 0
	}
	return utils.RoundFloat(interestAccrued/invested*100, 2)
}

// DaysToMaturity is ceil((maturity - now) / 1 day). A nil maturity reports
// ok=false: "not applicable", never an error.
func DaysToMaturity(maturity *time.Time, now time.Time) (int, bool) {
	if maturity == nil {
		return 0, false
	}
	return int(math.Ceil(maturity.Sub(now).Hours() / 24)), true
}

// BadgeForMultiple classifies a pre-computed TVPI/DPI multiple by threshold.
func BadgeForMultiple(multiple float64) MultipleBadge {
	switch {
	case multiple >= 2.0:
		return BadgeStrong
	case multiple >= 1.0:
		return BadgePositive
	default:
		return BadgeNeutral
	}
}

// UnrealizedValue for a private-equity commitment: NAV - called + returned.
func UnrealizedValue(nav, capitalCalled, capitalReturned float64) float64 {
	return nav - capitalCalled + capitalReturned
}

// PercentCalled is capital called relative to the commitment, in percent.
// Zero commitment yields 0.
func PercentCalled(capitalCalled, commitment float64) float64 {
	if commitment == 0 {
		return 0
	}
	return utils.RoundFloat(capitalCalled/commitment*100, 2)
}

// AverageUnitPrice divides a total by a quantity, yielding 0 for zero
// quantity. Used for both average cost and current price per share.
func AverageUnitPrice(total, quantity float64) float64 {
	if quantity == 0 {
		return 0
	}
	return total / quantity
}

// MetricsProcessor derives the per-instrument metric set. It never mutates
// its input.
type MetricsProcessor struct{}

func NewMetricsProcessor() *MetricsProcessor { return &MetricsProcessor{} }

// Compute assembles the metric set for one instrument as of now.
func (p *MetricsProcessor) Compute(inst models.Instrument, now time.Time) InstrumentMetrics {
	m := InstrumentMetrics{
		GainLoss:    GainLoss(inst.CurrentValue(), inst.Principal()),
		GainLossPct: GainLossPercent(inst.CurrentValue(), inst.Principal()),
	}

	if d, ok := DaysToMaturity(inst.Maturity(), now); ok {
		m.DaysToMaturity = d
		m.HasMaturity = true
	}
	m.MaturityStatus = Classify(inst.Maturity(), now)

	switch v := inst.(type) {
	case models.Bond:
		m.AccruedCoupon = AccruedCoupon(v.Face, v.CouponRatePct, v.TenorDays)
	case models.CommercialPaper:
		m.YieldToDatePct = YieldToDate(v.InterestAccrued, v.PrincipalAmount)
	case models.MoneyMarketNote:
		m.YieldToDatePct = YieldToDate(v.InterestAccrued, v.PrincipalAmount)
	case models.PrivateEquityCommitment:
		m.TVPIBadge = BadgeForMultiple(v.TVPI)
		m.DPIBadge = BadgeForMultiple(v.DPI)
		m.UnrealizedValue = UnrealizedValue(v.NAV, v.CapitalCalled, v.CapitalReturned)
		m.PctCalled = PercentCalled(v.CapitalCalled, v.Commitment)
	case models.Equity:
		m.AveragePrice = AverageUnitPrice(v.PrincipalAmount, v.Quantity)
		m.CurrentPrice = AverageUnitPrice(v.MarketValue, v.Quantity)
	}

	return m
}
