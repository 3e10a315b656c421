package processors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/username/portview/src/models"
)

func TestGainLoss(t *testing.T) {
	assert.Equal(t, 200.0, GainLoss(1200, 1000))
	assert.Equal(t, -50.0, GainLoss(950, 1000))
	assert.Equal(t, 0.0, GainLoss(0, 0))
}

func TestGainLossPercent(t *testing.T) {
	tests := []struct {
		name      string
		current   float64
		principal float64
		want      float64
	}{
		{"twenty percent gain", 1200, 1000, 20.00},
		{"loss", 900, 1000, -10.00},
		{"zero principal never divides", 1200, 0, 0},
		{"negative principal treated as zero", 100, -500, 0},
		{"rounds to two decimals", 1000.0 / 3, 100, 233.33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GainLossPercent(tt.current, tt.principal))
		})
	}
}

func TestAccruedCoupon(t *testing.T) {
	// F=1000, r=10%, t=365 days -> full year's coupon of 100.
	assert.InDelta(t, 100.0, AccruedCoupon(1000, 10, 365), 1e-9)
	// 73-day tenor is a fifth of a year.
	assert.InDelta(t, 10.0, AccruedCoupon(500, 10, 73), 1e-9)
	assert.Equal(t, 0.0, AccruedCoupon(0, 10, 90))
}

func TestYieldToDate(t *testing.T) {
	assert.Equal(t, 5.0, YieldToDate(50, 1000))
	assert.Equal(t, 0.0, YieldToDate(50, 0))
}

func TestDaysToMaturity(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	d, ok := DaysToMaturity(nil, now)
	assert.False(t, ok)
	assert.Equal(t, 0, d)

	in30 := now.AddDate(0, 0, 30)
	d, ok = DaysToMaturity(&in30, now)
	assert.True(t, ok)
	assert.Equal(t, 30, d)

	// A partial day rounds up.
	inSixHours := now.Add(6 * time.Hour)
	d, ok = DaysToMaturity(&inSixHours, now)
	assert.True(t, ok)
	assert.Equal(t, 1, d)

	past := now.AddDate(0, 0, -3)
	d, ok = DaysToMaturity(&past, now)
	assert.True(t, ok)
	assert.Equal(t, -3, d)
}

func TestBadgeForMultiple(t *testing.T) {
	assert.Equal(t, BadgeStrong, BadgeForMultiple(2.0))
	assert.Equal(t, BadgeStrong, BadgeForMultiple(3.4))
	assert.Equal(t, BadgePositive, BadgeForMultiple(1.0))
	assert.Equal(t, BadgePositive, BadgeForMultiple(1.99))
	assert.Equal(t, BadgeNeutral, BadgeForMultiple(0.8))
	assert.Equal(t, BadgeNeutral, BadgeForMultiple(0))
}

func TestPrivateEquityDerivations(t *testing.T) {
	assert.Equal(t, 130.0, UnrealizedValue(100, 20, 50))
	assert.Equal(t, 40.0, PercentCalled(400, 1000))
	assert.Equal(t, 0.0, PercentCalled(400, 0))
}

func TestAverageUnitPrice(t *testing.T) {
	assert.Equal(t, 25.0, AverageUnitPrice(2500, 100))
	assert.Equal(t, 0.0, AverageUnitPrice(2500, 0))
}

func TestComputeEquityMetrics(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	eq := models.Equity{
		Position: models.Position{
			ID:              "EQ-1",
			Name:            "Acme Industries",
			PrincipalAmount: 1000,
			MarketValue:     1200,
			TradeDate:       now.AddDate(0, -2, 0),
		},
		Ticker:   "ACME",
		Quantity: 40,
	}

	m := NewMetricsProcessor().Compute(eq, now)
	assert.Equal(t, 200.0, m.GainLoss)
	assert.Equal(t, 20.00, m.GainLossPct)
	assert.Equal(t, 25.0, m.AveragePrice)
	assert.Equal(t, 30.0, m.CurrentPrice)
	assert.False(t, m.HasMaturity)
	assert.Equal(t, StatusUnknown, m.MaturityStatus)
}

func TestComputeBondMetricsMissingOptionalFields(t *testing.T) {
	now := time.Now()
	// No face, rate, tenor or maturity: everything derives to zero/unknown,
	// nothing panics.
	m := NewMetricsProcessor().Compute(models.Bond{}, now)
	assert.Equal(t, 0.0, m.AccruedCoupon)
	assert.Equal(t, 0.0, m.GainLossPct)
	assert.Equal(t, StatusUnknown, m.MaturityStatus)
}
