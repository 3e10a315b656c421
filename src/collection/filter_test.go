package collection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/username/portview/src/models"
)

func bond(name, ref string, principal, value float64, traded time.Time, maturity *time.Time) models.Instrument {
	return models.Bond{Position: models.Position{
		Name:            name,
		Reference:       ref,
		PrincipalAmount: principal,
		MarketValue:     value,
		TradeDate:       traded,
		MaturityDate:    maturity,
	}}
}

func TestTextSearchCaseInsensitive(t *testing.T) {
	now := time.Now()
	items := []models.Instrument{
		bond("Federal Bond 2031", "FGN-2031", 1000, 1100, now, nil),
		bond("State Infrastructure Note", "LAG-009", 2000, 1900, now, nil),
	}

	got := Apply(items, InstrumentPredicates(models.FilterCriteria{Search: "federal"}, now)...)
	assert.Len(t, got, 1)
	assert.Equal(t, "Federal Bond 2031", got[0].DisplayName())

	// Reference codes are searched too.
	got = Apply(items, InstrumentPredicates(models.FilterCriteria{Search: "lag-"}, now)...)
	assert.Len(t, got, 1)

	// Empty term matches everything.
	got = Apply(items, InstrumentPredicates(models.FilterCriteria{}, now)...)
	assert.Len(t, got, 2)
}

func TestNumericRangeLenientBounds(t *testing.T) {
	now := time.Now()
	items := []models.Instrument{
		bond("A", "A", 100, 100, now, nil),
		bond("B", "B", 100, 550, now, nil),
		bond("C", "C", 100, 2000, now, nil),
	}

	got := Apply(items, InstrumentPredicates(models.FilterCriteria{MinAmount: "500"}, now)...)
	assert.Len(t, got, 2)

	got = Apply(items, InstrumentPredicates(models.FilterCriteria{MinAmount: "500", MaxAmount: "1000"}, now)...)
	assert.Len(t, got, 1)

	// An unparseable bound behaves as unbounded: nothing is excluded by it.
	got = Apply(items, InstrumentPredicates(models.FilterCriteria{MinAmount: "abc"}, now)...)
	assert.Len(t, got, 3)

	// Thousands separators are tolerated.
	got = Apply(items, InstrumentPredicates(models.FilterCriteria{MaxAmount: "1,000"}, now)...)
	assert.Len(t, got, 2)
}

func TestCategorySentinel(t *testing.T) {
	now := time.Now()
	active := models.RealEstatePosition{Position: models.Position{Name: "Plot 4", Status: "Active"}}
	sold := models.RealEstatePosition{Position: models.Position{Name: "Plot 9", Status: "Sold"}}
	items := []models.Instrument{active, sold}

	got := Apply(items, InstrumentPredicates(models.FilterCriteria{Category: "sold"}, now)...)
	assert.Len(t, got, 1)
	assert.Equal(t, "Plot 9", got[0].DisplayName())

	// "all" disables the criterion.
	got = Apply(items, InstrumentPredicates(models.FilterCriteria{Category: "all"}, now)...)
	assert.Len(t, got, 2)
}

func TestDateWindowsAreDistinctShapes(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	in20 := now.AddDate(0, 0, 20)
	in200 := now.AddDate(0, 0, 200)

	recent := bond("recent buy", "R", 100, 100, now.AddDate(0, 0, -10), &in200)
	old := bond("old buy", "O", 100, 100, now.AddDate(0, -6, 0), &in20)

	items := []models.Instrument{recent, old}

	// "Purchased within the last 30 days" filters the past.
	got := Apply(items, InstrumentPredicates(models.FilterCriteria{PurchasedIn: models.Window30Days}, now)...)
	assert.Len(t, got, 1)
	assert.Equal(t, "recent buy", got[0].DisplayName())

	// "Matures within 30 days" filters the future: the opposite record.
	got = Apply(items, InstrumentPredicates(models.FilterCriteria{MaturesWithin: models.Window30Days}, now)...)
	assert.Len(t, got, 1)
	assert.Equal(t, "old buy", got[0].DisplayName())

	// No maturity date never matches a matures-within query.
	noMat := bond("perpetual", "P", 100, 100, now, nil)
	got = Apply([]models.Instrument{noMat}, InstrumentPredicates(models.FilterCriteria{MaturesWithin: models.Window1Year}, now)...)
	assert.Empty(t, got)
}

func TestFilterCompositionIsAssociative(t *testing.T) {
	now := time.Now()
	items := make([]models.Instrument, 0, 40)
	for i := 0; i < 40; i++ {
		name := "Bond"
		if i%2 == 0 {
			name = "Note"
		}
		items = append(items, bond(name, "X", 100, float64(i*100), now, nil))
	}

	search := InstrumentPredicates(models.FilterCriteria{Search: "note"}, now)
	amount := InstrumentPredicates(models.FilterCriteria{MinAmount: "1000"}, now)
	both := InstrumentPredicates(models.FilterCriteria{Search: "note", MinAmount: "1000"}, now)

	sequential := Apply(Apply(items, search...), amount...)
	combined := Apply(items, both...)
	assert.Equal(t, combined, sequential)
}

func TestApplyPreservesOrderAndInput(t *testing.T) {
	now := time.Now()
	items := []models.Instrument{
		bond("c", "1", 0, 300, now, nil),
		bond("a", "2", 0, 100, now, nil),
		bond("b", "3", 0, 200, now, nil),
	}

	got := Apply(items, InstrumentPredicates(models.FilterCriteria{MinAmount: "150"}, now)...)
	assert.Equal(t, "c", got[0].DisplayName())
	assert.Equal(t, "b", got[1].DisplayName())
	assert.Len(t, items, 3)
}
