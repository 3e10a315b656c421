package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/portview/src/config"
	"github.com/username/portview/src/models"
)

// fakeAPI serves a fixed in-memory collection with page/pageSize semantics
// and counts calls so tests can observe caching and retries. onFetch, when
// set, runs before every Instruments call.
type fakeAPI struct {
	instruments []models.Instrument
	calls       atomic.Int32
	onFetch     func()
	err         error
}

func (f *fakeAPI) Instruments(ctx context.Context, customerID string, kind models.InstrumentKind, page PageRequest) ([]models.Instrument, PageInfo, error) {
	f.calls.Add(1)
	if f.onFetch != nil {
		f.onFetch()
	}
	if f.err != nil {
		return nil, PageInfo{}, f.err
	}

	total := len(f.instruments)
	start := (page.Page - 1) * page.PageSize
	end := start + page.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	totalPages := (total + page.PageSize - 1) / page.PageSize
	if totalPages < 1 {
		totalPages = 1
	}
	return f.instruments[start:end], PageInfo{
		CurrentPage:  page.Page,
		PageSize:     page.PageSize,
		TotalRecords: total,
		TotalPages:   totalPages,
	}, nil
}

func (f *fakeAPI) Accounts(ctx context.Context, customerID string, page PageRequest) ([]models.Account, PageInfo, error) {
	return nil, PageInfo{}, nil
}

func (f *fakeAPI) Transactions(ctx context.Context, customerID, accountID string, page PageRequest) ([]models.Transaction, PageInfo, error) {
	return nil, PageInfo{}, nil
}

func (f *fakeAPI) Consolidated(ctx context.Context, customerID string) (*ConsolidatedView, error) {
	return &ConsolidatedView{}, nil
}

func testViewConfig() *config.AppConfig {
	return &config.AppConfig{
		PageSize:      10,
		StatsPageSize: 100,
		StatsCacheTTL: time.Minute,
	}
}

func fixtureBonds(n int) []models.Instrument {
	out := make([]models.Instrument, 0, n)
	for i := 0; i < n; i++ {
		maturity := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
		out = append(out, models.Bond{
			Position: models.Position{
				ID:              fmt.Sprintf("b-%d", i+1),
				Name:            fmt.Sprintf("Bond %d", i+1),
				PrincipalAmount: 1000,
				MarketValue:     1000 + float64(i),
				MaturityDate:    &maturity,
			},
		})
	}
	return out
}

func TestLoadServerPagedView(t *testing.T) {
	api := &fakeAPI{instruments: fixtureBonds(47)}
	view := NewInstrumentView(api, "cust-1", models.KindBond, testViewConfig())

	data, err := view.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, data.Items, 10)
	assert.Equal(t, 1, data.Pagination.CurrentPage)
	assert.Equal(t, 47, data.Pagination.TotalRecords)
	assert.Equal(t, 5, data.TotalPages)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, data.PageNumbers)
	assert.False(t, data.Empty)

	// Summary spans the whole collection, not just the visible page.
	assert.Equal(t, 47, data.Summary.InstrumentCount)
	assert.InDelta(t, 47000.0, data.Summary.TotalPrincipal, 1e-9)
}

func TestLoadSecondPage(t *testing.T) {
	api := &fakeAPI{instruments: fixtureBonds(47)}
	view := NewInstrumentView(api, "cust-1", models.KindBond, testViewConfig())

	_, err := view.Load(context.Background())
	require.NoError(t, err)

	require.True(t, view.SetPage(2))
	data, err := view.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, data.Pagination.CurrentPage)
	assert.Equal(t, "b-11", data.Items[0].Instrument.(models.Bond).ID)
}

func TestSetPageOutOfRangeIsNoOp(t *testing.T) {
	api := &fakeAPI{instruments: fixtureBonds(47)}
	view := NewInstrumentView(api, "cust-1", models.KindBond, testViewConfig())

	_, err := view.Load(context.Background())
	require.NoError(t, err)

	assert.False(t, view.SetPage(6))
	assert.False(t, view.SetPage(0))

	data, err := view.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, data.Pagination.CurrentPage)
}

func TestSetPageSizeResetsToFirstPage(t *testing.T) {
	api := &fakeAPI{instruments: fixtureBonds(47)}
	view := NewInstrumentView(api, "cust-1", models.KindBond, testViewConfig())

	_, err := view.Load(context.Background())
	require.NoError(t, err)
	require.True(t, view.SetPage(3))

	view.SetPageSize(25)
	data, err := view.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, data.Pagination.CurrentPage)
	assert.Equal(t, 25, data.Pagination.PageSize)
	assert.Equal(t, 2, data.TotalPages)
}

func TestLoadFilteredWindowsLocally(t *testing.T) {
	api := &fakeAPI{instruments: fixtureBonds(47)}
	view := NewInstrumentView(api, "cust-1", models.KindBond, testViewConfig())

	// "Bond 1" matches Bond 1, Bond 10..19 and Bond 47 does not.
	view.SetCriteria(models.FilterCriteria{Search: "bond 1"})

	data, err := view.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 11, data.Pagination.TotalRecords)
	assert.Len(t, data.Items, 10)
	assert.Equal(t, 2, data.TotalPages)
	assert.Equal(t, 11, data.Summary.InstrumentCount)
}

func TestLoadFilteredEmptyState(t *testing.T) {
	api := &fakeAPI{instruments: fixtureBonds(5)}
	view := NewInstrumentView(api, "cust-1", models.KindBond, testViewConfig())

	view.SetCriteria(models.FilterCriteria{Search: "no such holding"})

	data, err := view.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, data.Empty)
	assert.Empty(t, data.Items)
	assert.Equal(t, 1, data.TotalPages)
	assert.Equal(t, []int{1}, data.PageNumbers)
}

func TestFullCollectionFetchIsMemoized(t *testing.T) {
	api := &fakeAPI{instruments: fixtureBonds(5)}
	view := NewInstrumentView(api, "cust-1", models.KindBond, testViewConfig())

	view.SetCriteria(models.FilterCriteria{Search: "bond"})

	_, err := view.Load(context.Background())
	require.NoError(t, err)
	after := api.calls.Load()

	_, err = view.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, after, api.calls.Load())
}

func TestMutationDuringLoadDiscardsResult(t *testing.T) {
	api := &fakeAPI{instruments: fixtureBonds(47)}
	view := NewInstrumentView(api, "cust-1", models.KindBond, testViewConfig())

	// Seed totals so the page change below is in range.
	_, err := view.Load(context.Background())
	require.NoError(t, err)

	var bumped atomic.Bool
	api.onFetch = func() {
		if bumped.CompareAndSwap(false, true) {
			view.SetPage(2)
		}
	}

	_, err = view.Load(context.Background())
	assert.ErrorIs(t, err, ErrStaleResponse)

	// The superseding state is served by the next load.
	api.onFetch = nil
	data, err := view.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, data.Pagination.CurrentPage)
}

func TestSwitchingCustomerResetsViewState(t *testing.T) {
	api := &fakeAPI{instruments: fixtureBonds(47)}
	view := NewInstrumentView(api, "cust-1", models.KindBond, testViewConfig())

	_, err := view.Load(context.Background())
	require.NoError(t, err)
	require.True(t, view.SetPage(4))

	view.SetCustomer("cust-2")
	data, err := view.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, data.Pagination.CurrentPage)
}

// consolidatedFakeAPI overrides the roll-up with server totals that drift
// from the underlying records.
type consolidatedFakeAPI struct {
	fakeAPI
	view ConsolidatedView
}

func (f *consolidatedFakeAPI) Consolidated(ctx context.Context, customerID string) (*ConsolidatedView, error) {
	v := f.view
	return &v, nil
}

func TestConsolidatedReportRecomputesTotals(t *testing.T) {
	api := &consolidatedFakeAPI{view: ConsolidatedView{
		Investments: []models.Instrument{
			models.ConsolidatedHolding{Position: models.Position{ID: "b-1", PrincipalAmount: 1000, MarketValue: 1100}, KindTag: models.KindBond},
			models.ConsolidatedHolding{Position: models.Position{ID: "e-1", PrincipalAmount: 500, MarketValue: 450}, KindTag: models.KindEquity},
		},
		Accounts: []models.Account{{ID: "acc-1", CurrentBalance: 2500}},
		// Stale server aggregate, off by more than a cent.
		Totals: models.InvestmentSummary{TotalPrincipal: 1400, TotalCurrentValue: 1500, InstrumentCount: 2},
	}}

	report, err := BuildConsolidatedReport(context.Background(), api, "cust-1", time.Now())
	require.NoError(t, err)

	assert.InDelta(t, 1500.0, report.Totals.TotalPrincipal, 1e-9)
	assert.InDelta(t, 1550.0, report.Totals.TotalCurrentValue, 1e-9)
	assert.Equal(t, 1400.0, report.ServerTotals.TotalPrincipal)
	require.Len(t, report.Investments, 2)
	assert.InDelta(t, 100.0, report.Investments[0].Metrics.GainLoss, 1e-9)
}
