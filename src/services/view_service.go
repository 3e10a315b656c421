package services

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/username/portview/src/collection"
	"github.com/username/portview/src/config"
	"github.com/username/portview/src/logger"
	"github.com/username/portview/src/models"
	"github.com/username/portview/src/processors"
)

// InstrumentRow pairs one instrument with its derived metrics.
type InstrumentRow struct {
	Instrument models.Instrument            `json:"instrument"`
	Metrics    processors.InstrumentMetrics `json:"metrics"`
}

// ViewData is one renderable snapshot of an instrument view: the visible
// page, the pagination controls, and the whole-collection summary.
type ViewData struct {
	Items       []InstrumentRow          `json:"items"`
	Pagination  models.PaginationState   `json:"pagination"`
	TotalPages  int                      `json:"totalPages"`
	PageNumbers []int                    `json:"pageNumbers"`
	Summary     models.InvestmentSummary `json:"summary"`
	Empty       bool                     `json:"empty"`
}

// InstrumentView holds the display state for one instrument collection:
// pagination, filter criteria, and the memoized full-collection fetch used
// for summary statistics and local filtering.
//
// Every mutation bumps a generation counter. Load snapshots the generation
// before fetching and discards its result with ErrStaleResponse when a
// mutation superseded it in flight, so an older response can never render
// over a newer state.
type InstrumentView struct {
	mu         sync.Mutex
	api        PortfolioAPI
	customerID string
	kind       models.InstrumentKind
	criteria   models.FilterCriteria
	pagination models.PaginationState

	generation atomic.Int64

	statsCache    *cache.Cache
	statsPageSize int
	processor     *processors.MetricsProcessor
	clock         func() time.Time
}

func NewInstrumentView(api PortfolioAPI, customerID string, kind models.InstrumentKind, cfg *config.AppConfig) *InstrumentView {
	return &InstrumentView{
		api:           api,
		customerID:    customerID,
		kind:          kind,
		pagination:    models.NewPaginationState(cfg.PageSize),
		statsCache:    cache.New(cfg.StatsCacheTTL, 2*cfg.StatsCacheTTL),
		statsPageSize: cfg.StatsPageSize,
		processor:     processors.NewMetricsProcessor(),
		clock:         time.Now,
	}
}

// SetPage requests a page change. Out-of-range requests are a no-op and do
// not invalidate in-flight loads.
func (v *InstrumentView) SetPage(page int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.pagination.SetPage(page) {
		return false
	}
	v.generation.Add(1)
	return true
}

// SetPageSize changes the window size, which always resets to page 1.
func (v *InstrumentView) SetPageSize(size int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pagination.SetPageSize(size)
	v.generation.Add(1)
}

// SetCriteria replaces the filter set and returns to page 1.
func (v *InstrumentView) SetCriteria(criteria models.FilterCriteria) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.criteria = criteria
	v.pagination = models.NewPaginationState(v.pagination.PageSize)
	v.generation.Add(1)
}

// SetCustomer switches the view to another resolved identity. Cached stats
// for the previous identity are dropped.
func (v *InstrumentView) SetCustomer(customerID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if customerID == v.customerID {
		return
	}
	v.customerID = customerID
	v.pagination = models.NewPaginationState(v.pagination.PageSize)
	v.statsCache.Flush()
	v.generation.Add(1)
}

// Load fetches and assembles one ViewData snapshot. With no filters active
// the server drives pagination and the full collection is fetched (cached)
// only for the summary; with filters active the full collection is filtered
// and windowed locally, since server pages and local filters do not compose.
func (v *InstrumentView) Load(ctx context.Context) (*ViewData, error) {
	v.mu.Lock()
	gen := v.generation.Load()
	customer := v.customerID
	criteria := v.criteria
	paging := v.pagination
	v.mu.Unlock()

	now := v.clock()

	var (
		data *ViewData
		err  error
	)
	if criteria.IsZero() {
		data, err = v.loadServerPaged(ctx, customer, paging, now)
	} else {
		data, err = v.loadFiltered(ctx, customer, criteria, paging, now)
	}
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.generation.Load() != gen {
		logger.FromContext(ctx).Debug("Discarding superseded view load", "kind", v.kind, "generation", gen)
		return nil, ErrStaleResponse
	}
	v.pagination = data.Pagination
	return data, nil
}

func (v *InstrumentView) loadServerPaged(ctx context.Context, customer string, paging models.PaginationState, now time.Time) (*ViewData, error) {
	var (
		wg       sync.WaitGroup
		items    []models.Instrument
		info     PageInfo
		pageErr  error
		all      []models.Instrument
		statsErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		items, info, pageErr = v.api.Instruments(ctx, customer, v.kind, PageRequest{Page: paging.CurrentPage, PageSize: paging.PageSize})
	}()
	go func() {
		defer wg.Done()
		all, statsErr = v.fetchAll(ctx, customer)
	}()
	wg.Wait()

	if pageErr != nil {
		return nil, pageErr
	}

	paging.SetTotalRecords(info.TotalRecords)

	summary := collection.Summarize(items)
	if statsErr != nil {
		logger.FromContext(ctx).Warn("Summary limited to visible page, full-collection fetch failed", "kind", v.kind, "error", statsErr)
	} else {
		summary = collection.Summarize(all)
	}

	return v.assemble(items, paging, summary, now), nil
}

func (v *InstrumentView) loadFiltered(ctx context.Context, customer string, criteria models.FilterCriteria, paging models.PaginationState, now time.Time) (*ViewData, error) {
	all, err := v.fetchAll(ctx, customer)
	if err != nil {
		return nil, err
	}

	filtered := collection.Apply(all, collection.InstrumentPredicates(criteria, now)...)
	paging.SetTotalRecords(len(filtered))

	return v.assemble(collection.Slice(filtered, paging), paging, collection.Summarize(filtered), now), nil
}

func (v *InstrumentView) assemble(items []models.Instrument, paging models.PaginationState, summary models.InvestmentSummary, now time.Time) *ViewData {
	rows := make([]InstrumentRow, 0, len(items))
	for _, inst := range items {
		rows = append(rows, InstrumentRow{Instrument: inst, Metrics: v.processor.Compute(inst, now)})
	}
	return &ViewData{
		Items:       rows,
		Pagination:  paging,
		TotalPages:  paging.TotalPages(),
		PageNumbers: collection.PageNumbers(paging.CurrentPage, paging.TotalPages()),
		Summary:     summary,
		Empty:       paging.TotalRecords == 0,
	}
}

// fetchAll pages through the whole collection at the stats page size. The
// result is memoized per identity for the configured TTL.
func (v *InstrumentView) fetchAll(ctx context.Context, customer string) ([]models.Instrument, error) {
	key := customer + "|" + string(v.kind)
	if cached, ok := v.statsCache.Get(key); ok {
		return cached.([]models.Instrument), nil
	}

	var all []models.Instrument
	for page := 1; ; page++ {
		items, info, err := v.api.Instruments(ctx, customer, v.kind, PageRequest{Page: page, PageSize: v.statsPageSize})
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) == 0 || page >= info.TotalPages {
			break
		}
	}

	v.statsCache.Set(key, all, cache.DefaultExpiration)
	return all, nil
}

// centTolerance bounds the acceptable drift between server-aggregated and
// locally recomputed consolidated totals.
const centTolerance = 0.01

// ConsolidatedReport is the cross-type roll-up with totals recomputed
// locally; the server's own figures are retained for comparison.
type ConsolidatedReport struct {
	Investments  []InstrumentRow          `json:"investments"`
	Accounts     []models.Account         `json:"accounts"`
	Totals       models.InvestmentSummary `json:"totals"`
	ServerTotals models.InvestmentSummary `json:"serverTotals"`
}

// BuildConsolidatedReport fetches the consolidated roll-up, recomputes the
// totals from the raw investments, and warns when the server's figures
// disagree beyond a cent. The recomputed totals are authoritative.
func BuildConsolidatedReport(ctx context.Context, api PortfolioAPI, customerID string, now time.Time) (*ConsolidatedReport, error) {
	view, err := api.Consolidated(ctx, customerID)
	if err != nil {
		return nil, err
	}

	recomputed := collection.Summarize(view.Investments)
	if math.Abs(recomputed.TotalPrincipal-view.Totals.TotalPrincipal) > centTolerance ||
		math.Abs(recomputed.TotalCurrentValue-view.Totals.TotalCurrentValue) > centTolerance {
		logger.FromContext(ctx).Warn("Server consolidated totals disagree with local recomputation",
			"serverPrincipal", view.Totals.TotalPrincipal,
			"localPrincipal", recomputed.TotalPrincipal,
			"serverCurrentValue", view.Totals.TotalCurrentValue,
			"localCurrentValue", recomputed.TotalCurrentValue,
		)
	}

	processor := processors.NewMetricsProcessor()
	rows := make([]InstrumentRow, 0, len(view.Investments))
	for _, inst := range view.Investments {
		rows = append(rows, InstrumentRow{Instrument: inst, Metrics: processor.Compute(inst, now)})
	}

	return &ConsolidatedReport{
		Investments:  rows,
		Accounts:     view.Accounts,
		Totals:       recomputed,
		ServerTotals: view.Totals,
	}, nil
}
