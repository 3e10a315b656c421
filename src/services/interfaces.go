package services

import (
	"context"

	"github.com/username/portview/src/models"
)

// PageRequest asks for one display window of a collection. The client
// translates it into whichever query dialect the endpoint speaks
// (offset/limit or page/pageSize).
type PageRequest struct {
	Page     int
	PageSize int
}

// PageInfo is the canonical pagination metadata, normalized from either
// envelope dialect the upstream uses.
type PageInfo struct {
	CurrentPage  int `json:"currentPage"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
	TotalPages   int `json:"totalPages"`
}

// ConsolidatedView is the cross-type roll-up returned by the consolidated
// endpoint: the raw investments, the deposit accounts, and the server's own
// pre-aggregated totals.
type ConsolidatedView struct {
	Investments []models.Instrument      `json:"investments"`
	Accounts    []models.Account         `json:"accounts"`
	Totals      models.InvestmentSummary `json:"totals"`
}

// PortfolioAPI is the network boundary: one GET per instrument collection,
// keyed on the resolved customer identity. Implementations never mutate
// anything upstream.
type PortfolioAPI interface {
	Accounts(ctx context.Context, customerID string, page PageRequest) ([]models.Account, PageInfo, error)
	Transactions(ctx context.Context, customerID, accountID string, page PageRequest) ([]models.Transaction, PageInfo, error)

	Instruments(ctx context.Context, customerID string, kind models.InstrumentKind, page PageRequest) ([]models.Instrument, PageInfo, error)

	Consolidated(ctx context.Context, customerID string) (*ConsolidatedView, error)
}
