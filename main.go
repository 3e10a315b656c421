// Command portview renders a customer's portfolio as JSON reports: one view
// per instrument collection, plus accounts, account transactions, and the
// consolidated cross-type roll-up. Reports go to stdout; logs go to stderr.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/username/portview/src/collection"
	"github.com/username/portview/src/config"
	"github.com/username/portview/src/logger"
	"github.com/username/portview/src/models"
	"github.com/username/portview/src/services"
	"github.com/username/portview/src/session"
)

// viewKinds maps the -view flag to the typed instrument collections.
var viewKinds = map[string]models.InstrumentKind{
	"bonds":              models.KindBond,
	"commercial-paper":   models.KindCommercialPaper,
	"debt-notes":         models.KindDebtNote,
	"money-market-notes": models.KindMoneyMarketNote,
	"private-equity":     models.KindPrivateEquityCommitment,
	"real-estate":        models.KindRealEstatePosition,
	"funds":              models.KindCollectiveInvestment,
	"equities":           models.KindEquity,
}

type options struct {
	view       string
	page       int
	pageSize   int
	accountID  string
	credential string
	criteria   models.FilterCriteria
}

func main() {
	var opts options
	flag.StringVar(&opts.view, "view", "consolidated", "view to render: consolidated, accounts, transactions, or one of bonds, commercial-paper, debt-notes, money-market-notes, private-equity, real-estate, funds, equities")
	flag.IntVar(&opts.page, "page", 1, "page to display (1-based)")
	flag.IntVar(&opts.pageSize, "page-size", 0, "override the configured page size")
	flag.StringVar(&opts.accountID, "account", "", "account id for the transactions view")
	flag.StringVar(&opts.credential, "set-credential", "", "store a customer credential (raw id, JSON envelope or JWT) and exit")
	flag.StringVar(&opts.criteria.Search, "search", "", "substring match on name and reference")
	flag.StringVar(&opts.criteria.MinAmount, "min", "", "minimum current value")
	flag.StringVar(&opts.criteria.MaxAmount, "max", "", "maximum current value")
	flag.StringVar(&opts.criteria.Category, "category", "all", "status category, \"all\" disables")
	purchasedIn := flag.String("purchased-in", "", "purchase window: 30d, 90d, 1y or 2y")
	maturesWithin := flag.String("matures-within", "", "maturity window: 30d, 90d, 1y or 2y")
	flag.Parse()
	opts.criteria.PurchasedIn = models.DateWindow(*purchasedIn)
	opts.criteria.MaturesWithin = models.DateWindow(*maturesWithin)

	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		switch {
		case errors.Is(err, services.ErrIdentityUnresolved):
			fmt.Fprintln(os.Stderr, "portview: no usable customer identity; store one with -set-credential")
		default:
			fmt.Fprintf(os.Stderr, "portview: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	store, err := session.Open(config.Cfg.SessionDBPath)
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}
	defer store.Close()

	if opts.credential != "" {
		if err := store.Set(session.CustomerKey, opts.credential); err != nil {
			return fmt.Errorf("storing credential: %w", err)
		}
		logger.L.Info("Customer credential stored", "path", config.Cfg.SessionDBPath)
		return nil
	}

	resolver := session.NewResolver(store, config.Cfg.SessionJWTSecret)
	customerID, err := resolver.Resolve()
	if err != nil {
		return err
	}

	client, err := services.NewPortfolioClient(config.Cfg)
	if err != nil {
		return err
	}

	switch opts.view {
	case "consolidated":
		report, err := services.BuildConsolidatedReport(ctx, client, customerID, time.Now())
		if err != nil {
			return err
		}
		return emit(report)
	case "accounts":
		return emitPaged(ctx, opts, func(ctx context.Context, page services.PageRequest) (any, services.PageInfo, error) {
			accounts, info, err := client.Accounts(ctx, customerID, page)
			return accounts, info, err
		})
	case "transactions":
		if opts.accountID == "" {
			return errors.New("the transactions view requires -account")
		}
		return emitPaged(ctx, opts, func(ctx context.Context, page services.PageRequest) (any, services.PageInfo, error) {
			txs, info, err := client.Transactions(ctx, customerID, opts.accountID, page)
			return txs, info, err
		})
	}

	kind, ok := viewKinds[opts.view]
	if !ok {
		return fmt.Errorf("unknown view %q", opts.view)
	}
	return renderInstrumentView(ctx, client, customerID, kind, opts)
}

func renderInstrumentView(ctx context.Context, client *services.PortfolioClient, customerID string, kind models.InstrumentKind, opts options) error {
	view := services.NewInstrumentView(client, customerID, kind, config.Cfg)
	if opts.pageSize > 0 {
		view.SetPageSize(opts.pageSize)
	}
	if !opts.criteria.IsZero() {
		view.SetCriteria(opts.criteria)
	}

	data, err := view.Load(ctx)
	if err != nil {
		return err
	}

	// The requested page can only be validated once the total is known.
	if opts.page > 1 {
		if !view.SetPage(opts.page) {
			logger.L.Warn("Requested page out of range, staying on current page", "requested", opts.page, "totalPages", data.TotalPages)
		} else if data, err = view.Load(ctx); err != nil {
			return err
		}
	}
	return emit(data)
}

// pagedReport is the output shape for the accounts and transactions views.
type pagedReport struct {
	Items       any               `json:"items"`
	Pagination  services.PageInfo `json:"pagination"`
	PageNumbers []int             `json:"pageNumbers"`
}

func emitPaged(ctx context.Context, opts options, fetch func(context.Context, services.PageRequest) (any, services.PageInfo, error)) error {
	pageSize := opts.pageSize
	if pageSize <= 0 {
		pageSize = config.Cfg.PageSize
	}
	items, info, err := fetch(ctx, services.PageRequest{Page: opts.page, PageSize: pageSize})
	if err != nil {
		return err
	}
	return emit(pagedReport{
		Items:       items,
		Pagination:  info,
		PageNumbers: collection.PageNumbers(info.CurrentPage, info.TotalPages),
	})
}

func emit(report any) error {
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	_, err = fmt.Fprintln(os.Stdout, string(out))
	return err
}
