package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/username/portview/src/config"
	"github.com/username/portview/src/logger"
	"github.com/username/portview/src/models"
	"github.com/username/portview/src/security/validation"
)

// sessionCookieName carries the credential when CREDENTIAL_MODE is "cookie".
const sessionCookieName = "portview_session"

// paginationDialect is the query-parameter style an endpoint speaks. The
// paginator abstraction supports both; nothing outside this table is
// hard-coded per type.
type paginationDialect int

const (
	dialectOffsetLimit paginationDialect = iota
	dialectPageSize
)

func (d paginationDialect) query(page PageRequest) url.Values {
	q := url.Values{}
	switch d {
	case dialectOffsetLimit:
		q.Set("offset", fmt.Sprintf("%d", (page.Page-1)*page.PageSize))
		q.Set("limit", fmt.Sprintf("%d", page.PageSize))
	default:
		q.Set("page", fmt.Sprintf("%d", page.Page))
		q.Set("pageSize", fmt.Sprintf("%d", page.PageSize))
	}
	return q
}

type endpointDef struct {
	path    string
	dialect paginationDialect
}

// instrumentEndpoints maps each variant to its collection path and dialect.
var instrumentEndpoints = map[models.InstrumentKind]endpointDef{
	models.KindBond:                    {"bonds", dialectOffsetLimit},
	models.KindCommercialPaper:         {"commercial-paper", dialectOffsetLimit},
	models.KindDebtNote:                {"debt-notes", dialectOffsetLimit},
	models.KindMoneyMarketNote:         {"money-market-notes", dialectOffsetLimit},
	models.KindPrivateEquityCommitment: {"private-equity", dialectPageSize},
	models.KindRealEstatePosition:      {"real-estate", dialectPageSize},
	models.KindCollectiveInvestment:    {"funds", dialectPageSize},
	models.KindEquity:                  {"equities", dialectPageSize},
}

// apiEnvelope is the upstream response shell. Pagination metadata arrives in
// one of two shapes; pageInfo normalizes both.
type apiEnvelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`

	// Dialect A: flat offset metadata.
	Offset *int `json:"offset"`
	Limit  *int `json:"limit"`
	Count  *int `json:"count"`
	Total  *int `json:"total"`

	// Dialect B: nested pagination object.
	Pagination *PageInfo `json:"pagination"`
}

// pageInfo converts whichever metadata shape the envelope carried into the
// canonical PageInfo, falling back to the request and the decoded item count
// when the upstream sent none.
func (e *apiEnvelope) pageInfo(req PageRequest, itemCount int) PageInfo {
	if e.Pagination != nil {
		info := *e.Pagination
		if info.PageSize < 1 {
			info.PageSize = req.PageSize
		}
		if info.TotalPages < 1 && info.PageSize > 0 {
			info.TotalPages = (info.TotalRecords + info.PageSize - 1) / info.PageSize
		}
		if info.TotalPages < 1 {
			info.TotalPages = 1
		}
		return info
	}

	if e.Total != nil || e.Offset != nil {
		info := PageInfo{PageSize: req.PageSize, CurrentPage: req.Page}
		if e.Limit != nil && *e.Limit > 0 {
			info.PageSize = *e.Limit
		}
		if e.Total != nil {
			info.TotalRecords = *e.Total
		}
		if e.Offset != nil && info.PageSize > 0 {
			info.CurrentPage = *e.Offset/info.PageSize + 1
		}
		if info.PageSize > 0 {
			info.TotalPages = (info.TotalRecords + info.PageSize - 1) / info.PageSize
		}
		if info.TotalPages < 1 {
			info.TotalPages = 1
		}
		return info
	}

	return PageInfo{
		CurrentPage:  req.Page,
		PageSize:     req.PageSize,
		TotalRecords: itemCount,
		TotalPages:   1,
	}
}

// PortfolioClient talks to the upstream portfolio service. It owns the
// credential transport (cookie jar or bearer header), the rate limiter and
// the per-call deadline; it holds no view state.
type PortfolioClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
}

func NewPortfolioClient(cfg *config.AppConfig) (*PortfolioClient, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	base, err := url.Parse(cfg.APIBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", cfg.APIBaseURL, err)
	}

	var transport http.RoundTripper = http.DefaultTransport
	switch {
	case cfg.CredentialMode == "header" && cfg.APIToken != "":
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIToken}),
			Base:   transport,
		}
	case cfg.CredentialMode == "cookie" && cfg.APIToken != "":
		jar.SetCookies(base, []*http.Cookie{{Name: sessionCookieName, Value: cfg.APIToken}})
	}

	return &PortfolioClient{
		baseURL:    base.String(),
		httpClient: &http.Client{Jar: jar, Transport: transport},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		timeout:    cfg.HTTPTimeout,
	}, nil
}

// getEnvelope performs one rate-limited GET with a single retry on transient
// failure. GETs here are idempotent, so the retry is safe.
func (c *PortfolioClient) getEnvelope(ctx context.Context, path string, query url.Values) (*apiEnvelope, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		env, retryable, err := c.doOnce(ctx, u)
		if err == nil {
			return env, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			return nil, err
		}
		logger.FromContext(ctx).Debug("Retrying transient fetch failure", "url", u, "error", err)
	}
	return nil, lastErr
}

func (c *PortfolioClient) doOnce(ctx context.Context, u string) (env *apiEnvelope, retryable bool, err error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failures and deadline expiry are both the network kind.
		return nil, true, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, true, fmt.Errorf("%w: upstream returned %s", ErrNetwork, resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, &ApplicationError{Message: resp.Status}
	}

	var decoded apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	// An application-level failure can ride on an HTTP 200.
	if decoded.Status != 1 {
		appErr := &ApplicationError{Message: validation.DisplayText(decoded.Message)}
		logger.FromContext(ctx).Warn("Upstream reported application failure", "url", u, "requestID", requestID, "message", appErr.Message)
		return nil, false, appErr
	}

	return &decoded, false, nil
}

func (c *PortfolioClient) customerPath(customerID, collection string) string {
	return fmt.Sprintf("/customer/%s/%s", url.PathEscape(customerID), collection)
}

// Instruments fetches one page of the given instrument collection.
func (c *PortfolioClient) Instruments(ctx context.Context, customerID string, kind models.InstrumentKind, page PageRequest) ([]models.Instrument, PageInfo, error) {
	ep, ok := instrumentEndpoints[kind]
	if !ok {
		return nil, PageInfo{}, fmt.Errorf("no endpoint for instrument kind %q", kind)
	}

	env, err := c.getEnvelope(ctx, c.customerPath(customerID, ep.path), ep.dialect.query(page))
	if err != nil {
		return nil, PageInfo{}, err
	}

	items, err := decodeInstruments(kind, env.Data)
	if err != nil {
		return nil, PageInfo{}, err
	}
	return items, env.pageInfo(page, len(items)), nil
}

// Accounts fetches one page of the customer's deposit accounts.
func (c *PortfolioClient) Accounts(ctx context.Context, customerID string, page PageRequest) ([]models.Account, PageInfo, error) {
	env, err := c.getEnvelope(ctx, c.customerPath(customerID, "accounts"), dialectPageSize.query(page))
	if err != nil {
		return nil, PageInfo{}, err
	}

	accounts, err := decodeAccounts(env.Data)
	if err != nil {
		return nil, PageInfo{}, err
	}
	return accounts, env.pageInfo(page, len(accounts)), nil
}

// Transactions fetches one page of an account's movements.
func (c *PortfolioClient) Transactions(ctx context.Context, customerID, accountID string, page PageRequest) ([]models.Transaction, PageInfo, error) {
	query := dialectPageSize.query(page)
	query.Set("accountId", accountID)

	env, err := c.getEnvelope(ctx, c.customerPath(customerID, "transactions"), query)
	if err != nil {
		return nil, PageInfo{}, err
	}

	txs, err := decodeTransactions(env.Data)
	if err != nil {
		return nil, PageInfo{}, err
	}
	return txs, env.pageInfo(page, len(txs)), nil
}

type wireConsolidated struct {
	Investments json.RawMessage          `json:"investments"`
	Accounts    json.RawMessage          `json:"accounts"`
	Totals      models.InvestmentSummary `json:"totals"`
}

// Consolidated fetches the cross-type roll-up, including the server's own
// pre-aggregated totals.
func (c *PortfolioClient) Consolidated(ctx context.Context, customerID string) (*ConsolidatedView, error) {
	env, err := c.getEnvelope(ctx, c.customerPath(customerID, "consolidated"), nil)
	if err != nil {
		return nil, err
	}

	var wire wireConsolidated
	if err := json.Unmarshal(env.Data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	investments, err := decodeConsolidatedHoldings(wire.Investments)
	if err != nil {
		return nil, err
	}
	accounts, err := decodeAccounts(wire.Accounts)
	if err != nil {
		return nil, err
	}

	return &ConsolidatedView{
		Investments: investments,
		Accounts:    accounts,
		Totals:      wire.Totals,
	}, nil
}

var _ PortfolioAPI = (*PortfolioClient)(nil)
