// Command stubserver is a local stand-in for the upstream portfolio service.
// It serves deterministic fixtures for every collection endpoint, speaking
// the offset/limit envelope dialect for the debt instruments and the
// page/pageSize dialect for the rest, so the client can be exercised
// end-to-end without upstream access.
//
// Failure modes are reachable on purpose: customer "locked" yields an
// application-level status-0 response, and customer "garbled" yields a
// payload with a record missing its required fields.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/username/portview/src/logger"
)

var limiter = rate.NewLimiter(rate.Every(10*time.Millisecond), 50)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// epoch anchors every generated date so runs are reproducible.
var epoch = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

type instrumentFixture struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Reference     string     `json:"reference"`
	CurrencyCode  string     `json:"currencyCode"`
	Status        string     `json:"status"`
	Principal     float64    `json:"principal"`
	CurrentValue  float64    `json:"currentValue"`
	ReferenceDate time.Time  `json:"referenceDate"`
	MaturityDate  *time.Time `json:"maturityDate,omitempty"`

	CouponRate      float64 `json:"couponRate,omitempty"`
	FaceValue       float64 `json:"faceValue,omitempty"`
	TenorDays       int     `json:"tenorDays,omitempty"`
	DiscountRate    float64 `json:"discountRate,omitempty"`
	InterestRate    float64 `json:"interestRate,omitempty"`
	Rate            float64 `json:"rate,omitempty"`
	InterestAccrued float64 `json:"interestAccrued,omitempty"`

	CommitmentAmount float64 `json:"commitmentAmount,omitempty"`
	CapitalCalled    float64 `json:"capitalCalled,omitempty"`
	CapitalReturned  float64 `json:"capitalReturned,omitempty"`
	NAV              float64 `json:"nav,omitempty"`
	TVPI             float64 `json:"tvpi,omitempty"`
	DPI              float64 `json:"dpi,omitempty"`
	VintageYear      int     `json:"vintageYear,omitempty"`

	PropertyType string  `json:"propertyType,omitempty"`
	Location     string  `json:"location,omitempty"`
	NAVPerUnit   float64 `json:"navPerUnit,omitempty"`
	Units        float64 `json:"units,omitempty"`
	Ticker       string  `json:"ticker,omitempty"`
	Quantity     float64 `json:"quantity,omitempty"`

	Kind string `json:"kind,omitempty"`
}

type accountFixture struct {
	ID               string    `json:"id"`
	DisplayName      string    `json:"displayName"`
	Status           string    `json:"status"`
	Type             string    `json:"type"`
	CurrencyCode     string    `json:"currencyCode"`
	CurrentBalance   float64   `json:"currentBalance"`
	AvailableBalance float64   `json:"availableBalance"`
	ClearedBalance   float64   `json:"clearedBalance"`
	BlockedFunds     float64   `json:"blockedFunds"`
	CreatedAt        time.Time `json:"createdAt"`
}

type transactionFixture struct {
	ID            string  `json:"id"`
	AccountID     string  `json:"accountId"`
	DebitAmount   float64 `json:"debitAmount,omitempty"`
	CreditAmount  float64 `json:"creditAmount,omitempty"`
	BalanceBefore float64 `json:"balanceBefore"`
	BalanceAfter  float64 `json:"balanceAfter"`
	Narration     string  `json:"narration"`
	Timestamp     int64   `json:"timestamp"`
	ValueDate     string  `json:"valueDate"`
}

func base(idPrefix, name string, i int, principal float64) instrumentFixture {
	traded := epoch.AddDate(0, 0, -30*(i%24))
	return instrumentFixture{
		ID:            fmt.Sprintf("%s-%03d", idPrefix, i+1),
		Name:          fmt.Sprintf("%s %d", name, i+1),
		Reference:     fmt.Sprintf("REF/%s/%04d", idPrefix, 1000+i),
		CurrencyCode:  "USD",
		Status:        map[int]string{0: "active", 1: "active", 2: "pending"}[i%3],
		Principal:     principal,
		CurrentValue:  principal * (0.95 + 0.02*float64(i%8)),
		ReferenceDate: traded,
	}
}

func withMaturity(f instrumentFixture, daysOut int) instrumentFixture {
	m := epoch.AddDate(0, 0, daysOut)
	f.MaturityDate = &m
	return f
}

// makeBonds returns 47 bonds so the default page size of 10 produces 5 pages.
func makeBonds() []instrumentFixture {
	out := make([]instrumentFixture, 0, 47)
	for i := 0; i < 47; i++ {
		f := base("bnd", "Sovereign Bond", i, 1000*float64(1+i%5))
		// A spread of matured, maturing-soon and active maturities.
		f = withMaturity(f, -10+15*(i%12))
		f.CouponRate = 5 + 0.25*float64(i%10)
		f.FaceValue = f.Principal
		f.TenorDays = 365 * (1 + i%5)
		out = append(out, f)
	}
	return out
}

func makeCommercialPaper() []instrumentFixture {
	out := make([]instrumentFixture, 0, 14)
	for i := 0; i < 14; i++ {
		f := base("cp", "Commercial Paper", i, 5000)
		f = withMaturity(f, 7*(i+1))
		f.FaceValue = 5200
		f.DiscountRate = 11.5
		f.TenorDays = 90 + 30*(i%4)
		f.InterestAccrued = 40 * float64(i)
		out = append(out, f)
	}
	return out
}

func makeDebtNotes() []instrumentFixture {
	out := make([]instrumentFixture, 0, 9)
	for i := 0; i < 9; i++ {
		f := base("dn", "Debt Note", i, 2500)
		f = withMaturity(f, 60+45*i)
		f.FaceValue = 2500
		f.InterestRate = 9.75
		f.TenorDays = 182
		out = append(out, f)
	}
	return out
}

func makeMoneyMarketNotes() []instrumentFixture {
	out := make([]instrumentFixture, 0, 6)
	for i := 0; i < 6; i++ {
		f := base("mmn", "Money Market Note", i, 10000)
		f = withMaturity(f, 14+14*i)
		f.FaceValue = 10000
		f.Rate = 6.5
		f.TenorDays = 91
		f.InterestAccrued = 55.20 * float64(i+1)
		out = append(out, f)
	}
	return out
}

func makePrivateEquity() []instrumentFixture {
	out := make([]instrumentFixture, 0, 4)
	for i := 0; i < 4; i++ {
		f := base("pe", "Growth Fund Commitment", i, 50000)
		f.CommitmentAmount = 50000
		f.CapitalCalled = 12500 * float64(i+1)
		f.CapitalReturned = 4000 * float64(i)
		f.NAV = 15000 * float64(i+1)
		f.TVPI = 0.9 + 0.45*float64(i)
		f.DPI = 0.2 * float64(i)
		f.VintageYear = 2019 + i
		out = append(out, f)
	}
	return out
}

func makeRealEstate() []instrumentFixture {
	types := []string{"residential", "commercial", "industrial"}
	cities := []string{"Lagos", "Nairobi", "Accra"}
	out := make([]instrumentFixture, 0, 3)
	for i := 0; i < 3; i++ {
		f := base("re", "Real Estate Holding", i, 250000)
		f.PropertyType = types[i]
		f.Location = cities[i]
		out = append(out, f)
	}
	return out
}

func makeFunds() []instrumentFixture {
	out := make([]instrumentFixture, 0, 8)
	for i := 0; i < 8; i++ {
		f := base("fnd", "Collective Fund", i, 3000)
		f.NAVPerUnit = 1.05 + 0.03*float64(i)
		f.Units = 2800
		out = append(out, f)
	}
	return out
}

func makeEquities() []instrumentFixture {
	tickers := []string{"ACM", "BLT", "CYR", "DSL", "ENV", "FRG", "GLX", "HNT", "IVO", "JNX", "KPL", "LMD"}
	out := make([]instrumentFixture, 0, len(tickers))
	for i, tk := range tickers {
		f := base("eq", "Equity Holding", i, 500*float64(i+1))
		f.Ticker = tk
		f.Quantity = 100 * float64(i+1)
		out = append(out, f)
	}
	return out
}

func makeAccounts() []accountFixture {
	out := make([]accountFixture, 0, 3)
	types := []string{"current", "savings", "call"}
	for i := 0; i < 3; i++ {
		out = append(out, accountFixture{
			ID:               fmt.Sprintf("acc-%03d", i+1),
			DisplayName:      fmt.Sprintf("Account %d", i+1),
			Status:           "active",
			Type:             types[i],
			CurrencyCode:     "USD",
			CurrentBalance:   12500.75 * float64(i+1),
			AvailableBalance: 12000.00 * float64(i+1),
			ClearedBalance:   12500.75 * float64(i+1),
			BlockedFunds:     500.75 * float64(i),
			CreatedAt:        epoch.AddDate(-2, i, 0),
		})
	}
	return out
}

func makeTransactions(accounts []accountFixture) []transactionFixture {
	out := make([]transactionFixture, 0, len(accounts)*12)
	n := 0
	for _, acc := range accounts {
		balance := acc.CurrentBalance
		for i := 0; i < 12; i++ {
			n++
			tx := transactionFixture{
				ID:            fmt.Sprintf("tx-%04d", n),
				AccountID:     acc.ID,
				BalanceBefore: balance,
				Timestamp:     epoch.AddDate(0, 0, -i).UnixMilli(),
				ValueDate:     epoch.AddDate(0, 0, -i).Format("2006-01-02"),
			}
			if i%3 == 0 {
				tx.DebitAmount = 150.25 * float64(i+1)
				tx.Narration = fmt.Sprintf("Transfer out %d", i+1)
				balance -= tx.DebitAmount
			} else {
				tx.CreditAmount = 220.40 * float64(i+1)
				tx.Narration = fmt.Sprintf("Coupon payment %d", i+1)
				balance += tx.CreditAmount
			}
			tx.BalanceAfter = balance
			out = append(out, tx)
		}
	}
	return out
}

// makeConsolidated flattens every instrument collection into the cross-type
// listing, carrying only the shared fields plus the kind tag.
func makeConsolidated(kinds map[string][]instrumentFixture) []instrumentFixture {
	out := make([]instrumentFixture, 0, 64)
	for kind, items := range kinds {
		for _, f := range items {
			out = append(out, instrumentFixture{
				ID:            f.ID,
				Name:          f.Name,
				Reference:     f.Reference,
				CurrencyCode:  f.CurrencyCode,
				Status:        f.Status,
				Principal:     f.Principal,
				CurrentValue:  f.CurrentValue,
				ReferenceDate: f.ReferenceDate,
				MaturityDate:  f.MaturityDate,
				FaceValue:     f.FaceValue,
				Kind:          kind,
			})
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L.Error("Failed to encode response", "error", err)
	}
}

func writeFailure(w http.ResponseWriter, message string) {
	writeJSON(w, map[string]any{"status": 0, "message": message})
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func window[T any](items []T, start, size int) []T {
	if start > len(items) {
		start = len(items)
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// offsetHandler serves a collection in the flat offset/limit dialect.
func offsetHandler[T any](items []T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rejectCustomer(w, r) {
			return
		}
		offset := queryInt(r, "offset", 0)
		limit := queryInt(r, "limit", 10)
		page := window(items, offset, limit)
		writeJSON(w, map[string]any{
			"status": 1,
			"data":   page,
			"offset": offset,
			"limit":  limit,
			"count":  len(page),
			"total":  len(items),
		})
	}
}

// pageHandler serves a collection in the nested page/pageSize dialect.
func pageHandler[T any](items []T, filter func(T, *http.Request) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rejectCustomer(w, r) {
			return
		}
		matched := items
		if filter != nil {
			matched = make([]T, 0, len(items))
			for _, it := range items {
				if filter(it, r) {
					matched = append(matched, it)
				}
			}
		}
		pageNum := queryInt(r, "page", 1)
		pageSize := queryInt(r, "pageSize", 10)
		totalPages := (len(matched) + pageSize - 1) / pageSize
		if totalPages < 1 {
			totalPages = 1
		}
		writeJSON(w, map[string]any{
			"status": 1,
			"data":   window(matched, (pageNum-1)*pageSize, pageSize),
			"pagination": map[string]int{
				"currentPage":  pageNum,
				"pageSize":     pageSize,
				"totalRecords": len(matched),
				"totalPages":   totalPages,
			},
		})
	}
}

// rejectCustomer implements the deliberate failure modes.
func rejectCustomer(w http.ResponseWriter, r *http.Request) bool {
	switch chi.URLParam(r, "customerID") {
	case "locked":
		writeFailure(w, "customer profile locked")
		return true
	case "garbled":
		writeJSON(w, map[string]any{"status": 1, "data": []map[string]any{{"name": "record with no id"}}})
		return true
	}
	return false
}

func main() {
	addr := flag.String("addr", ":8085", "listen address")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger.InitLogger(*logLevel)

	bonds := makeBonds()
	commercialPaper := makeCommercialPaper()
	debtNotes := makeDebtNotes()
	moneyMarketNotes := makeMoneyMarketNotes()
	privateEquity := makePrivateEquity()
	realEstate := makeRealEstate()
	funds := makeFunds()
	equities := makeEquities()
	accounts := makeAccounts()
	transactions := makeTransactions(accounts)
	consolidated := makeConsolidated(map[string][]instrumentFixture{
		"bond":                  bonds,
		"commercial_paper":      commercialPaper,
		"debt_note":             debtNotes,
		"money_market_note":     moneyMarketNotes,
		"private_equity":        privateEquity,
		"real_estate":           realEstate,
		"collective_investment": funds,
		"equity":                equities,
	})

	var consolidatedPrincipal, consolidatedValue, consolidatedFace float64
	for _, f := range consolidated {
		consolidatedPrincipal += f.Principal
		consolidatedValue += f.CurrentValue
		consolidatedFace += f.FaceValue
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(rateLimitMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:3000"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
	}))

	r.Route("/customer/{customerID}", func(r chi.Router) {
		r.Get("/bonds", offsetHandler(bonds))
		r.Get("/commercial-paper", offsetHandler(commercialPaper))
		r.Get("/debt-notes", offsetHandler(debtNotes))
		r.Get("/money-market-notes", offsetHandler(moneyMarketNotes))

		r.Get("/private-equity", pageHandler(privateEquity, nil))
		r.Get("/real-estate", pageHandler(realEstate, nil))
		r.Get("/funds", pageHandler(funds, nil))
		r.Get("/equities", pageHandler(equities, nil))

		r.Get("/accounts", pageHandler(accounts, nil))
		r.Get("/transactions", pageHandler(transactions, func(tx transactionFixture, r *http.Request) bool {
			accountID := r.URL.Query().Get("accountId")
			return accountID == "" || tx.AccountID == accountID
		}))

		r.Get("/consolidated", func(w http.ResponseWriter, r *http.Request) {
			if rejectCustomer(w, r) {
				return
			}
			writeJSON(w, map[string]any{
				"status": 1,
				"data": map[string]any{
					"investments": consolidated,
					"accounts":    accounts,
					"totals": map[string]any{
						"totalPrincipal":    consolidatedPrincipal,
						"totalCurrentValue": consolidatedValue,
						"totalFaceValue":    consolidatedFace,
						"instrumentCount":   len(consolidated),
						"gainLoss":          consolidatedValue - consolidatedPrincipal,
					},
				},
			})
		})
	})

	logger.L.Info("Stub portfolio service listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, r); err != nil {
		logger.L.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
