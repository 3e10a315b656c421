package models

import "time"

// InstrumentKind tags the concrete variant behind the Instrument interface.
type InstrumentKind string

const (
	KindBond                    InstrumentKind = "bond"
	KindCommercialPaper         InstrumentKind = "commercial_paper"
	KindDebtNote                InstrumentKind = "debt_note"
	KindMoneyMarketNote         InstrumentKind = "money_market_note"
	KindPrivateEquityCommitment InstrumentKind = "private_equity"
	KindRealEstatePosition      InstrumentKind = "real_estate"
	KindCollectiveInvestment    InstrumentKind = "collective_investment"
	KindEquity                  InstrumentKind = "equity"
)

// Instrument is the canonical read-only view over every holding variant.
// Instruments are snapshots for the session; they are re-fetched, never
// mutated in place.
type Instrument interface {
	Kind() InstrumentKind
	Principal() float64
	CurrentValue() float64
	FaceValue() float64
	ReferenceDate() time.Time
	Maturity() *time.Time
	DisplayName() string
	ReferenceCode() string
	ServerStatus() string
}

// Position carries the fields every instrument variant shares: the
// invested/principal amount, the current value and the reference date, plus
// identity and an optional maturity. Variants embed it and add their own
// fields.
type Position struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Reference       string     `json:"reference"`
	CurrencyCode    string     `json:"currencyCode"`
	Status          string     `json:"status,omitempty"`
	PrincipalAmount float64    `json:"principal"`
	MarketValue     float64    `json:"currentValue"`
	TradeDate       time.Time  `json:"referenceDate"`
	MaturityDate    *time.Time `json:"maturityDate,omitempty"`
}

func (p Position) Principal() float64       { return p.PrincipalAmount }
func (p Position) CurrentValue() float64    { return p.MarketValue }
func (p Position) FaceValue() float64       { return 0 }
func (p Position) ReferenceDate() time.Time { return p.TradeDate }
func (p Position) Maturity() *time.Time     { return p.MaturityDate }
func (p Position) DisplayName() string      { return p.Name }
func (p Position) ReferenceCode() string    { return p.Reference }
func (p Position) ServerStatus() string     { return p.Status }

// Bond is a coupon-bearing fixed-income holding.
type Bond struct {
	Position
	CouponRatePct float64 `json:"couponRate"`
	Face          float64 `json:"faceValue"`
	TenorDays     int     `json:"tenorDays"`
}

func (b Bond) Kind() InstrumentKind { return KindBond }
func (b Bond) FaceValue() float64   { return b.Face }

// CommercialPaper is a short-tenor discount instrument.
type CommercialPaper struct {
	Position
	Face            float64 `json:"faceValue"`
	DiscountRatePct float64 `json:"discountRate"`
	TenorDays       int     `json:"tenorDays"`
	InterestAccrued float64 `json:"interestAccrued"`
}

func (c CommercialPaper) Kind() InstrumentKind { return KindCommercialPaper }
func (c CommercialPaper) FaceValue() float64   { return c.Face }

// DebtNote is a privately placed interest-bearing note.
type DebtNote struct {
	Position
	Face            float64 `json:"faceValue"`
	InterestRatePct float64 `json:"interestRate"`
	TenorDays       int     `json:"tenorDays"`
}

func (d DebtNote) Kind() InstrumentKind { return KindDebtNote }
func (d DebtNote) FaceValue() float64   { return d.Face }

// MoneyMarketNote is a money-market/fixed-income note.
type MoneyMarketNote struct {
	Position
	Face            float64 `json:"faceValue"`
	RatePct         float64 `json:"rate"`
	TenorDays       int     `json:"tenorDays"`
	InterestAccrued float64 `json:"interestAccrued"`
}

func (m MoneyMarketNote) Kind() InstrumentKind { return KindMoneyMarketNote }
func (m MoneyMarketNote) FaceValue() float64   { return m.Face }

// PrivateEquityCommitment is a fund commitment. TVPI and DPI arrive already
// computed from the upstream and are never derived here.
type PrivateEquityCommitment struct {
	Position
	Commitment      float64 `json:"commitmentAmount"`
	CapitalCalled   float64 `json:"capitalCalled"`
	CapitalReturned float64 `json:"capitalReturned"`
	NAV             float64 `json:"nav"`
	TVPI            float64 `json:"tvpi"`
	DPI             float64 `json:"dpi"`
	VintageYear     int     `json:"vintageYear,omitempty"`
}

func (p PrivateEquityCommitment) Kind() InstrumentKind { return KindPrivateEquityCommitment }

// RealEstatePosition is a direct property holding. Its lifecycle label is the
// server-reported Status string, not the maturity classifier.
type RealEstatePosition struct {
	Position
	PropertyType string `json:"propertyType"`
	Location     string `json:"location"`
}

func (r RealEstatePosition) Kind() InstrumentKind { return KindRealEstatePosition }

// CollectiveInvestmentUnit is a fund/unit-trust position.
type CollectiveInvestmentUnit struct {
	Position
	NAVPerUnit float64 `json:"navPerUnit"`
	Units      float64 `json:"units"`
}

func (c CollectiveInvestmentUnit) Kind() InstrumentKind { return KindCollectiveInvestment }

// Equity is a listed-share position. Principal is the total cost basis.
type Equity struct {
	Position
	Ticker   string  `json:"ticker"`
	Quantity float64 `json:"quantity"`
}

func (e Equity) Kind() InstrumentKind { return KindEquity }

var (
	_ Instrument = Bond{}
	_ Instrument = CommercialPaper{}
	_ Instrument = DebtNote{}
	_ Instrument = MoneyMarketNote{}
	_ Instrument = PrivateEquityCommitment{}
	_ Instrument = RealEstatePosition{}
	_ Instrument = CollectiveInvestmentUnit{}
	_ Instrument = Equity{}
)
