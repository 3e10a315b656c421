package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/username/portview/src/models"
	"github.com/username/portview/src/security/validation"
)

// Wire DTOs: one struct per endpoint payload, with an explicit adapter into
// the canonical shape. Required fields are pointers so their absence is
// detectable and maps to ErrMalformedResponse; optional numerics default to
// zero and optional dates to nil, per the fail-soft derivation contract.

type wirePosition struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Reference     string     `json:"reference"`
	CurrencyCode  string     `json:"currencyCode"`
	Status        string     `json:"status"`
	Principal     *float64   `json:"principal"`
	CurrentValue  *float64   `json:"currentValue"`
	ReferenceDate *time.Time `json:"referenceDate"`
	MaturityDate  *time.Time `json:"maturityDate"`
}

func (w wirePosition) toPosition() (models.Position, error) {
	if w.ID == "" {
		return models.Position{}, fmt.Errorf("%w: instrument record missing id", ErrMalformedResponse)
	}
	if w.Principal == nil && w.CurrentValue == nil {
		return models.Position{}, fmt.Errorf("%w: instrument %s carries no amounts", ErrMalformedResponse, w.ID)
	}

	p := models.Position{
		ID:           w.ID,
		Name:         validation.DisplayText(w.Name),
		Reference:    validation.DisplayText(w.Reference),
		CurrencyCode: w.CurrencyCode,
		Status:       validation.DisplayText(w.Status),
		MaturityDate: w.MaturityDate,
	}
	if w.Principal != nil {
		p.PrincipalAmount = *w.Principal
	}
	if w.CurrentValue != nil {
		p.MarketValue = *w.CurrentValue
	}
	if w.ReferenceDate != nil {
		p.TradeDate = *w.ReferenceDate
	}
	return p, nil
}

type wireBond struct {
	wirePosition
	CouponRate float64 `json:"couponRate"`
	FaceValue  float64 `json:"faceValue"`
	TenorDays  int     `json:"tenorDays"`
}

type wireCommercialPaper struct {
	wirePosition
	FaceValue       float64 `json:"faceValue"`
	DiscountRate    float64 `json:"discountRate"`
	TenorDays       int     `json:"tenorDays"`
	InterestAccrued float64 `json:"interestAccrued"`
}

type wireDebtNote struct {
	wirePosition
	FaceValue    float64 `json:"faceValue"`
	InterestRate float64 `json:"interestRate"`
	TenorDays    int     `json:"tenorDays"`
}

type wireMoneyMarketNote struct {
	wirePosition
	FaceValue       float64 `json:"faceValue"`
	Rate            float64 `json:"rate"`
	TenorDays       int     `json:"tenorDays"`
	InterestAccrued float64 `json:"interestAccrued"`
}

type wirePrivateEquity struct {
	wirePosition
	CommitmentAmount float64 `json:"commitmentAmount"`
	CapitalCalled    float64 `json:"capitalCalled"`
	CapitalReturned  float64 `json:"capitalReturned"`
	NAV              float64 `json:"nav"`
	TVPI             float64 `json:"tvpi"`
	DPI              float64 `json:"dpi"`
	VintageYear      int     `json:"vintageYear"`
}

type wireRealEstate struct {
	wirePosition
	PropertyType string `json:"propertyType"`
	Location     string `json:"location"`
}

type wireFundUnit struct {
	wirePosition
	NAVPerUnit float64 `json:"navPerUnit"`
	Units      float64 `json:"units"`
}

type wireEquity struct {
	wirePosition
	Ticker   string  `json:"ticker"`
	Quantity float64 `json:"quantity"`
}

type wireConsolidatedHolding struct {
	wirePosition
	Kind      string  `json:"kind"`
	FaceValue float64 `json:"faceValue"`
}

type wireAccount struct {
	ID               string     `json:"id"`
	DisplayName      *string    `json:"displayName"`
	Status           string     `json:"status"`
	Type             string     `json:"type"`
	CurrencyCode     string     `json:"currencyCode"`
	CurrentBalance   *float64   `json:"currentBalance"`
	AvailableBalance float64    `json:"availableBalance"`
	ClearedBalance   float64    `json:"clearedBalance"`
	BlockedFunds     float64    `json:"blockedFunds"`
	CreatedAt        *time.Time `json:"createdAt"`
}

type wireTransaction struct {
	ID            string  `json:"id"`
	AccountID     string  `json:"accountId"`
	DebitAmount   float64 `json:"debitAmount"`
	CreditAmount  float64 `json:"creditAmount"`
	BalanceBefore float64 `json:"balanceBefore"`
	BalanceAfter  float64 `json:"balanceAfter"`
	Narration     string  `json:"narration"`
	Timestamp     int64   `json:"timestamp"`
	ValueDate     string  `json:"valueDate"`
}

// decodeInstruments decodes the envelope's data array for the given kind and
// normalizes every record. The whole page fails closed on the first
// malformed record: the view must show an error state rather than partial
// data.
func decodeInstruments(kind models.InstrumentKind, data json.RawMessage) ([]models.Instrument, error) {
	switch kind {
	case models.KindBond:
		return decodeAs(data, func(w wireBond) (models.Instrument, error) {
			pos, err := w.toPosition()
			if err != nil {
				return nil, err
			}
			return models.Bond{Position: pos, CouponRatePct: w.CouponRate, Face: w.FaceValue, TenorDays: w.TenorDays}, nil
		})
	case models.KindCommercialPaper:
		return decodeAs(data, func(w wireCommercialPaper) (models.Instrument, error) {
			pos, err := w.toPosition()
			if err != nil {
				return nil, err
			}
			return models.CommercialPaper{Position: pos, Face: w.FaceValue, DiscountRatePct: w.DiscountRate, TenorDays: w.TenorDays, InterestAccrued: w.InterestAccrued}, nil
		})
	case models.KindDebtNote:
		return decodeAs(data, func(w wireDebtNote) (models.Instrument, error) {
			pos, err := w.toPosition()
			if err != nil {
				return nil, err
			}
			return models.DebtNote{Position: pos, Face: w.FaceValue, InterestRatePct: w.InterestRate, TenorDays: w.TenorDays}, nil
		})
	case models.KindMoneyMarketNote:
		return decodeAs(data, func(w wireMoneyMarketNote) (models.Instrument, error) {
			pos, err := w.toPosition()
			if err != nil {
				return nil, err
			}
			return models.MoneyMarketNote{Position: pos, Face: w.FaceValue, RatePct: w.Rate, TenorDays: w.TenorDays, InterestAccrued: w.InterestAccrued}, nil
		})
	case models.KindPrivateEquityCommitment:
		return decodeAs(data, func(w wirePrivateEquity) (models.Instrument, error) {
			pos, err := w.toPosition()
			if err != nil {
				return nil, err
			}
			return models.PrivateEquityCommitment{Position: pos, Commitment: w.CommitmentAmount, CapitalCalled: w.CapitalCalled, CapitalReturned: w.CapitalReturned, NAV: w.NAV, TVPI: w.TVPI, DPI: w.DPI, VintageYear: w.VintageYear}, nil
		})
	case models.KindRealEstatePosition:
		return decodeAs(data, func(w wireRealEstate) (models.Instrument, error) {
			pos, err := w.toPosition()
			if err != nil {
				return nil, err
			}
			return models.RealEstatePosition{Position: pos, PropertyType: validation.DisplayText(w.PropertyType), Location: validation.DisplayText(w.Location)}, nil
		})
	case models.KindCollectiveInvestment:
		return decodeAs(data, func(w wireFundUnit) (models.Instrument, error) {
			pos, err := w.toPosition()
			if err != nil {
				return nil, err
			}
			return models.CollectiveInvestmentUnit{Position: pos, NAVPerUnit: w.NAVPerUnit, Units: w.Units}, nil
		})
	case models.KindEquity:
		return decodeAs(data, func(w wireEquity) (models.Instrument, error) {
			pos, err := w.toPosition()
			if err != nil {
				return nil, err
			}
			return models.Equity{Position: pos, Ticker: validation.DisplayText(w.Ticker), Quantity: w.Quantity}, nil
		})
	default:
		return nil, fmt.Errorf("%w: unknown instrument kind %q", ErrMalformedResponse, kind)
	}
}

// decodeAs decodes a JSON array of W and maps each element.
func decodeAs[W any](data json.RawMessage, adapt func(W) (models.Instrument, error)) ([]models.Instrument, error) {
	if len(data) == 0 {
		return []models.Instrument{}, nil
	}
	var wires []W
	if err := json.Unmarshal(data, &wires); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	out := make([]models.Instrument, 0, len(wires))
	for _, w := range wires {
		inst, err := adapt(w)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

func decodeConsolidatedHoldings(data json.RawMessage) ([]models.Instrument, error) {
	return decodeAs(data, func(w wireConsolidatedHolding) (models.Instrument, error) {
		pos, err := w.toPosition()
		if err != nil {
			return nil, err
		}
		return models.ConsolidatedHolding{Position: pos, KindTag: models.InstrumentKind(w.Kind), Face: w.FaceValue}, nil
	})
}

func decodeAccounts(data json.RawMessage) ([]models.Account, error) {
	if len(data) == 0 {
		return []models.Account{}, nil
	}
	var wires []wireAccount
	if err := json.Unmarshal(data, &wires); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	out := make([]models.Account, 0, len(wires))
	for _, w := range wires {
		if w.ID == "" || w.CurrentBalance == nil {
			return nil, fmt.Errorf("%w: account record missing id or balance", ErrMalformedResponse)
		}
		a := models.Account{
			ID:               w.ID,
			Status:           validation.DisplayText(w.Status),
			Type:             validation.DisplayText(w.Type),
			CurrencyCode:     w.CurrencyCode,
			CurrentBalance:   *w.CurrentBalance,
			AvailableBalance: w.AvailableBalance,
			ClearedBalance:   w.ClearedBalance,
			BlockedFunds:     w.BlockedFunds,
		}
		if w.DisplayName != nil {
			name := validation.DisplayText(*w.DisplayName)
			a.DisplayName = &name
		}
		if w.CreatedAt != nil {
			a.CreatedAt = *w.CreatedAt
		}
		out = append(out, a)
	}
	return out, nil
}

func decodeTransactions(data json.RawMessage) ([]models.Transaction, error) {
	if len(data) == 0 {
		return []models.Transaction{}, nil
	}
	var wires []wireTransaction
	if err := json.Unmarshal(data, &wires); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	out := make([]models.Transaction, 0, len(wires))
	for _, w := range wires {
		if w.ID == "" {
			return nil, fmt.Errorf("%w: transaction record missing id", ErrMalformedResponse)
		}
		out = append(out, models.Transaction{
			ID:            w.ID,
			AccountID:     w.AccountID,
			DebitAmount:   w.DebitAmount,
			CreditAmount:  w.CreditAmount,
			BalanceBefore: w.BalanceBefore,
			BalanceAfter:  w.BalanceAfter,
			Narration:     validation.DisplayText(w.Narration),
			TimestampMs:   w.Timestamp,
			ValueDate:     w.ValueDate,
		})
	}
	return out, nil
}
