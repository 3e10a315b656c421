package models

import "time"

// Account represents a deposit account as reported by the upstream service.
// AvailableBalance is expected to be at most CurrentBalance, but the upstream
// does not guarantee it; this layer tolerates violations and never corrects
// the figures.
type Account struct {
	ID               string    `json:"id"`
	DisplayName      *string   `json:"displayName"`
	Status           string    `json:"status"`
	Type             string    `json:"type"`
	CurrencyCode     string    `json:"currencyCode"`
	CurrentBalance   float64   `json:"currentBalance"`
	AvailableBalance float64   `json:"availableBalance"`
	ClearedBalance   float64   `json:"clearedBalance"`
	BlockedFunds     float64   `json:"blockedFunds"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Name returns the display name, or the account ID when the upstream
// reported none.
func (a Account) Name() string {
	if a.DisplayName != nil && *a.DisplayName != "" {
		return *a.DisplayName
	}
	return a.ID
}

// Transaction is a single account movement. Exactly one of DebitAmount and
// CreditAmount is expected to be non-zero per record. Records are immutable
// once fetched.
type Transaction struct {
	ID            string  `json:"id"`
	AccountID     string  `json:"accountId"`
	DebitAmount   float64 `json:"debitAmount"`
	CreditAmount  float64 `json:"creditAmount"`
	BalanceBefore float64 `json:"balanceBefore"`
	BalanceAfter  float64 `json:"balanceAfter"`
	Narration     string  `json:"narration"`
	TimestampMs   int64   `json:"timestamp"`
	ValueDate     string  `json:"valueDate"`
}

// Amount returns the signed movement: credits positive, debits negative.
func (t Transaction) Amount() float64 {
	if t.CreditAmount != 0 {
		return t.CreditAmount
	}
	return -t.DebitAmount
}

// Time converts the millisecond timestamp to a time.Time.
func (t Transaction) Time() time.Time {
	return time.UnixMilli(t.TimestampMs)
}
