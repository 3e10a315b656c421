package models

import "time"

// DateWindow is a relative offset from "now" used by the window filters.
type DateWindow string

const (
	WindowAll      DateWindow = "all"
	Window30Days   DateWindow = "30d"
	Window90Days   DateWindow = "90d"
	Window1Year    DateWindow = "1y"
	Window2Years   DateWindow = "2y"
)

// Offset converts the window into a concrete duration measured from now.
// WindowAll (and anything unrecognized) reports false: no constraint.
func (w DateWindow) Offset(now time.Time) (time.Time, bool) {
	switch w {
	case Window30Days:
		return now.AddDate(0, 0, -30), true
	case Window90Days:
		return now.AddDate(0, 0, -90), true
	case Window1Year:
		return now.AddDate(-1, 0, 0), true
	case Window2Years:
		return now.AddDate(-2, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// Forward converts the window into a future cutoff, for "matures within N"
// queries. This is a distinct query shape from Offset and the two are never
// interchangeable.
func (w DateWindow) Forward(now time.Time) (time.Time, bool) {
	switch w {
	case Window30Days:
		return now.AddDate(0, 0, 30), true
	case Window90Days:
		return now.AddDate(0, 0, 90), true
	case Window1Year:
		return now.AddDate(1, 0, 0), true
	case Window2Years:
		return now.AddDate(2, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// FilterCriteria is the open set of optional predicates a view applies to its
// collection. Absence of a criterion means "no constraint", never
// "exclude all". Numeric bounds are kept as the raw input strings; malformed
// input is treated as unbounded rather than rejected.
type FilterCriteria struct {
	Search        string     `json:"search,omitempty"`
	MinAmount     string     `json:"minAmount,omitempty"`
	MaxAmount     string     `json:"maxAmount,omitempty"`
	Category      string     `json:"category,omitempty"`      // "all" or "" disables
	PurchasedIn   DateWindow `json:"purchasedIn,omitempty"`   // reference date within [cutoff, now]
	MaturesWithin DateWindow `json:"maturesWithin,omitempty"` // maturity date on or before now+offset
}

// IsZero reports whether no criterion is set.
func (c FilterCriteria) IsZero() bool {
	return c.Search == "" &&
		c.MinAmount == "" && c.MaxAmount == "" &&
		(c.Category == "" || c.Category == "all") &&
		(c.PurchasedIn == "" || c.PurchasedIn == WindowAll) &&
		(c.MaturesWithin == "" || c.MaturesWithin == WindowAll)
}
