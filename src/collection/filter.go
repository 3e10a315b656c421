// Package collection holds the generic filter, pagination and aggregation
// engine shared by every instrument view. Views compose these pieces instead
// of reimplementing predicate and paging logic per type.
package collection

import (
	"strings"
	"time"

	"github.com/username/portview/src/models"
	"github.com/username/portview/src/utils"
)

// Predicate is one independent, optional filter criterion over T.
type Predicate[T any] func(T) bool

// And combines predicates with logical AND. No predicates means "match
// everything".
func And[T any](preds ...Predicate[T]) Predicate[T] {
	return func(item T) bool {
		for _, p := range preds {
			if p != nil && !p(item) {
				return false
			}
		}
		return true
	}
}

// Apply filters a collection, preserving order and never mutating the input.
// Filters always run before pagination, so downstream page counts reflect
// the filtered size.
func Apply[T any](items []T, preds ...Predicate[T]) []T {
	combined := And(preds...)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if combined(item) {
			out = append(out, item)
		}
	}
	return out
}

// TextSearch matches a case-insensitive substring against the designated
// string fields of a record. An empty term matches everything.
func TextSearch[T any](term string, fields func(T) []string) Predicate[T] {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return nil
	}
	return func(item T) bool {
		for _, f := range fields(item) {
			if strings.Contains(strings.ToLower(f), needle) {
				return true
			}
		}
		return false
	}
}

// NumericRange bounds a numeric field. Bounds arrive as raw input strings; a
// blank or unparseable bound is unbounded on that side rather than an error.
func NumericRange[T any](minStr, maxStr string, value func(T) float64) Predicate[T] {
	min, hasMin := utils.ParseLenientFloat(minStr)
	max, hasMax := utils.ParseLenientFloat(maxStr)
	if !hasMin && !hasMax {
		return nil
	}
	return func(item T) bool {
		v := value(item)
		if hasMin && v < min {
			return false
		}
		if hasMax && v > max {
			return false
		}
		return true
	}
}

// Category matches one field by case-insensitive equality. The sentinel
// "all" (or an empty value) disables the filter.
func Category[T any](category string, value func(T) string) Predicate[T] {
	want := strings.ToLower(strings.TrimSpace(category))
	if want == "" || want == "all" {
		return nil
	}
	return func(item T) bool {
		return strings.ToLower(value(item)) == want
	}
}

// WithinPast keeps records whose reference date falls in [now-offset, now].
// This is the "purchased within the last N" shape and filters the past.
func WithinPast[T any](window models.DateWindow, now time.Time, refDate func(T) time.Time) Predicate[T] {
	cutoff, ok := window.Offset(now)
	if !ok {
		return nil
	}
	return func(item T) bool {
		d := refDate(item)
		return !d.Before(cutoff) && !d.After(now)
	}
}

// MaturesWithin keeps records whose maturity date is on or before
// now+offset. This is the future-facing "matures within N" shape; records
// with no maturity date never match. It is a distinct query from WithinPast
// and the two must not be conflated.
func MaturesWithin[T any](window models.DateWindow, now time.Time, maturity func(T) *time.Time) Predicate[T] {
	cutoff, ok := window.Forward(now)
	if !ok {
		return nil
	}
	return func(item T) bool {
		m := maturity(item)
		return m != nil && !m.After(cutoff)
	}
}

// InstrumentPredicates builds the standard predicate set for a normalized
// instrument collection from one FilterCriteria.
func InstrumentPredicates(c models.FilterCriteria, now time.Time) []Predicate[models.Instrument] {
	return []Predicate[models.Instrument]{
		TextSearch(c.Search, func(i models.Instrument) []string {
			return []string{i.DisplayName(), i.ReferenceCode()}
		}),
		NumericRange(c.MinAmount, c.MaxAmount, models.Instrument.CurrentValue),
		Category(c.Category, models.Instrument.ServerStatus),
		WithinPast(c.PurchasedIn, now, models.Instrument.ReferenceDate),
		MaturesWithin(c.MaturesWithin, now, models.Instrument.Maturity),
	}
}
