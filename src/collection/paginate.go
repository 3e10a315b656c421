package collection

import "github.com/username/portview/src/models"

// Ellipsis marks a collapsed run in a compact page-number sequence.
const Ellipsis = -1

// compactThreshold is the page count up to which every page number is shown.
const compactThreshold = 7

// PageNumbers returns the bounded page-number sequence for display. All
// pages are shown when the total is at most 7; otherwise the first and last
// pages always appear with a window of up to 3 pages around the current one,
// and each collapsed run becomes a single Ellipsis marker.
func PageNumbers(current, totalPages int) []int {
	if totalPages < 1 {
		totalPages = 1
	}
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	if totalPages <= compactThreshold {
		out := make([]int, 0, totalPages)
		for p := 1; p <= totalPages; p++ {
			out = append(out, p)
		}
		return out
	}

	show := func(p int) bool {
		if p == 1 || p == totalPages {
			return true
		}
		return p >= current-1 && p <= current+1
	}

	var out []int
	inGap := false
	for p := 1; p <= totalPages; p++ {
		if show(p) {
			out = append(out, p)
			inGap = false
			continue
		}
		if !inGap {
			out = append(out, Ellipsis)
			inGap = true
		}
	}
	return out
}

// Slice windows a collection locally for bulk-then-slice mode. The input is
// expected to be already filtered; the returned slice aliases the input.
func Slice[T any](items []T, state models.PaginationState) []T {
	start := state.Offset()
	if start >= len(items) || start < 0 {
		return []T{}
	}
	end := start + state.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
