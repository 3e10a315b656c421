package models

// PaginationState windows a collection for display. CurrentPage is 1-based
// and always clamped to [1, max(1, TotalPages())]; changing the page size
// resets CurrentPage to 1. TotalRecords is either server-reported or derived
// locally from the filtered collection length.
type PaginationState struct {
	CurrentPage  int `json:"currentPage"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
}

// NewPaginationState returns the default state for a fresh view.
func NewPaginationState(pageSize int) PaginationState {
	if pageSize < 1 {
		pageSize = 1
	}
	return PaginationState{CurrentPage: 1, PageSize: pageSize}
}

// TotalPages derives the page count. It is never below 1, so an empty
// collection still has one (empty) page.
func (p PaginationState) TotalPages() int {
	if p.PageSize < 1 || p.TotalRecords <= 0 {
		return 1
	}
	pages := (p.TotalRecords + p.PageSize - 1) / p.PageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// SetPage requests a page change. Requests outside [1, TotalPages()] are a
// no-op: the current page is retained. Returns true when the page changed.
func (p *PaginationState) SetPage(page int) bool {
	if page < 1 || page > p.TotalPages() || page == p.CurrentPage {
		return false
	}
	p.CurrentPage = page
	return true
}

// SetPageSize changes the window size and always resets to page 1.
func (p *PaginationState) SetPageSize(size int) {
	if size < 1 {
		size = 1
	}
	p.PageSize = size
	p.CurrentPage = 1
}

// SetTotalRecords records a new total (server-reported or locally derived)
// and clamps the current page back into range.
func (p *PaginationState) SetTotalRecords(total int) {
	if total < 0 {
		total = 0
	}
	p.TotalRecords = total
	if p.CurrentPage > p.TotalPages() {
		p.CurrentPage = p.TotalPages()
	}
	if p.CurrentPage < 1 {
		p.CurrentPage = 1
	}
}

// Offset returns the zero-based offset of the current window.
func (p PaginationState) Offset() int {
	return (p.CurrentPage - 1) * p.PageSize
}
