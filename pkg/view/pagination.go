// Package view holds the client-side view state controllers (pagination,
// forms, routing/guarding) and the pure clinical display helpers. It is
// the only place the client reasons about the domain; everything it
// exposes is synchronous and owned by a single view scope.
package view

// Paginator tracks the page window over a remote list. After any
// mutation the page is clamped to [1, max(1, totalPages)].
type Paginator struct {
	page       int
	pageSize   int
	totalItems int
}

// NewPaginator starts at page 1 with the given page size (minimum 1).
func NewPaginator(pageSize int) *Paginator {
	if pageSize < 1 {
		pageSize = 10
	}
	return &Paginator{page: 1, pageSize: pageSize}
}

// Page returns the current 1-based page.
func (p *Paginator) Page() int { return p.page }

// PageSize returns the items-per-page setting.
func (p *Paginator) PageSize() int { return p.pageSize }

// TotalItems returns the last known item count.
func (p *Paginator) TotalItems() int { return p.totalItems }

// TotalPages derives the page count; zero when the list is empty.
func (p *Paginator) TotalPages() int {
	if p.totalItems == 0 {
		return 0
	}
	return (p.totalItems + p.pageSize - 1) / p.pageSize
}

// Next advances one page; no-op on the last page.
func (p *Paginator) Next() {
	if p.page < p.TotalPages() {
		p.page++
	}
}

// Prev goes back one page; no-op on page 1.
func (p *Paginator) Prev() {
	if p.page > 1 {
		p.page--
	}
}

// GoTo jumps to page n, clamped to the valid range.
func (p *Paginator) GoTo(n int) {
	p.page = clampPage(n, p.TotalPages())
}

// SetPageSize changes the window size and resets to page 1.
func (p *Paginator) SetPageSize(size int) {
	if size < 1 {
		return
	}
	p.pageSize = size
	p.page = 1
}

// SetTotalItems records a fresh count from the server and re-clamps the
// current page, which may have fallen off the end.
func (p *Paginator) SetTotalItems(n int) {
	if n < 0 {
		n = 0
	}
	p.totalItems = n
	p.page = clampPage(p.page, p.TotalPages())
}

func clampPage(n, totalPages int) int {
	max := totalPages
	if max < 1 {
		max = 1
	}
	if n < 1 {
		return 1
	}
	if n > max {
		return max
	}
	return n
}
