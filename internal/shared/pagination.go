package shared

import "fmt"

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
	// Shown is the number of rows actually rendered on this page.
	Shown int
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total, shown int) Pagination {
	if perPage <= 0 {
		perPage = 10
	}
	if page <= 0 {
		page = 1
	}
	if total < 0 {
		total = 0
	}
	totalPages := (total + perPage - 1) / perPage
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages, Shown: shown}
}

// From is the 1-based index of the first visible row, 0 when nothing is shown.
func (p Pagination) From() int {
	if p.Shown == 0 {
		return 0
	}
	return (p.Page-1)*p.PerPage + 1
}

// To is the index of the last visible row.
func (p Pagination) To() int {
	if p.Shown == 0 {
		return 0
	}
	return p.From() + p.Shown - 1
}

// Summary renders the "Showing x to y of z entries" line.
func (p Pagination) Summary() string {
	return fmt.Sprintf("Showing %d to %d of %d entries", p.From(), p.To(), p.Total)
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a following page exists.
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}

// Window returns up to size page numbers centred on the current page.
func (p Pagination) Window(size int) []int {
	if p.TotalPages == 0 || size <= 0 {
		return nil
	}
	start := max(p.Page-size/2, 1)
	end := min(start+size-1, p.TotalPages)
	start = max(end-size+1, 1)
	if start > end {
		return nil
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}
