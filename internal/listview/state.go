// Package listview holds the paging, sorting and search state of a master list
// and translates it into remote paged-search queries.
package listview

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/finoracle/backoffice/internal/gateway"
)

// PageSizes enumerates the selectable page sizes.
var PageSizes = []int{10, 20, 30, 50, 100}

const (
	DefaultPageSize  = 10
	DefaultSortField = "id"
)

// Direction is the sort order of a column.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort identifies the sorted column.
type Sort struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// Descending reports whether the remote `desc` flag must be set.
func (s Sort) Descending() bool {
	return s.Direction == Desc
}

// State is the full list view state of one screen.
type State struct {
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Search   string `json:"search"`
	Sort     Sort   `json:"sort"`
}

// Default returns page 1, the first page size, sorted by id ascending.
func Default() State {
	return State{
		Page:     1,
		PageSize: DefaultPageSize,
		Sort:     Sort{Field: DefaultSortField, Direction: Asc},
	}
}

// Normalize repairs values that cannot be sent upstream. sortable may be nil to
// accept any field.
func (s State) Normalize(sortable func(field string) bool) State {
	if s.Page < 1 {
		s.Page = 1
	}
	if !ValidPageSize(s.PageSize) {
		s.PageSize = DefaultPageSize
	}
	s.Search = strings.TrimSpace(s.Search)
	if s.Sort.Field == "" || (sortable != nil && s.Sort.Field != DefaultSortField && !sortable(s.Sort.Field)) {
		s.Sort.Field = DefaultSortField
	}
	if s.Sort.Direction != Desc {
		s.Sort.Direction = Asc
	}
	return s
}

// ValidPageSize reports whether n is one of PageSizes.
func ValidPageSize(n int) bool {
	return slices.Contains(PageSizes, n)
}

// Query converts the state into the remote paged-search parameters.
func (s State) Query() gateway.PageQuery {
	page := max(s.Page, 1)
	return gateway.PageQuery{
		Sort:  s.Sort.Field,
		Desc:  s.Sort.Descending(),
		Param: s.Search,
		Skip:  (page - 1) * s.PageSize,
		Take:  s.PageSize,
	}
}

// WithPage moves to page p. Out-of-range pages are kept; the remote simply
// returns an empty window.
func (s State) WithPage(p int) State {
	s.Page = max(p, 1)
	return s
}

// WithPageSize switches the page size and returns to the first page.
func (s State) WithPageSize(n int) State {
	if !ValidPageSize(n) {
		n = DefaultPageSize
	}
	if n != s.PageSize {
		s.PageSize = n
		s.Page = 1
	}
	return s
}

// WithSearch replaces the search text, returning to the first page when it changes.
func (s State) WithSearch(q string) State {
	q = strings.TrimSpace(q)
	if q != s.Search {
		s.Search = q
		s.Page = 1
	}
	return s
}

// ToggleSort flips the direction when field is already sorted, otherwise sorts
// field ascending. The page is left unchanged.
func (s State) ToggleSort(field string) State {
	if field == "" {
		return s
	}
	if s.Sort.Field == field {
		if s.Sort.Direction == Desc {
			s.Sort.Direction = Asc
		} else {
			s.Sort.Direction = Desc
		}
		return s
	}
	s.Sort = Sort{Field: field, Direction: Asc}
	return s
}

// Apply overlays explicit request parameters onto s. Recognised keys are
// search, pageSize, page, sort, dir and toggle.
func (s State) Apply(q url.Values) State {
	if q.Has("search") {
		s = s.WithSearch(q.Get("search"))
	}
	if raw := q.Get("pageSize"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			s = s.WithPageSize(n)
		}
	}
	if raw := q.Get("page"); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil {
			s = s.WithPage(p)
		}
	}
	if field := q.Get("sort"); field != "" {
		s.Sort.Field = field
		if Direction(q.Get("dir")) == Desc {
			s.Sort.Direction = Desc
		} else {
			s.Sort.Direction = Asc
		}
	}
	if field := q.Get("toggle"); field != "" {
		s = s.ToggleSort(field)
	}
	return s
}

// Values encodes the state for links.
func (s State) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(s.Page))
	v.Set("pageSize", strconv.Itoa(s.PageSize))
	if s.Search != "" {
		v.Set("search", s.Search)
	}
	v.Set("sort", s.Sort.Field)
	v.Set("dir", string(s.Sort.Direction))
	return v
}

// Link returns base with the state encoded, after applying mutate to a copy.
func (s State) Link(base string, mutate func(State) State) string {
	next := s
	if mutate != nil {
		next = mutate(next)
	}
	return base + "?" + next.Values().Encode()
}
