package gateway

import (
	"net/url"
	"strconv"
)

// PageQuery carries the paged search parameters understood by the remote service.
type PageQuery struct {
	Sort  string
	Desc  bool
	Param string
	Skip  int
	Take  int
}

// Values encodes the query in the order and spelling the remote service expects.
func (q PageQuery) Values() url.Values {
	v := url.Values{}
	v.Set("sort", q.Sort)
	v.Set("desc", strconv.FormatBool(q.Desc))
	v.Set("param", q.Param)
	v.Set("skip", strconv.Itoa(q.Skip))
	v.Set("take", strconv.Itoa(q.Take))
	return v
}

// PagedResult is the window of records plus the total matching count.
type PagedResult[T any] struct {
	Results  []T `json:"results"`
	RowCount int `json:"rowCount"`
}

// Source tells where a PagedResult came from.
type Source string

const (
	SourceRemote  Source = "remote"
	SourceFixture Source = "fixture"
)
