// Package pagination reads list windows from query strings and wraps one
// page of results for JSON responses.
package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Params struct {
	Limit  int
	Offset int
}

// FromContext parses ?limit= and ?offset=, also accepting _count and
// _offset. Missing or malformed values fall back to the defaults and limit
// never exceeds MaxLimit.
func FromContext(c echo.Context) Params {
	p := Params{
		Limit:  queryInt(c, "limit", "_count"),
		Offset: queryInt(c, "offset", "_offset"),
	}
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultLimit
	case p.Limit > MaxLimit:
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// queryInt returns the first of names present in the query as an int.
func queryInt(c echo.Context, names ...string) int {
	for _, name := range names {
		if v := c.QueryParam(name); v != "" {
			n, _ := strconv.Atoi(v)
			return n
		}
	}
	return 0
}

func (p Params) HasNext(total int) bool {
	return p.Offset+p.Limit < total
}

type Page[T any] struct {
	Data    []T  `json:"data"`
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// NewPage never returns a nil Data slice, so an empty page encodes as [].
func NewPage[T any](items []T, total int, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Data:    items,
		Total:   total,
		Limit:   p.Limit,
		Offset:  p.Offset,
		HasMore: p.HasNext(total),
	}
}
