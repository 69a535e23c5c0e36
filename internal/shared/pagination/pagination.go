// Package pagination provides the page/size/search query shared by list endpoints.
package pagination

import "math"

const (
	DefaultPage = 1
	DefaultSize = 10
	// MaxSize is the upper bound for a single page.
	MaxSize = 30
	// MaxPage keeps (MaxPage-1)*MaxSize within int. Any page past it is empty anyway.
	MaxPage = math.MaxInt/MaxSize + 1
)

// Query is bound from ?page=&size=&s= query parameters.
type Query struct {
	Page   int    `form:"page"`
	Size   int    `form:"size"`
	Search string `form:"s"`
}

// Normalize returns a copy with defaults applied, Size clamped to MaxSize and Page to MaxPage.
func (q Query) Normalize() Query {
	switch {
	case q.Page < 1:
		q.Page = DefaultPage
	case q.Page > MaxPage:
		q.Page = MaxPage
	}
	switch {
	case q.Size < 1:
		q.Size = DefaultSize
	case q.Size > MaxSize:
		q.Size = MaxSize
	}
	return q
}

// Offset is the number of rows to skip for the normalized query.
func (q Query) Offset() int {
	n := q.Normalize()
	return (n.Page - 1) * n.Size
}

// Limit is the normalized page size.
func (q Query) Limit() int {
	return q.Normalize().Size
}

// Page is one page of results.
type Page[T any] struct {
	Items []T   `json:"items"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
}

// NewPage builds a Page for the normalized query. A nil slice is replaced with an empty one so
// it encodes as [].
func NewPage[T any](items []T, q Query, total int64) Page[T] {
	n := q.Normalize()
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Page: n.Page, Size: n.Size, Total: total}
}

// Map converts the items of a page, keeping the paging metadata.
func Map[T, U any](p Page[T], f func(T) U) Page[U] {
	out := make([]U, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, f(it))
	}
	return Page[U]{Items: out, Page: p.Page, Size: p.Size, Total: p.Total}
}
