// Package pagination implements page-number pagination over counted result sets.
package pagination

import "strconv"

// Paginator splits a result set of Count rows into pages of PerPage items.
type Paginator struct {
	Count   int64
	PerPage int
}

// New returns a paginator; perPage below 1 is treated as 1.
func New(count int64, perPage int) *Paginator {
	if perPage < 1 {
		perPage = 1
	}
	if count < 0 {
		count = 0
	}
	return &Paginator{Count: count, PerPage: perPage}
}

// NumPages is at least 1, so an empty result still renders a first page.
func (p *Paginator) NumPages() int {
	if p.Count == 0 {
		return 1
	}
	per := int64(p.PerPage)
	return int((p.Count + per - 1) / per)
}

// PageRange lists page numbers 1..NumPages for templates.
func (p *Paginator) PageRange() []int {
	n := p.NumPages()
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// Number resolves a raw ?page= value: non-integers give the first page,
// out-of-range values give the last page.
func (p *Paginator) Number(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	if n < 1 || n > p.NumPages() {
		return p.NumPages()
	}
	return n
}

// Bounds returns the LIMIT and OFFSET for page number n.
func (p *Paginator) Bounds(n int) (limit, offset int) {
	return p.PerPage, (n - 1) * p.PerPage
}

// Page is one page of items.
type Page[T any] struct {
	Items     []T
	Number    int
	Paginator *Paginator
}

// NewPage wraps items loaded for page number n.
func NewPage[T any](items []T, n int, p *Paginator) *Page[T] {
	return &Page[T]{Items: items, Number: n, Paginator: p}
}

// Len is the number of items on this page.
func (pg *Page[T]) Len() int { return len(pg.Items) }

func (pg *Page[T]) HasNext() bool { return pg.Number < pg.Paginator.NumPages() }

func (pg *Page[T]) HasPrevious() bool { return pg.Number > 1 }

// HasOtherPages reports whether navigation links are needed.
func (pg *Page[T]) HasOtherPages() bool { return pg.HasNext() || pg.HasPrevious() }

func (pg *Page[T]) NextPageNumber() int { return pg.Number + 1 }

func (pg *Page[T]) PreviousPageNumber() int { return pg.Number - 1 }

// StartIndex is the 1-based position of the first item, 0 for an empty page.
func (pg *Page[T]) StartIndex() int64 {
	if pg.Paginator.Count == 0 {
		return 0
	}
	return int64(pg.Paginator.PerPage)*int64(pg.Number-1) + 1
}
