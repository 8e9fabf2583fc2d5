// Package pagination splits ordered result sets into fixed-size pages and
// turns untrusted page parameters into a valid page number.
package pagination

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// DefaultPerPage is the page size used across the blog.
const DefaultPerPage = 10

// Source is an ordered, lazily evaluated result set.
type Source[T any] interface {
	Count(ctx context.Context) (int, error)
	Fetch(ctx context.Context, offset, limit int) ([]T, error)
}

// Page is one window of a Source.
type Page[T any] struct {
	Items    []T `json:"items"`
	Number   int `json:"number"`
	NumPages int `json:"num_pages"`
	Count    int `json:"count"`
	PerPage  int `json:"per_page"`
}

// NumPages returns the page count for count items, never less than one.
func NumPages(count, perPage int) int {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if count <= 0 {
		return 1
	}
	return (count + perPage - 1) / perPage
}

// Resolve turns a raw page parameter into a page number in [1, numPages].
// Anything that is not an integer selects the first page. Numbers outside
// the range, including ones too large for an int, select the last page.
func Resolve(raw string, numPages int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if errors.Is(err, strconv.ErrRange) {
		return numPages
	}
	if err != nil {
		return 1
	}
	if n < 1 || n > numPages {
		return numPages
	}
	return n
}

// Paginate fetches the page of src selected by raw. It never fails because of
// the page parameter.
func Paginate[T any](ctx context.Context, src Source[T], perPage int, raw string) (*Page[T], error) {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	count, err := src.Count(ctx)
	if err != nil {
		return nil, err
	}
	numPages := NumPages(count, perPage)
	number := Resolve(raw, numPages)

	items, err := src.Fetch(ctx, (number-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:    items,
		Number:   number,
		NumPages: numPages,
		Count:    count,
		PerPage:  perPage,
	}, nil
}

func (p *Page[T]) HasNext() bool {
	return p.Number < p.NumPages
}

func (p *Page[T]) HasPrevious() bool {
	return p.Number > 1
}

func (p *Page[T]) NextPageNumber() int {
	if !p.HasNext() {
		return p.Number
	}
	return p.Number + 1
}

func (p *Page[T]) PreviousPageNumber() int {
	if !p.HasPrevious() {
		return p.Number
	}
	return p.Number - 1
}

// StartIndex is the 1-based index of the first item on the page, 0 when empty.
func (p *Page[T]) StartIndex() int {
	if p.Count == 0 {
		return 0
	}
	return (p.Number-1)*p.PerPage + 1
}

// EndIndex is the 1-based index of the last item on the page.
func (p *Page[T]) EndIndex() int {
	if p.Number == p.NumPages {
		return p.Count
	}
	return p.Number * p.PerPage
}
