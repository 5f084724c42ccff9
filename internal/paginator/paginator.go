// Package paginator cuts an already filtered and ordered collection into
// fixed-size pages. It never filters or sorts on its own.
package paginator

import (
	"context"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// Page is one bounded slice of a collection plus the collection's size.
type Page[T any] struct {
	Items    []T
	Number   int // 1-indexed
	PerPage  int
	Total    int64
	NumPages int
}

// New paginates an in-memory collection.
func New[T any](items []T, perPage, number int) Page[T] {
	perPage = normalizePerPage(perPage)
	total := int64(len(items))
	numPages := countPages(total, perPage)
	number = Clamp(number, numPages)

	start := (number - 1) * perPage
	end := start + perPage
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}

	return Page[T]{
		Items:    items[start:end],
		Number:   number,
		PerPage:  perPage,
		Total:    total,
		NumPages: numPages,
	}
}

// FromQuery paginates a gorm query. The query must already carry its WHERE
// and ORDER BY clauses; raw is the unparsed ?page= value. Associations named
// in preload are loaded for the selected page only.
func FromQuery[T any](ctx context.Context, query *gorm.DB, perPage int, raw string, preload ...string) (Page[T], error) {
	perPage = normalizePerPage(perPage)

	var total int64
	if err := query.Session(&gorm.Session{}).WithContext(ctx).Count(&total).Error; err != nil {
		return Page[T]{}, err
	}

	numPages := countPages(total, perPage)
	number := Clamp(ParseNumber(raw), numPages)

	items := make([]T, 0, perPage)
	if total > 0 {
		tx := query.Session(&gorm.Session{}).WithContext(ctx)
		for _, assoc := range preload {
			tx = tx.Preload(assoc)
		}
		err := tx.Offset((number - 1) * perPage).
			Limit(perPage).
			Find(&items).Error
		if err != nil {
			return Page[T]{}, err
		}
	}

	return Page[T]{
		Items:    items,
		Number:   number,
		PerPage:  perPage,
		Total:    total,
		NumPages: numPages,
	}, nil
}

// ParseNumber reads a ?page= value. Anything that is not an integer means the
// first page; out-of-range integers are left for Clamp.
func ParseNumber(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "last" {
		return int(^uint(0) >> 1)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return n
}

// Clamp moves number into [1, numPages].
func Clamp(number, numPages int) int {
	if numPages < 1 {
		numPages = 1
	}
	if number < 1 {
		return 1
	}
	if number > numPages {
		return numPages
	}
	return number
}

func (p Page[T]) HasNext() bool {
	return p.Number < p.NumPages
}

func (p Page[T]) HasPrevious() bool {
	return p.Number > 1
}

func (p Page[T]) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

func (p Page[T]) NextNumber() int {
	return p.Number + 1
}

func (p Page[T]) PreviousNumber() int {
	return p.Number - 1
}

// StartIndex is the 1-based position of the first item on the page, 0 when empty.
func (p Page[T]) StartIndex() int64 {
	if p.Total == 0 {
		return 0
	}
	return int64((p.Number-1)*p.PerPage) + 1
}

// EndIndex is the 1-based position of the last item on the page.
func (p Page[T]) EndIndex() int64 {
	if p.Total == 0 {
		return 0
	}
	return p.StartIndex() + int64(len(p.Items)) - 1
}

// PageRange lists every page number, for the pager widget.
func (p Page[T]) PageRange() []int {
	r := make([]int, p.NumPages)
	for i := range r {
		r[i] = i + 1
	}
	return r
}

func normalizePerPage(perPage int) int {
	if perPage < 1 {
		return 1
	}
	return perPage
}

// countPages never returns less than one: an empty collection still has an
// empty first page.
func countPages(total int64, perPage int) int {
	if total == 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
