package domain

import "fmt"

// Pagination is an offset/limit window over an ordered result set.
type Pagination struct {
	Offset int
	Limit  int
}

// Validate rejects negative offsets and non-positive limits.
func (p Pagination) Validate() error {
	if p.Offset < 0 {
		return fmt.Errorf("%w: offset must be >= 0, got %d", ErrInvalidPagination, p.Offset)
	}
	if p.Limit <= 0 {
		return fmt.Errorf("%w: limit must be > 0, got %d", ErrInvalidPagination, p.Limit)
	}
	return nil
}

// Window applies the pagination to an already ordered slice using the
// fetch-one-extra convention: hasMore is true when an item exists past the page.
func Window[T any](items []T, p Pagination) ([]T, bool) {
	if p.Offset >= len(items) {
		return []T{}, false
	}
	end := p.Offset + p.Limit
	if end >= len(items) {
		return items[p.Offset:], false
	}
	return items[p.Offset:end], true
}

// TrimExtra truncates a result fetched with limit+1 rows and reports hasMore.
func TrimExtra[T any](items []T, limit int) ([]T, bool) {
	if len(items) > limit {
		return items[:limit], true
	}
	return items, false
}
