// Package paging computes page counts and page transitions for a collection
// that the server reports by total item count.
//
// Every function is pure. Loading data for a page is the caller's job; the
// caller observes the index returned here and triggers the fetch itself.
package paging

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultSize is the page size used when none is configured.
const DefaultSize = 5

// ErrOutOfRange is returned by GoTo for targets outside [1, total].
var ErrOutOfRange = errors.New("page out of range")

// Page identifies one page of the collection.
type Page struct {
	Index int
	Size  int
}

// First returns page 1 at the given size.
func First(size int) Page {
	if size <= 0 {
		size = DefaultSize
	}
	return Page{Index: 1, Size: size}
}

// Offset is the zero-based position of the page's first item.
func (p Page) Offset() int {
	if p.Index < 1 {
		return 0
	}
	return (p.Index - 1) * p.Size
}

// TotalPages returns ceil(totalItems/size) with a floor of one page, so an
// empty collection still shows page 1. size must be positive.
func TotalPages(totalItems, size int) int {
	if size <= 0 {
		panic(fmt.Sprintf("paging: size must be positive, got %d", size))
	}
	if totalItems <= 0 {
		return 1
	}
	return (totalItems + size - 1) / size
}

// Previous steps back one page; at page 1 it returns 1.
func Previous(current int) int {
	if current > 1 {
		return current - 1
	}
	return current
}

// Next steps forward one page; at the last page it returns current.
func Next(current, total int) int {
	if current < total {
		return current + 1
	}
	return current
}

// GoTo validates a jump target. Targets outside [1, total] are rejected, not
// clamped.
func GoTo(target, total int) (int, error) {
	if target < 1 || target > total {
		return 0, fmt.Errorf("%w: %d not in [1, %d]", ErrOutOfRange, target, total)
	}
	return target, nil
}

// Window returns up to width consecutive page numbers around current, for a
// page-button strip. The window is shifted to stay inside [1, total].
func Window(current, total, width int) []int {
	if total < 1 {
		total = 1
	}
	if width <= 0 || width > total {
		width = total
	}
	start := current - width/2
	if start < 1 {
		start = 1
	}
	if start+width-1 > total {
		start = total - width + 1
	}
	pages := make([]int, width)
	for i := range pages {
		pages[i] = start + i
	}
	return pages
}

// ParseTotalCount parses an x-total-count header value. ok is false when the
// header is absent.
func ParseTotalCount(value string) (count int, ok bool, err error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, false, fmt.Errorf("parse total count %q: %w", value, err)
	}
	if n < 0 {
		return 0, false, fmt.Errorf("parse total count %q: negative", value)
	}
	return n, true, nil
}
