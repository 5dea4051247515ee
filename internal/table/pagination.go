package table

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cryptogamefiverse/nftdash/internal/models"
)

// PageSizes are the rows-per-page options offered by the pagination control.
var PageSizes = []int{10, 25, 50}

// DefaultPageSize is the initial rows per page.
const DefaultPageSize = 10

// Placeholder row heights, in the presentation layer's row units.
const (
	DenseRowHeight  = 33
	NormalRowHeight = 53
)

// ErrInvalidPageSize is returned for a page size outside PageSizes.
var ErrInvalidPageSize = errors.New("invalid page size")

// ValidatePageSize checks size against PageSizes.
func ValidatePageSize(size int) error {
	if !slices.Contains(PageSizes, size) {
		return fmt.Errorf("%w: %d (allowed: %v)", ErrInvalidPageSize, size, PageSizes)
	}
	return nil
}

// Pagination is the current page and page size.
type Pagination struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
}

// Bounds returns the half-open index range of the page within total rows,
// clipped to [0, total].
func (p Pagination) Bounds(total int) (start, end int) {
	start = p.PageIndex * p.PageSize
	end = start + p.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return start, end
}

// PageSlice returns the rows visible on the current page.
func PageSlice(rows []models.Row, p Pagination) []models.Row {
	start, end := p.Bounds(len(rows))
	return slices.Clone(rows[start:end])
}

// Placeholders is the number of empty rows needed to keep the last page the
// same height as a full one. The first page is never padded.
func Placeholders(total int, p Pagination) int {
	if p.PageIndex <= 0 {
		return 0
	}
	return max(0, (p.PageIndex+1)*p.PageSize-total)
}

// RowHeight is the height of one table row for the density flag.
func RowHeight(dense bool) int {
	if dense {
		return DenseRowHeight
	}
	return NormalRowHeight
}

// PageCount is the number of pages needed for total rows, at least 1.
func PageCount(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// clamp resets the page index to 0 when total drops below the page's first
// index. A page starting exactly at total stays, padded with placeholders.
func (p Pagination) clamp(total int) Pagination {
	if p.PageIndex > 0 && p.PageIndex*p.PageSize > total {
		p.PageIndex = 0
	}
	return p
}
