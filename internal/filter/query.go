package filter

import (
	"fmt"
	"math"
	"strings"
)

// Order is a sort direction.
type Order string

const (
	Ascending  Order = "ASC"
	Descending Order = "DESC"
)

// ParseOrder parses ASC or DESC (case-insensitive). Empty means Descending.
func ParseOrder(s string) (Order, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return Descending, nil
	case string(Ascending):
		return Ascending, nil
	case string(Descending):
		return Descending, nil
	default:
		return "", fmt.Errorf("[%s] invalid order %q (expected ASC or DESC)", ErrCodeInvalidParameter, s)
	}
}

// Direction returns 1 for Ascending and -1 for Descending.
func (o Order) Direction() int {
	if o == Ascending {
		return 1
	}
	return -1
}

// Sort orders results by Field. An empty Field means backend order.
type Sort struct {
	Field string `json:"orderBy,omitempty"`
	Order Order  `json:"order"`
}

// Page is a 1-based page number with a page size.
type Page struct {
	Number int `json:"page"`
	Size   int `json:"size"`
}

// Default pagination.
const (
	DefaultPage = 1
	DefaultSize = 10
)

// DefaultPagination is page 1 of 10.
var DefaultPagination = Page{Number: DefaultPage, Size: DefaultSize}

// Validate checks that page and size are at least 1 and that the offset
// fits in an int64.
func (p Page) Validate() error {
	if p.Number < 1 {
		return fmt.Errorf("[%s] page must be >= 1, got %d", ErrCodeInvalidParameter, p.Number)
	}
	if p.Size < 1 {
		return fmt.Errorf("[%s] size must be >= 1, got %d", ErrCodeInvalidParameter, p.Size)
	}
	if p.overflows() {
		return fmt.Errorf("[%s] page %d of size %d is beyond the last addressable row", ErrCodeInvalidParameter, p.Number, p.Size)
	}
	return nil
}

func (p Page) overflows() bool {
	skipped := int64(p.Number - 1)
	return skipped > 0 && skipped > math.MaxInt64/int64(p.Size)
}

// Offset is the number of rows skipped before the page. It saturates at
// math.MaxInt64 instead of wrapping.
func (p Page) Offset() int64 {
	if p.Number < 1 || p.Size < 1 {
		return 0
	}
	if p.overflows() {
		return math.MaxInt64
	}
	return int64(p.Number-1) * int64(p.Size)
}

// Limit is the page size.
func (p Page) Limit() int64 {
	return int64(p.Size)
}

// Query bundles a compiled group with its sort and page parameters.
type Query struct {
	Group *Group
	Sort  Sort
	Page  Page
}

// Document assembles the query's group with keys.
func (q *Query) Document(keys Keys) Document {
	return AssembleWith(q.Group, keys)
}
