package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/typica/internal/ir"
)

func TestParseOrder(t *testing.T) {
	tests := []struct {
		input    string
		expected Order
	}{
		{"", Descending},
		{"asc", Ascending},
		{"ASC", Ascending},
		{" desc ", Descending},
	}
	for _, tt := range tests {
		order, err := ParseOrder(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, order)
	}

	_, err := ParseOrder("up")
	assert.ErrorContains(t, err, ErrCodeInvalidParameter)
}

func TestOrder_Direction(t *testing.T) {
	assert.Equal(t, 1, Ascending.Direction())
	assert.Equal(t, -1, Descending.Direction())
}

func TestPage(t *testing.T) {
	tests := []struct {
		page   Page
		offset int64
		limit  int64
	}{
		{DefaultPagination, 0, 10},
		{Page{Number: 3, Size: 25}, 50, 25},
		{Page{Number: 0, Size: 5}, 0, 5},
		{Page{Number: math.MaxInt64, Size: 10}, math.MaxInt64, 10},
		{Page{Number: 2, Size: math.MaxInt64}, math.MaxInt64, math.MaxInt64},
		{Page{Number: 1 << 32, Size: 1 << 31}, (1<<32 - 1) << 31, 1 << 31},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.offset, tt.page.Offset())
		assert.Equal(t, tt.limit, tt.page.Limit())
	}
}

func TestPage_Validate(t *testing.T) {
	assert.NoError(t, DefaultPagination.Validate())
	assert.ErrorContains(t, Page{Number: 0, Size: 1}.Validate(), "page must be >= 1")
	assert.ErrorContains(t, Page{Number: 1, Size: 0}.Validate(), "size must be >= 1")
	assert.ErrorContains(t, Page{Number: math.MaxInt64, Size: 10}.Validate(), "beyond the last addressable row")
	assert.ErrorContains(t, Page{Number: 1 << 40, Size: 1 << 40}.Validate(), "beyond the last addressable row")
	assert.NoError(t, Page{Number: 1, Size: math.MaxInt64}.Validate())
}

func TestQuery_Document(t *testing.T) {
	g, err := Compile([]Clause{{Field: "a", Value: ir.Int(1)}}, Must)
	require.NoError(t, err)
	q := &Query{Group: g, Page: DefaultPagination}

	assert.Equal(t, Document{"andOpt": []any{map[string]any{"a": int64(1)}}}, q.Document(OptKeys))
}
