package harness

import (
	"fmt"

	"github.com/roach88/typica/internal/filter"
)

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// Errors lists each failed expectation. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Document is the assembled query document (nil when the payload was rejected).
	Document filter.Document `json:"document,omitempty"`

	// Fingerprint identifies Document.
	Fingerprint string `json:"fingerprint,omitempty"`

	// SQL and Params are the SQLite statement run against the rows.
	SQL    string `json:"sql,omitempty"`
	Params []any  `json:"params,omitempty"`

	// IDs are the selected row ids in result order; Total counts every
	// matching row regardless of paging.
	IDs   []int64 `json:"ids,omitempty"`
	Total int64   `json:"total"`

	// ErrCode and ErrPath describe a rejected payload.
	ErrCode string `json:"err_code,omitempty"`
	ErrPath string `json:"err_path,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{Pass: true}
}

// fail records a failed expectation.
func (r *Result) fail(format string, args ...any) {
	r.Pass = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}
