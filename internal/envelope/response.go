// Package envelope defines the response envelopes returned to callers:
// a code and message, optional data, and pagination counters for lists.
package envelope

import (
	"errors"
	"net/http"
)

// Metadata is the code and message every envelope starts with.
type Metadata struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Response is the basic envelope.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Meta returns the envelope without its data.
func (r Response) Meta() Metadata {
	return Metadata{Code: r.Code, Message: r.Message}
}

// Pagination holds the counters of one page.
type Pagination struct {
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
}

// Pages returns how many pages of Size hold Total items. A zero size
// means one page.
func (p Pagination) Pages() int64 {
	if p.Size <= 0 {
		return 1
	}
	return (p.Total + int64(p.Size) - 1) / int64(p.Size)
}

// PaginationResponse is the envelope for one page of a list.
type PaginationResponse struct {
	Response
	Pagination
}

// OK wraps data in a 200 Success envelope.
func OK(data any) Response {
	return Response{Code: http.StatusOK, Message: string(MessageSuccess), Data: data}
}

// Fail wraps err in an envelope. Errors carrying a status (StatusError)
// keep it; everything else is a 500.
func Fail(err error) Response {
	code := http.StatusInternalServerError
	var se StatusError
	if errors.As(err, &se) {
		code = se.Status()
	}
	return Response{Code: code, Message: err.Error()}
}

// Paginated wraps one page of results. Negative totals are clamped to zero.
func Paginated(data any, page, size int, total int64) PaginationResponse {
	if total < 0 {
		total = 0
	}
	return PaginationResponse{
		Response:   Response{Code: http.StatusOK, Message: string(MessageSuccess), Data: data},
		Pagination: Pagination{Page: page, Size: size, Total: total},
	}
}

// StatusError is an error that knows its response status.
type StatusError interface {
	error
	Status() int
}

type statusError struct {
	status int
	err    error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }
func (e *statusError) Status() int   { return e.status }

// WithStatus attaches a response status to err.
func WithStatus(status int, err error) error {
	if err == nil {
		return nil
	}
	return &statusError{status: status, err: err}
}
