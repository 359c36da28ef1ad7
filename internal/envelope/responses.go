package envelope

import (
	"fmt"
	"net/http"
	"slices"
)

// DefaultObject names the subject of generated messages when none is set.
const DefaultObject = "Data"

// Documented describes one status an operation can answer with.
type Documented struct {
	Code        int    `json:"code"`
	Message     string `json:"message"`
	Description string `json:"description,omitempty"`
	// HasData is set when the envelope carries a data payload.
	HasData bool `json:"hasData"`
	// Paginated is set when the envelope carries page, size and total.
	Paginated bool `json:"paginated"`
}

// Responses documents the envelopes of a resource's operations.
//
//	r := Responses{Object: "User", Auth: true}
//	r.Get()             // 200, 400, 401, 404, 500
//	r.Creation(Exclude(400))
type Responses struct {
	Object string
	Auth   bool
}

type options struct {
	object  string
	auth    bool
	exclude []int
	extra   []Documented
}

// Option adjusts a single operation's documentation.
type Option func(*options)

// WithObject overrides the subject for one operation.
func WithObject(name string) Option {
	return func(o *options) { o.object = name }
}

// WithAuth adds the 401 response for one operation.
func WithAuth() Option {
	return func(o *options) { o.auth = true }
}

// Exclude drops the given codes.
func Exclude(codes ...int) Option {
	return func(o *options) { o.exclude = append(o.exclude, codes...) }
}

// With adds or replaces a documented response.
func With(d Documented) Option {
	return func(o *options) { o.extra = append(o.extra, d) }
}

// Get documents a single-record read.
func (r Responses) Get(opts ...Option) []Documented {
	o := r.options(opts)
	return o.build(
		Documented{Code: http.StatusOK, Message: string(MessageSuccess), Description: "Success get data", HasData: true},
		notFound(o.object),
	)
}

// Pagination documents a list read.
func (r Responses) Pagination(opts ...Option) []Documented {
	o := r.options(opts)
	return o.build(
		Documented{Code: http.StatusOK, Message: "Success get all " + o.object, HasData: true, Paginated: true},
		notFound(o.object),
	)
}

// Creation documents a create.
func (r Responses) Creation(opts ...Option) []Documented {
	o := r.options(opts)
	return o.build(
		Documented{Code: http.StatusCreated, Message: o.object + " created successfully", HasData: true},
	)
}

// Update documents an update.
func (r Responses) Update(opts ...Option) []Documented {
	o := r.options(opts)
	msg := o.object + " updated successfully"
	return o.build(
		Documented{Code: http.StatusOK, Message: msg, HasData: true},
		Documented{Code: http.StatusNoContent, Message: msg},
	)
}

// Delete documents a delete.
func (r Responses) Delete(opts ...Option) []Documented {
	o := r.options(opts)
	msg := o.object + " delete successfully"
	return o.build(
		Documented{Code: http.StatusOK, Message: msg, HasData: true},
		Documented{Code: http.StatusNoContent, Message: msg},
	)
}

func (r Responses) options(opts []Option) options {
	o := options{object: r.Object, auth: r.Auth}
	if o.object == "" {
		o.object = DefaultObject
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func notFound(object string) Documented {
	return Documented{Code: http.StatusNotFound, Message: fmt.Sprintf("%s not found", object)}
}

// build merges the operation's own responses with the ones every operation
// shares, applies extras and exclusions, and sorts by code.
func (o options) build(own ...Documented) []Documented {
	byCode := map[int]Documented{
		http.StatusBadRequest: {
			Code:        http.StatusBadRequest,
			Message:     "Bad Request",
			Description: "Occurs when the request you make does not match or is invalid",
		},
		http.StatusInternalServerError: {
			Code:        http.StatusInternalServerError,
			Message:     "Internal Server Error",
			Description: "Occurs when there is an engine or lib error in the engine",
		},
	}
	for _, d := range own {
		byCode[d.Code] = d
	}
	for _, d := range o.extra {
		byCode[d.Code] = d
	}
	if o.auth {
		byCode[http.StatusUnauthorized] = Documented{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	}
	for _, code := range o.exclude {
		delete(byCode, code)
	}

	out := make([]Documented, 0, len(byCode))
	for _, d := range byCode {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b Documented) int { return a.Code - b.Code })
	return out
}

// Codes lists the codes of documented responses in order.
func Codes(docs []Documented) []int {
	codes := make([]int, len(docs))
	for i, d := range docs {
		codes[i] = d.Code
	}
	return codes
}
