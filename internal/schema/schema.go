// Package schema decodes and validates filter request payloads and turns
// them into compiled filter queries.
//
// A payload is JSON or YAML shaped like:
//
//	page: 1            # >= 1, default 1
//	size: 10           # >= 1, default 10
//	order: DESC        # ASC | DESC, default DESC
//	orderBy: createdAt
//	timezone: Asia/Jakarta
//	timeframe: {field: createdAt, from: "2024-01-01", to: "2024-01-31", formatDate: "%Y-%m-%d"}
//	filters:   [{field: status, value: active, opt: eq}]   # must
//	mustNot:   [...]
//	should:    [...]
//	shouldNot: [...]
//	field: name        # single-search shorthand
//	value: ann
//	opt: re
//
// The shape is enforced by the closed CUE definition #Payload in
// payload.cue, so unknown keys are rejected.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/typica/internal/filter"
	"github.com/roach88/typica/internal/ir"
)

//go:embed payload.cue
var payloadCUE []byte

// Schema validates payloads against #Payload. A Schema is not safe for
// concurrent use; create one per goroutine or use the package-level Decode.
type Schema struct {
	ctx     *cue.Context
	payload cue.Value
}

// New compiles the embedded payload definition.
func New() (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(payloadCUE, cue.Filename("payload.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile payload schema: %w", err)
	}
	def := v.LookupPath(cue.ParsePath("#Payload"))
	if !def.Exists() {
		return nil, fmt.Errorf("compile payload schema: #Payload not found")
	}
	return &Schema{ctx: ctx, payload: def}, nil
}

// Decode parses data with a fresh Schema.
func Decode(data []byte) (*Payload, error) {
	s, err := New()
	if err != nil {
		return nil, err
	}
	return s.Decode(data)
}

// DecodeFile reads and decodes a payload file.
func DecodeFile(path string) (*Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return Decode(data)
}

// Decode parses JSON or YAML, validates it against #Payload (applying
// defaults) and returns the typed payload. Schema violations are
// reported together as a *PayloadError.
func (s *Schema) Decode(data []byte) (*Payload, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &PayloadError{Issues: []Issue{{Message: err.Error(), Code: ErrCodeDecode}}}
	}
	if raw == nil {
		raw = map[string]any{}
	}

	v := s.ctx.Encode(raw)
	if err := v.Err(); err != nil {
		return nil, &PayloadError{Issues: []Issue{{Message: err.Error(), Code: ErrCodeDecode}}}
	}

	unified := s.payload.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		slog.Debug("payload rejected by schema", "error", err)
		return nil, fromCUE(err)
	}

	resolved, err := unified.MarshalJSON()
	if err != nil {
		return nil, fromCUE(err)
	}

	var p Payload
	if err := json.Unmarshal(resolved, &p); err != nil {
		return nil, &PayloadError{Issues: []Issue{{Message: err.Error(), Code: ErrCodeDecode}}}
	}
	return &p, nil
}

// Payload is a validated filter request.
type Payload struct {
	Page      int               `json:"page"`
	Size      int               `json:"size"`
	Order     filter.Order      `json:"order"`
	OrderBy   string            `json:"orderBy,omitempty"`
	Timeframe *filter.Timeframe `json:"timeframe,omitempty"`
	Timezone  string            `json:"timezone"`
	Filters   []filter.Clause   `json:"filters,omitempty"`
	MustNot   []filter.Clause   `json:"mustNot,omitempty"`
	Should    []filter.Clause   `json:"should,omitempty"`
	ShouldNot []filter.Clause   `json:"shouldNot,omitempty"`

	// Search is the single-search shorthand (field/value/opt), nil when absent.
	Search *filter.Clause `json:"search,omitempty"`
}

type payloadWire struct {
	Page      int               `json:"page"`
	Size      int               `json:"size"`
	Order     filter.Order      `json:"order"`
	OrderBy   *string           `json:"orderBy"`
	Timeframe *filter.Timeframe `json:"timeframe"`
	Timezone  string            `json:"timezone"`
	Filters   []filter.Clause   `json:"filters"`
	MustNot   []filter.Clause   `json:"mustNot"`
	Should    []filter.Clause   `json:"should"`
	ShouldNot []filter.Clause   `json:"shouldNot"`
	Field     *string           `json:"field"`
	Value     json.RawMessage   `json:"value"`
	Operator  filter.Operator   `json:"opt"`
}

// UnmarshalJSON decodes the schema-resolved form, folding the shorthand
// into Search. A shorthand without value compares against "".
func (p *Payload) UnmarshalJSON(data []byte) error {
	var w payloadWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*p = Payload{
		Page:      w.Page,
		Size:      w.Size,
		Order:     w.Order,
		Timeframe: w.Timeframe,
		Timezone:  w.Timezone,
		Filters:   w.Filters,
		MustNot:   w.MustNot,
		Should:    w.Should,
		ShouldNot: w.ShouldNot,
	}
	if w.OrderBy != nil {
		p.OrderBy = *w.OrderBy
	}

	if w.Field != nil && *w.Field != "" {
		var value ir.Value = ir.String("")
		if len(w.Value) > 0 {
			v, err := ir.UnmarshalValue(w.Value)
			if err != nil {
				return fmt.Errorf("value: %w", err)
			}
			value = v
		}
		p.Search = &filter.Clause{Field: *w.Field, Value: value, Operator: w.Operator}
	}
	return nil
}

// Musts returns the shorthand clause (if any) followed by Filters.
func (p *Payload) Musts() []filter.Clause {
	if p.Search == nil {
		return p.Filters
	}
	return append([]filter.Clause{*p.Search}, p.Filters...)
}

// Validate runs the clause and timeframe checks of the filter package
// over every clause list.
func (p *Payload) Validate() []filter.ValidationError {
	var errs []filter.ValidationError
	if p.Search != nil {
		errs = append(errs, filter.ValidateClauses("search", []filter.Clause{*p.Search})...)
	}
	errs = append(errs, filter.ValidateClauses("filters", p.Filters)...)
	errs = append(errs, filter.ValidateClauses("mustNot", p.MustNot)...)
	errs = append(errs, filter.ValidateClauses("should", p.Should)...)
	errs = append(errs, filter.ValidateClauses("shouldNot", p.ShouldNot)...)
	if p.Timeframe != nil {
		errs = append(errs, filter.ValidateTimeframe(*p.Timeframe)...)
	}
	return errs
}

// Query validates the payload and compiles it: the shorthand and filters
// into Must, the other lists into their slots, then the timeframe (with
// string bounds converted through formatDate and timezone).
func (p *Payload) Query() (*filter.Query, error) {
	if errs := p.Validate(); len(errs) > 0 {
		return nil, fromValidation(errs)
	}

	loc, err := p.Location()
	if err != nil {
		return nil, err
	}

	g := &filter.Group{}
	slots := []struct {
		slot    filter.Slot
		clauses []filter.Clause
	}{
		{filter.Must, p.Musts()},
		{filter.MustNot, p.MustNot},
		{filter.Should, p.Should},
		{filter.ShouldNot, p.ShouldNot},
	}
	for _, s := range slots {
		if err := g.Compile(s.slot, s.clauses...); err != nil {
			return nil, err
		}
	}

	if p.Timeframe != nil {
		tf, err := resolveTimeframe(*p.Timeframe, loc)
		if err != nil {
			return nil, err
		}
		g.CompileTimeframe(tf)
	}

	order, err := filter.ParseOrder(string(p.Order))
	if err != nil {
		return nil, err
	}
	page := filter.Page{Number: p.Page, Size: p.Size}
	if err := page.Validate(); err != nil {
		return nil, err
	}

	return &filter.Query{
		Group: g,
		Sort:  filter.Sort{Field: p.OrderBy, Order: order},
		Page:  page,
	}, nil
}
