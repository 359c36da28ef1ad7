package filter

import (
	"errors"
	"fmt"
)

// Compiler error codes (E300-E399).
const (
	ErrCodeUnsupportedOperator = "E301" // operator outside the fragment table
	ErrCodeUnknownSlot         = "E302" // slot outside must/mustNot/should/shouldNot
	ErrCodeInvalidClause       = "E303" // clause failed validation
	ErrCodeInvalidTimeframe    = "E304" // timeframe failed validation
	ErrCodeInvalidParameter    = "E305" // sort or page parameter out of range
)

// ErrUnsupportedOperator matches every *UnsupportedOperatorError via errors.Is.
var ErrUnsupportedOperator = errors.New("unsupported operator")

// UnsupportedOperatorError is returned when an operator reaches the
// fragment table without an entry. Clauses are never dropped silently.
type UnsupportedOperatorError struct {
	Operator string
	Field    string // empty when raised while decoding
}

func (e *UnsupportedOperatorError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s %q", ErrUnsupportedOperator, e.Operator)
	}
	return fmt.Sprintf("%s %q on field %q", ErrUnsupportedOperator, e.Operator, e.Field)
}

// Code returns the CLI error code.
func (e *UnsupportedOperatorError) Code() string { return ErrCodeUnsupportedOperator }

// Is makes errors.Is(err, ErrUnsupportedOperator) true.
func (e *UnsupportedOperatorError) Is(target error) bool {
	return target == ErrUnsupportedOperator
}
