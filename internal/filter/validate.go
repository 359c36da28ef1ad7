package filter

import (
	"fmt"
	"strings"

	"github.com/roach88/typica/internal/ir"
)

// ValidationError is one problem found in a clause list or timeframe.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks clauses (reported under "filters") and an optional
// timeframe. Returns all errors found (does not fail-fast).
//
// Compile accepts everything Validate rejects except unknown operators;
// payloads from other services should pass through Validate first.
func Validate(clauses []Clause, tf *Timeframe) []ValidationError {
	errs := ValidateClauses("filters", clauses)
	if tf != nil {
		errs = append(errs, ValidateTimeframe(*tf)...)
	}
	return errs
}

// ValidateClauses checks each clause; path prefixes the reported field.
func ValidateClauses(path string, clauses []Clause) []ValidationError {
	var errs []ValidationError
	for i, c := range clauses {
		errs = append(errs, validateClause(fmt.Sprintf("%s[%d]", path, i), c)...)
	}
	return errs
}

func validateClause(path string, c Clause) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(c.Field) == "" {
		errs = append(errs, ValidationError{
			Field:   path + ".field",
			Message: "field is required",
			Code:    ErrCodeInvalidClause,
		})
	}

	if !c.Operator.Valid() {
		errs = append(errs, ValidationError{
			Field:   path + ".opt",
			Message: fmt.Sprintf("unsupported operator %q", c.Operator),
			Code:    ErrCodeUnsupportedOperator,
		})
		return errs
	}

	switch c.Operator {
	case OpIn, OpNotIn:
		if !ir.IsList(c.Value) {
			errs = append(errs, ValidationError{
				Field:   path + ".value",
				Message: fmt.Sprintf("operator %q needs a list value", c.Operator),
				Code:    ErrCodeInvalidClause,
			})
		}
	case OpRegex:
		if _, ok := c.Value.(ir.String); !ok {
			errs = append(errs, ValidationError{
				Field:   path + ".value",
				Message: "regex pattern must be a string",
				Code:    ErrCodeInvalidClause,
			})
		}
	case OpExist, OpNotExist:
		if !ignorableValue(c.Value) {
			errs = append(errs, ValidationError{
				Field:   path + ".value",
				Message: fmt.Sprintf("operator %q takes no value", c.Operator),
				Code:    ErrCodeInvalidClause,
			})
		}
	}

	return errs
}

// ignorableValue accepts what search forms send for valueless operators.
func ignorableValue(v ir.Value) bool {
	switch val := v.(type) {
	case nil, ir.Null, ir.Bool:
		return true
	case ir.String:
		return val == ""
	default:
		return false
	}
}

// ValidateTimeframe checks that bounds have a field and, when both are
// integers, that from <= to.
func ValidateTimeframe(tf Timeframe) []ValidationError {
	var errs []ValidationError

	if (tf.HasFrom() || tf.HasTo()) && strings.TrimSpace(tf.Field) == "" {
		errs = append(errs, ValidationError{
			Field:   "timeframe.field",
			Message: "field is required when from or to is set",
			Code:    ErrCodeInvalidTimeframe,
		})
	}

	bounds := []struct {
		name  string
		value ir.Value
	}{{"from", tf.From}, {"to", tf.To}}
	for _, b := range bounds {
		switch bound := b.value.(type) {
		case nil, ir.Null, ir.Int, ir.Float, ir.String:
		default:
			errs = append(errs, ValidationError{
				Field:   "timeframe." + b.name,
				Message: fmt.Sprintf("bound must be a number or string, got %T", bound),
				Code:    ErrCodeInvalidTimeframe,
			})
		}
	}

	from, fromInt := tf.From.(ir.Int)
	to, toInt := tf.To.(ir.Int)
	if fromInt && toInt && from > to {
		errs = append(errs, ValidationError{
			Field:   "timeframe",
			Message: fmt.Sprintf("from (%d) is after to (%d)", from, to),
			Code:    ErrCodeInvalidTimeframe,
		})
	}

	return errs
}
