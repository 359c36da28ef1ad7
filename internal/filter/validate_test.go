package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/typica/internal/ir"
)

func TestValidate_Valid(t *testing.T) {
	clauses := []Clause{
		{Field: "age", Operator: OpGreaterEqual, Value: ir.Int(18)},
		{Field: "tag", Operator: OpIn, Value: ir.NewArray(ir.String("a"))},
		{Field: "name", Operator: OpRegex, Value: ir.String("^a")},
		{Field: "email", Operator: OpExist, Value: ir.String("")},
		{Field: "phone", Operator: OpNotExist},
	}
	tf := &Timeframe{Field: "createdAt", From: ir.Int(1), To: ir.Int(2)}

	assert.Empty(t, Validate(clauses, tf))
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		clause Clause
		field  string
		code   string
	}{
		{"empty field", Clause{Field: " ", Value: ir.Int(1)}, "filters[0].field", ErrCodeInvalidClause},
		{"unknown operator", Clause{Field: "a", Operator: Operator("like")}, "filters[0].opt", ErrCodeUnsupportedOperator},
		{"in needs list", Clause{Field: "a", Operator: OpIn, Value: ir.String("x")}, "filters[0].value", ErrCodeInvalidClause},
		{"nin needs list", Clause{Field: "a", Operator: OpNotIn, Value: ir.Int(1)}, "filters[0].value", ErrCodeInvalidClause},
		{"regex needs string", Clause{Field: "a", Operator: OpRegex, Value: ir.Int(1)}, "filters[0].value", ErrCodeInvalidClause},
		{"exist takes no value", Clause{Field: "a", Operator: OpExist, Value: ir.String("x")}, "filters[0].value", ErrCodeInvalidClause},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate([]Clause{tt.clause}, nil)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
			assert.Equal(t, tt.code, errs[0].Code)
		})
	}
}

func TestValidate_CollectsAll(t *testing.T) {
	errs := ValidateClauses("mustNot", []Clause{
		{Field: "", Operator: OpIn, Value: ir.Int(1)},
		{Field: "ok", Value: ir.Int(1)},
		{Field: "b", Operator: OpRegex, Value: ir.Bool(true)},
	})

	require.Len(t, errs, 3)
	assert.Equal(t, "mustNot[0].field", errs[0].Field)
	assert.Equal(t, "mustNot[0].value", errs[1].Field)
	assert.Equal(t, "mustNot[2].value", errs[2].Field)
}

func TestValidateTimeframe(t *testing.T) {
	tests := []struct {
		name   string
		tf     Timeframe
		fields []string
	}{
		{"no bounds without field", Timeframe{}, nil},
		{"bound without field", Timeframe{From: ir.Int(1)}, []string{"timeframe.field"}},
		{"object bound", Timeframe{Field: "t", To: ir.Object{}}, []string{"timeframe.to"}},
		{"inverted range", Timeframe{Field: "t", From: ir.Int(5), To: ir.Int(1)}, []string{"timeframe"}},
		{"string bounds are not ordered here", Timeframe{Field: "t", From: ir.String("b"), To: ir.String("a")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateTimeframe(tt.tf)
			var fields []string
			for _, e := range errs {
				fields = append(fields, e.Field)
				assert.Equal(t, ErrCodeInvalidTimeframe, e.Code)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	e := ValidationError{Field: "filters[0].field", Message: "field is required", Code: ErrCodeInvalidClause}
	assert.Equal(t, "[E303] filters[0].field: field is required", e.Error())
}
