package filter

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Operator selects how a clause compares its field against its value.
// The wire codes are the short forms below; ParseOperator also accepts
// long aliases.
type Operator string

const (
	OpNone         Operator = "" // equality fallback
	OpEqual        Operator = "eq"
	OpNotEqual     Operator = "ne"
	OpIn           Operator = "in"
	OpNotIn        Operator = "nin"
	OpGreater      Operator = "gt"
	OpGreaterEqual Operator = "gte"
	OpLess         Operator = "lt"
	OpLessEqual    Operator = "lte"
	OpExist        Operator = "exist"
	OpNotExist     Operator = "not_exist"
	OpRegex        Operator = "re"
)

// Operators lists every wire code in documentation order.
var Operators = []Operator{
	OpEqual, OpNotEqual, OpRegex,
	OpGreaterEqual, OpGreater, OpLessEqual, OpLess,
	OpIn, OpNotIn, OpExist, OpNotExist,
}

var operatorAliases = map[string]Operator{
	"eq":                    OpEqual,
	"equal":                 OpEqual,
	"ne":                    OpNotEqual,
	"unequal":               OpNotEqual,
	"in":                    OpIn,
	"include":               OpIn,
	"nin":                   OpNotIn,
	"exclude":               OpNotIn,
	"gt":                    OpGreater,
	"greater-than":          OpGreater,
	"gte":                   OpGreaterEqual,
	"greater-than-or-equal": OpGreaterEqual,
	"lt":                    OpLess,
	"less-than":             OpLess,
	"lte":                   OpLessEqual,
	"less-than-or-equal":    OpLessEqual,
	"exist":                 OpExist,
	"exists":                OpExist,
	"not_exist":             OpNotExist,
	"not-exist":             OpNotExist,
	"not-exists":            OpNotExist,
	"re":                    OpRegex,
	"regex":                 OpRegex,
	"regex-match":           OpRegex,
}

var operatorDescriptions = map[Operator]string{
	OpEqual:        "value is equal to",
	OpNotEqual:     "value isn't equal to",
	OpRegex:        "regex match",
	OpGreaterEqual: "value is greater than or equal to",
	OpGreater:      "value is greater than",
	OpLessEqual:    "value is lower than or equal to",
	OpLess:         "value is lower than",
	OpIn:           "values that must exist",
	OpNotIn:        "values that don't exist",
	OpExist:        "field exists",
	OpNotExist:     "field doesn't exist",
}

// ParseOperator parses a wire code or alias (case-insensitive). The empty
// string parses to OpNone. Anything else is an *UnsupportedOperatorError.
func ParseOperator(s string) (Operator, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return OpNone, nil
	}
	if op, ok := operatorAliases[key]; ok {
		return op, nil
	}
	return "", &UnsupportedOperatorError{Operator: s}
}

// Description returns the human-readable meaning of the operator.
func (o Operator) Description() string {
	if o == OpNone {
		return "value is equal to (default)"
	}
	return operatorDescriptions[o]
}

// Valid reports whether o is OpNone or a known wire code.
func (o Operator) Valid() bool {
	_, ok := fragmentTable[o]
	return ok
}

// UnmarshalJSON decodes a string (or null) through ParseOperator.
func (o *Operator) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = OpNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("operator must be a string: %w", err)
	}
	op, err := ParseOperator(s)
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// UnmarshalYAML decodes a scalar (or null) through ParseOperator.
func (o *Operator) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: operator must be a scalar", node.Line)
	}
	if node.ShortTag() == "!!null" {
		*o = OpNone
		return nil
	}
	op, err := ParseOperator(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*o = op
	return nil
}
