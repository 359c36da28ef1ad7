package filter

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/typica/internal/ir"
)

// Clause is one field/operator/value condition.
type Clause struct {
	Field    string   `json:"field"`
	Value    ir.Value `json:"value"`
	Operator Operator `json:"opt,omitempty"`
}

// Fragment maps the clause through the fragment table.
func (c Clause) Fragment() (Fragment, error) {
	build, ok := fragmentTable[c.Operator]
	if !ok {
		return Fragment{}, &UnsupportedOperatorError{Operator: string(c.Operator), Field: c.Field}
	}
	return build(c.Field, valueOrNull(c.Value)), nil
}

type clauseWire struct {
	Field    string          `json:"field"`
	Value    json.RawMessage `json:"value"`
	Operator Operator        `json:"opt"`
}

// UnmarshalJSON keeps integral numbers integral and fails closed on
// unknown operators.
func (c *Clause) UnmarshalJSON(data []byte) error {
	var w clauseWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	v, err := decodeJSONValue(w.Value)
	if err != nil {
		return fmt.Errorf("clause %q value: %w", w.Field, err)
	}
	*c = Clause{Field: w.Field, Value: v, Operator: w.Operator}
	return nil
}

// UnmarshalYAML decodes the same keys as UnmarshalJSON.
func (c *Clause) UnmarshalYAML(node *yaml.Node) error {
	var w struct {
		Field    string   `yaml:"field"`
		Value    any      `yaml:"value"`
		Operator Operator `yaml:"opt"`
	}
	if err := node.Decode(&w); err != nil {
		return err
	}
	v, err := ir.FromAny(w.Value)
	if err != nil {
		return fmt.Errorf("line %d: clause %q value: %w", node.Line, w.Field, err)
	}
	*c = Clause{Field: w.Field, Value: v, Operator: w.Operator}
	return nil
}

// Timeframe bounds Field to an inclusive range. A nil (or Null) bound is
// absent. FormatDate is consumed by the payload layer, which converts
// string bounds before compilation.
type Timeframe struct {
	From       ir.Value `json:"from,omitempty"`
	To         ir.Value `json:"to,omitempty"`
	Field      string   `json:"field,omitempty"`
	FormatDate string   `json:"formatDate,omitempty"`
}

// HasFrom reports whether the lower bound is present.
func (tf Timeframe) HasFrom() bool { return present(tf.From) }

// HasTo reports whether the upper bound is present.
func (tf Timeframe) HasTo() bool { return present(tf.To) }

// UnmarshalJSON decodes from/to as ir values.
func (tf *Timeframe) UnmarshalJSON(data []byte) error {
	var w struct {
		From       json.RawMessage `json:"from"`
		To         json.RawMessage `json:"to"`
		Field      string          `json:"field"`
		FormatDate string          `json:"formatDate"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	from, err := decodeJSONValue(w.From)
	if err != nil {
		return fmt.Errorf("timeframe from: %w", err)
	}
	to, err := decodeJSONValue(w.To)
	if err != nil {
		return fmt.Errorf("timeframe to: %w", err)
	}
	*tf = Timeframe{From: absentIfNull(from), To: absentIfNull(to), Field: w.Field, FormatDate: w.FormatDate}
	return nil
}

func decodeJSONValue(raw json.RawMessage) (ir.Value, error) {
	if len(raw) == 0 {
		return ir.Null{}, nil
	}
	return ir.UnmarshalValue(raw)
}

func present(v ir.Value) bool {
	if v == nil {
		return false
	}
	_, isNull := v.(ir.Null)
	return !isNull
}

func absentIfNull(v ir.Value) ir.Value {
	if !present(v) {
		return nil
	}
	return v
}

func valueOrNull(v ir.Value) ir.Value {
	if v == nil {
		return ir.Null{}
	}
	return v
}
