// Package querymongo renders compiled filter groups as MongoDB query
// documents and find options. Nothing here talks to a server.
package querymongo

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/roach88/typica/internal/filter"
	"github.com/roach88/typica/internal/ir"
)

// Top-level operators per slot. MustNot and ShouldNot share $nor:
// NOR(a, b) == AND(NOT a, NOT b), so MustNot fragments followed by
// ShouldNot fragments under one $nor keeps both meanings.
const (
	opAnd = "$and"
	opOr  = "$or"
	opNor = "$nor"
)

var condOperators = map[filter.Cond]string{
	filter.CondIn:           "$in",
	filter.CondNotIn:        "$nin",
	filter.CondGreater:      "$gt",
	filter.CondGreaterEqual: "$gte",
	filter.CondLess:         "$lt",
	filter.CondLessEqual:    "$lte",
	filter.CondExists:       "$exists",
	filter.CondRegex:        "$regex",
}

// Filter renders g as a query filter for Collection.Find.
// Empty slots are omitted; an empty group yields an empty document
// (match everything). Extras are appended in order.
func Filter(g *filter.Group) (bson.D, error) {
	doc := bson.D{}
	if g == nil {
		return doc, nil
	}

	clauses := []struct {
		op    string
		frags []filter.Fragment
	}{
		{opAnd, g.Must},
		{opOr, g.Should},
		{opNor, concat(g.MustNot, g.ShouldNot)},
	}

	for _, c := range clauses {
		if len(c.frags) == 0 {
			continue
		}
		list := make(bson.A, 0, len(c.frags))
		for _, f := range c.frags {
			d, err := Fragment(f)
			if err != nil {
				return nil, fmt.Errorf("render %s: %w", c.op, err)
			}
			list = append(list, d)
		}
		doc = append(doc, bson.E{Key: c.op, Value: list})
	}

	for _, extra := range g.Extras {
		v, err := Value(extra.Value)
		if err != nil {
			return nil, fmt.Errorf("render extra %q: %w", extra.Key, err)
		}
		doc = append(doc, bson.E{Key: extra.Key, Value: v})
	}

	return doc, nil
}

func concat(a, b []filter.Fragment) []filter.Fragment {
	out := make([]filter.Fragment, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// Fragment renders one fragment:
//
//	{field: value}
//	{field: {$in: [..]}}            scalar values are wrapped in an array
//	{field: {$regex: p, $options: "i"}}
func Fragment(f filter.Fragment) (bson.D, error) {
	value, err := Value(f.Value)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", f.Field, err)
	}

	if f.Cond == filter.CondEqual {
		return bson.D{{Key: f.Field, Value: value}}, nil
	}

	op, ok := condOperators[f.Cond]
	if !ok {
		return nil, fmt.Errorf("field %q: no mongo operator for condition %q", f.Field, f.Cond)
	}

	var cond bson.D
	switch f.Cond {
	case filter.CondIn, filter.CondNotIn:
		if _, isList := value.(bson.A); !isList {
			value = bson.A{value}
		}
		cond = bson.D{{Key: op, Value: value}}
	case filter.CondRegex:
		pattern, isString := f.Value.(ir.String)
		if !isString {
			return nil, fmt.Errorf("field %q: regex pattern must be a string, got %T", f.Field, f.Value)
		}
		cond = bson.D{{Key: op, Value: string(pattern)}, {Key: "$options", Value: "i"}}
	default:
		cond = bson.D{{Key: op, Value: value}}
	}

	return bson.D{{Key: f.Field, Value: cond}}, nil
}

// Value converts an ir value to its BSON form. Objects become bson.D with
// keys in canonical order so rendered documents are deterministic.
func Value(v ir.Value) (any, error) {
	switch val := v.(type) {
	case nil, ir.Null:
		return nil, nil
	case ir.String:
		return string(val), nil
	case ir.Int:
		return int64(val), nil
	case ir.Float:
		return float64(val), nil
	case ir.Bool:
		return bool(val), nil
	case ir.Array:
		out := make(bson.A, len(val))
		for i, elem := range val {
			conv, err := Value(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			out[i] = conv
		}
		return out, nil
	case ir.Object:
		out := make(bson.D, 0, len(val))
		for _, k := range val.SortedKeys() {
			conv, err := Value(val[k])
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			out = append(out, bson.E{Key: k, Value: conv})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type for BSON: %T", v)
	}
}

// FindOptions converts sort and page parameters to find options:
// skip/limit from the page, and a single-key sort when a field is set.
func FindOptions(q *filter.Query) *options.FindOptions {
	opts := options.Find().
		SetSkip(q.Page.Offset()).
		SetLimit(q.Page.Limit())

	if q.Sort.Field != "" {
		opts.SetSort(bson.D{{Key: q.Sort.Field, Value: q.Sort.Order.Direction()}})
	}
	return opts
}

// ExtendedJSON renders a document as relaxed Extended JSON.
func ExtendedJSON(doc bson.D) (string, error) {
	data, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return "", fmt.Errorf("marshal extended JSON: %w", err)
	}
	return string(data), nil
}
