package filter

import (
	"fmt"
	"log/slog"

	"github.com/roach88/typica/internal/ir"
)

// Cond is the comparison a fragment applies to its field. The zero Cond
// is equality, rendered as {field: value}.
type Cond string

const (
	CondEqual        Cond = ""
	CondIn           Cond = "in"
	CondNotIn        Cond = "notIn"
	CondGreater      Cond = "gt"
	CondGreaterEqual Cond = "gte"
	CondLess         Cond = "lt"
	CondLessEqual    Cond = "lte"
	CondExists       Cond = "exists"
	CondRegex        Cond = "regex"
)

// CaseInsensitiveKey accompanies every regex fragment.
const CaseInsensitiveKey = "caseInsensitive"

// Fragment is one single-field condition.
type Fragment struct {
	Field string
	Cond  Cond
	Value ir.Value
}

// Doc renders the fragment in generic form:
//
//	{field: value}                                   equality
//	{field: {cond: value}}                           in, notIn, gt, gte, lt, lte, exists
//	{field: {regex: value, caseInsensitive: true}}   regex
func (f Fragment) Doc() map[string]any {
	value := ir.Native(f.Value)
	switch f.Cond {
	case CondEqual:
		return map[string]any{f.Field: value}
	case CondRegex:
		return map[string]any{f.Field: map[string]any{
			string(CondRegex):  value,
			CaseInsensitiveKey: true,
		}}
	default:
		return map[string]any{f.Field: map[string]any{string(f.Cond): value}}
	}
}

type fragmentFunc func(field string, value ir.Value) Fragment

func withCond(c Cond) fragmentFunc {
	return func(field string, value ir.Value) Fragment {
		return Fragment{Field: field, Cond: c, Value: value}
	}
}

// exists ignores the clause value; the operator alone decides the flag.
func exists(flag bool) fragmentFunc {
	return func(field string, _ ir.Value) Fragment {
		return Fragment{Field: field, Cond: CondExists, Value: ir.Bool(flag)}
	}
}

// fragmentTable is the single operator -> fragment mapping shared by all
// four slots. Negation comes from the slot, so OpNotEqual compiles to the
// same equality fragment as OpEqual.
var fragmentTable = map[Operator]fragmentFunc{
	OpNone:         withCond(CondEqual),
	OpEqual:        withCond(CondEqual),
	OpNotEqual:     withCond(CondEqual),
	OpIn:           withCond(CondIn),
	OpNotIn:        withCond(CondNotIn),
	OpGreater:      withCond(CondGreater),
	OpGreaterEqual: withCond(CondGreaterEqual),
	OpLess:         withCond(CondLess),
	OpLessEqual:    withCond(CondLessEqual),
	OpExist:        exists(true),
	OpNotExist:     exists(false),
	OpRegex:        withCond(CondRegex),
}

// Slot is one of the four boolean buckets a clause is routed into.
type Slot int

const (
	Must Slot = iota
	MustNot
	Should
	ShouldNot
)

// Slots lists the slots in assembly order.
var Slots = []Slot{Must, MustNot, Should, ShouldNot}

func (s Slot) String() string {
	switch s {
	case Must:
		return "must"
	case MustNot:
		return "mustNot"
	case Should:
		return "should"
	case ShouldNot:
		return "shouldNot"
	default:
		return fmt.Sprintf("Slot(%d)", int(s))
	}
}

// ParseSlot parses a slot name as printed by String.
func ParseSlot(s string) (Slot, error) {
	for _, slot := range Slots {
		if slot.String() == s {
			return slot, nil
		}
	}
	return 0, fmt.Errorf("[%s] unknown slot %q (expected must, mustNot, should or shouldNot)", ErrCodeUnknownSlot, s)
}

// Extra is a passthrough key merged at the top level of the assembled
// document (e.g. a backend hint).
type Extra struct {
	Key   string
	Value ir.Value
}

// Group holds compiled fragments per slot plus passthrough extras.
// The zero Group is empty and ready to use.
type Group struct {
	Must      []Fragment
	MustNot   []Fragment
	Should    []Fragment
	ShouldNot []Fragment
	Extras    []Extra
}

// Compile maps clauses into a new group's slot.
func Compile(clauses []Clause, slot Slot) (*Group, error) {
	g := &Group{}
	if err := g.Compile(slot, clauses...); err != nil {
		return nil, err
	}
	return g, nil
}

// Compile maps each clause through the fragment table and appends the
// fragments to slot in input order. On error g is left unchanged.
func (g *Group) Compile(slot Slot, clauses ...Clause) error {
	dst, err := g.slot(slot)
	if err != nil {
		return err
	}

	frags := make([]Fragment, 0, len(clauses))
	for i, c := range clauses {
		f, err := c.Fragment()
		if err != nil {
			return fmt.Errorf("compile %s clause %d: %w", slot, i, err)
		}
		frags = append(frags, f)
	}

	*dst = append(*dst, frags...)
	slog.Debug("clauses compiled", "slot", slot.String(), "count", len(frags))
	return nil
}

// CompileTimeframe returns a group holding the timeframe's bounds.
func CompileTimeframe(tf Timeframe) *Group {
	g := &Group{}
	g.CompileTimeframe(tf)
	return g
}

// CompileTimeframe appends {field: {gte: from}} and then {field: {lte: to}}
// to Must, each only when the bound is present. Without bounds it is a no-op.
func (g *Group) CompileTimeframe(tf Timeframe) {
	if tf.HasFrom() {
		g.Must = append(g.Must, Fragment{Field: tf.Field, Cond: CondGreaterEqual, Value: tf.From})
	}
	if tf.HasTo() {
		g.Must = append(g.Must, Fragment{Field: tf.Field, Cond: CondLessEqual, Value: tf.To})
	}
}

// Add appends a passthrough extra. A later extra with the same key wins
// at assembly.
func (g *Group) Add(key string, value ir.Value) *Group {
	g.Extras = append(g.Extras, Extra{Key: key, Value: value})
	return g
}

// Merge appends other's fragments and extras slot by slot.
func (g *Group) Merge(other *Group) *Group {
	if other == nil {
		return g
	}
	g.Must = append(g.Must, other.Must...)
	g.MustNot = append(g.MustNot, other.MustNot...)
	g.Should = append(g.Should, other.Should...)
	g.ShouldNot = append(g.ShouldNot, other.ShouldNot...)
	g.Extras = append(g.Extras, other.Extras...)
	return g
}

// Fragments returns the fragments of slot (nil for an unknown slot).
func (g *Group) Fragments(slot Slot) []Fragment {
	dst, err := g.slot(slot)
	if err != nil {
		return nil
	}
	return *dst
}

// IsEmpty reports whether no slot has fragments and no extras are set.
func (g *Group) IsEmpty() bool {
	return len(g.Must) == 0 && len(g.MustNot) == 0 &&
		len(g.Should) == 0 && len(g.ShouldNot) == 0 && len(g.Extras) == 0
}

func (g *Group) slot(s Slot) (*[]Fragment, error) {
	switch s {
	case Must:
		return &g.Must, nil
	case MustNot:
		return &g.MustNot, nil
	case Should:
		return &g.Should, nil
	case ShouldNot:
		return &g.ShouldNot, nil
	default:
		return nil, fmt.Errorf("[%s] unknown slot %s", ErrCodeUnknownSlot, s)
	}
}
