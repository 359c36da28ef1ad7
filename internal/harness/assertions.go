package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/typica/internal/filter"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type      string            // Assertion type for categorization
	Expected  string            // Human-readable expected outcome
	Actual    string            // Human-readable actual outcome
	Fragments []filter.Fragment // Fragments of the slot under test, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Fragments) > 0 {
		fmt.Fprintf(&buf, "\nFragments:\n")
		for i, f := range e.Fragments {
			fmt.Fprintf(&buf, "  [%d] %v\n", i+1, f.Doc())
		}
	}

	return buf.String()
}

// evaluate dispatches an assertion to its checker.
func evaluate(a Assertion, q *filter.Query, doc filter.Document) error {
	switch a.Type {
	case AssertSlotCount:
		return assertSlotCount(q.Group, a)
	case AssertSlotContains:
		return assertSlotContains(q.Group, a)
	case AssertDocumentHas:
		return assertDocumentHas(doc, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertSlotCount checks the number of fragments compiled into a slot.
func assertSlotCount(g *filter.Group, a Assertion) error {
	slot, err := filter.ParseSlot(a.Slot)
	if err != nil {
		return err
	}
	frags := g.Fragments(slot)
	if len(frags) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:      AssertSlotCount,
		Expected:  fmt.Sprintf("%d fragment(s) in %s", a.Count, slot),
		Actual:    fmt.Sprintf("%d fragment(s)", len(frags)),
		Fragments: frags,
	}
}

// assertSlotContains checks that a slot holds a fragment on Field with
// condition Cond.
func assertSlotContains(g *filter.Group, a Assertion) error {
	slot, err := filter.ParseSlot(a.Slot)
	if err != nil {
		return err
	}
	frags := g.Fragments(slot)

	want := filter.Cond(a.Cond)
	if a.Cond == "eq" {
		want = filter.CondEqual
	}
	matched := slices.ContainsFunc(frags, func(f filter.Fragment) bool {
		return f.Field == a.Field && (a.Cond == "" || f.Cond == want)
	})
	if matched {
		return nil
	}

	expected := fmt.Sprintf("fragment on %s in %s", a.Field, slot)
	if a.Cond != "" {
		expected = fmt.Sprintf("fragment %s %s in %s", a.Field, a.Cond, slot)
	}
	return &AssertionError{
		Type:      AssertSlotContains,
		Expected:  expected,
		Actual:    "not found",
		Fragments: frags,
	}
}

// assertDocumentHas checks that the assembled document has a top-level key.
func assertDocumentHas(doc filter.Document, a Assertion) error {
	if _, ok := doc[a.Key]; ok {
		return nil
	}
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return &AssertionError{
		Type:     AssertDocumentHas,
		Expected: fmt.Sprintf("key %q", a.Key),
		Actual:   fmt.Sprintf("keys %v", keys),
	}
}
