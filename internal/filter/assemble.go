package filter

import (
	"github.com/roach88/typica/internal/ir"
)

// Document is an assembled boolean query document in generic form:
// slot keys valued at ordered fragment lists, plus extras.
type Document map[string]any

// Canonical returns the RFC 8785 canonical JSON of the document.
func (d Document) Canonical() ([]byte, error) {
	return ir.MarshalCanonical(map[string]any(d))
}

// Fingerprint returns the content hash of the document.
func (d Document) Fingerprint() (string, error) {
	return ir.Fingerprint(ir.DomainQuery, map[string]any(d))
}

// Keys names the top-level key of each slot in an assembled document.
type Keys struct {
	Must      string
	MustNot   string
	Should    string
	ShouldNot string
}

// DefaultKeys is the generic naming.
var DefaultKeys = Keys{Must: "and", MustNot: "not", Should: "or", ShouldNot: "nor"}

// OptKeys is the andOpt/orOpt naming used by older query payloads.
var OptKeys = Keys{Must: "andOpt", MustNot: "notOpt", Should: "orOpt", ShouldNot: "norOpt"}

func (k Keys) key(s Slot) string {
	switch s {
	case Must:
		return k.Must
	case MustNot:
		return k.MustNot
	case Should:
		return k.Should
	default:
		return k.ShouldNot
	}
}

// Assemble renders g with DefaultKeys.
func Assemble(g *Group) Document {
	return AssembleWith(g, DefaultKeys)
}

// AssembleWith renders one key per non-empty slot, each valued at the
// slot's fragments in compile order, then merges the extras at the top
// level. Empty slots are omitted rather than written as empty lists.
// Nothing is sorted, deduplicated or simplified.
func AssembleWith(g *Group, keys Keys) Document {
	doc := Document{}
	if g == nil {
		return doc
	}

	for _, slot := range Slots {
		frags := g.Fragments(slot)
		if len(frags) == 0 {
			continue
		}
		list := make([]any, len(frags))
		for i, f := range frags {
			list[i] = f.Doc()
		}
		doc[keys.key(slot)] = list
	}

	for _, extra := range g.Extras {
		doc[extra.Key] = ir.Native(extra.Value)
	}
	return doc
}
