package meta

import (
	"github.com/roach88/typica/internal/filter"
	"github.com/roach88/typica/internal/ir"
)

// StatusField is the document field holding Audit.Status.
const StatusField = "status"

// ActiveClause matches records whose status is active. Compile it into the
// Must slot.
func ActiveClause() filter.Clause {
	return filter.Clause{Field: StatusField, Value: ir.String(StatusActive), Operator: filter.OpEqual}
}

// DeletedClause matches soft-deleted records. Compile it into the MustNot
// slot to hide them.
func DeletedClause() filter.Clause {
	return filter.Clause{Field: StatusField, Value: ir.String(StatusDeleted), Operator: filter.OpEqual}
}

// ScopeActive adds ActiveClause to the Must slot of g.
func ScopeActive(g *filter.Group) error {
	return g.Compile(filter.Must, ActiveClause())
}

// ScopeNotDeleted adds DeletedClause to the MustNot slot of g.
func ScopeNotDeleted(g *filter.Group) error {
	return g.Compile(filter.MustNot, DeletedClause())
}
