// Package filter compiles filter clauses into slot-grouped query fragments
// and assembles them into a backend-neutral boolean query document.
//
// A Clause (field, operator, value) maps through one operator table to a
// Fragment. Compile appends fragments to one of four slots (Must, MustNot,
// Should, ShouldNot); the caller picks the slot per call. Assemble renders
// one key per non-empty slot, keeping clause order:
//
//	g, _ := filter.Compile([]filter.Clause{{Field: "age", Operator: filter.OpGreaterEqual, Value: ir.Int(18)}}, filter.Must)
//	g.CompileTimeframe(filter.Timeframe{Field: "createdAt", From: ir.Int(100)})
//	doc := filter.Assemble(g)
//	// {"and": [{"age": {"gte": 18}}, {"createdAt": {"gte": 100}}]}
//
// Backend renderers (querymongo, querysql) consume the Group directly.
package filter
