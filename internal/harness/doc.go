// Package harness runs conformance scenarios for the filter compiler.
//
// A scenario seeds a table, submits a payload and checks what comes out:
// the compiled slots, the assembled document, the rows the SQL selects, or
// the error the payload is rejected with. Rows are loaded into an in-memory
// SQLite database and queried with the SQL the compiler produces, so a
// scenario exercises decode, validation, compilation and rendering end to end.
//
// # Scenario Format
//
//	name: adults_first
//	description: "Adults sorted by age, oldest first"
//	table: users
//	rows:
//	  - {id: 1, name: ann, age: 30, status: active}
//	  - {id: 2, name: bob, age: 17, status: active}
//	payload:
//	  filters: [{field: age, value: 18, opt: gte}]
//	  orderBy: age
//	scope:
//	  active_only: true
//	expect:
//	  ids: [1]
//	  total: 1
//	assertions:
//	  - type: slot_count
//	    slot: must
//	    count: 2
//
// A scenario that should be rejected names the error instead:
//
//	expect:
//	  error: {code: E301, path: filters[0].opt}
//
// # Golden Files
//
// RunWithGolden stores the canonical JSON of the assembled document under
// testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
