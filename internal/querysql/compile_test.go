package querysql

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/typica/internal/filter"
	"github.com/roach88/typica/internal/ir"
)

func group(t *testing.T, slots map[filter.Slot][]filter.Clause) *filter.Group {
	t.Helper()
	g := &filter.Group{}
	for _, slot := range filter.Slots {
		require.NoError(t, g.Compile(slot, slots[slot]...))
	}
	return g
}

func mixedGroup(t *testing.T) *filter.Group {
	return group(t, map[filter.Slot][]filter.Clause{
		filter.Must:      {{Field: "age", Operator: filter.OpGreaterEqual, Value: ir.Int(18)}},
		filter.MustNot:   {{Field: "role", Operator: filter.OpNotEqual, Value: ir.String("guest")}},
		filter.Should:    {{Field: "name", Operator: filter.OpRegex, Value: ir.String("^an")}},
		filter.ShouldNot: {{Field: "email", Operator: filter.OpNotExist}},
	})
}

func TestWhere_SQLite(t *testing.T) {
	sql, params, err := NewCompiler(SQLite).Where(mixedGroup(t))
	require.NoError(t, err)

	assert.Equal(t, `"age" >= ? AND ("role" IS NULL OR NOT ("role" = ?)) AND ("name" REGEXP ?) AND NOT ("email" IS NULL)`, sql)
	assert.Equal(t, []any{int64(18), "guest", "(?i)^an"}, params)

	// Values are parameterized, never interpolated.
	assert.NotContains(t, sql, "guest")
}

func TestWhere_Postgres(t *testing.T) {
	sql, params, err := NewCompiler(Postgres).Where(mixedGroup(t))
	require.NoError(t, err)

	assert.Equal(t, `"age" >= $1 AND ("role" IS NULL OR NOT ("role" = $2)) AND ("name" ~* $3) AND NOT ("email" IS NULL)`, sql)
	assert.Equal(t, []any{int64(18), "guest", "^an"}, params)
}

func TestWhere_Fragments(t *testing.T) {
	tests := []struct {
		name   string
		clause filter.Clause
		sql    string
		params []any
	}{
		{"equal", filter.Clause{Field: "a", Value: ir.String("x")}, `"a" = ?`, []any{"x"}},
		{"equal null", filter.Clause{Field: "a", Value: ir.Null{}}, `"a" IS NULL`, nil},
		{"gt", filter.Clause{Field: "a", Operator: filter.OpGreater, Value: ir.Float(1.5)}, `"a" > ?`, []any{1.5}},
		{"lt", filter.Clause{Field: "a", Operator: filter.OpLess, Value: ir.Int(1)}, `"a" < ?`, []any{int64(1)}},
		{"lte", filter.Clause{Field: "a", Operator: filter.OpLessEqual, Value: ir.Bool(true)}, `"a" <= ?`, []any{true}},
		{"in", filter.Clause{Field: "a", Operator: filter.OpIn, Value: ir.NewArray(ir.Int(1), ir.Int(2))}, `"a" IN (?, ?)`, []any{int64(1), int64(2)}},
		{"scalar in", filter.Clause{Field: "a", Operator: filter.OpIn, Value: ir.Int(1)}, `"a" IN (?)`, []any{int64(1)}},
		{"empty in", filter.Clause{Field: "a", Operator: filter.OpIn, Value: ir.NewArray()}, `1 = 0`, nil},
		{"nin", filter.Clause{Field: "a", Operator: filter.OpNotIn, Value: ir.NewArray(ir.String("x"))}, `"a" NOT IN (?)`, []any{"x"}},
		{"empty nin", filter.Clause{Field: "a", Operator: filter.OpNotIn, Value: ir.NewArray()}, `1 = 1`, nil},
		{"exists", filter.Clause{Field: "a", Operator: filter.OpExist}, `"a" IS NOT NULL`, nil},
		{"qualified field", filter.Clause{Field: "users.age", Value: ir.Int(1)}, `"users"."age" = ?`, []any{int64(1)}},
		{"quoted identifier", filter.Clause{Field: `we"ird`, Value: ir.Int(1)}, `"we""ird" = ?`, []any{int64(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := group(t, map[filter.Slot][]filter.Clause{filter.Must: {tt.clause}})

			sql, params, err := NewCompiler(SQLite).Where(g)
			require.NoError(t, err)
			assert.Equal(t, tt.sql, sql)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestWhere_Empty(t *testing.T) {
	sql, params, err := NewCompiler(SQLite).Where(&filter.Group{})
	require.NoError(t, err)
	assert.Equal(t, "1 = 1", sql)
	assert.Empty(t, params)
}

func TestWhere_Errors(t *testing.T) {
	tests := []struct {
		name  string
		group *filter.Group
		msg   string
	}{
		{
			name:  "extras",
			group: (&filter.Group{}).Add("hint", ir.String("x")),
			msg:   `extra "hint" has no SQL form`,
		},
		{
			name:  "object value",
			group: &filter.Group{Must: []filter.Fragment{{Field: "a", Value: ir.Object{}}}},
			msg:   "object cannot be used as SQL parameter directly",
		},
		{
			name:  "nested array in list",
			group: &filter.Group{Should: []filter.Fragment{{Field: "a", Cond: filter.CondIn, Value: ir.NewArray(ir.NewArray())}}},
			msg:   "array cannot be used as SQL parameter directly",
		},
		{
			name:  "regex needs string",
			group: &filter.Group{Must: []filter.Fragment{{Field: "a", Cond: filter.CondRegex, Value: ir.Int(1)}}},
			msg:   "regex pattern must be a string",
		},
		{
			name:  "unknown condition",
			group: &filter.Group{MustNot: []filter.Fragment{{Field: "a", Cond: filter.Cond("near")}}},
			msg:   `no SQL operator for condition "near"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewCompiler(SQLite).Where(tt.group)
			assert.ErrorContains(t, err, tt.msg)
		})
	}
}

func TestSelect_Postgres(t *testing.T) {
	g := group(t, map[filter.Slot][]filter.Clause{
		filter.Must: {{Field: "age", Operator: filter.OpGreaterEqual, Value: ir.Int(18)}},
	})
	q := &filter.Query{Group: g, Sort: filter.Sort{Field: "age", Order: filter.Descending}, Page: filter.DefaultPagination}

	sql, params, err := NewCompiler(Postgres).Select("users", q, "id", "name")
	require.NoError(t, err)

	assert.Equal(t, `SELECT "id", "name" FROM "users" WHERE "age" >= $1 ORDER BY "age" DESC, "id" ASC LIMIT $2 OFFSET $3`, sql)
	assert.Equal(t, []any{int64(18), int64(10), int64(0)}, params)
}

func TestSelect_OrderByMandatory(t *testing.T) {
	q := &filter.Query{Group: &filter.Group{}, Page: filter.DefaultPagination}

	sql, _, err := NewCompiler(SQLite).Select("users", q)
	require.NoError(t, err)

	assert.Equal(t, `SELECT * FROM "users" WHERE 1 = 1 ORDER BY "id" COLLATE BINARY ASC LIMIT ? OFFSET ?`, sql)
}

func TestSelect_SortByTieBreaker(t *testing.T) {
	q := &filter.Query{
		Group: &filter.Group{},
		Sort:  filter.Sort{Field: "id", Order: filter.Descending},
		Page:  filter.DefaultPagination,
	}

	sql, _, err := NewCompiler(Postgres).Select("users", q)
	require.NoError(t, err)
	assert.Contains(t, sql, `ORDER BY "id" DESC LIMIT`)
}

func TestCount(t *testing.T) {
	sql, params, err := NewCompiler(Postgres).Count("users", mixedGroup(t))
	require.NoError(t, err)

	assert.Equal(t, `SELECT COUNT(*) FROM "users" WHERE "age" >= $1 AND ("role" IS NULL OR NOT ("role" = $2)) AND ("name" ~* $3) AND NOT ("email" IS NULL)`, sql)
	assert.Len(t, params, 3)
}

func TestParseFlavor(t *testing.T) {
	f, err := ParseFlavor("PostgreSQL")
	require.NoError(t, err)
	assert.Equal(t, Postgres, f)
	assert.Equal(t, "postgres", f.String())

	_, err = ParseFlavor("oracle")
	assert.Error(t, err)
}

// Execution against SQLite

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE users (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		age INTEGER NOT NULL,
		role TEXT NOT NULL,
		email TEXT
	)`)
	require.NoError(t, err)

	rows := []struct {
		id    int
		name  string
		age   int
		role  string
		email any
	}{
		{1, "ann", 30, "admin", "ann@example.com"},
		{2, "bob", 17, "guest", nil},
		{3, "Anna", 45, "user", "anna@example.com"},
		{4, "carl", 22, "user", nil},
		{5, "dora", 18, "guest", "dora@example.com"},
	}
	for _, r := range rows {
		_, err := db.Exec(`INSERT INTO users (id, name, age, role, email) VALUES (?, ?, ?, ?, ?)`,
			r.id, r.name, r.age, r.role, r.email)
		require.NoError(t, err)
	}
	return db
}

func selectIDs(t *testing.T, db *sql.DB, q *filter.Query) []int64 {
	t.Helper()

	query, params, err := NewCompiler(SQLite).Select("users", q, "id")
	require.NoError(t, err)

	rows, err := db.Query(query, params...)
	require.NoError(t, err)
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	return ids
}

func TestSQLite_Execution(t *testing.T) {
	db := openTestDB(t)

	tests := []struct {
		name  string
		slots map[filter.Slot][]filter.Clause
		ids   []int64
	}{
		{
			name:  "must",
			slots: map[filter.Slot][]filter.Clause{filter.Must: {{Field: "age", Operator: filter.OpGreaterEqual, Value: ir.Int(18)}}},
			ids:   []int64{1, 3, 4, 5},
		},
		{
			name: "must and mustNot",
			slots: map[filter.Slot][]filter.Clause{
				filter.Must:    {{Field: "age", Operator: filter.OpGreaterEqual, Value: ir.Int(18)}},
				filter.MustNot: {{Field: "role", Operator: filter.OpNotEqual, Value: ir.String("guest")}},
			},
			ids: []int64{1, 3, 4},
		},
		{
			name:  "case-insensitive regex",
			slots: map[filter.Slot][]filter.Clause{filter.Should: {{Field: "name", Operator: filter.OpRegex, Value: ir.String("^AN")}}},
			ids:   []int64{1, 3},
		},
		{
			name:  "shouldNot not exist",
			slots: map[filter.Slot][]filter.Clause{filter.ShouldNot: {{Field: "email", Operator: filter.OpNotExist}}},
			ids:   []int64{1, 3, 5},
		},
		{
			name:  "in",
			slots: map[filter.Slot][]filter.Clause{filter.Must: {{Field: "role", Operator: filter.OpIn, Value: ir.NewArray(ir.String("admin"), ir.String("guest"))}}},
			ids:   []int64{1, 2, 5},
		},
		{
			name:  "not in",
			slots: map[filter.Slot][]filter.Clause{filter.Must: {{Field: "role", Operator: filter.OpNotIn, Value: ir.NewArray(ir.String("user"))}}},
			ids:   []int64{1, 2, 5},
		},
		{
			name:  "empty in matches nothing",
			slots: map[filter.Slot][]filter.Clause{filter.Must: {{Field: "role", Operator: filter.OpIn, Value: ir.NewArray()}}},
			ids:   nil,
		},
		{
			name: "all slots",
			slots: map[filter.Slot][]filter.Clause{
				filter.Must: {{Field: "age", Operator: filter.OpGreaterEqual, Value: ir.Int(18)}},
				filter.Should: {
					{Field: "role", Value: ir.String("admin")},
					{Field: "role", Value: ir.String("user")},
				},
				filter.ShouldNot: {{Field: "email", Operator: filter.OpNotExist}},
			},
			ids: []int64{1, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &filter.Query{Group: group(t, tt.slots), Page: filter.Page{Number: 1, Size: 100}}
			assert.Equal(t, tt.ids, selectIDs(t, db, q))
		})
	}
}

func TestWhere_NegationGuards(t *testing.T) {
	tests := []struct {
		name   string
		clause filter.Clause
		sql    string
	}{
		{"equal", filter.Clause{Field: "a", Value: ir.String("x")}, `("a" IS NULL OR NOT ("a" = ?))`},
		{"gt", filter.Clause{Field: "a", Operator: filter.OpGreater, Value: ir.Int(1)}, `("a" IS NULL OR NOT ("a" > ?))`},
		{"in", filter.Clause{Field: "a", Operator: filter.OpIn, Value: ir.NewArray(ir.Int(1))}, `("a" IS NULL OR NOT ("a" IN (?)))`},
		{"regex", filter.Clause{Field: "a", Operator: filter.OpRegex, Value: ir.String("x")}, `("a" IS NULL OR NOT ("a" REGEXP ?))`},
		{"equal null", filter.Clause{Field: "a", Value: ir.Null{}}, `NOT ("a" IS NULL)`},
		{"exists", filter.Clause{Field: "a", Operator: filter.OpExist}, `NOT ("a" IS NOT NULL)`},
		{"nin", filter.Clause{Field: "a", Operator: filter.OpNotIn, Value: ir.NewArray(ir.Int(1))}, `NOT ("a" NOT IN (?))`},
		{"empty in", filter.Clause{Field: "a", Operator: filter.OpIn, Value: ir.NewArray()}, `NOT (1 = 0)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, slot := range []filter.Slot{filter.MustNot, filter.ShouldNot} {
				g := group(t, map[filter.Slot][]filter.Clause{slot: {tt.clause}})

				sql, _, err := NewCompiler(SQLite).Where(g)
				require.NoError(t, err)
				assert.Equal(t, tt.sql, sql, "slot %s", slot)
			}
		})
	}
}

// A NULL column is kept by every negation, as $nor keeps a missing field.
func TestSQLite_NegationKeepsNull(t *testing.T) {
	db := openTestDB(t)

	tests := []struct {
		name  string
		slots map[filter.Slot][]filter.Clause
		ids   []int64
	}{
		{
			name:  "mustNot equal",
			slots: map[filter.Slot][]filter.Clause{filter.MustNot: {{Field: "email", Value: ir.String("ann@example.com")}}},
			ids:   []int64{2, 3, 4, 5},
		},
		{
			name: "shouldNot any of",
			slots: map[filter.Slot][]filter.Clause{filter.ShouldNot: {
				{Field: "email", Value: ir.String("ann@example.com")},
				{Field: "email", Operator: filter.OpRegex, Value: ir.String("^dora")},
			}},
			ids: []int64{2, 3, 4},
		},
		{
			name:  "mustNot in",
			slots: map[filter.Slot][]filter.Clause{filter.MustNot: {{Field: "email", Operator: filter.OpIn, Value: ir.NewArray(ir.String("anna@example.com"))}}},
			ids:   []int64{1, 2, 4, 5},
		},
		{
			name:  "mustNot exists drops present values only",
			slots: map[filter.Slot][]filter.Clause{filter.MustNot: {{Field: "email", Operator: filter.OpExist}}},
			ids:   []int64{2, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &filter.Query{Group: group(t, tt.slots), Page: filter.Page{Number: 1, Size: 100}}
			assert.Equal(t, tt.ids, selectIDs(t, db, q))
		})
	}
}

func TestSQLite_Paging(t *testing.T) {
	db := openTestDB(t)

	sort := filter.Sort{Field: "age", Order: filter.Descending}
	first := &filter.Query{Group: &filter.Group{}, Sort: sort, Page: filter.Page{Number: 1, Size: 2}}
	second := &filter.Query{Group: &filter.Group{}, Sort: sort, Page: filter.Page{Number: 2, Size: 2}}

	assert.Equal(t, []int64{3, 1}, selectIDs(t, db, first))
	assert.Equal(t, []int64{4, 5}, selectIDs(t, db, second))
}

func TestSQLite_Count(t *testing.T) {
	db := openTestDB(t)

	g := group(t, map[filter.Slot][]filter.Clause{
		filter.Must: {{Field: "age", Operator: filter.OpGreaterEqual, Value: ir.Int(18)}},
	})
	query, params, err := NewCompiler(SQLite).Count("users", g)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(query, params...).Scan(&n))
	assert.Equal(t, 4, n)
}
