package querysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/roach88/typica/internal/filter"
	"github.com/roach88/typica/internal/ir"
)

// Flavor selects placeholder style and regex syntax.
type Flavor int

const (
	// SQLite uses ? placeholders and REGEXP, which needs a regexp(pattern, value)
	// function registered on the connection (see RegexpFunc).
	SQLite Flavor = iota
	// Postgres uses $n placeholders and the case-insensitive ~* operator.
	Postgres
)

func (f Flavor) String() string {
	switch f {
	case SQLite:
		return "sqlite"
	case Postgres:
		return "postgres"
	default:
		return fmt.Sprintf("Flavor(%d)", int(f))
	}
}

// ParseFlavor parses "sqlite" or "postgres" (also "postgresql").
func ParseFlavor(s string) (Flavor, error) {
	switch strings.ToLower(s) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql":
		return Postgres, nil
	default:
		return 0, fmt.Errorf("unknown SQL flavor %q (expected sqlite or postgres)", s)
	}
}

// DefaultTieBreaker is the column appended to every ORDER BY.
const DefaultTieBreaker = "id"

// Compiler compiles filter groups to parameterized SQL.
//
// CRITICAL: values are never interpolated. Every value becomes a parameter.
// CRITICAL: Select always ends its ORDER BY with the tie-breaker column so
// paging is deterministic.
type Compiler struct {
	Flavor     Flavor
	TieBreaker string // defaults to DefaultTieBreaker
}

// NewCompiler creates a Compiler for flavor.
func NewCompiler(flavor Flavor) *Compiler {
	return &Compiler{Flavor: flavor, TieBreaker: DefaultTieBreaker}
}

// builder accumulates parameters so Postgres placeholders number correctly
// across the whole statement.
type builder struct {
	flavor Flavor
	params []any
}

func (b *builder) param(v any) string {
	b.params = append(b.params, v)
	if b.flavor == Postgres {
		return "$" + strconv.Itoa(len(b.params))
	}
	return "?"
}

// Where compiles g to a boolean SQL expression and its parameters.
//
//	Must      -> a AND b
//	MustNot   -> NOT (a) AND NOT (b)
//	Should    -> (a OR b)
//	ShouldNot -> NOT (a) AND NOT (b)
//
// A negated comparison, in or regex keeps rows where the column is NULL,
// matching $nor on a document that lacks the field:
//
//	NOT (a) -> ("col" IS NULL OR NOT (a))
//
// Non-empty slots are joined with AND. An empty group is "1 = 1".
// Extras have no SQL meaning and are rejected.
func (c *Compiler) Where(g *filter.Group) (string, []any, error) {
	b := &builder{flavor: c.Flavor}
	sql, err := c.where(b, g)
	if err != nil {
		return "", nil, err
	}
	return sql, b.params, nil
}

func (c *Compiler) where(b *builder, g *filter.Group) (string, error) {
	if g == nil {
		return "1 = 1", nil
	}
	if len(g.Extras) > 0 {
		return "", fmt.Errorf("extra %q has no SQL form", g.Extras[0].Key)
	}

	var parts []string

	must, err := c.fragments(b, g.Must)
	if err != nil {
		return "", fmt.Errorf("compile must: %w", err)
	}
	parts = append(parts, must...)

	mustNot, err := c.negated(b, g.MustNot)
	if err != nil {
		return "", fmt.Errorf("compile mustNot: %w", err)
	}
	parts = append(parts, mustNot...)

	should, err := c.fragments(b, g.Should)
	if err != nil {
		return "", fmt.Errorf("compile should: %w", err)
	}
	if len(should) > 0 {
		parts = append(parts, "("+strings.Join(should, " OR ")+")")
	}

	shouldNot, err := c.negated(b, g.ShouldNot)
	if err != nil {
		return "", fmt.Errorf("compile shouldNot: %w", err)
	}
	parts = append(parts, shouldNot...)

	if len(parts) == 0 {
		return "1 = 1", nil
	}
	return strings.Join(parts, " AND "), nil
}

func (c *Compiler) fragments(b *builder, frags []filter.Fragment) ([]string, error) {
	out := make([]string, 0, len(frags))
	for _, f := range frags {
		sql, err := c.fragment(b, f)
		if err != nil {
			return nil, err
		}
		out = append(out, sql)
	}
	return out, nil
}

// negated compiles each fragment under NOT, guarding nullable columns.
func (c *Compiler) negated(b *builder, frags []filter.Fragment) ([]string, error) {
	out := make([]string, 0, len(frags))
	for _, f := range frags {
		sql, err := c.fragment(b, f)
		if err != nil {
			return nil, err
		}
		if nullGuarded(f) {
			out = append(out, "("+QuoteField(f.Field)+" IS NULL OR NOT ("+sql+"))")
			continue
		}
		out = append(out, "NOT ("+sql+")")
	}
	return out, nil
}

// nullGuarded reports whether NOT f must keep NULL columns explicitly.
// IS [NOT] NULL tests and empty lists are never NULL; NOT IN is left as is
// because $nor over $nin also drops a missing field.
func nullGuarded(f filter.Fragment) bool {
	switch f.Cond {
	case filter.CondEqual:
		return !isNull(f.Value)
	case filter.CondGreater, filter.CondGreaterEqual, filter.CondLess, filter.CondLessEqual, filter.CondRegex:
		return true
	case filter.CondIn:
		elems, isList := f.Value.(ir.Array)
		return !isList || len(elems) > 0
	default:
		return false
	}
}

// fragment compiles one condition.
// CRITICAL: value is NEVER interpolated, always parameterized.
func (c *Compiler) fragment(b *builder, f filter.Fragment) (string, error) {
	col := QuoteField(f.Field)

	switch f.Cond {
	case filter.CondEqual:
		if isNull(f.Value) {
			return col + " IS NULL", nil
		}
		return c.compare(b, col, "=", f)
	case filter.CondGreater:
		return c.compare(b, col, ">", f)
	case filter.CondGreaterEqual:
		return c.compare(b, col, ">=", f)
	case filter.CondLess:
		return c.compare(b, col, "<", f)
	case filter.CondLessEqual:
		return c.compare(b, col, "<=", f)
	case filter.CondIn:
		return c.list(b, col, "IN", "1 = 0", f)
	case filter.CondNotIn:
		return c.list(b, col, "NOT IN", "1 = 1", f)
	case filter.CondExists:
		if flag, ok := f.Value.(ir.Bool); ok && !bool(flag) {
			return col + " IS NULL", nil
		}
		return col + " IS NOT NULL", nil
	case filter.CondRegex:
		pattern, ok := f.Value.(ir.String)
		if !ok {
			return "", fmt.Errorf("field %q: regex pattern must be a string, got %T", f.Field, f.Value)
		}
		if c.Flavor == Postgres {
			return col + " ~* " + b.param(string(pattern)), nil
		}
		return col + " REGEXP " + b.param("(?i)"+string(pattern)), nil
	default:
		return "", fmt.Errorf("field %q: no SQL operator for condition %q", f.Field, f.Cond)
	}
}

func (c *Compiler) compare(b *builder, col, op string, f filter.Fragment) (string, error) {
	param, err := valueToParam(f.Value)
	if err != nil {
		return "", fmt.Errorf("field %q: %w", f.Field, err)
	}
	return col + " " + op + " " + b.param(param), nil
}

// list expands an array into one placeholder per element. A scalar is a
// one-element list; an empty list compiles to the constant empty.
func (c *Compiler) list(b *builder, col, op, empty string, f filter.Fragment) (string, error) {
	elems, isList := f.Value.(ir.Array)
	if !isList {
		elems = ir.Array{f.Value}
	}
	if len(elems) == 0 {
		return empty, nil
	}

	placeholders := make([]string, len(elems))
	for i, elem := range elems {
		param, err := valueToParam(elem)
		if err != nil {
			return "", fmt.Errorf("field %q [%d]: %w", f.Field, i, err)
		}
		placeholders[i] = b.param(param)
	}
	return col + " " + op + " (" + strings.Join(placeholders, ", ") + ")", nil
}

// Select compiles a paged SELECT over table. Columns default to *.
//
// MANDATORY: ORDER BY always ends with the tie-breaker column.
func (c *Compiler) Select(table string, q *filter.Query, columns ...string) (string, []any, error) {
	b := &builder{flavor: c.Flavor}

	where, err := c.where(b, q.Group)
	if err != nil {
		return "", nil, fmt.Errorf("compile filter: %w", err)
	}

	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s LIMIT %s OFFSET %s",
		selectList(columns),
		QuoteField(table),
		where,
		c.orderBy(q.Sort),
		b.param(q.Page.Limit()),
		b.param(q.Page.Offset()))

	return sql, b.params, nil
}

// Count compiles SELECT COUNT(*) for the pagination total.
func (c *Compiler) Count(table string, g *filter.Group) (string, []any, error) {
	b := &builder{flavor: c.Flavor}

	where, err := c.where(b, g)
	if err != nil {
		return "", nil, fmt.Errorf("compile filter: %w", err)
	}
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", QuoteField(table), where), b.params, nil
}

func selectList(columns []string) string {
	if len(columns) == 0 {
		return "*"
	}
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = QuoteField(col)
	}
	return strings.Join(quoted, ", ")
}

// orderBy returns the sort column (if any) followed by the tie-breaker.
// SQLite text ordering uses COLLATE BINARY for determinism.
func (c *Compiler) orderBy(s filter.Sort) string {
	tie := c.TieBreaker
	if tie == "" {
		tie = DefaultTieBreaker
	}

	dir := "DESC"
	if s.Order == filter.Ascending {
		dir = "ASC"
	}

	if s.Field == "" {
		return c.term(tie, "ASC")
	}
	if s.Field == tie {
		return c.term(tie, dir)
	}
	return c.term(s.Field, dir) + ", " + c.term(tie, "ASC")
}

// term renders one ordering term. SQLite takes the collation before the
// direction.
func (c *Compiler) term(field, dir string) string {
	if c.Flavor == SQLite {
		return QuoteField(field) + " COLLATE BINARY " + dir
	}
	return QuoteField(field) + " " + dir
}

// QuoteField quotes each dot-separated part of a field as an identifier,
// so "orders.total" addresses column total of orders.
func QuoteField(field string) string {
	parts := strings.Split(field, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

func isNull(v ir.Value) bool {
	switch v.(type) {
	case nil, ir.Null:
		return true
	default:
		return false
	}
}

// valueToParam converts an ir.Value to a Go native type for a SQL parameter.
// Arrays and objects are not directly supported as SQL parameters.
func valueToParam(v ir.Value) (any, error) {
	switch val := v.(type) {
	case ir.String:
		return string(val), nil
	case ir.Int:
		return int64(val), nil
	case ir.Float:
		return float64(val), nil
	case ir.Bool:
		return bool(val), nil
	case nil, ir.Null:
		return nil, nil
	case ir.Array:
		return nil, fmt.Errorf("array cannot be used as SQL parameter directly")
	case ir.Object:
		return nil, fmt.Errorf("object cannot be used as SQL parameter directly")
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}
