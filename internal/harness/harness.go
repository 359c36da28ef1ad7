package harness

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/typica/internal/filter"
	"github.com/roach88/typica/internal/meta"
	"github.com/roach88/typica/internal/querysql"
	"github.com/roach88/typica/internal/schema"
)

// Run executes a scenario and returns its result.
//
// Each scenario gets a fresh in-memory database. Mismatches are reported in
// Result.Errors; the returned error is reserved for failures of the harness
// itself (the database, or rows it cannot store).
func Run(s *Scenario) (*Result, error) {
	result := NewResult()

	q, err := s.Query()
	if err != nil {
		result.ErrCode, result.ErrPath = describeError(err)
		checkError(s.Expect.Error, err, result)
		return result, nil
	}
	if s.Expect.Error != nil {
		result.fail("expected error %s, payload was accepted", s.Expect.Error.Code)
	}

	result.Document = q.Document(filter.DefaultKeys)
	fp, err := result.Document.Fingerprint()
	if err != nil {
		return nil, err
	}
	result.Fingerprint = fp

	if len(s.Rows) > 0 {
		if err := execute(s, q, result); err != nil {
			return nil, err
		}
		checkRows(s.Expect, result)
	}

	for i, a := range s.Assertions {
		if err := evaluate(a, q, result.Document); err != nil {
			result.fail("assertions[%d]: %v", i, err)
		}
	}

	slog.Debug("scenario finished", "name", s.Name, "pass", result.Pass, "errors", len(result.Errors))
	return result, nil
}

// Query decodes the payload, compiles it and applies the scope.
func (s *Scenario) Query() (*filter.Query, error) {
	raw := s.Payload
	if raw == nil {
		raw = map[string]any{}
	}
	data, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	p, err := schema.Decode(data)
	if err != nil {
		return nil, err
	}
	q, err := p.Query()
	if err != nil {
		return nil, err
	}

	if s.Scope.ActiveOnly {
		if err := meta.ScopeActive(q.Group); err != nil {
			return nil, err
		}
	}
	if s.Scope.HideDeleted {
		if err := meta.ScopeNotDeleted(q.Group); err != nil {
			return nil, err
		}
	}
	return q, nil
}

// describeError extracts the code and path of a rejection.
func describeError(err error) (code, path string) {
	var payloadErr *schema.PayloadError
	if errors.As(err, &payloadErr) && len(payloadErr.Issues) > 0 {
		return payloadErr.Issues[0].Code, payloadErr.Issues[0].Path
	}
	var opErr *filter.UnsupportedOperatorError
	if errors.As(err, &opErr) {
		return opErr.Code(), opErr.Field
	}
	return "", ""
}

func checkError(want *ExpectError, err error, result *Result) {
	if want == nil {
		result.fail("payload rejected: %v", err)
		return
	}
	if result.ErrCode != want.Code {
		result.fail("expected error code %s, got %q (%v)", want.Code, result.ErrCode, err)
	}
	if want.Path != "" && result.ErrPath != want.Path {
		result.fail("expected error path %q, got %q", want.Path, result.ErrPath)
	}
}

func checkRows(want Expect, result *Result) {
	if want.IDs != nil && !slices.Equal(want.IDs, result.IDs) {
		result.fail("expected ids %v, got %v", want.IDs, result.IDs)
	}
	if want.Total != nil && *want.Total != result.Total {
		result.fail("expected total %d, got %d", *want.Total, result.Total)
	}
}

// execute loads the rows into SQLite and runs the compiled select and count.
func execute(s *Scenario, q *filter.Query, result *Result) error {
	db, err := querysql.OpenSQLite(":memory:")
	if err != nil {
		return err
	}
	defer db.Close()

	if err := seed(db, s.Table, s.Rows); err != nil {
		return err
	}

	c := querysql.NewCompiler(querysql.SQLite)
	query, params, err := c.Select(s.Table, q, "id")
	if err != nil {
		return fmt.Errorf("compile select: %w", err)
	}
	result.SQL, result.Params = query, params

	rows, err := db.Query(query, params...)
	if err != nil {
		return fmt.Errorf("run select: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan id: %w", err)
		}
		result.IDs = append(result.IDs, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("run select: %w", err)
	}

	countQuery, countParams, err := c.Count(s.Table, q.Group)
	if err != nil {
		return fmt.Errorf("compile count: %w", err)
	}
	if err := db.QueryRow(countQuery, countParams...).Scan(&result.Total); err != nil {
		return fmt.Errorf("run count: %w", err)
	}
	return nil
}

// seed creates the table with one untyped column per row key and inserts
// the rows. Absent keys are stored as NULL.
func seed(db *sql.DB, table string, rows []map[string]any) error {
	columns := columnsOf(rows)

	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = querysql.QuoteField(col)
	}

	create := fmt.Sprintf("CREATE TABLE %s (%s)", querysql.QuoteField(table), strings.Join(quoted, ", "))
	if _, err := db.Exec(create); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		querysql.QuoteField(table), strings.Join(quoted, ", "), placeholders)

	for i, row := range rows {
		values := make([]any, len(columns))
		for j, col := range columns {
			v, err := cellValue(row[col])
			if err != nil {
				return fmt.Errorf("rows[%d].%s: %w", i, col, err)
			}
			values[j] = v
		}
		if _, err := db.Exec(insert, values...); err != nil {
			return fmt.Errorf("insert rows[%d]: %w", i, err)
		}
	}
	return nil
}

// columnsOf returns id followed by the other row keys in sorted order.
func columnsOf(rows []map[string]any) []string {
	seen := map[string]bool{"id": true}
	var rest []string
	for _, row := range rows {
		for key := range row {
			if !seen[key] {
				seen[key] = true
				rest = append(rest, key)
			}
		}
	}
	slices.Sort(rest)
	return append([]string{"id"}, rest...)
}

func cellValue(v any) (any, error) {
	switch v.(type) {
	case nil, string, int, int64, float64, bool:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported cell type %T", v)
	}
}
