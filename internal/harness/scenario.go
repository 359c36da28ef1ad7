package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/typica/internal/filter"
)

// DefaultTable is the table rows are loaded into when a scenario names none.
const DefaultTable = "records"

// Scenario defines a conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Table names the SQLite table the rows are loaded into.
	Table string `yaml:"table,omitempty"`

	// Rows seed the table. Every row needs an integer id; columns are the
	// union of all row keys.
	Rows []map[string]any `yaml:"rows,omitempty"`

	// Payload is the filter request, as it would arrive in JSON or YAML.
	Payload map[string]any `yaml:"payload"`

	// Scope adds the record-status clauses before compiling.
	Scope Scope `yaml:"scope,omitempty"`

	// Expect holds the expected outcome.
	Expect Expect `yaml:"expect,omitempty"`

	// Assertions check the compiled query.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Scope selects the status clauses added to every query.
type Scope struct {
	ActiveOnly  bool `yaml:"active_only,omitempty"`
	HideDeleted bool `yaml:"hide_deleted,omitempty"`
}

// Expect is the expected outcome of a scenario.
type Expect struct {
	// IDs are the expected row ids, in order. Requires Rows.
	IDs []int64 `yaml:"ids,omitempty"`

	// Total is the expected match count ignoring paging. Requires Rows.
	Total *int64 `yaml:"total,omitempty"`

	// Error, when set, expects the payload to be rejected.
	Error *ExpectError `yaml:"error,omitempty"`
}

// ExpectError names the code, and optionally the path, of a rejection.
type ExpectError struct {
	Code string `yaml:"code"`
	Path string `yaml:"path,omitempty"`
}

// Assertion checks the compiled query.
type Assertion struct {
	// Type is one of slot_count, slot_contains, document_has.
	Type string `yaml:"type"`

	// Slot is the clause slot (must, mustNot, should, shouldNot).
	Slot string `yaml:"slot,omitempty"`

	// Count is the expected number of fragments in Slot (slot_count).
	Count int `yaml:"count,omitempty"`

	// Field and Cond identify a fragment (slot_contains). An empty Cond
	// matches any condition; "eq" matches equality.
	Field string `yaml:"field,omitempty"`
	Cond  string `yaml:"cond,omitempty"`

	// Key is a top-level document key (document_has).
	Key string `yaml:"key,omitempty"`
}

// Assertion type constants.
const (
	AssertSlotCount    = "slot_count"
	AssertSlotContains = "slot_contains"
	AssertDocumentHas  = "document_has"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields (typos) and missing required fields are errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if scenario.Table == "" {
		scenario.Table = DefaultTable
	}
	return &scenario, nil
}

// FindScenarios lists the .yaml/.yml files under dir whose base name
// (without extension) matches the glob pattern. An empty pattern matches
// everything. Results are sorted.
func FindScenarios(dir, pattern string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if pattern != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			ok, err := filepath.Match(pattern, name)
			if err != nil {
				return fmt.Errorf("invalid filter %q: %w", pattern, err)
			}
			if !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	hasRowExpectations := len(s.Expect.IDs) > 0 || s.Expect.Total != nil
	if hasRowExpectations && len(s.Rows) == 0 {
		return fmt.Errorf("expect.ids and expect.total need rows")
	}
	if s.Expect.Error != nil {
		if s.Expect.Error.Code == "" {
			return fmt.Errorf("expect.error: code is required")
		}
		if hasRowExpectations {
			return fmt.Errorf("expect.error cannot be combined with expect.ids or expect.total")
		}
	}

	if !hasRowExpectations && s.Expect.Error == nil && len(s.Assertions) == 0 {
		return fmt.Errorf("scenario checks nothing: add expect or assertions")
	}

	for i, row := range s.Rows {
		if _, ok := row["id"]; !ok {
			return fmt.Errorf("rows[%d]: id is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertSlotCount:
		if _, err := filter.ParseSlot(a.Slot); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for slot_count", index)
		}
	case AssertSlotContains:
		if _, err := filter.ParseSlot(a.Slot); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.Field == "" {
			return fmt.Errorf("assertions[%d]: field is required for slot_contains", index)
		}
	case AssertDocumentHas:
		if a.Key == "" {
			return fmt.Errorf("assertions[%d]: key is required for document_has", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
