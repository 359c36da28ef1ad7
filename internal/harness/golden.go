package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/typica/internal/ir"
)

// Snapshot captures what a scenario compiled to, in a form that serializes
// to canonical JSON.
type Snapshot struct {
	Name        string
	Document    map[string]any
	Fingerprint string
	IDs         []int64
	ErrCode     string
}

// toCanonicalMap converts the snapshot for ir.MarshalCanonical, which
// handles plain maps, slices and scalars.
func (s *Snapshot) toCanonicalMap() map[string]any {
	out := map[string]any{
		"scenario": s.Name,
	}
	if s.Document != nil {
		out["document"] = s.Document
		out["fingerprint"] = s.Fingerprint
	}
	if s.IDs != nil {
		ids := make([]any, len(s.IDs))
		for i, id := range s.IDs {
			ids[i] = id
		}
		out["ids"] = ids
	}
	if s.ErrCode != "" {
		out["error"] = s.ErrCode
	}
	return out
}

// Canonical returns the snapshot as canonical JSON, the golden file format.
func (s *Snapshot) Canonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// SnapshotOf builds the snapshot of a result.
func SnapshotOf(name string, result *Result) *Snapshot {
	return &Snapshot{
		Name:        name,
		Document:    result.Document,
		Fingerprint: result.Fingerprint,
		IDs:         result.IDs,
		ErrCode:     result.ErrCode,
	}
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := SnapshotOf(name, result).Canonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
