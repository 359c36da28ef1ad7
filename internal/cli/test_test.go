package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: adults
description: "Adults only"
table: people
rows:
  - {id: 1, age: 30}
  - {id: 2, age: 12}
  - {id: 3, age: 41}
payload:
  filters:
    - {field: age, value: 18, opt: gte}
  orderBy: age
expect:
  ids: [3, 1]
  total: 2
`

const failingScenario = `name: wrong_ids
description: "Expects the minor"
rows:
  - {id: 1, age: 30}
  - {id: 2, age: 12}
payload:
  filters:
    - {field: age, value: 18, opt: lt}
expect:
  ids: [1]
`

func writeScenarioFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runTestCommand(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestTestCommandMissingArgs(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	output, err := runTestCommand(t, "text", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, output, "scenarios directory not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	output, err := runTestCommand(t, "text", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, output, "No scenarios found.")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	output, err := runTestCommand(t, "json", t.TempDir())
	require.NoError(t, err)

	var resp struct {
		Data TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, 0, resp.Data.Total)
	assert.Empty(t, resp.Data.Scenarios)
}

func TestTestCommandPassAndFail(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "adults.yaml", passingScenario)
	writeScenarioFile(t, dir, "wrong_ids.yaml", failingScenario)

	output, err := runTestCommand(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, output, "✓ adults")
	assert.Contains(t, output, "✗ wrong_ids")
	assert.Contains(t, output, "1 passed, 1 failed, 2 total")
}

func TestTestCommandFilter(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "adults.yaml", passingScenario)
	writeScenarioFile(t, dir, "wrong_ids.yaml", failingScenario)

	output, err := runTestCommand(t, "json", dir, "--filter", "adult*")
	require.NoError(t, err)

	var resp struct {
		Data TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, "adults", resp.Data.Scenarios[0].Name)
}

func TestTestCommandGoldenUpdateAndCompare(t *testing.T) {
	dir := t.TempDir()
	file := writeScenarioFile(t, dir, "adults.yaml", passingScenario)

	output, err := runTestCommand(t, "text", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, output, "✓ adults (golden updated)")

	golden, err := os.ReadFile(goldenFilePath(file))
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"ids":[3,1]`)
	assert.Contains(t, string(golden), `"scenario":"adults"`)

	_, err = runTestCommand(t, "text", dir)
	require.NoError(t, err)

	// A stale golden file fails the run.
	require.NoError(t, os.WriteFile(goldenFilePath(file), []byte(`{"scenario":"adults"}`), 0o644))
	output, err = runTestCommand(t, "text", dir)
	require.Error(t, err)
	assert.Contains(t, output, "does not match golden file")
}

func TestTestCommandLoadError(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "broken.yaml", "name: broken\n")

	output, err := runTestCommand(t, "text", dir)
	require.Error(t, err)
	assert.Contains(t, output, "✗ broken")
	assert.Contains(t, output, "load error")
}

func TestTestHelpText(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{})
	assert.Contains(t, cmd.Long, "golden")
	assert.Contains(t, cmd.Long, "Exit codes")
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("scenarios", "golden", "adults.golden"),
		goldenFilePath(filepath.Join("scenarios", "adults.yaml")))
}
