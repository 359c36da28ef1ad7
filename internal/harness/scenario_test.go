package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenario_Minimal(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: minimal
description: "empty payload compiles"
payload: {}
assertions:
  - {type: slot_count, slot: must, count: 0}
`))
	require.NoError(t, err)
	assert.Equal(t, "minimal", s.Name)
	assert.Equal(t, DefaultTable, s.Table)
	assert.Len(t, s.Assertions, 1)
}

func TestParseScenario_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "unknown field",
			input: "name: a\ndescription: b\nassertion: []\n",
			want:  "failed to parse YAML",
		},
		{
			name:  "missing name",
			input: "description: b\nexpect: {error: {code: E402}}\n",
			want:  "name is required",
		},
		{
			name:  "missing description",
			input: "name: a\nexpect: {error: {code: E402}}\n",
			want:  "description is required",
		},
		{
			name:  "checks nothing",
			input: "name: a\ndescription: b\npayload: {}\n",
			want:  "checks nothing",
		},
		{
			name:  "ids without rows",
			input: "name: a\ndescription: b\nexpect: {ids: [1]}\n",
			want:  "need rows",
		},
		{
			name:  "error without code",
			input: "name: a\ndescription: b\nexpect: {error: {path: x}}\n",
			want:  "code is required",
		},
		{
			name:  "error with ids",
			input: "name: a\ndescription: b\nrows: [{id: 1}]\nexpect: {ids: [1], error: {code: E402}}\n",
			want:  "cannot be combined",
		},
		{
			name:  "row without id",
			input: "name: a\ndescription: b\nrows: [{name: x}]\nexpect: {total: 0}\n",
			want:  "rows[0]: id is required",
		},
		{
			name:  "unknown assertion type",
			input: "name: a\ndescription: b\nassertions: [{type: trace_order}]\n",
			want:  `unknown assertion type "trace_order"`,
		},
		{
			name:  "assertion without type",
			input: "name: a\ndescription: b\nassertions: [{slot: must}]\n",
			want:  "type is required",
		},
		{
			name:  "bad slot",
			input: "name: a\ndescription: b\nassertions: [{type: slot_count, slot: maybe}]\n",
			want:  "unknown slot",
		},
		{
			name:  "negative count",
			input: "name: a\ndescription: b\nassertions: [{type: slot_count, slot: must, count: -1}]\n",
			want:  "count must be non-negative",
		},
		{
			name:  "slot_contains without field",
			input: "name: a\ndescription: b\nassertions: [{type: slot_contains, slot: must}]\n",
			want:  "field is required",
		},
		{
			name:  "document_has without key",
			input: "name: a\ndescription: b\nassertions: [{type: document_has}]\n",
			want:  "key is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_Missing(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestFindScenarios(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yml", "skip.txt", "sub/c.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}

	files, err := FindScenarios(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "sub", "c.yaml"),
	}, files)

	files, err = FindScenarios(dir, "[bc]")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "b.yaml"), filepath.Join(dir, "sub", "c.yaml")}, files)

	_, err = FindScenarios(dir, "[")
	assert.ErrorContains(t, err, "invalid filter")
}
