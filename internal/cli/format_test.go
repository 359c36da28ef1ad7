package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/typica/internal/conn"
)

func runFormatCommand(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewFormatCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestFormatURI(t *testing.T) {
	output, err := runFormatCommand(t, "text", "postgresql://app:p%40ss@db:5432/core")
	require.NoError(t, err)
	assert.Equal(t, "postgresql://app:p%40ss@db:5432/core\n", output)
}

func TestFormatURIScheme(t *testing.T) {
	output, err := runFormatCommand(t, "text", "mongo://a:1,b:2/app", "--scheme", "mongodb", "--no-database")
	require.NoError(t, err)
	assert.Equal(t, "mongodb://a:1,b:2/\n", output)
}

func TestFormatURIFromFields(t *testing.T) {
	output, err := runFormatCommand(t, "text",
		"--host", "cache", "--port", "6379", "--username", "svc", "--password", "pw", "--scheme", "redis")
	require.NoError(t, err)
	assert.Equal(t, "redis://svc:pw@cache:6379/\n", output)
}

func TestFormatURINeedsScheme(t *testing.T) {
	output, err := runFormatCommand(t, "text", "--host", "cache", "--port", "6379")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, output, "pass --scheme")
}

func TestFormatDSN(t *testing.T) {
	output, err := runFormatCommand(t, "text", "postgres://app:secret@db:5432/core", "--as", FormAsDSN)
	require.NoError(t, err)
	assert.Equal(t, "dbname=core host=db password=secret port=5432 user=app\n", output)
}

func TestFormatDSNClustered(t *testing.T) {
	output, err := runFormatCommand(t, "text", "postgres://a:1,b:2/core", "--as", FormAsDSN)
	require.Error(t, err)
	assert.Contains(t, output, conn.ErrClusteredTarget.Error())
}

func TestFormatMongoJSON(t *testing.T) {
	output, err := runFormatCommand(t, "json", "mongodb://u:p@a:1,b:2/?authSource=admin", "--as", FormAsMongo)
	require.NoError(t, err)

	var resp struct {
		Data MongoSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, MongoSummary{Hosts: []string{"a:1", "b:2"}, Username: "u", AuthSource: "admin"}, resp.Data)
	assert.NotContains(t, output, `"p"`)
}

func TestFormatMongoSingleText(t *testing.T) {
	output, err := runFormatCommand(t, "text", "mongodb://db:27017", "--as", FormAsMongo)
	require.NoError(t, err)
	assert.Contains(t, output, "Hosts:      [db:27017]")
	assert.Contains(t, output, "Direct:     true")
	assert.NotContains(t, output, "Username")
}

func TestFormatInvalidAs(t *testing.T) {
	output, err := runFormatCommand(t, "text", "redis://cache:6379", "--as", "yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, output, "Error [E008]")
}
