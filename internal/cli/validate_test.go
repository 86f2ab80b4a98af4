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

const validSeed = `categories: ["Tapas", "Postres"]
menuItems: [
	{id: 1, name: "Bravas", category: "Tapas", price: 5.5, allergens: ["gluten"]},
	{id: 2, name: "Flan", category: "Postres", price: 4},
]
groupOptions: {
	"2": [{id: "tapeo-2", name: "Tapeo para dos", price: 18, menuItemIds: [1]}]
}
`

func writeSeed(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func runValidateCommand(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidateValidSeed(t *testing.T) {
	path := writeSeed(t, "bar.cue", validSeed)

	out, err := runValidateCommand(t, &RootOptions{Format: "text"}, path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "2 categories, 2 dishes, 1 group options")
}

func TestValidateValidSeedJSON(t *testing.T) {
	path := writeSeed(t, "bar.cue", validSeed)

	out, err := runValidateCommand(t, &RootOptions{Format: "json"}, path)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	require.Len(t, resp.Data.Files, 1)
	assert.Equal(t, SeedSummary{File: path, Categories: 2, Items: 2, Options: 1}, resp.Data.Files[0])
}

func TestValidateMissingArgs(t *testing.T) {
	_, err := runValidateCommand(t, &RootOptions{Format: "text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestValidateNonExistentFile(t *testing.T) {
	out, err := runValidateCommand(t, &RootOptions{Format: "text"}, "/nonexistent/seed.cue")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "failed to read seed file")
}

func TestValidateSchemaViolation(t *testing.T) {
	path := writeSeed(t, "bad.cue", `categories: ["Tapas"]
menuItems: [{id: 1, name: "Bravas", category: "Tapas", price: -2}]
groupOptions: {}
`)

	out, err := runValidateCommand(t, &RootOptions{Format: "text"}, path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "price")
}

func TestValidateCrossFieldViolationJSON(t *testing.T) {
	path := writeSeed(t, "bad.cue", `categories: ["Tapas"]
menuItems: [{id: 1, name: "Flan", category: "Postres", price: 4}]
groupOptions: {}
`)

	out, err := runValidateCommand(t, &RootOptions{Format: "json"}, path)
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeSeed, resp.Error.Code)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, "menuItems", resp.Data.Errors[0].Field)
	assert.Contains(t, resp.Data.Errors[0].Message, `undeclared category "Postres"`)
}

func TestValidateMultipleFiles(t *testing.T) {
	good := writeSeed(t, "good.cue", validSeed)
	bad := writeSeed(t, "bad.cue", "categories: [\n")

	out, err := runValidateCommand(t, &RootOptions{Format: "json"}, good, bad)
	require.Error(t, err)

	var resp struct {
		Data ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Len(t, resp.Data.Files, 1)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, bad, resp.Data.Errors[0].File)
}

func TestValidateVerboseOutput(t *testing.T) {
	path := writeSeed(t, "bar.cue", validSeed)

	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "json", Verbose: true})
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, errBuf.String(), "Validating "+path)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp), "verbose logs must not corrupt JSON")
}
