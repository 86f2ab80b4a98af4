package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Test scenario for validation"
seed: empty
steps:
  - op: categories.add
    args: { name: Postres }
    expect:
      outcome: ok
      result: { id: 1 }
assertions:
  - type: category_count
    count: 1
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, SeedEmpty, scenario.Seed)
	require.Len(t, scenario.Steps, 1)
	assert.Equal(t, "categories.add", scenario.Steps[0].Op)
	assert.Equal(t, "Postres", scenario.Steps[0].Args["name"])
	assert.Equal(t, "ok", scenario.Steps[0].Expect.Outcome)
	assert.Equal(t, 1, scenario.Steps[0].Expect.Result["id"])
	assert.Equal(t, AssertCategoryCount, scenario.Assertions[0].Type)
}

func TestLoadScenario_ResolvesSeedFileRelativeToScenario(t *testing.T) {
	path := writeScenario(t, `
name: seeded
description: "Seed file path"
seed: seeds/menu.cue
steps:
  - op: reset
    args: {}
assertions:
  - type: item_count
    count: 0
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "seeds", "menu.cue"), scenario.Seed)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "description: x\nsteps: [{op: reset}]\nassertions: [{type: item_count}]",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: x\nsteps: [{op: reset}]\nassertions: [{type: item_count}]",
			wantErr: "description is required",
		},
		{
			name:    "no steps",
			content: "name: x\ndescription: y\nassertions: [{type: item_count}]",
			wantErr: "steps list is required",
		},
		{
			name:    "no assertions",
			content: "name: x\ndescription: y\nsteps: [{op: reset}]",
			wantErr: "assertions list is required",
		},
		{
			name:    "unknown op",
			content: "name: x\ndescription: y\nsteps: [{op: items.explode}]\nassertions: [{type: item_count}]",
			wantErr: `unknown op "items.explode"`,
		},
		{
			name:    "expect without outcome",
			content: "name: x\ndescription: y\nsteps: [{op: reset, expect: {result: {a: 1}}}]\nassertions: [{type: item_count}]",
			wantErr: "outcome is required",
		},
		{
			name:    "unknown assertion",
			content: "name: x\ndescription: y\nsteps: [{op: reset}]\nassertions: [{type: final_state}]",
			wantErr: `unknown assertion type "final_state"`,
		},
		{
			name:    "item_category without category",
			content: "name: x\ndescription: y\nsteps: [{op: reset}]\nassertions: [{type: item_category, id: 1}]",
			wantErr: "id and category are required",
		},
		{
			name:    "option_count without size",
			content: "name: x\ndescription: y\nsteps: [{op: reset}]\nassertions: [{type: option_count, count: 1}]",
			wantErr: "size is required",
		},
		{
			name:    "trace_order without ops",
			content: "name: x\ndescription: y\nsteps: [{op: reset}]\nassertions: [{type: trace_order}]",
			wantErr: "ops list is required",
		},
		{
			name:    "unknown field",
			content: "name: x\ndescription: y\nflow: []\nsteps: [{op: reset}]\nassertions: [{type: item_count}]",
			wantErr: "failed to parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOperations_Sorted(t *testing.T) {
	ops := Operations()
	assert.Contains(t, ops, "items.add")
	assert.Contains(t, ops, "selection.toggle")
	assert.IsIncreasing(t, ops)
}
