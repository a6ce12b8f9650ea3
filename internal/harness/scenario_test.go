package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/enums/internal/ir"
)

// writeScenario writes content to dir/test.yaml and returns its path.
func writeScenario(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const inlineColor = `
enums:
  Color:
    kind: enum
    members:
      RED: 1
      GREEN: ~
`

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, t.TempDir(), `
name: test_scenario
description: "Test scenario for validation"
`+inlineColor+`
enum: Color
steps:
  - op: value
    value: 1
    expect:
      name: RED
assertions:
  - type: names
    names: [RED, GREEN]
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.Equal(t, "Color", scenario.Enum)
	require.Len(t, scenario.Steps, 1)
	assert.Equal(t, OpValue, scenario.Steps[0].Op)
	assert.Equal(t, 1, scenario.Steps[0].Value)
	require.NotNil(t, scenario.Steps[0].Expect)
	require.NotNil(t, scenario.Steps[0].Expect.Name)
	assert.Equal(t, "RED", *scenario.Steps[0].Expect.Name)
	assert.Len(t, scenario.Assertions, 1)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_MissingName(t *testing.T) {
	path := writeScenario(t, t.TempDir(), `
description: "Missing name"
`+inlineColor+`
steps:
  - op: name
    name: RED
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestLoadScenario_MissingDescription(t *testing.T) {
	path := writeScenario(t, t.TempDir(), `
name: no_description
`+inlineColor+`
steps:
  - op: name
    name: RED
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description is required")
}

func TestLoadScenario_MissingDefinitions(t *testing.T) {
	path := writeScenario(t, t.TempDir(), `
name: no_definitions
description: "No enums at all"
steps:
  - op: name
    name: RED
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "definitions or enums is required")
}

func TestLoadScenario_MissingSteps(t *testing.T) {
	path := writeScenario(t, t.TempDir(), `
name: no_steps
description: "No steps"
`+inlineColor)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps list is required")
}

func TestLoadScenario_InvalidDefinitionPath(t *testing.T) {
	path := writeScenario(t, t.TempDir(), `
name: bad_path
description: "Definition file does not exist"
definitions:
  - missing.cue
steps:
  - op: name
    name: RED
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "definition file not found")
}

func TestLoadScenario_MalformedYAML(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "name: [unclosed\n")

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, t.TempDir(), `
name: typo
description: "Unknown field"
`+inlineColor+`
setps:
  - op: name
    name: RED
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setps")
}

func TestLoadScenario_UnknownOp(t *testing.T) {
	path := writeScenario(t, t.TempDir(), `
name: bad_op
description: "Unknown op"
`+inlineColor+`
steps:
  - op: lookup
    name: RED
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `steps[0]: unknown op "lookup"`)
}

func TestLoadScenario_StepRequirements(t *testing.T) {
	cases := map[string]string{
		"name requires name":          "op: name",
		"value requires value":        "op: value",
		"or requires one arg":         "{op: or, name: RED}",
		"or requires a target":        "{op: or, args: [RED]}",
		"decompose requires integers": "{op: decompose, value: RED}",
	}

	for label, step := range cases {
		t.Run(label, func(t *testing.T) {
			path := writeScenario(t, t.TempDir(), `
name: step
description: "Step validation"
`+inlineColor+`
steps:
  - `+step+`
`)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "steps[0]")
		})
	}
}

func TestLoadScenario_UnknownAssertion(t *testing.T) {
	path := writeScenario(t, t.TempDir(), `
name: bad_assertion
description: "Unknown assertion type"
`+inlineColor+`
steps:
  - op: name
    name: RED
assertions:
  - type: trace_contains
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown assertion type "trace_contains"`)
}

func TestLoadScenario_ResolvesDefinitionsRelativeToFile(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/perm_flag.yaml")
	require.NoError(t, err)

	require.Len(t, scenario.Definitions, 1)
	assert.Equal(t, filepath.Join("testdata", "definitions", "catalog.cue"), scenario.Definitions[0])
}

func TestScenarioCompile_FilesAndInline(t *testing.T) {
	dir := t.TempDir()
	defPath := filepath.Join(dir, "size.enum.yaml")
	require.NoError(t, os.WriteFile(defPath, []byte(`
enums:
  Size:
    kind: int_enum
    members: [S, M, L]
`), 0644))

	path := writeScenario(t, dir, `
name: mixed
description: "File and inline definitions"
definitions:
  - size.enum.yaml
`+inlineColor+`
steps:
  - {op: name, enum: Size, name: M}
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	defs, err := scenario.Compile()
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "Size", defs[0].Name)
	assert.Equal(t, "Color", defs[1].Name)
	assert.Equal(t, []ir.Declaration{
		{Name: "RED", Value: ir.Int(1)},
		{Name: "GREEN", Auto: true},
	}, defs[1].Members)
}

func TestScenarioCompile_ReportsValidationErrors(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: invalid
description: "Flag with a string value"
enums:
  Perm:
    kind: flag
    members:
      R: read
steps:
  - {op: name, name: R}
`), "")
	require.NoError(t, err)

	_, err = scenario.Compile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E107")
}
