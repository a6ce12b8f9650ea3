package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: perm_union
description: "Union of two flags synthesizes a composite"
enums:
  Perm:
    kind: flag
    members:
      R: 4
      W: 2
      X: 1
steps:
  - op: or
    name: R
    args: [W]
    expect:
      value: 6
      named: false
      string: Perm.R|W
  - op: value
    value: 8
    expect:
      error: INVALID_FLAG_VALUE
assertions:
  - type: names
    names: [R, W, X]
`

const failingScenario = `name: color_wrong
description: "Expects the wrong value"
enums:
  Color:
    kind: enum
    members:
      RED: 1
      GREEN: 2
steps:
  - op: name
    name: GREEN
    expect:
      value: 3
`

func scenariosDir(t *testing.T, files map[string]string) string {
	t.Helper()
	return writeFiles(t, files)
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, _, err := execute(t, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, _, err := execute(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandNoScenarios(t *testing.T) {
	out, _, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", out)
}

func TestTestCommandPassingScenario(t *testing.T) {
	dir := scenariosDir(t, map[string]string{"perm.yaml": passingScenario})

	out, _, err := execute(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ perm_union\n")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, out, "✓ All scenarios passed")

	_, statErr := os.Stat(filepath.Join(dir, "golden", "perm.golden"))
	assert.True(t, os.IsNotExist(statErr), "golden files are only written with --update")
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := scenariosDir(t, map[string]string{
		"perm.yaml":  passingScenario,
		"color.yaml": failingScenario,
	})

	out, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ color_wrong")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total")
	assert.NotContains(t, out, "All scenarios passed")
}

func TestTestCommandGoldenLifecycle(t *testing.T) {
	dir := scenariosDir(t, map[string]string{"flags/perm.yaml": passingScenario})
	goldenPath := filepath.Join(dir, "golden", "flags", "perm.golden")

	out, _, err := execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ perm_union (golden updated)")

	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(golden), "perm_union")

	// The golden directory is not scanned as scenarios and the trace is stable.
	out, _, err = execute(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")

	require.NoError(t, os.WriteFile(goldenPath, []byte("stale\n"), 0644))
	out, _, err = execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommandFilter(t *testing.T) {
	dir := scenariosDir(t, map[string]string{
		"perm_union.yaml": passingScenario,
		"color.yaml":      failingScenario,
	})

	out, _, err := execute(t, "test", dir, "--filter", "perm_*")
	require.NoError(t, err)
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.NotContains(t, out, "color_wrong")
}

func TestTestCommandPatterns(t *testing.T) {
	dir := scenariosDir(t, map[string]string{
		"flags/perm.yaml":  passingScenario,
		"plain/color.yaml": failingScenario,
	})

	out, _, err := execute(t, "test", dir, "flags/**/*.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ perm_union")

	_, _, err = execute(t, "test", dir, "missing/*.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandInvalidScenario(t *testing.T) {
	dir := scenariosDir(t, map[string]string{"broken.yaml": "name: broken\n"})

	out, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "failed to load scenario")
}

func TestTestCommandJSONOutput(t *testing.T) {
	dir := scenariosDir(t, map[string]string{
		"perm.yaml":  passingScenario,
		"color.yaml": failingScenario,
	})

	out, _, err := execute(t, "--format", "json", "test", dir)
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Failed)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)

	byName := map[string]ScenarioResult{}
	for _, s := range resp.Data.Scenarios {
		byName[s.Name] = s
	}
	assert.True(t, byName["perm_union"].Pass)
	assert.False(t, byName["color_wrong"].Pass)
	assert.NotEmpty(t, byName["color_wrong"].Errors)
}

func TestGoldenFilePath(t *testing.T) {
	dir := filepath.Join("tmp", "scenarios")
	assert.Equal(t,
		filepath.Join(dir, "golden", "flags", "perm.golden"),
		goldenFilePath(dir, filepath.Join(dir, "flags", "perm.yaml")))
	assert.Equal(t,
		filepath.Join(dir, "golden", "other.golden"),
		goldenFilePath(dir, filepath.Join("elsewhere", "other.yaml")))
}
