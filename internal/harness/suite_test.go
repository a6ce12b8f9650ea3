package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindScenarios_Default(t *testing.T) {
	paths, err := FindScenarios("testdata")
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join("testdata", "scenarios", "color_aliases.yaml"),
		filepath.Join("testdata", "scenarios", "int_flag_synthesis.yaml"),
		filepath.Join("testdata", "scenarios", "perm_flag.yaml"),
	}, paths)
}

func TestFindScenarios_Deduplicates(t *testing.T) {
	paths, err := FindScenarios("testdata", "scenarios/perm_*.yaml", "**/perm_flag.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("testdata", "scenarios", "perm_flag.yaml")}, paths)
}

func TestFindScenarios_NoMatch(t *testing.T) {
	_, err := FindScenarios("testdata", "scenarios/missing.yaml")
	require.Error(t, err)

	var notFound *ScenarioNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "scenarios/missing.yaml", notFound.Pattern)
	assert.Equal(t, filepath.Join("testdata", "scenarios", "missing.yaml"), notFound.ResolvedPath)
}

func TestRunSuite_AllPass(t *testing.T) {
	paths, err := FindScenarios("testdata")
	require.NoError(t, err)

	result, err := RunSuite(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Passed)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, result.Failures)
}

func TestRunSuite_ReportsFailures(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("name: broken\n"), 0644))

	failing := filepath.Join(dir, "failing.yaml")
	require.NoError(t, os.WriteFile(failing, []byte(`
name: failing
description: "Expects the wrong value"
`+inlineColor+`
steps:
  - op: name
    name: RED
    expect:
      value: 2
`), 0644))

	result, err := RunSuite(context.Background(), []string{broken, failing})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 0, result.Passed)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Failures, 2)
	assert.Contains(t, result.Failures[0].Errors[0], "failed to load scenario")
	assert.Equal(t, "failing", result.Failures[1].Scenario)
	assert.Contains(t, result.Failures[1].Errors[0], "value: expected 2, got 1")
}

func TestRunSuite_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := RunSuite(ctx, []string{"testdata/scenarios/perm_flag.yaml"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, result.Total)
}
