package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultScenarioPattern matches scenario files below a directory.
const DefaultScenarioPattern = "**/*.yaml"

// ScenarioNotFoundError is returned when a scenario path or pattern matches nothing.
type ScenarioNotFoundError struct {
	Pattern      string
	ResolvedPath string
}

// Error implements the error interface.
func (e *ScenarioNotFoundError) Error() string {
	return fmt.Sprintf("no scenario matches %q (resolved to: %s)", e.Pattern, e.ResolvedPath)
}

// FindScenarios expands patterns relative to dir into a sorted, de-duplicated
// list of scenario files. Patterns may use ** to match any number of
// directories; a plain path must exist. With no patterns, every .yaml file
// below dir is returned.
func FindScenarios(dir string, patterns ...string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{DefaultScenarioPattern}
	}

	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		resolved := pattern
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(dir, resolved)
		}

		matches, err := doublestar.FilepathGlob(resolved)
		if err != nil {
			return nil, fmt.Errorf("glob error: %w", err)
		}
		if len(matches) == 0 {
			return nil, &ScenarioNotFoundError{Pattern: pattern, ResolvedPath: resolved}
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue // Skip paths that can't be stat'd
			}
			if !seen[match] {
				seen[match] = true
				paths = append(paths, match)
			}
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// SuiteResult summarizes a run over several scenario files.
type SuiteResult struct {
	Total    int               `json:"total"`
	Passed   int               `json:"passed"`
	Failed   int               `json:"failed"`
	Failures []ScenarioFailure `json:"failures,omitempty"`
}

// ScenarioFailure represents a scenario that failed to load, run or pass.
type ScenarioFailure struct {
	ScenarioPath string   `json:"scenario_path"`
	Scenario     string   `json:"scenario,omitempty"`
	Errors       []string `json:"errors"`
}

// RunSuite loads and runs every scenario in paths, stopping early only
// when ctx is cancelled.
//
// For each path:
// 1. Load the scenario with definitions resolved against its directory
// 2. Run it via Run
// 3. Collect and report results
func RunSuite(ctx context.Context, paths []string, opts ...Option) (*SuiteResult, error) {
	result := &SuiteResult{}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Total++

		scenario, err := LoadScenario(path)
		if err != nil {
			result.fail(path, "", fmt.Sprintf("failed to load scenario: %v", err))
			continue
		}

		runResult, err := Run(scenario, opts...)
		if err != nil {
			result.fail(path, scenario.Name, fmt.Sprintf("scenario execution failed: %v", err))
			continue
		}

		if !runResult.Pass {
			result.fail(path, scenario.Name, runResult.Errors...)
			continue
		}

		result.Passed++
	}

	return result, nil
}

func (r *SuiteResult) fail(path, name string, errs ...string) {
	r.Failed++
	r.Failures = append(r.Failures, ScenarioFailure{
		ScenarioPath: path,
		Scenario:     name,
		Errors:       errs,
	})
}
