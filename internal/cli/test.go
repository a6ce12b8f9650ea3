package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/enums/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern on the file name)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Golden string   `json:"golden,omitempty"` // "match", "updated" or "" when absent
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir> [patterns...]",
		Short: "Run conformance scenarios",
		Long: `Run conformance scenarios using the harness.

Each scenario builds its enumerations, executes its steps with expectations
and evaluates its assertions. Definitions are resolved relative to the
scenario file. When <scenarios-dir>/golden/<file>.golden exists the trace must
match it byte for byte.

Patterns select scenario files below the directory and may use **.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  enums test ./scenarios
  enums test ./scenarios "flags/**/*.yaml"
  enums test ./scenarios --filter "perm_*"
  enums test ./scenarios --update
  enums test ./scenarios --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, patterns []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("scenarios directory not found: %s", scenariosDir), nil)
	}

	scenarioFiles, err := findScenarioFiles(scenariosDir, patterns, opts.Filter)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeScanError, fmt.Sprintf("failed to find scenarios: %v", err), nil)
	}

	if len(scenarioFiles) == 0 {
		if formatter.IsJSON() {
			return outputTestJSON(formatter, TestResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintln(formatter.Writer, "No scenarios found.")
		return nil
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}

	// Progress lines go to stdout in text mode only.
	progress := io.Discard
	if !formatter.IsJSON() {
		progress = formatter.Writer
	}
	logger := opts.Logger(formatter.GetErrWriter())

	for _, scenarioFile := range scenarioFiles {
		if err := commandContext(cmd).Err(); err != nil {
			return WrapExitError(ExitCommandError, "test run interrupted", err)
		}

		formatter.VerboseLog("Running %s", scenarioFile)
		scenResult := runScenario(scenariosDir, scenarioFile, opts.Update, harness.WithLogger(logger))
		printScenarioResult(progress, scenResult)

		result.Scenarios = append(result.Scenarios, scenResult)
		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if formatter.IsJSON() {
		return outputTestJSON(formatter, result)
	}
	return outputTestText(formatter, result)
}

// findScenarioFiles lists scenario files below dir matching patterns, then
// keeps those whose base name (without extension) matches filter.
func findScenarioFiles(dir string, patterns []string, filter string) ([]string, error) {
	files, err := harness.FindScenarios(dir, patterns...)
	if err != nil {
		var notFound *harness.ScenarioNotFoundError
		if errors.As(err, &notFound) && len(patterns) == 0 {
			return nil, nil
		}
		return nil, err
	}

	// Golden files never match *.yaml; skip anything under golden/ anyway.
	goldenDir := filepath.Join(dir, "golden") + string(filepath.Separator)
	var out []string
	for _, file := range files {
		if strings.HasPrefix(file, goldenDir) {
			continue
		}
		if filter != "" {
			base := filepath.Base(file)
			name := strings.TrimSuffix(base, filepath.Ext(base))
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return nil, fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				continue
			}
		}
		out = append(out, file)
	}
	return out, nil
}

// runScenario executes a single scenario and compares or updates its golden trace.
func runScenario(scenariosDir, scenarioFile string, update bool, opts ...harness.Option) ScenarioResult {
	res := ScenarioResult{
		Name: filepath.Base(scenarioFile),
		File: scenarioFile,
	}

	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		res.Errors = []string{fmt.Sprintf("failed to load scenario: %v", err)}
		return res
	}
	res.Name = scenario.Name

	result, err := harness.Run(scenario, opts...)
	if err != nil {
		res.Errors = []string{fmt.Sprintf("execution failed: %v", err)}
		return res
	}

	trace, err := harness.MarshalTrace(scenario.Name, result)
	if err != nil {
		res.Errors = []string{fmt.Sprintf("failed to marshal trace: %v", err)}
		return res
	}

	goldenPath := goldenFilePath(scenariosDir, scenarioFile)
	switch {
	case update:
		if err := writeGoldenFile(goldenPath, trace); err != nil {
			res.Errors = []string{fmt.Sprintf("failed to update golden file: %v", err)}
			return res
		}
		res.Golden = "updated"

	default:
		golden, err := os.ReadFile(goldenPath)
		if os.IsNotExist(err) {
			break // assertion-based validation only
		}
		if err != nil {
			res.Errors = []string{fmt.Sprintf("failed to read golden file: %v", err)}
			return res
		}
		if !bytes.Equal(golden, trace) {
			res.Errors = []string{"trace does not match golden file (run with --update to regenerate)"}
			return res
		}
		res.Golden = "match"
	}

	res.Pass = result.Pass
	res.Errors = result.Errors
	return res
}

// goldenFilePath returns <scenariosDir>/golden/<rel>.golden, where rel is
// the scenario path below scenariosDir without its extension.
func goldenFilePath(scenariosDir, scenarioFile string) string {
	rel, err := filepath.Rel(scenariosDir, scenarioFile)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(scenarioFile)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return filepath.Join(scenariosDir, "golden", rel+".golden")
}

// writeGoldenFile writes trace as the golden file, creating directories.
func writeGoldenFile(goldenPath string, trace []byte) error {
	if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(goldenPath, trace, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

func printScenarioResult(w io.Writer, res ScenarioResult) {
	if !res.Pass {
		fmt.Fprintf(w, "✗ %s\n", res.Name)
		for _, e := range res.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
		return
	}
	if res.Golden == "updated" {
		fmt.Fprintf(w, "✓ %s (golden updated)\n", res.Name)
		return
	}
	fmt.Fprintf(w, "✓ %s\n", res.Name)
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(formatter *OutputFormatter, result TestResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}
	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_TEST_FAILED",
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	if err := formatter.Response(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the test summary as text.
func outputTestText(formatter *OutputFormatter, result TestResult) error {
	w := formatter.Writer

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
