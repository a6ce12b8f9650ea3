package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/enums/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool                       `json:"valid"`
	Definitions int                        `json:"definitions"`
	Errors      []compiler.ValidationError `json:"errors,omitempty"`
}

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Include []string
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate definitions without writing IR",
		Long: `Validate CUE and YAML enumeration definitions.

Checks syntax, kinds, value types, reserved and duplicate names, flag values
and unique constraints without producing output files. Faster than compile
for development feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Include, "include", nil, "include patterns below a definitions directory")

	return cmd
}

func runValidate(opts *ValidateOptions, target string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	count, validationErrors, err := validatePath(target, opts.Include, formatter)
	if err != nil {
		code, message := parseCompileError(err)
		return formatter.fail(ExitCommandError, code, message, nil)
	}

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}

	return outputValidateSuccess(formatter, count)
}

// validatePath loads the definitions under target and validates them.
// Load errors that stop anything from loading are returned as err; errors in
// individual definitions are reported as validation errors.
func validatePath(target string, include []string, formatter *OutputFormatter) (int, []compiler.ValidationError, error) {
	loadResult, loadErrors := LoadDefinitions(target, LoadOptions{
		Mode:    LoadModeFailFast,
		Include: include,
	})
	if loadResult == nil && len(loadErrors) > 0 {
		return 0, nil, loadErrors[0]
	}

	formatter.VerboseLog("Found %d definition file(s) in %s", loadResult.FileCount, target)

	var validationErrors []compiler.ValidationError
	for _, err := range loadErrors {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			validationErrors = append(validationErrors, compiler.ValidationError{
				Field:   "load",
				Message: loadErr.Message,
				Code:    loadErr.Code,
				Line:    loadErrorLine(loadErr),
			})
		}
	}

	for _, def := range loadResult.Definitions {
		formatter.VerboseLog("Validating enumeration: %s", def.Name)
	}
	validationErrors = append(validationErrors, compiler.ValidateAll(loadResult.Definitions)...)

	return len(loadResult.Definitions), validationErrors, nil
}

// loadErrorLine extracts the line number from either position form.
func loadErrorLine(e *LoadError) int {
	if e.Pos.IsValid() {
		return e.Pos.Line()
	}
	return e.Line
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, count int) error {
	if formatter.IsJSON() {
		return formatter.Success(ValidationResult{Valid: true, Definitions: count})
	}

	fmt.Fprintf(formatter.Writer, "✓ All %d definition(s) valid\n", count)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.IsJSON() {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Errors: errs,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := formatter.Response(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}

// ValidateDir validates all definitions below a directory (or in one file).
// This is a helper for the watch command and external callers.
func ValidateDir(target string, include []string) ([]compiler.ValidationError, error) {
	silent := &OutputFormatter{Format: "text"}
	_, errs, err := validatePath(target, include, silent)
	return errs, err
}
