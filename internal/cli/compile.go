package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/enums/internal/compiler"
	"github.com/roach88/enums/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output  string   // output file path
	Include []string // doublestar patterns below a definitions directory
}

// CompiledDefinition is a definition with its content-addressed id.
type CompiledDefinition struct {
	ID         string        `json:"id"`
	Definition ir.Definition `json:"definition"`
}

// CompilationResult holds the compiled definitions.
type CompilationResult struct {
	Definitions   []CompiledDefinition `json:"definitions"`
	IRVersion     string               `json:"ir_version"`
	EngineVersion string               `json:"engine_version"`
}

// CompilationStats holds summary statistics.
type CompilationStats struct {
	DefinitionCount int
	FileCount       int
	MemberCount     int
	FlagCount       int
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <path>",
		Short: "Compile enumeration definitions to canonical IR",
		Long: `Compile CUE and YAML enumeration definitions to canonical IR.

A directory contributes the CUE package at its root and every file matching
the include patterns (default **/*.enum.yaml, **/*.enum.yml). Each compiled
definition is validated and reported with its content-addressed id.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringSliceVar(&opts.Include, "include", nil, "include patterns below a definitions directory")

	return cmd
}

func runCompile(opts *CompileOptions, target string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loadResult, loadErrors := LoadDefinitions(target, LoadOptions{
		Mode:    LoadModeCollectAll,
		Include: opts.Include,
	})

	// Nothing could be loaded (path not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		code, message := parseCompileError(loadErrors[0])
		return formatter.fail(ExitCommandError, code, message, nil)
	}

	formatter.VerboseLog("Found %d definition file(s) in %s", loadResult.FileCount, target)
	for _, def := range loadResult.Definitions {
		formatter.VerboseLog("Compiled enumeration: %s (%s)", def.Name, def.Kind)
	}

	errs := loadErrors
	for _, verr := range compiler.ValidateAll(loadResult.Definitions) {
		errs = append(errs, verr)
	}
	if len(errs) > 0 {
		return outputCompileErrors(formatter, errs)
	}

	result, err := buildCompilationResult(loadResult.Definitions)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	stats := calculateStats(loadResult)

	if opts.Output != "" {
		if err := writeIRToFile(result, opts.Output); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, result, stats, opts.Output)
}

func buildCompilationResult(defs []ir.Definition) (*CompilationResult, error) {
	result := &CompilationResult{
		Definitions:   make([]CompiledDefinition, len(defs)),
		IRVersion:     ir.IRVersion,
		EngineVersion: ir.EngineVersion,
	}
	for i, def := range defs {
		id, err := ir.DefinitionID(def)
		if err != nil {
			return nil, err
		}
		result.Definitions[i] = CompiledDefinition{ID: id, Definition: def}
	}
	return result, nil
}

// calculateStats computes summary statistics from a load result.
func calculateStats(result *LoadResult) CompilationStats {
	stats := CompilationStats{
		DefinitionCount: len(result.Definitions),
		FileCount:       result.FileCount,
	}
	for _, def := range result.Definitions {
		stats.MemberCount += len(def.Members)
		if def.Kind == ir.KindFlag || def.Kind == ir.KindIntFlag {
			stats.FlagCount++
		}
	}
	return stats
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, stats CompilationStats, outputFile string) error {
	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d definition(s) from %d file(s)\n\n",
		stats.DefinitionCount, stats.FileCount)

	fmt.Fprintln(formatter.Writer, "Enumerations:")
	for _, cd := range result.Definitions {
		def := cd.Definition
		fmt.Fprintf(formatter.Writer, "  %s (%s): %d member(s)  %s\n",
			def.Name, def.Kind, len(def.Members), shortID(cd.ID))
	}
	fmt.Fprintln(formatter.Writer)

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote canonical IR to %s\n", outputFile)
	}

	return nil
}

// outputCompileErrors outputs every load and validation error.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.IsJSON() {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseCompileError(err)
			cliErrors[i] = CLIError{Code: code, Message: message}
		}

		if err := formatter.Response(CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors,
		}); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		code, message := parseCompileError(err)
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			if loc := loadErr.Location(); loc != "" {
				fmt.Fprintln(formatter.Writer, loc)
			}
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}

	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var verr compiler.ValidationError
	if errors.As(err, &verr) {
		return verr.Code, verr.Field + ": " + verr.Message
	}
	return ErrCodeGeneric, err.Error()
}

// writeIRToFile writes the compilation result to a file.
// Indented for readability; canonical JSON is only used for hashing.
func writeIRToFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling IR: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}

// shortID abbreviates a content hash for text output.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
