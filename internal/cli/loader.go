package cli

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/roach88/enums/internal/compiler"
	"github.com/roach88/enums/internal/ir"
)

// LoadMode controls how errors are handled during definition loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// DefaultIncludes are the patterns matched below a definitions directory in
// addition to the CUE package at its root.
var DefaultIncludes = []string{"**/*.enum.yaml", "**/*.enum.yml"}

// LoadOptions configures LoadDefinitions.
type LoadOptions struct {
	Mode LoadMode

	// Include lists doublestar patterns relative to the directory.
	// Empty means DefaultIncludes.
	Include []string
}

// LoadResult contains the definitions loaded from a path.
type LoadResult struct {
	Definitions []ir.Definition
	Files       []string // Definition files read, in load order
	FileCount   int
}

// LoadError represents an error that occurred during definition loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
	File    string    // YAML position if available
	Line    int
	Column  int
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.File, e.Line, e.Column, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Location renders the error position, or "" when unknown.
func (e *LoadError) Location() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column())
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d", e.File, e.Line, e.Column)
	}
	return ""
}

// LoadDefinitions loads enumeration definitions from a file or directory.
//
// A directory contributes the CUE package at its root plus every file
// matching opts.Include. A single file is compiled on its own: .cue as CUE,
// anything else as a YAML definition file. If opts.Mode is
// LoadModeFailFast, returns on first error.
//
// A nil result means nothing could be loaded at all.
func LoadDefinitions(target string, opts LoadOptions) (*LoadResult, []error) {
	info, err := os.Stat(target)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("definitions path not found: %s", target)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing definitions path: %v", err)}}
	}

	failFast := opts.Mode == LoadModeFailFast
	result := &LoadResult{}

	if !info.IsDir() {
		errs := result.compileFile(target, failFast)
		return result, errs
	}

	var errs []error

	// CUE package at the directory root
	rootCUE, err := filepath.Glob(filepath.Join(target, "*.cue"))
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(rootCUE) > 0 {
		sort.Strings(rootCUE)
		result.Files = append(result.Files, rootCUE...)
		errs = append(errs, result.compilePackage(target, failFast)...)
		if failFast && len(errs) > 0 {
			return result, errs
		}
	}

	// Included files below the directory
	files, err := FindDefinitionFiles(target, opts.Include)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: err.Error()}}
	}
	for _, file := range files {
		errs = append(errs, result.compileFile(file, failFast)...)
		if failFast && len(errs) > 0 {
			return result, errs
		}
	}

	result.FileCount = len(result.Files)
	if result.FileCount == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no definition files found in %s", target)}}
	}
	if len(result.Definitions) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no enumerations found in definitions"})
	}
	return result, errs
}

// FindDefinitionFiles returns the files below dir matching patterns (or
// DefaultIncludes), sorted and de-duplicated. .cue files at the root of dir
// are skipped because they load as a package.
func FindDefinitionFiles(dir string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = DefaultIncludes
	}

	fsys := os.DirFS(dir)
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern %q", pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob error: %w", err)
		}
		for _, m := range matches {
			if path.Ext(m) == ".cue" && path.Dir(m) == "." {
				continue
			}
			if !seen[m] {
				seen[m] = true
				files = append(files, filepath.Join(dir, filepath.FromSlash(m)))
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// compilePackage loads the CUE package rooted at dir.
func (r *LoadResult) compilePackage(dir string, failFast bool) []error {
	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}

	inst := instances[0]
	if inst.Err != nil {
		return []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return []error{convertCompileError(err, ErrCodeBuildFailed)}
	}

	defs, errs := compiler.CompileCUE(value, failFast)
	r.Definitions = append(r.Definitions, defs...)
	return convertCompileErrors(errs)
}

// compileFile compiles one definition file and records it.
func (r *LoadResult) compileFile(file string, failFast bool) []error {
	data, err := os.ReadFile(file)
	if err != nil {
		return []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", file, err)}}
	}
	r.Files = append(r.Files, file)
	r.FileCount = len(r.Files)

	var (
		defs []ir.Definition
		errs []error
	)
	if strings.EqualFold(filepath.Ext(file), ".cue") {
		defs, errs = compiler.CompileCUESource(file, data)
	} else {
		defs, errs = compiler.CompileYAML(file, data, failFast)
	}
	r.Definitions = append(r.Definitions, defs...)
	return convertCompileErrors(errs)
}

func convertCompileErrors(errs []error) []error {
	out := make([]error, len(errs))
	for i, err := range errs {
		out[i] = convertCompileError(err, ErrCodeCompileFailed)
	}
	return out
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, fallback string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		code := MapFieldToErrorCode(compileErr.Field)
		if code == ErrCodeGeneric {
			code = fallback
		}
		// Keep the enum.Name prefix added by the compiler; the position
		// is carried separately.
		prefix := strings.TrimSuffix(err.Error(), compileErr.Error())
		return &LoadError{
			Code:    code,
			Message: prefix + compileErr.Field + ": " + compileErr.Message,
			Pos:     compileErr.Pos,
			File:    compileErr.File,
			Line:    compileErr.Line,
			Column:  compileErr.Column,
		}
	}
	return &LoadError{
		Code:    fallback,
		Message: err.Error(),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeScanError     = "E002" // Directory scan error
	ErrCodeNoFiles       = "E003" // No definition files found
	ErrCodeLoadFailed    = "E004" // CUE load failed
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeBuildFailed   = "E006" // CUE build failed
	ErrCodeWriteFailed   = "E007" // File write error
	ErrCodeCompileFailed = "E008" // Definition does not compile
	ErrCodeStoreFailed   = "E009" // Catalog database error
)

// MapFieldToErrorCode maps a compiler error field to a validation code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "kind":
		return compiler.ErrUnknownKind
	case "value_type":
		return compiler.ErrUnknownValueType
	case "start":
		return compiler.ErrInvalidStart
	default:
		return ErrCodeGeneric
	}
}
