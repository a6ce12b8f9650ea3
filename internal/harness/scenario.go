package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/enums/internal/compiler"
	"github.com/roach88/enums/internal/ir"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Definitions lists CUE (.cue) or YAML (.yaml, .yml) definition files.
	// Relative paths are resolved against the scenario file's directory.
	Definitions []string `yaml:"definitions,omitempty"`

	// Enums holds inline definitions in the *.enum.yaml format.
	Enums yaml.Node `yaml:"enums,omitempty"`

	// Enum is the default target of steps and assertions.
	// May be omitted when exactly one enumeration is defined.
	Enum string `yaml:"enum,omitempty"`

	// Steps are executed in order against the defined enumerations.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final registries.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one operation on an enumeration.
type Step struct {
	// Op is the operation, one of the Op* constants.
	Op string `yaml:"op"`

	// Enum overrides the scenario's default target.
	Enum string `yaml:"enum,omitempty"`

	// Name is the member name for name lookups and add, and the target
	// member of flag operations.
	Name string `yaml:"name,omitempty"`

	// Value is the value for value lookups, decompose and add, and the
	// target of flag operations when Name is empty.
	Value any `yaml:"value,omitempty"`

	// Args are the operands of or, and, xor, has and from_args.
	// Strings are tried as member names first.
	Args []any `yaml:"args,omitempty"`

	// Expect validates the outcome. If nil the step must merely succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a step.
// Only the fields that are set are checked.
type Expect struct {
	// Error is the expected error code, e.g. MEMBER_NOT_FOUND.
	// Any error in the chain may carry it.
	Error string `yaml:"error,omitempty"`

	Name      *string  `yaml:"name,omitempty"`
	Named     *bool    `yaml:"named,omitempty"`
	Value     any      `yaml:"value,omitempty"`
	String    string   `yaml:"string,omitempty"`
	Title     string   `yaml:"title,omitempty"`
	Members   []string `yaml:"members,omitempty"`
	Uncovered *int64   `yaml:"uncovered,omitempty"`
	Result    *bool    `yaml:"result,omitempty"`
}

// Assertion validates a final registry.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Enum overrides the scenario's default target.
	Enum string `yaml:"enum,omitempty"`

	// Names are the expected names (names, bindings).
	Names []string `yaml:"names,omitempty"`

	// Count is the expected member count (len).
	Count int `yaml:"count,omitempty"`
}

// Step operations.
const (
	OpName      = "name"
	OpFromName  = "from_name"
	OpValue     = "value"
	OpFromValue = "from_value"
	OpDecompose = "decompose"
	OpOr        = "or"
	OpAnd       = "and"
	OpXor       = "xor"
	OpHas       = "has"
	OpInvert    = "invert"
	OpFromArgs  = "from_args"
	OpAdd       = "add"
)

// Assertion type constants.
const (
	AssertNames    = "names"
	AssertBindings = "bindings"
	AssertLen      = "len"
	AssertUnique   = "unique"
	AssertRestore  = "restore"
)

var validOps = []string{
	OpName, OpFromName, OpValue, OpFromValue, OpDecompose,
	OpOr, OpAnd, OpXor, OpHas, OpInvert, OpFromArgs, OpAdd,
}

// LoadScenario reads and parses a scenario YAML file. Definition paths are
// resolved relative to the scenario file. Returns an error if the file
// doesn't exist, is malformed, contains unknown fields (typos), or is
// missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving definition paths relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, basePath)
}

// ParseScenario parses scenario YAML. Relative definition paths are joined
// to basePath when it is not empty.
func ParseScenario(data []byte, basePath string) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, p := range scenario.Definitions {
		if !filepath.IsAbs(p) && basePath != "" {
			scenario.Definitions[i] = filepath.Join(basePath, p)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// Compile compiles the scenario's definition files and inline enums and
// validates the result.
func (s *Scenario) Compile() ([]ir.Definition, error) {
	var (
		defs []ir.Definition
		errs []error
	)
	for _, path := range s.Definitions {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read definitions: %w", err)
		}
		var got []ir.Definition
		var compileErrs []error
		switch strings.ToLower(filepath.Ext(path)) {
		case ".cue":
			got, compileErrs = compiler.CompileCUESource(path, data)
		default:
			got, compileErrs = compiler.CompileYAML(path, data, false)
		}
		defs = append(defs, got...)
		errs = append(errs, compileErrs...)
	}

	if s.Enums.Kind != 0 {
		doc := yaml.Node{
			Kind: yaml.MappingNode,
			Content: []*yaml.Node{
				{Kind: yaml.ScalarNode, Tag: "!!str", Value: "enums"},
				&s.Enums,
			},
		}
		data, err := yaml.Marshal(&doc)
		if err != nil {
			return nil, fmt.Errorf("encode inline enums: %w", err)
		}
		got, compileErrs := compiler.CompileYAML(s.Name+" (inline)", data, false)
		defs = append(defs, got...)
		errs = append(errs, compileErrs...)
	}

	for _, v := range compiler.ValidateAll(defs) {
		errs = append(errs, v)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return defs, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Definitions) == 0 && s.Enums.Kind == 0 {
		return fmt.Errorf("definitions or enums is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for _, p := range s.Definitions {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("definition file not found: %s", p)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, step *Step) error {
	if !slices.Contains(validOps, step.Op) {
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}

	switch step.Op {
	case OpName, OpFromName, OpAdd:
		if step.Name == "" {
			return fmt.Errorf("steps[%d]: %s requires name", index, step.Op)
		}
	case OpValue, OpFromValue, OpDecompose:
		if step.Value == nil {
			return fmt.Errorf("steps[%d]: %s requires value", index, step.Op)
		}
	case OpOr, OpAnd, OpXor, OpHas:
		if step.Name == "" && step.Value == nil {
			return fmt.Errorf("steps[%d]: %s requires a target name or value", index, step.Op)
		}
		if len(step.Args) != 1 {
			return fmt.Errorf("steps[%d]: %s requires exactly one arg", index, step.Op)
		}
	case OpInvert:
		if step.Name == "" && step.Value == nil {
			return fmt.Errorf("steps[%d]: invert requires a target name or value", index)
		}
	}

	if step.Op == OpDecompose {
		if _, ok := step.Value.(int); !ok {
			return fmt.Errorf("steps[%d]: decompose value must be an integer", index)
		}
	}

	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertNames, AssertBindings:
		if a.Names == nil {
			return fmt.Errorf("assertions[%d]: %s requires names", index, a.Type)
		}
	case AssertLen, AssertUnique, AssertRestore:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
