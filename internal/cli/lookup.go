package cli

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/enums/internal/enum"
	"github.com/roach88/enums/internal/ir"
)

// Lookup modes for the --by flag.
const (
	LookupAuto  = "auto"  // name first, then value
	LookupName  = "name"  // exact name, aliases included
	LookupFold  = "fold"  // case-insensitive name
	LookupValue = "value" // value only, never a name; missing-value hook included
)

var validLookupModes = []string{LookupAuto, LookupName, LookupFold, LookupValue}

// LookupOptions holds flags for the lookup command.
type LookupOptions struct {
	*RootOptions
	By      string
	Include []string
}

// MemberResult describes one member in command output.
type MemberResult struct {
	Enum   string   `json:"enum"`
	Member string   `json:"member"`
	Name   string   `json:"name,omitempty"`
	Value  ir.Value `json:"value"`
	Named  bool     `json:"named"`
	Title  string   `json:"title"`
}

func newMemberResult(m *enum.Member) MemberResult {
	return MemberResult{
		Enum:   m.Enumeration().Name(),
		Member: m.String(),
		Name:   m.Name(),
		Value:  m.Value(),
		Named:  m.Named(),
		Title:  m.Title(),
	}
}

// NewLookupCommand creates the lookup command.
func NewLookupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LookupOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lookup <path> <enum> <key>",
		Short: "Look up a member by name or value",
		Long: `Build an enumeration from its definition and look up one member.

The key is parsed as a literal: integers, true, false, null and JSON arrays
keep their type, anything else is a string. With --by auto a string key is
tried as a name first; --by value never matches names. Value lookups run
the missing-value hook, so flag
enumerations synthesize members for valid combinations.`,
		Example: `  enums lookup defs/ Perm R
  enums lookup defs/ Perm 6 --by value
  enums lookup defs/ Color red --by fold`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.By, "by", LookupAuto, "lookup mode (auto|name|fold|value)")
	cmd.Flags().StringSliceVar(&opts.Include, "include", nil, "include patterns below a definitions directory")

	return cmd
}

func runLookup(opts *LookupOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if !isValidLookupMode(opts.By) {
		return formatter.fail(ExitCommandError, ErrCodeGeneric,
			fmt.Sprintf("invalid lookup mode %q: must be one of %v", opts.By, validLookupModes), nil)
	}

	e, err := buildEnumeration(opts.RootOptions, formatter, args[0], args[1], opts.Include)
	if err != nil {
		return err
	}

	key := args[2]
	var m *enum.Member
	switch opts.By {
	case LookupName:
		m, err = e.ByName(key)
	case LookupFold:
		m, err = e.FromName(key)
	case LookupValue:
		m, err = e.Resolve(ir.ParseLiteral(key))
	default:
		m, err = lookupAuto(e, key)
	}
	if err != nil {
		return enumFailure(formatter, err)
	}

	return outputMember(formatter, newMemberResult(m))
}

// lookupAuto tries key as an exact name, then as a literal value.
func lookupAuto(e *enum.Enumeration, key string) (*enum.Member, error) {
	if m, err := e.ByName(key); err == nil {
		return m, nil
	}
	return e.FromValue(ir.ParseLiteral(key))
}

func isValidLookupMode(mode string) bool {
	return slices.Contains(validLookupModes, mode)
}

func outputMember(formatter *OutputFormatter, result MemberResult) error {
	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s = %s\n", result.Member, ir.Format(result.Value))
	if result.Named {
		fmt.Fprintf(formatter.Writer, "  title: %s\n", result.Title)
	} else {
		fmt.Fprintf(formatter.Writer, "  title: %s (synthesized)\n", result.Title)
	}
	return nil
}

// DecomposeResult is the output of the decompose command.
type DecomposeResult struct {
	Enum      string         `json:"enum"`
	Value     int64          `json:"value"`
	Members   []MemberResult `json:"members"`
	Uncovered int64          `json:"uncovered"`
}

// NewDecomposeCommand creates the decompose command.
func NewDecomposeCommand(rootOpts *RootOptions) *cobra.Command {
	var include []string

	cmd := &cobra.Command{
		Use:   "decompose <path> <enum> <value>",
		Short: "Split a flag value into its members",
		Long: `Express an integer as members of a flag enumeration, largest first,
plus the bits no member covers.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecompose(rootOpts, include, args, cmd)
		},
	}

	cmd.Flags().StringSliceVar(&include, "include", nil, "include patterns below a definitions directory")

	return cmd
}

func runDecompose(opts *RootOptions, include []string, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	value, err := strconv.ParseInt(args[2], 0, 64)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric,
			fmt.Sprintf("value must be an integer: %q", args[2]), nil)
	}

	e, err := buildEnumeration(opts, formatter, args[0], args[1], include)
	if err != nil {
		return err
	}
	if !e.Kind().IsFlag() {
		return formatter.fail(ExitFailure, string(enum.ErrCodeInvalidFlagValue),
			fmt.Sprintf("%s is a %s, not a flag enumeration", e.Name(), e.Kind()), nil)
	}

	members, uncovered := e.Decompose(value)
	result := DecomposeResult{
		Enum:      e.Name(),
		Value:     value,
		Members:   make([]MemberResult, len(members)),
		Uncovered: uncovered,
	}
	for i, m := range members {
		result.Members[i] = newMemberResult(m)
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s(%d)\n", result.Enum, result.Value)
	for _, m := range result.Members {
		fmt.Fprintf(formatter.Writer, "  %s = %s\n", m.Member, ir.Format(m.Value))
	}
	if uncovered != 0 {
		fmt.Fprintf(formatter.Writer, "  uncovered: %#x\n", uncovered)
	}
	return nil
}

// buildEnumeration loads the definitions at target and builds the one named
// enumName. Failures are written through formatter and returned as ExitErrors.
func buildEnumeration(opts *RootOptions, formatter *OutputFormatter, target, enumName string, include []string) (*enum.Enumeration, error) {
	def, err := findDefinition(formatter, target, enumName, include)
	if err != nil {
		return nil, err
	}

	e, err := enum.FromDefinition(def, enum.WithLogger(opts.Logger(formatter.GetErrWriter())))
	if err != nil {
		return nil, enumFailure(formatter, err)
	}
	return e, nil
}

// findDefinition loads the definitions at target and returns the one named enumName.
func findDefinition(formatter *OutputFormatter, target, enumName string, include []string) (ir.Definition, error) {
	loadResult, loadErrors := LoadDefinitions(target, LoadOptions{
		Mode:    LoadModeFailFast,
		Include: include,
	})
	if len(loadErrors) > 0 {
		code, message := parseCompileError(loadErrors[0])
		return ir.Definition{}, formatter.fail(ExitCommandError, code, message, nil)
	}

	for _, def := range loadResult.Definitions {
		if def.Name == enumName {
			formatter.VerboseLog("Building enumeration %s (%s, %d member(s))", def.Name, def.Kind, len(def.Members))
			return def, nil
		}
	}

	names := make([]string, len(loadResult.Definitions))
	for i, def := range loadResult.Definitions {
		names[i] = def.Name
	}
	return ir.Definition{}, formatter.fail(ExitCommandError, ErrCodeNotFound,
		fmt.Sprintf("enumeration %q not found in %s", enumName, target), names)
}

// enumFailure reports an enum package error with its code. Misses and
// rejected values are ordinary failures (exit 1).
func enumFailure(formatter *OutputFormatter, err error) error {
	code := string(enum.CodeOf(err))
	if code == "" {
		code = ErrCodeGeneric
	}

	var enumErr *enum.Error
	details := any(nil)
	if errors.As(err, &enumErr) && enumErr.Value != nil {
		details = map[string]any{"value": ir.Format(enumErr.Value)}
	}
	return formatter.fail(ExitFailure, code, err.Error(), details)
}
