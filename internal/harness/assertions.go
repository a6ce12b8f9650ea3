package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/enums/internal/enum"
	"github.com/roach88/enums/internal/ir"
	"github.com/roach88/enums/internal/store"
	"github.com/roach88/enums/internal/testutil"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Enum     string       // Enumeration the assertion targeted
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s (%s)\n", e.Type, e.Enum)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s %s", ev.Seq, ev.Enum, ev.Op, ir.Format(ev.Input))
			switch {
			case ev.Error != "":
				fmt.Fprintf(&buf, " -> %s", ev.Error)
			case ev.Member != "":
				fmt.Fprintf(&buf, " -> %s", ev.Member)
			}
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}

// AssertionContext provides the final registries to assertions.
type AssertionContext struct {
	Enums   map[string]*enum.Enumeration
	Defs    map[string]ir.Definition
	Default string

	// Options are applied when restore rebuilds an enumeration.
	Options []enum.Option
}

// assertNames checks the canonical names in declaration order.
func assertNames(e *enum.Enumeration, a Assertion, trace []TraceEvent) error {
	if got := e.Names(); !slices.Equal(got, a.Names) {
		return &AssertionError{
			Type:     AssertNames,
			Enum:     e.Name(),
			Expected: fmt.Sprintf("%v", a.Names),
			Actual:   fmt.Sprintf("%v", got),
			Trace:    trace,
		}
	}
	return nil
}

// assertBindings checks every bound name, aliases included, in declaration order.
func assertBindings(e *enum.Enumeration, a Assertion, trace []TraceEvent) error {
	if got := e.Bindings(); !slices.Equal(got, a.Names) {
		return &AssertionError{
			Type:     AssertBindings,
			Enum:     e.Name(),
			Expected: fmt.Sprintf("%v", a.Names),
			Actual:   fmt.Sprintf("%v", got),
			Trace:    trace,
		}
	}
	return nil
}

// assertLen checks the number of canonical names.
func assertLen(e *enum.Enumeration, a Assertion, trace []TraceEvent) error {
	if got := e.Len(); got != a.Count {
		return &AssertionError{
			Type:     AssertLen,
			Enum:     e.Name(),
			Expected: fmt.Sprintf("%d members", a.Count),
			Actual:   fmt.Sprintf("%d members", got),
			Trace:    trace,
		}
	}
	return nil
}

// assertUnique checks that no declaration became an alias.
func assertUnique(e *enum.Enumeration, _ Assertion, trace []TraceEvent) error {
	if err := enum.EnsureUnique(e); err != nil {
		return &AssertionError{
			Type:     AssertUnique,
			Enum:     e.Name(),
			Expected: "no aliases",
			Actual:   err.Error(),
			Trace:    trace,
		}
	}
	return nil
}

// assertRestore saves the enumeration to a fresh in-memory catalog, restores
// it and checks that the restored registry matches the live one.
func assertRestore(ctx context.Context, e *enum.Enumeration, def ir.Definition, opts []enum.Option) error {
	st, err := store.Open(":memory:", store.WithIDGenerator(testutil.NewSequentialIDs()))
	if err != nil {
		return fmt.Errorf("restore: failed to open store: %w", err)
	}
	defer st.Close()

	snap, err := st.Save(ctx, def, e)
	if err != nil {
		return fmt.Errorf("restore: failed to save %s: %w", e.Name(), err)
	}
	restored, err := st.Restore(ctx, snap.ID, opts...)
	if err != nil {
		return fmt.Errorf("restore: failed to restore %s: %w", e.Name(), err)
	}

	fail := func(what string, want, got any) error {
		return &AssertionError{
			Type:     AssertRestore,
			Enum:     e.Name(),
			Expected: fmt.Sprintf("%s %v", what, want),
			Actual:   fmt.Sprintf("%s %v", what, got),
		}
	}
	if want, got := e.Names(), restored.Names(); !slices.Equal(want, got) {
		return fail("names", want, got)
	}
	if want, got := e.Bindings(), restored.Bindings(); !slices.Equal(want, got) {
		return fail("bindings", want, got)
	}
	want, got := e.History(), restored.History()
	if !slices.EqualFunc(want, got, func(a, b enum.Entry) bool {
		return a.Name == b.Name && ir.Equal(a.Value, b.Value)
	}) {
		return fail("history", formatHistory(want), formatHistory(got))
	}
	return nil
}

func formatHistory(entries []enum.Entry) string {
	parts := make([]string, len(entries))
	for i, en := range entries {
		parts[i] = en.Name + "=" + ir.Format(en.Value)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// EvaluateAssertions runs all assertions and returns error messages for failures.
// Returns empty slice if all assertions pass.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		if actx == nil {
			errors = append(errors, fmt.Sprintf("assertion[%d]: no enumerations to assert on", i))
			continue
		}
		e, err := resolveTarget(actx.Enums, assertion.Enum, actx.Default)
		if err != nil {
			errors = append(errors, fmt.Sprintf("assertion[%d]: %v", i, err))
			continue
		}

		switch assertion.Type {
		case AssertNames:
			err = assertNames(e, assertion, result.Trace)
		case AssertBindings:
			err = assertBindings(e, assertion, result.Trace)
		case AssertLen:
			err = assertLen(e, assertion, result.Trace)
		case AssertUnique:
			err = assertUnique(e, assertion, result.Trace)
		case AssertRestore:
			def, ok := actx.Defs[e.Name()]
			if !ok {
				err = fmt.Errorf("assertion[%d]: no definition for %s", i, e.Name())
			} else {
				err = assertRestore(context.Background(), e, def, actx.Options)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
