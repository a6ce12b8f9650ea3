package harness

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"

	"github.com/roach88/enums/internal/enum"
	"github.com/roach88/enums/internal/ir"
	"github.com/roach88/enums/internal/store"
	"github.com/roach88/enums/internal/testutil"
)

// Harness executes scenario steps against freshly built enumerations.
// Ids and trace sequence numbers are deterministic.
type Harness struct {
	scenario *Scenario
	defs     map[string]ir.Definition
	enums    map[string]*enum.Enumeration
	clock    *store.Clock
	ids      *testutil.SequentialIDs
	logger   *slog.Logger
}

// Option configures a scenario run.
type Option func(*Harness)

// WithLogger routes enumeration logs to logger. Runs are silent by default.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Compile and validate the scenario's definitions
// 2. Build one enumeration per definition
// 3. Execute steps with expect validation
// 4. Evaluate assertions against the final registries
//
// An error is returned only when the scenario cannot be set up. Failed
// expectations and assertions are reported through Result.Errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		scenario: scenario,
		defs:     make(map[string]ir.Definition),
		enums:    make(map[string]*enum.Enumeration),
		clock:    store.NewClock(),
		ids:      testutil.NewSequentialIDs(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	defs, err := scenario.Compile()
	if err != nil {
		return nil, fmt.Errorf("failed to compile definitions: %w", err)
	}

	for _, def := range defs {
		e, err := enum.FromDefinition(def, h.enumOptions()...)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s: %w", def.Name, err)
		}
		h.defs[def.Name] = def
		h.enums[def.Name] = e
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		h.executeStep(i, step, result)
	}

	actx := &AssertionContext{
		Enums:   h.enums,
		Defs:    h.defs,
		Default: scenario.Enum,
		Options: h.enumOptions(),
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

func (h *Harness) enumOptions() []enum.Option {
	return []enum.Option{
		enum.WithLogger(h.logger),
		enum.WithIDGenerator(h.ids),
	}
}

// target resolves a step's enumeration: the step's own, the scenario
// default, or the only one defined.
func (h *Harness) target(name string) (*enum.Enumeration, error) {
	return resolveTarget(h.enums, name, h.scenario.Enum)
}

func resolveTarget(enums map[string]*enum.Enumeration, name, fallback string) (*enum.Enumeration, error) {
	if name == "" {
		name = fallback
	}
	if name == "" {
		if len(enums) == 1 {
			for _, e := range enums {
				return e, nil
			}
		}
		names := make([]string, 0, len(enums))
		for n := range enums {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("enum is required when several are defined: %v", names)
	}
	e, ok := enums[name]
	if !ok {
		return nil, fmt.Errorf("unknown enum %q", name)
	}
	return e, nil
}

// outcome is what a step produced besides its trace event.
type outcome struct {
	member *enum.Member
	err    error
}

// executeStep runs one step, records it in the trace and checks its expect clause.
func (h *Harness) executeStep(index int, step Step, result *Result) {
	e, err := h.target(step.Enum)
	if err != nil {
		result.AddError(fmt.Sprintf("steps[%d]: %v", index, err))
		return
	}

	ev := TraceEvent{
		Seq:  h.clock.Next(),
		Op:   step.Op,
		Enum: e.Name(),
	}
	out := h.apply(e, step, &ev)

	if out.err != nil {
		ev.Error = errorLabel(out.err)
	} else if out.member != nil {
		ev.Member = out.member.String()
		ev.Value = out.member.Value()
		ev.Named = out.member.Named()
	}
	result.AddTrace(ev)

	h.logger.Debug("step executed",
		"index", index,
		"op", step.Op,
		"enum", ev.Enum,
		"member", ev.Member,
		"error", ev.Error,
	)

	for _, msg := range checkExpect(step.Expect, ev, out) {
		result.AddError(fmt.Sprintf("steps[%d] (%s): %s", index, step.Op, msg))
	}
}

// apply performs the step's operation, filling in the event's inputs and
// any op-specific results.
func (h *Harness) apply(e *enum.Enumeration, step Step, ev *TraceEvent) outcome {
	switch step.Op {
	case OpName:
		ev.Input = ir.Array{ir.String(step.Name)}
		m, err := e.ByName(step.Name)
		return outcome{m, err}

	case OpFromName:
		ev.Input = ir.Array{ir.String(step.Name)}
		m, err := e.FromName(step.Name)
		return outcome{m, err}

	case OpValue, OpFromValue:
		v, err := ir.FromGo(step.Value)
		if err != nil {
			return outcome{nil, err}
		}
		ev.Input = ir.Array{v}
		var m *enum.Member
		if step.Op == OpValue {
			m, err = e.ByValue(v)
		} else {
			m, err = e.FromValue(v)
		}
		return outcome{m, err}

	case OpDecompose:
		n := int64(step.Value.(int))
		ev.Input = ir.Array{ir.Int(n)}
		members, uncovered := e.Decompose(n)
		ev.Members = labels(members)
		ev.Uncovered = &uncovered
		return outcome{}

	case OpOr, OpAnd, OpXor, OpHas:
		m, err := h.operand(e, step, ev)
		if err != nil {
			return outcome{nil, err}
		}
		arg, err := ir.FromGo(step.Args[0])
		if err != nil {
			return outcome{nil, err}
		}
		ev.Input = append(ev.Input, arg)
		other, err := e.FromValue(arg)
		if err != nil {
			return outcome{nil, err}
		}
		switch step.Op {
		case OpOr:
			m, err = m.Or(other)
		case OpAnd:
			m, err = m.And(other)
		case OpXor:
			m, err = m.Xor(other)
		default:
			ok, err := m.Has(other)
			if err == nil {
				ev.Result = &ok
			}
			return outcome{nil, err}
		}
		return outcome{m, err}

	case OpInvert:
		m, err := h.operand(e, step, ev)
		if err != nil {
			return outcome{nil, err}
		}
		m, err = m.Invert()
		return outcome{m, err}

	case OpFromArgs:
		args := make([]any, len(step.Args))
		ev.Input = make(ir.Array, len(step.Args))
		for i, a := range step.Args {
			v, err := ir.FromGo(a)
			if err != nil {
				return outcome{nil, err}
			}
			args[i] = v
			ev.Input[i] = v
		}
		m, err := e.FromArgs(args...)
		return outcome{m, err}

	case OpAdd:
		raw := enum.Auto()
		ev.Input = ir.Array{ir.String(step.Name)}
		if step.Value != nil {
			v, err := ir.FromGo(step.Value)
			if err != nil {
				return outcome{nil, err}
			}
			raw = enum.Value(v)
			ev.Input = append(ev.Input, v)
		}
		m, err := e.AddMember(step.Name, raw)
		return outcome{m, err}

	default:
		return outcome{nil, fmt.Errorf("unknown op %q", step.Op)}
	}
}

// operand resolves the target member of a flag operation: by exact name when
// Name is set, otherwise through FromValue.
func (h *Harness) operand(e *enum.Enumeration, step Step, ev *TraceEvent) (*enum.Member, error) {
	if step.Name != "" {
		ev.Input = ir.Array{ir.String(step.Name)}
		return e.ByName(step.Name)
	}
	v, err := ir.FromGo(step.Value)
	if err != nil {
		return nil, err
	}
	ev.Input = ir.Array{v}
	return e.FromValue(v)
}

// checkExpect compares an executed step against its expect clause and
// returns one message per mismatch.
func checkExpect(exp *Expect, ev TraceEvent, out outcome) []string {
	if exp == nil {
		if out.err != nil {
			return []string{fmt.Sprintf("unexpected error: %v", out.err)}
		}
		return nil
	}

	if exp.Error != "" {
		if out.err == nil {
			return []string{fmt.Sprintf("expected error %s, got success", exp.Error)}
		}
		if !enum.HasCode(out.err, enum.ErrorCode(exp.Error)) {
			return []string{fmt.Sprintf("expected error %s, got %v", exp.Error, out.err)}
		}
		return nil
	}
	if out.err != nil {
		return []string{fmt.Sprintf("unexpected error: %v", out.err)}
	}

	var msgs []string
	mismatch := func(field string, want, got any) {
		msgs = append(msgs, fmt.Sprintf("%s: expected %v, got %v", field, want, got))
	}

	m := out.member
	if m == nil && (exp.Name != nil || exp.Named != nil || exp.Value != nil || exp.String != "" || exp.Title != "") {
		return []string{"expected a member, step produced none"}
	}

	if exp.Name != nil && m.Name() != *exp.Name {
		mismatch("name", *exp.Name, m.Name())
	}
	if exp.Named != nil && ev.Named != *exp.Named {
		mismatch("named", *exp.Named, ev.Named)
	}
	if exp.Value != nil {
		want, err := ir.FromGo(exp.Value)
		if err != nil {
			msgs = append(msgs, fmt.Sprintf("value: %v", err))
		} else if !ir.Equal(want, ev.Value) {
			mismatch("value", ir.Format(want), ir.Format(ev.Value))
		}
	}
	if exp.String != "" && ev.Member != exp.String {
		mismatch("string", exp.String, ev.Member)
	}
	if exp.Title != "" && m.Title() != exp.Title {
		mismatch("title", exp.Title, m.Title())
	}
	if exp.Members != nil && !slices.Equal(exp.Members, ev.Members) {
		mismatch("members", exp.Members, ev.Members)
	}
	if exp.Uncovered != nil && (ev.Uncovered == nil || *ev.Uncovered != *exp.Uncovered) {
		mismatch("uncovered", *exp.Uncovered, deref(ev.Uncovered))
	}
	if exp.Result != nil && (ev.Result == nil || *ev.Result != *exp.Result) {
		mismatch("result", *exp.Result, deref(ev.Result))
	}

	return msgs
}

// deref renders an optional result, "<none>" when absent.
func deref[T any](p *T) any {
	if p == nil {
		return "<none>"
	}
	return *p
}

// labels renders members by name, or by formatted value when unnamed.
func labels(members []*enum.Member) []string {
	out := make([]string, len(members))
	for i, m := range members {
		if m.Named() {
			out[i] = m.Name()
		} else {
			out[i] = ir.Format(m.Value())
		}
	}
	return out
}

// errorLabel is the error code of err, or its message for errors outside
// the enum package.
func errorLabel(err error) string {
	if code := enum.CodeOf(err); code != "" {
		return string(code)
	}
	return err.Error()
}
