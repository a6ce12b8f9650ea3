package compiler

import (
	"fmt"
	"strings"
	"unicode"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/enums/internal/ir"
)

// CompileDefinition parses a CUE value into a Definition.
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
//
// The CUE value should be the enumeration struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`enum: Color: { kind: "enum", members: { RED: 1, GREEN: null } }`)
//	def, err := CompileDefinition(v.LookupPath(cue.ParsePath("enum.Color")))
//
// Members are declared in field order. A null member value requests an
// auto value. members may also be a list of names, all auto.
func CompileDefinition(v cue.Value) (*ir.Definition, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	def := &ir.Definition{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		def.Name = labels[len(labels)-1].String()
	}

	kindVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindVal.Exists() {
		return nil, &CompileError{
			Field:   "kind",
			Message: "kind is required",
			Pos:     v.Pos(),
		}
	}
	kind, err := kindVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	def.Kind = kind

	if vt := v.LookupPath(cue.ParsePath("value_type")); vt.Exists() {
		s, err := vt.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		def.ValueType = s
	}

	if sv := v.LookupPath(cue.ParsePath("start")); sv.Exists() {
		start, err := cueToValue(sv, "start")
		if err != nil {
			return nil, err
		}
		def.Start = start
	}

	if uv := v.LookupPath(cue.ParsePath("unique")); uv.Exists() {
		b, err := uv.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		def.Unique = b
	}

	if iv := v.LookupPath(cue.ParsePath("ignore")); iv.Exists() {
		def.Ignore, err = parseIgnore(iv)
		if err != nil {
			return nil, err
		}
	}

	def.Members, err = parseMembers(v)
	if err != nil {
		return nil, err
	}

	return def, nil
}

// CompileCUE compiles every enumeration under the top-level enum field of
// a CUE value. With failFast the first error stops compilation; otherwise
// all errors are collected and the definitions that compiled are returned.
func CompileCUE(v cue.Value, failFast bool) ([]ir.Definition, []error) {
	if err := v.Err(); err != nil {
		return nil, []error{formatCUEError(err)}
	}

	enumsVal := v.LookupPath(cue.ParsePath("enum"))
	if !enumsVal.Exists() {
		return nil, nil
	}
	iter, err := enumsVal.Fields()
	if err != nil {
		return nil, []error{formatCUEError(err)}
	}

	var (
		defs []ir.Definition
		errs []error
	)
	for iter.Next() {
		def, err := CompileDefinition(iter.Value())
		if err != nil {
			errs = append(errs, fmt.Errorf("enum.%s: %w", iter.Label(), err))
			if failFast {
				return defs, errs
			}
			continue
		}
		defs = append(defs, *def)
	}
	return defs, errs
}

// CompileCUESource compiles CUE source text. filename is used for positions.
func CompileCUESource(filename string, src []byte) ([]ir.Definition, []error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	return CompileCUE(v, false)
}

// parseMembers reads members as an ordered struct or a list of names.
func parseMembers(v cue.Value) ([]ir.Declaration, error) {
	membersVal := v.LookupPath(cue.ParsePath("members"))
	if !membersVal.Exists() {
		return nil, &CompileError{
			Field:   "members",
			Message: "members are required",
			Pos:     v.Pos(),
		}
	}

	var members []ir.Declaration
	switch membersVal.IncompleteKind() {
	case cue.ListKind:
		iter, err := membersVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			name, err := iter.Value().String()
			if err != nil {
				return nil, &CompileError{
					Field:   "members",
					Message: "member list entries must be names",
					Pos:     iter.Value().Pos(),
				}
			}
			members = append(members, ir.Declaration{Name: name, Auto: true})
		}
	case cue.StructKind:
		iter, err := membersVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			name := iter.Label()
			mv := iter.Value()
			if mv.IncompleteKind() == cue.NullKind {
				members = append(members, ir.Declaration{Name: name, Auto: true})
				continue
			}
			value, err := cueToValue(mv, "members."+name)
			if err != nil {
				return nil, err
			}
			members = append(members, ir.Declaration{Name: name, Value: value})
		}
	default:
		return nil, &CompileError{
			Field:   "members",
			Message: "members must be a struct or a list of names",
			Pos:     membersVal.Pos(),
		}
	}
	return members, nil
}

// parseIgnore accepts a list of names or a single comma/space separated string.
func parseIgnore(v cue.Value) ([]string, error) {
	if s, err := v.String(); err == nil {
		return splitNames(s), nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Field:   "ignore",
			Message: "ignore must be a string or a list of names",
			Pos:     v.Pos(),
		}
	}
	var names []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		names = append(names, s)
	}
	return names, nil
}

func splitNames(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// cueToValue converts a concrete CUE value to an ir.Value.
// Floats are forbidden: they cannot take part in flag arithmetic.
func cueToValue(v cue.Value, field string) (ir.Value, error) {
	if !v.IsConcrete() {
		return nil, &CompileError{
			Field:   field,
			Message: "value must be concrete",
			Pos:     v.Pos(),
		}
	}

	switch v.Kind() {
	case cue.NullKind:
		return ir.Null{}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Bool(b), nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
		}
		return ir.Int(n), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.String(s), nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		var arr ir.Array
		for i := 0; iter.Next(); i++ {
			elem, err := cueToValue(iter.Value(), fmt.Sprintf("%s[%d]", field, i))
			if err != nil {
				return nil, err
			}
			arr = append(arr, elem)
		}
		if arr == nil {
			arr = ir.Array{}
		}
		return arr, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		obj := ir.Object{}
		for iter.Next() {
			elem, err := cueToValue(iter.Value(), field+"."+iter.Label())
			if err != nil {
				return nil, err
			}
			obj[iter.Label()] = elem
		}
		return obj, nil
	case cue.FloatKind, cue.NumberKind:
		return nil, &CompileError{
			Field:   field,
			Message: "floats are not member values, use int instead",
			Pos:     v.Pos(),
		}
	default:
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("unsupported value kind: %v", v.Kind()),
			Pos:     v.Pos(),
		}
	}
}

// CompileError represents a compilation error with source position.
// CUE errors carry Pos; YAML errors carry File, Line and Column.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
	File    string
	Line    int
	Column  int
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.File, e.Line, e.Column, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// First error with position info wins.
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
