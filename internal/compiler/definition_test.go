package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/enums/internal/ir"
)

func TestCompileDefinitionBasic(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		enum: Color: {
			kind: "enum"
			members: {
				RED:     1
				GREEN:   null
				CRIMSON: 1
			}
		}
	`)

	require.NoError(t, v.Err())
	def, err := CompileDefinition(v.LookupPath(cue.ParsePath("enum.Color")))
	require.NoError(t, err)

	assert.Equal(t, "Color", def.Name)
	assert.Equal(t, ir.KindEnum, def.Kind)
	assert.Equal(t, []ir.Declaration{
		{Name: "RED", Value: ir.Int(1)},
		{Name: "GREEN", Auto: true},
		{Name: "CRIMSON", Value: ir.Int(1)},
	}, def.Members)
}

func TestCompileDefinitionAllFields(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		enum: Perm: {
			kind:       "int_flag"
			value_type: "int"
			start:      4
			unique:     true
			ignore:     "SCRATCH, TMP"
			members: ["R", "W", "X"]
		}
	`)

	require.NoError(t, v.Err())
	def, err := CompileDefinition(v.LookupPath(cue.ParsePath("enum.Perm")))
	require.NoError(t, err)

	assert.Equal(t, ir.KindIntFlag, def.Kind)
	assert.Equal(t, ir.ValueTypeInt, def.ValueType)
	assert.Equal(t, ir.Int(4), def.Start)
	assert.True(t, def.Unique)
	assert.Equal(t, []string{"SCRATCH", "TMP"}, def.Ignore)
	assert.Equal(t, []ir.Declaration{
		{Name: "R", Auto: true},
		{Name: "W", Auto: true},
		{Name: "X", Auto: true},
	}, def.Members)
}

func TestCompileDefinitionStructuredValues(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		enum: Planet: {
			kind: "enum"
			value_type: "tuple"
			ignore: ["UNUSED"]
			members: {
				MERCURY: [3303, 2439]
				META:    {mass: 1, ok: true}
				LABEL:   "x"
			}
		}
	`)

	require.NoError(t, v.Err())
	def, err := CompileDefinition(v.LookupPath(cue.ParsePath("enum.Planet")))
	require.NoError(t, err)

	assert.Equal(t, []string{"UNUSED"}, def.Ignore)
	assert.Equal(t, ir.Array{ir.Int(3303), ir.Int(2439)}, def.Members[0].Value)
	assert.Equal(t, ir.Object{"mass": ir.Int(1), "ok": ir.Bool(true)}, def.Members[1].Value)
	assert.Equal(t, ir.String("x"), def.Members[2].Value)
}

func TestCompileDefinitionMissingKind(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		enum: Bad: {
			members: {A: 1}
		}
	`)

	require.NoError(t, v.Err())
	_, err := CompileDefinition(v.LookupPath(cue.ParsePath("enum.Bad")))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "kind")
	assert.Contains(t, err.Error(), "required")
}

func TestCompileDefinitionMissingMembers(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		enum: Empty: {
			kind: "enum"
		}
	`)

	require.NoError(t, v.Err())
	_, err := CompileDefinition(v.LookupPath(cue.ParsePath("enum.Empty")))

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "members", ce.Field)
}

func TestCompileDefinitionRejectsFloats(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		enum: Ratio: {
			kind: "enum"
			members: {HALF: 0.5}
		}
	`)

	require.NoError(t, v.Err())
	_, err := CompileDefinition(v.LookupPath(cue.ParsePath("enum.Ratio")))

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "members.HALF", ce.Field)
	assert.Contains(t, ce.Message, "floats")
}

func TestCompileDefinitionRejectsNonConcrete(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		enum: Open: {
			kind: "enum"
			members: {A: int}
		}
	`)

	require.NoError(t, v.Err())
	_, err := CompileDefinition(v.LookupPath(cue.ParsePath("enum.Open")))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "concrete")
}

func TestCompileDefinitionRejectsBadMemberList(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		enum: Odd: {
			kind: "enum"
			members: [1, 2]
		}
	`)

	require.NoError(t, v.Err())
	_, err := CompileDefinition(v.LookupPath(cue.ParsePath("enum.Odd")))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be names")
}

func TestCompileCUEAllEnumerations(t *testing.T) {
	defs, errs := CompileCUESource("colors.cue", []byte(`
		enum: Color: {
			kind: "enum"
			members: {RED: 1, GREEN: 2}
		}
		enum: Perm: {
			kind: "flag"
			members: ["R", "W"]
		}
	`))

	require.Empty(t, errs)
	require.Len(t, defs, 2)
	assert.Equal(t, "Color", defs[0].Name)
	assert.Equal(t, "Perm", defs[1].Name)
}

func TestCompileCUECollectsErrors(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		enum: A: {members: {X: 1}}
		enum: B: {kind: "enum", members: {X: 1}}
		enum: C: {kind: "enum"}
	`)

	defs, errs := CompileCUE(v, false)
	require.Len(t, errs, 2)
	require.Len(t, defs, 1)
	assert.Equal(t, "B", defs[0].Name)
	assert.Contains(t, errs[0].Error(), "enum.A")
	assert.Contains(t, errs[1].Error(), "enum.C")

	defs, errs = CompileCUE(v, true)
	assert.Len(t, errs, 1)
	assert.Empty(t, defs)
}

func TestCompileCUENoEnumerations(t *testing.T) {
	defs, errs := CompileCUESource("empty.cue", []byte(`other: 1`))

	assert.Empty(t, errs)
	assert.Empty(t, defs)
}

func TestCompileCUESyntaxError(t *testing.T) {
	defs, errs := CompileCUESource("broken.cue", []byte("enum: {\n\tColor: kind: \n"))

	require.Len(t, errs, 1)
	assert.Empty(t, defs)
}

func TestCompileErrorFormatting(t *testing.T) {
	yamlErr := &CompileError{Field: "kind", Message: "kind is required", File: "a.yaml", Line: 3, Column: 5}
	assert.Equal(t, "a.yaml:3:5: kind: kind is required", yamlErr.Error())

	bare := &CompileError{Field: "members", Message: "members are required"}
	assert.Equal(t, "members: members are required", bare.Error())
}
