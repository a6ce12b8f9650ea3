package enum

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/enums/internal/ir"
)

func TestResolveReturnsOwnMemberUnchanged(t *testing.T) {
	e := mustPairs(t, "Color", KindEnum, "RED", 1)
	red := mustName(t, e, "RED")

	m, err := e.Resolve(red)
	require.NoError(t, err)
	assert.Same(t, red, m)
}

func TestResolveRejectsForeignMember(t *testing.T) {
	e := mustPairs(t, "Color", KindEnum, "RED", 1)
	other := mustPairs(t, "Other", KindEnum, "RED", 1)

	_, err := e.Resolve(mustName(t, other, "RED"))
	assert.True(t, IsNotFound(err))
}

func TestResolveGoValues(t *testing.T) {
	e := mustPairs(t, "Color", KindEnum, "RED", 1, "NAMED", "red", "NOTHING", nil)

	m, err := e.Resolve(1)
	require.NoError(t, err)
	assert.Equal(t, "RED", m.Name())

	m, err = e.Resolve("red")
	require.NoError(t, err)
	assert.Equal(t, "NAMED", m.Name())

	_, err = e.Resolve(1.5)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.True(t, IsInvalidValue(err))
}

func TestByValueIsTypeStrict(t *testing.T) {
	e := mustPairs(t, "Color", KindEnum, "RED", 1)

	_, err := e.ByValue(ir.Bool(true))
	assert.True(t, IsNotFound(err))
	_, err = e.ByValue(ir.String("1"))
	assert.True(t, IsNotFound(err))
}

func TestByValueNilMeansNull(t *testing.T) {
	b := Begin("Opt", KindEnum, testOpts()...)
	require.NoError(t, b.DeclareValue("NONE", nil))
	e, err := b.Finalize()
	require.NoError(t, err)

	m, err := e.ByValue(nil)
	require.NoError(t, err)
	assert.Equal(t, "NONE", m.Name())
	assert.Equal(t, ir.Null{}, m.Value())
}

func TestByNameNotFound(t *testing.T) {
	e := mustPairs(t, "Color", KindEnum, "RED", 1)

	_, err := e.ByName("red")
	require.Error(t, err)
	assert.True(t, IsNotFound(err), "exact lookup is case-sensitive")
	assert.Equal(t, ErrCodeMemberNotFound, CodeOf(err))
}

func TestFromNameIgnoresCaseAndUnderscores(t *testing.T) {
	e := mustPairs(t, "Status", KindEnum, "SOME_VALUE", 1, "OTHER", 2)
	want := mustName(t, e, "SOME_VALUE")

	for _, input := range []string{"some_value", "SOMEVALUE", "SomeValue", "s_o_m_e_value", "SOME_VALUE"} {
		m, err := e.FromName(input)
		require.NoError(t, err, input)
		assert.Same(t, want, m, input)
	}

	_, err := e.FromName("missing")
	assert.True(t, IsNotFound(err))
}

func TestFromNameSeesMembersAddedLater(t *testing.T) {
	e := mustPairs(t, "Status", KindEnum, "A", 1)
	_, err := e.FromName("a")
	require.NoError(t, err)

	_, err = e.AddMember("LATE_ENTRY", Auto())
	require.NoError(t, err)

	m, err := e.FromName("lateentry")
	require.NoError(t, err)
	assert.Equal(t, "LATE_ENTRY", m.Name())
}

func TestFromNameFirstDeclaredWins(t *testing.T) {
	e := mustPairs(t, "Clash", KindEnum, "AB", 1, "A_B", 2)

	m, err := e.FromName("ab")
	require.NoError(t, err)
	assert.Equal(t, "AB", m.Name())
}

func TestFromValueTriesNameFirst(t *testing.T) {
	e := mustPairs(t, "Tricky", KindEnum, "ONE", "two", "TWO", "one")

	m, err := e.FromValue("one")
	require.NoError(t, err)
	assert.Equal(t, "ONE", m.Name(), "string input resolves by name before value")

	m, err = e.FromValue(ir.String("two"))
	require.NoError(t, err)
	assert.Equal(t, "TWO", m.Name())
}

func TestFromValueFallsBackToValue(t *testing.T) {
	e := mustPairs(t, "Tricky", KindEnum, "A", "x", "B", 2)

	m, err := e.FromValue("x")
	require.NoError(t, err)
	assert.Equal(t, "A", m.Name())

	m, err = e.FromValue(2)
	require.NoError(t, err)
	assert.Equal(t, "B", m.Name())
}

func TestFromValueOr(t *testing.T) {
	e := mustPairs(t, "Color", KindEnum, "RED", 1, "UNKNOWN", 0)

	m, err := e.FromValueOr(99, "unknown")
	require.NoError(t, err)
	assert.Equal(t, "UNKNOWN", m.Name(), "fallback goes through the same lookup")

	m, err = e.FromValueOr("red", 0)
	require.NoError(t, err)
	assert.Equal(t, "RED", m.Name())

	_, err = e.FromValueOr(99, 98)
	assert.True(t, IsNotFound(err))
}

func TestMissingHookSynthesizes(t *testing.T) {
	hook := func(owner *Enumeration, v ir.Value) (*Member, error) {
		if s, ok := v.(ir.String); ok {
			return owner.AddMember("DYN_"+string(s), Value(v))
		}
		return nil, nil
	}
	b := Begin("Dyn", KindEnum, testOpts(WithMissingHook(hook))...)
	require.NoError(t, b.DeclareValue("A", ir.String("a")))
	e, err := b.Finalize()
	require.NoError(t, err)

	m, err := e.ByValue(ir.String("z"))
	require.NoError(t, err)
	assert.Equal(t, "DYN_z", m.Name())
	assert.Same(t, m, mustValue(t, e, ir.String("z")))

	_, err = e.ByValue(ir.Int(1))
	assert.True(t, IsNotFound(err), "nil result means not found")
	assert.False(t, IsMissingHook(err))
}

func TestMissingHookErrorIsWrapped(t *testing.T) {
	cause := errors.New("backend unavailable")
	hook := func(*Enumeration, ir.Value) (*Member, error) { return nil, cause }
	b := Begin("Dyn", KindEnum, testOpts(WithMissingHook(hook))...)
	e, err := b.Finalize()
	require.NoError(t, err)

	_, err = e.ByValue(ir.Int(1))
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.True(t, IsMissingHook(err))
	assert.ErrorIs(t, err, cause, "original cause is preserved")
}

func TestMissingHookForeignMember(t *testing.T) {
	other := mustPairs(t, "Other", KindEnum, "X", 1)
	hook := func(*Enumeration, ir.Value) (*Member, error) { return mustName(t, other, "X"), nil }
	e, err := Begin("Dyn", KindEnum, testOpts(WithMissingHook(hook))...).Finalize()
	require.NoError(t, err)

	_, err = e.ByValue(ir.Int(1))
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.True(t, IsMissingHook(err))
	assert.Contains(t, err.Error(), "member of Other")
}

func TestNoHookForPlainEnums(t *testing.T) {
	e := mustPairs(t, "Color", KindEnum, "RED", 1)

	_, err := e.ByValue(ir.Int(3))
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "3 is not a valid Color")
}
