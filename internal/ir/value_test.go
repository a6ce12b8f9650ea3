package ir

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	values := []Value{Null{}, String("a"), Int(1), Bool(true), Array{}, Object{}}
	for _, v := range values {
		assert.NotNil(t, v)
	}
}

func TestHashable(t *testing.T) {
	assert.True(t, Hashable(Null{}))
	assert.True(t, Hashable(String("x")))
	assert.True(t, Hashable(Int(0)))
	assert.True(t, Hashable(Bool(false)))
	assert.False(t, Hashable(Array{Int(1)}))
	assert.False(t, Hashable(Object{"a": Int(1)}))
}

func TestEqualIsTypeStrict(t *testing.T) {
	assert.True(t, Equal(Int(1), Int(1)))
	assert.False(t, Equal(Int(1), Bool(true)))
	assert.False(t, Equal(Int(1), String("1")))
	assert.True(t, Equal(Null{}, Null{}))
	assert.False(t, Equal(Null{}, nil))
	assert.True(t, Equal(nil, nil))
}

func TestEqualDeep(t *testing.T) {
	a := Array{Int(1), Array{String("x")}, Object{"k": Bool(true)}}
	b := Array{Int(1), Array{String("x")}, Object{"k": Bool(true)}}
	c := Array{Int(1), Array{String("y")}, Object{"k": Bool(true)}}

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
	assert.False(t, Equal(Array{Int(1)}, Array{Int(1), Int(2)}))
	assert.False(t, Equal(Object{"a": Int(1)}, Object{"b": Int(1)}))
}

func TestIncrement(t *testing.T) {
	next, ok := Increment(Int(41))
	require.True(t, ok)
	assert.Equal(t, Int(42), next)

	_, ok = Increment(Int(math.MaxInt64))
	assert.False(t, ok, "largest Int has no successor")

	_, ok = Increment(String("a"))
	assert.False(t, ok)

	_, ok = Increment(Bool(true))
	assert.False(t, ok, "booleans do not take part in arithmetic")
}

func TestFormat(t *testing.T) {
	tests := []struct {
		input    Value
		expected string
	}{
		{Null{}, "null"},
		{String("1"), `"1"`},
		{Int(1), "1"},
		{Bool(false), "false"},
		{Array{Int(1), String("b")}, `(1, "b")`},
		{Object{"z": Int(1), "a": Int(2)}, `{"a": 2, "z": 1}`},
		{nil, "<nil>"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Format(tt.input))
	}
}

func TestObjectSortedKeysRFC8785Order(t *testing.T) {
	obj := Object{
		"b":          Int(1),
		"\uE000":     Int(2),
		"\U00010000": Int(3),
		"a":          Int(4),
	}
	assert.Equal(t, []string{"a", "b", "\U00010000", "\uE000"}, obj.SortedKeys())
	assert.Empty(t, Object{}.SortedKeys())
}

func TestFromGo(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected Value
	}{
		{"nil", nil, Null{}},
		{"string", "RED", String("RED")},
		{"bool", true, Bool(true)},
		{"int", 3, Int(3)},
		{"uint8", uint8(255), Int(255)},
		{"integral float", 4.0, Int(4)},
		{"json number", json.Number("-12"), Int(-12)},
		{"value passthrough", Array{Int(1)}, Array{Int(1)}},
		{"slice", []any{1, "a"}, Array{Int(1), String("a")}},
		{"map", map[string]any{"k": nil}, Object{"k": Null{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := FromGo(tt.input)
			require.NoError(t, err)
			assert.True(t, Equal(tt.expected, v), "got %s", Format(v))
		})
	}
}

func TestFromGoRejects(t *testing.T) {
	inputs := []any{
		1.5,
		json.Number("2.5"),
		uint64(math.MaxUint64),
		[]any{1, 0.1},
		map[string]any{"x": 0.5},
		struct{}{},
	}
	for _, in := range inputs {
		_, err := FromGo(in)
		assert.Error(t, err, "%#v", in)
	}
}

func TestParseLiteral(t *testing.T) {
	assert.Equal(t, Int(4), ParseLiteral("4"))
	assert.Equal(t, Int(-1), ParseLiteral("-1"))
	assert.Equal(t, Int(16), ParseLiteral("0x10"))
	assert.Equal(t, Bool(true), ParseLiteral("true"))
	assert.Equal(t, Null{}, ParseLiteral("null"))
	assert.Equal(t, String("red"), ParseLiteral("red"))
	assert.True(t, Equal(Array{Int(1), String("a")}, ParseLiteral(`[1,"a"]`)))
	assert.Equal(t, String("[broken"), ParseLiteral("[broken"))
}

func TestMarshalValueRoundTrip(t *testing.T) {
	v := Object{
		"tuple":  Array{Int(1), Null{}, Bool(true)},
		"name":   String("x"),
		"nested": Object{"b": Int(2), "a": Int(1)},
	}

	data, err := MarshalValue(v)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"x","nested":{"a":1,"b":2},"tuple":[1,null,true]}`, string(data))

	back, err := UnmarshalValue(data)
	require.NoError(t, err)
	assert.True(t, Equal(v, back))
}

func TestMarshalValueNil(t *testing.T) {
	_, err := MarshalValue(nil)
	assert.Error(t, err)
}

func TestUnmarshalValueRejectsFloats(t *testing.T) {
	_, err := UnmarshalValue([]byte(`{"ratio":0.5}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are not member values")
}
