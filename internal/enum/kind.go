package enum

import (
	"fmt"

	"github.com/roach88/enums/internal/ir"
)

// Kind selects the behavior family of an enumeration.
type Kind int

const (
	// KindEnum is a plain enumeration with incremental auto values.
	KindEnum Kind = iota

	// KindIntEnum is an enumeration whose values are coerced to integers.
	KindIntEnum

	// KindFlag is a strict bit-flag enumeration: unknown bits are rejected.
	KindFlag

	// KindIntFlag is an integer bit-flag enumeration: unknown bits are
	// synthesized as new unnamed single-bit members.
	KindIntFlag
)

var kindNames = map[Kind]string{
	KindEnum:    ir.KindEnum,
	KindIntEnum: ir.KindIntEnum,
	KindFlag:    ir.KindFlag,
	KindIntFlag: ir.KindIntFlag,
}

// String returns the definition spelling of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsFlag reports whether the kind supports bitwise composition.
func (k Kind) IsFlag() bool {
	return k == KindFlag || k == KindIntFlag
}

// IsInt reports whether member values are coerced to integers.
func (k Kind) IsInt() bool {
	return k == KindIntEnum || k == KindIntFlag
}

// ParseKind parses a definition kind ("enum", "int_enum", "flag", "int_flag").
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown enumeration kind %q", s)
}

// ValueType is the declared type of member values.
type ValueType int

const (
	// ValueAny stores raw values as declared.
	ValueAny ValueType = iota

	// ValueInt coerces values to ir.Int.
	ValueInt

	// ValueString coerces values to ir.String.
	ValueString

	// ValueTuple stores values as ir.Array; a declared tuple is one value.
	ValueTuple
)

var valueTypeNames = map[ValueType]string{
	ValueAny:    ir.ValueTypeAny,
	ValueInt:    ir.ValueTypeInt,
	ValueString: ir.ValueTypeString,
	ValueTuple:  ir.ValueTypeTuple,
}

// String returns the definition spelling of the value type ("" for ValueAny).
func (t ValueType) String() string {
	return valueTypeNames[t]
}

// ParseValueType parses a definition value type.
func ParseValueType(s string) (ValueType, error) {
	for t, name := range valueTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown value type %q", s)
}

// Strategy is how a declared raw value becomes a member value.
type Strategy int

const (
	// Direct stores the raw value unchanged.
	Direct Strategy = iota

	// CustomConstructor passes the normalized argument tuple to a Constructor
	// and stores its result.
	CustomConstructor
)

func (s Strategy) String() string {
	if s == CustomConstructor {
		return "custom_constructor"
	}
	return "direct"
}
