package enum

import "github.com/roach88/enums/internal/ir"

// Raw is a declared member value: either explicit or generated.
type Raw struct {
	value ir.Value
	auto  bool
}

// Value declares an explicit value. A nil value is stored as ir.Null.
func Value(v ir.Value) Raw {
	return Raw{value: v}
}

// Auto declares a value to be produced by the enumeration's allocator.
func Auto() Raw {
	return Raw{auto: true}
}

// IsAuto reports whether the value is generated.
func (r Raw) IsAuto() bool {
	return r.auto
}

// Explicit returns the declared value, or nil for Auto.
func (r Raw) Explicit() ir.Value {
	return r.value
}

// Pair is a named declaration for functional construction and Update.
type Pair struct {
	Name  string
	Value Raw
}
