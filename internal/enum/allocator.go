package enum

import (
	"fmt"
	"math/bits"

	"github.com/roach88/enums/internal/ir"
)

// NextValueFunc produces the value of a member declared with Auto.
//
// name is the member being declared, start the configured start value (nil
// when unset), count the number of canonical names declared so far and prior
// every value recorded so far in declaration order, aliases included.
// It is called at most once per auto declaration, in declaration order.
type NextValueFunc func(name string, start ir.Value, count int, prior []ir.Value) (ir.Value, error)

// Incremental returns one more than the most recent prior value that can be
// incremented, skipping values without a successor. Only Int values have
// one: a prior Bool(true) is skipped rather than read as 1, so it never
// allocates 2. With no such value it returns start, or 1 when start is unset.
func Incremental(name string, start ir.Value, count int, prior []ir.Value) (ir.Value, error) {
	for i := len(prior) - 1; i >= 0; i-- {
		if next, ok := ir.Increment(prior[i]); ok {
			return next, nil
		}
	}
	if start != nil {
		return start, nil
	}
	return ir.Int(1), nil
}

// StrictBit returns the power of two above the highest set bit of the most
// recent prior value. Zero has no set bit and yields 1. With no prior value
// it returns start, or 1 when start is unset.
func StrictBit(name string, start ir.Value, count int, prior []ir.Value) (ir.Value, error) {
	if len(prior) == 0 {
		if start != nil {
			return start, nil
		}
		return ir.Int(1), nil
	}

	last := prior[len(prior)-1]
	n, ok := last.(ir.Int)
	if !ok {
		return nil, &Error{
			Code:    ErrCodeInvalidBaseValue,
			Name:    name,
			Value:   last,
			Message: fmt.Sprintf("invalid flag value %s: not an integer", ir.Format(last)),
		}
	}

	next := highBit(int64(n)) + 1
	if next > 62 {
		return nil, &Error{
			Code:    ErrCodeInvalidBaseValue,
			Name:    name,
			Value:   last,
			Message: fmt.Sprintf("invalid flag value %s: next bit exceeds 64-bit range", ir.Format(last)),
		}
	}
	return ir.Int(int64(1) << next), nil
}

// highBit returns the index of the highest set bit of |v|, or -1 for zero.
func highBit(v int64) int {
	u := uint64(v)
	if v < 0 {
		u = -u
	}
	return bits.Len64(u) - 1
}

// powerOfTwo reports whether v is a positive power of two.
func powerOfTwo(v int64) bool {
	return v > 0 && v&(v-1) == 0
}
