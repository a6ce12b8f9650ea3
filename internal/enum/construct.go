package enum

import (
	"fmt"
	"strconv"

	"github.com/roach88/enums/internal/ir"
)

// Constructor builds a member value from its normalized argument tuple.
//
// A plain declared value arrives as a one-element tuple and a declared tuple
// arrives as is. For ValueTuple enumerations the declared tuple is wrapped
// once more so that it arrives as a single argument.
type Constructor func(args ir.Array) (ir.Value, error)

func builtinConstructor(t ValueType) Constructor {
	switch t {
	case ValueInt:
		return IntConstructor
	case ValueString:
		return StringConstructor
	case ValueTuple:
		return TupleConstructor
	default:
		return nil
	}
}

// IntConstructor coerces (x) or (s, base) to an ir.Int. Integers pass
// through, booleans become 0 or 1 and strings are parsed.
func IntConstructor(args ir.Array) (ir.Value, error) {
	switch len(args) {
	case 1:
		switch v := args[0].(type) {
		case ir.Int:
			return v, nil
		case ir.Bool:
			if v {
				return ir.Int(1), nil
			}
			return ir.Int(0), nil
		case ir.String:
			return parseInt(string(v), 10)
		}
	case 2:
		s, ok1 := args[0].(ir.String)
		base, ok2 := args[1].(ir.Int)
		if ok1 && ok2 {
			return parseInt(string(s), int(base))
		}
	}
	return nil, invalidValue(args, "expected an integer")
}

func parseInt(s string, base int) (ir.Value, error) {
	n, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		return nil, &Error{
			Code:    ErrCodeInvalidValue,
			Value:   ir.String(s),
			Message: "invalid literal for an integer member",
			Err:     err,
		}
	}
	return ir.Int(n), nil
}

// StringConstructor coerces (x) to an ir.String. Integers are formatted in
// base 10; other values are rejected.
func StringConstructor(args ir.Array) (ir.Value, error) {
	if len(args) == 1 {
		switch v := args[0].(type) {
		case ir.String:
			return v, nil
		case ir.Int:
			return ir.String(strconv.FormatInt(int64(v), 10)), nil
		}
	}
	return nil, invalidValue(args, "expected a string")
}

// TupleConstructor stores its single argument as a tuple.
func TupleConstructor(args ir.Array) (ir.Value, error) {
	if len(args) != 1 {
		return nil, invalidValue(args, "expected one tuple argument")
	}
	if arr, ok := args[0].(ir.Array); ok {
		return arr, nil
	}
	return ir.Array{args[0]}, nil
}

func invalidValue(args ir.Array, msg string) *Error {
	var v ir.Value = args
	if len(args) == 1 {
		v = args[0]
	}
	return &Error{
		Code:    ErrCodeInvalidValue,
		Value:   v,
		Message: fmt.Sprintf("cannot construct member value: %s", msg),
	}
}
