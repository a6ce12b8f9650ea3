package enum

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/enums/internal/ir"
)

// Error is returned by every failing operation of this package.
//
// Construction errors (duplicate names, bad values, allocator failures) abort
// a definition. Lookup errors are expected control flow; their Err field
// carries the cause, for example the InvalidFlagValue rejection that made a
// flag lookup fail.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Enum is the name of the enumeration involved.
	Enum string

	// Name is the member name involved, if any.
	Name string

	// Value is the member value involved, if any.
	Value ir.Value

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause.
	Err error
}

// ErrorCode categorizes enumeration errors.
type ErrorCode string

const (
	// ErrCodeDuplicateName indicates a name already bound in the enumeration.
	ErrCodeDuplicateName ErrorCode = "DUPLICATE_NAME"

	// ErrCodeInvalidBaseValue indicates a strict-bit allocator could not
	// derive the next power of two from the previous value.
	ErrCodeInvalidBaseValue ErrorCode = "INVALID_BASE_VALUE"

	// ErrCodeMemberNotFound indicates a failed lookup by name or value.
	ErrCodeMemberNotFound ErrorCode = "MEMBER_NOT_FOUND"

	// ErrCodeInvalidFlagValue indicates a bit pattern that known flags cannot express.
	ErrCodeInvalidFlagValue ErrorCode = "INVALID_FLAG_VALUE"

	// ErrCodeMissingHook indicates a missing-value hook failed or returned
	// a member of another enumeration.
	ErrCodeMissingHook ErrorCode = "MISSING_HOOK"

	// ErrCodeInvalidDeclarationOrder indicates a declaration on a finalized
	// builder or a derivation from a populated enumeration.
	ErrCodeInvalidDeclarationOrder ErrorCode = "INVALID_DECLARATION_ORDER"

	// ErrCodeDuplicateValue indicates aliases in an enumeration that requires unique values.
	ErrCodeDuplicateValue ErrorCode = "DUPLICATE_VALUE"

	// ErrCodeInvalidName indicates an empty or reserved (__dunder__) member name.
	ErrCodeInvalidName ErrorCode = "INVALID_NAME"

	// ErrCodeInvalidValue indicates a value the constructor rejected.
	ErrCodeInvalidValue ErrorCode = "INVALID_VALUE"

	// ErrCodeAutoUnavailable indicates an auto value without an allocator.
	ErrCodeAutoUnavailable ErrorCode = "AUTO_UNAVAILABLE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)

	var ctx []string
	if e.Enum != "" {
		ctx = append(ctx, "enum="+e.Enum)
	}
	if e.Name != "" {
		ctx = append(ctx, "name="+e.Name)
	}
	if e.Value != nil {
		ctx = append(ctx, "value="+ir.Format(e.Value))
	}
	if len(ctx) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(ctx, ", "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// HasCode reports whether any *Error in err's chain carries code. A lookup
// failure caused by a flag rejection matches both codes.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Err
	}
	return false
}

// CodeOf returns the code of the outermost *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsDuplicateName returns true if err is or wraps a duplicate name error.
func IsDuplicateName(err error) bool { return HasCode(err, ErrCodeDuplicateName) }

// IsInvalidBaseValue returns true if err is or wraps an allocator base value error.
func IsInvalidBaseValue(err error) bool { return HasCode(err, ErrCodeInvalidBaseValue) }

// IsNotFound returns true if err is or wraps a failed lookup.
func IsNotFound(err error) bool { return HasCode(err, ErrCodeMemberNotFound) }

// IsInvalidFlagValue returns true if err is or wraps a rejected flag value.
func IsInvalidFlagValue(err error) bool { return HasCode(err, ErrCodeInvalidFlagValue) }

// IsMissingHook returns true if err is or wraps a missing-value hook failure.
func IsMissingHook(err error) bool { return HasCode(err, ErrCodeMissingHook) }

// IsInvalidDeclarationOrder returns true if err is or wraps a declaration order error.
func IsInvalidDeclarationOrder(err error) bool { return HasCode(err, ErrCodeInvalidDeclarationOrder) }

// IsDuplicateValue returns true if err is or wraps a uniqueness violation.
func IsDuplicateValue(err error) bool { return HasCode(err, ErrCodeDuplicateValue) }

// IsInvalidName returns true if err is or wraps an invalid name error.
func IsInvalidName(err error) bool { return HasCode(err, ErrCodeInvalidName) }

// IsInvalidValue returns true if err is or wraps a constructor rejection.
func IsInvalidValue(err error) bool { return HasCode(err, ErrCodeInvalidValue) }

// IsAutoUnavailable returns true if err is or wraps a missing allocator error.
func IsAutoUnavailable(err error) bool { return HasCode(err, ErrCodeAutoUnavailable) }

func newDuplicateNameError(enum, name string, existing *Member) *Error {
	return &Error{
		Code:    ErrCodeDuplicateName,
		Enum:    enum,
		Name:    name,
		Message: fmt.Sprintf("%q already defined as %s", name, existing.describe()),
	}
}

func newNotFoundValueError(enum string, v ir.Value, cause error) *Error {
	return &Error{
		Code:    ErrCodeMemberNotFound,
		Enum:    enum,
		Value:   v,
		Message: fmt.Sprintf("%s is not a valid %s", ir.Format(v), enum),
		Err:     cause,
	}
}

func newNotFoundNameError(enum, name string) *Error {
	return &Error{
		Code:    ErrCodeMemberNotFound,
		Enum:    enum,
		Name:    name,
		Message: fmt.Sprintf("no member named %q in %s", name, enum),
	}
}

func newDeclarationOrderError(enum, msg string) *Error {
	return &Error{
		Code:    ErrCodeInvalidDeclarationOrder,
		Enum:    enum,
		Message: msg,
	}
}

func checkName(enum, name string) error {
	switch {
	case name == "":
		return &Error{Code: ErrCodeInvalidName, Enum: enum, Message: "member name must not be empty"}
	case len(name) > 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__"):
		return &Error{Code: ErrCodeInvalidName, Enum: enum, Name: name, Message: fmt.Sprintf("member name %q is reserved", name)}
	}
	return nil
}

// annotate fills in the enumeration name on errors raised by code that does
// not know it, such as allocators and constructors.
func annotate(err error, enum, name string) error {
	var e *Error
	if errors.As(err, &e) {
		if e.Enum == "" {
			e.Enum = enum
		}
		if e.Name == "" {
			e.Name = name
		}
	}
	return err
}
