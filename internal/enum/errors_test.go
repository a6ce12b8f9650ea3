package enum

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/enums/internal/ir"
)

func TestErrorFormatting(t *testing.T) {
	err := &Error{
		Code:    ErrCodeMemberNotFound,
		Enum:    "Color",
		Value:   ir.String("x"),
		Message: `"x" is not a valid Color`,
	}
	assert.Equal(t, `MEMBER_NOT_FOUND: "x" is not a valid Color (enum=Color, value="x")`, err.Error())

	bare := &Error{Code: ErrCodeInvalidName, Message: "member name must not be empty"}
	assert.Equal(t, "INVALID_NAME: member name must not be empty", bare.Error())
}

func TestErrorChainMatching(t *testing.T) {
	cause := &Error{Code: ErrCodeInvalidFlagValue, Message: "bits not covered"}
	lookup := newNotFoundValueError("Perm", ir.Int(8), cause)
	wrapped := fmt.Errorf("scenario step 3: %w", lookup)

	assert.True(t, IsNotFound(wrapped))
	assert.True(t, IsInvalidFlagValue(wrapped))
	assert.False(t, IsDuplicateName(wrapped))
	assert.Equal(t, ErrCodeMemberNotFound, CodeOf(wrapped))
	assert.Contains(t, wrapped.Error(), "bits not covered")
}

func TestErrorHelpersOnForeignErrors(t *testing.T) {
	plain := errors.New("boom")

	assert.False(t, IsNotFound(plain))
	assert.False(t, IsNotFound(nil))
	assert.Equal(t, ErrorCode(""), CodeOf(plain))
}

func TestAnnotateFillsOnlyMissingFields(t *testing.T) {
	err := &Error{Code: ErrCodeInvalidValue, Name: "KEEP"}
	annotate(err, "Enum", "OTHER")

	assert.Equal(t, "Enum", err.Enum)
	assert.Equal(t, "KEEP", err.Name)
}
