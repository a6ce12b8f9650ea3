package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/enums/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// Definition errors (E101-E109)
	ErrDefinitionNameEmpty = "E101" // enumeration name is required
	ErrUnknownKind         = "E102" // kind is not enum, int_enum, flag or int_flag
	ErrUnknownValueType    = "E103" // value_type is not int, string or tuple
	ErrMemberNameEmpty     = "E104" // member name is required
	ErrDuplicateName       = "E105" // member name declared twice
	ErrReservedName        = "E106" // __dunder__ names are reserved
	ErrFlagValueNotInt     = "E107" // flag member values must be integers
	ErrInvalidStart        = "E108" // start must be an integer for int and flag kinds
	ErrDuplicateValue      = "E109" // unique definition declares an alias

	// Catalog errors (E110-E119)
	ErrDuplicateDefinition = "E110" // enumeration name defined twice across inputs
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates a compiled definition against schema rules.
// Returns all errors found (does not fail-fast).
func Validate(v any) []ValidationError {
	switch def := v.(type) {
	case *ir.Definition:
		return validateDefinition(def)
	case ir.Definition:
		return validateDefinition(&def)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

// ValidateAll validates every definition and reports names defined twice.
func ValidateAll(defs []ir.Definition) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(defs))
	for i := range defs {
		def := &defs[i]
		for _, e := range validateDefinition(def) {
			e.Field = def.Name + "." + e.Field
			errs = append(errs, e)
		}
		if def.Name != "" && seen[def.Name] {
			errs = append(errs, ValidationError{
				Field:   def.Name,
				Message: fmt.Sprintf("enumeration %q is defined more than once", def.Name),
				Code:    ErrDuplicateDefinition,
			})
		}
		seen[def.Name] = true
	}
	return errs
}

func validateDefinition(def *ir.Definition) []ValidationError {
	var errs []ValidationError

	// E101: name is required
	if strings.TrimSpace(def.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "enumeration name is required and must be non-empty",
			Code:    ErrDefinitionNameEmpty,
		})
	}

	// E102: kind
	if !ir.ValidKinds[def.Kind] {
		errs = append(errs, ValidationError{
			Field:   "kind",
			Message: fmt.Sprintf("invalid kind %q, must be \"enum\", \"int_enum\", \"flag\" or \"int_flag\"", def.Kind),
			Code:    ErrUnknownKind,
		})
	}

	// E103: value type
	if !ir.ValidValueTypes[def.ValueType] {
		errs = append(errs, ValidationError{
			Field:   "value_type",
			Message: fmt.Sprintf("invalid value type %q, must be \"int\", \"string\" or \"tuple\"", def.ValueType),
			Code:    ErrUnknownValueType,
		})
	}

	intLike := isFlagKind(def.Kind) || def.Kind == ir.KindIntEnum

	// E108: start
	if def.Start != nil && intLike {
		if _, ok := def.Start.(ir.Int); !ok {
			errs = append(errs, ValidationError{
				Field:   "start",
				Message: fmt.Sprintf("start must be an integer for kind %s, got %s", def.Kind, ir.Format(def.Start)),
				Code:    ErrInvalidStart,
			})
		}
	}

	ignored := make(map[string]bool, len(def.Ignore))
	for _, n := range def.Ignore {
		ignored[n] = true
	}

	names := make(map[string]bool, len(def.Members))
	var explicit []ir.Declaration
	for i, m := range def.Members {
		field := fmt.Sprintf("members[%d]", i)

		// E104: member name
		if strings.TrimSpace(m.Name) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: "member name is required and must be non-empty",
				Code:    ErrMemberNameEmpty,
			})
			continue
		}
		if ignored[m.Name] {
			continue
		}

		// E105: duplicate member name
		if names[m.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate member name: %q", m.Name),
				Code:    ErrDuplicateName,
			})
		}
		names[m.Name] = true

		// E106: reserved names
		if isDunder(m.Name) {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("member name %q is reserved", m.Name),
				Code:    ErrReservedName,
			})
		}

		if m.Auto {
			continue
		}

		// E107: flag values
		if isFlagKind(def.Kind) {
			if _, ok := m.Value.(ir.Int); !ok {
				errs = append(errs, ValidationError{
					Field:   field + ".value",
					Message: fmt.Sprintf("flag member %q must have an integer value, got %s", m.Name, ir.Format(m.Value)),
					Code:    ErrFlagValueNotInt,
				})
			}
		}

		// E109: aliases in a unique definition
		if def.Unique {
			for _, prev := range explicit {
				if ir.Equal(prev.Value, m.Value) {
					errs = append(errs, ValidationError{
						Field:   field + ".value",
						Message: fmt.Sprintf("%s duplicates the value of %s", m.Name, prev.Name),
						Code:    ErrDuplicateValue,
					})
					break
				}
			}
		}
		explicit = append(explicit, m)
	}

	return errs
}

func isFlagKind(kind string) bool {
	return kind == ir.KindFlag || kind == ir.KindIntFlag
}

// isDunder reports names that start and end with two underscores.
func isDunder(name string) bool {
	return len(name) > 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}
