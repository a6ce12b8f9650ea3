package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/enums/internal/ir"
)

// marshalDefinition converts a Definition to canonical JSON TEXT for storage.
// The same bytes are hashed by ir.DefinitionID, so body and id always agree.
func marshalDefinition(def ir.Definition) (string, error) {
	data, err := ir.MarshalCanonical(def.Object())
	if err != nil {
		return "", fmt.Errorf("marshal definition: %w", err)
	}
	return string(data), nil
}

// unmarshalDefinition parses canonical JSON TEXT to a Definition.
// Integers are decoded via json.Number, so values above 2^53 survive.
func unmarshalDefinition(data string) (ir.Definition, error) {
	var def ir.Definition
	if err := json.Unmarshal([]byte(data), &def); err != nil {
		return ir.Definition{}, fmt.Errorf("unmarshal definition: %w", err)
	}
	return def, nil
}

// marshalValue converts a member value to canonical JSON TEXT.
func marshalValue(v ir.Value) (string, error) {
	if v == nil {
		v = ir.Null{}
	}
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("marshal value: %w", err)
	}
	return string(data), nil
}

// unmarshalValue parses canonical JSON TEXT to a member value.
func unmarshalValue(data string) (ir.Value, error) {
	v, err := ir.UnmarshalValue([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal value: %w", err)
	}
	return v, nil
}
