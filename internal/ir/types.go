package ir

import (
	"fmt"
)

// Enumeration kinds as they appear in definitions.
const (
	KindEnum    = "enum"
	KindIntEnum = "int_enum"
	KindFlag    = "flag"
	KindIntFlag = "int_flag"
)

// ValidKinds defines allowed definition kinds.
var ValidKinds = map[string]bool{
	KindEnum:    true,
	KindIntEnum: true,
	KindFlag:    true,
	KindIntFlag: true,
}

// Value types a definition may declare. The empty string accepts any value.
const (
	ValueTypeAny    = ""
	ValueTypeInt    = "int"
	ValueTypeString = "string"
	ValueTypeTuple  = "tuple"
)

// ValidValueTypes defines allowed value types.
var ValidValueTypes = map[string]bool{
	ValueTypeAny:    true,
	ValueTypeInt:    true,
	ValueTypeString: true,
	ValueTypeTuple:  true,
}

// Definition is a compiled enumeration definition.
// Members are kept in declaration order; that order drives auto values,
// alias resolution and iteration.
type Definition struct {
	Name      string        `json:"name"`
	Kind      string        `json:"kind"`
	ValueType string        `json:"value_type,omitempty"`
	Start     Value         `json:"start,omitempty"` // nil when unset
	Unique    bool          `json:"unique,omitempty"`
	Ignore    []string      `json:"ignore,omitempty"`
	Members   []Declaration `json:"members"`
}

// Declaration is one member declaration of a Definition.
// When Auto is set Value is ignored and the allocator supplies the value.
type Declaration struct {
	Name  string `json:"name"`
	Value Value  `json:"value,omitempty"`
	Auto  bool   `json:"auto,omitempty"`
}

// Object returns the declaration as an Object for canonical encoding.
func (d Declaration) Object() Object {
	obj := Object{"name": String(d.Name)}
	if d.Auto {
		obj["auto"] = Bool(true)
		return obj
	}
	v := d.Value
	if v == nil {
		v = Null{}
	}
	obj["value"] = v
	return obj
}

// Object returns the definition as an Object for canonical encoding.
// Zero-valued optional fields are omitted so that they do not affect identity.
func (def Definition) Object() Object {
	members := make(Array, len(def.Members))
	for i, m := range def.Members {
		members[i] = m.Object()
	}
	obj := Object{
		"name":    String(def.Name),
		"kind":    String(def.Kind),
		"members": members,
	}
	if def.ValueType != "" {
		obj["value_type"] = String(def.ValueType)
	}
	if def.Start != nil {
		obj["start"] = def.Start
	}
	if def.Unique {
		obj["unique"] = Bool(true)
	}
	if len(def.Ignore) > 0 {
		ignore := make(Array, len(def.Ignore))
		for i, name := range def.Ignore {
			ignore[i] = String(name)
		}
		obj["ignore"] = ignore
	}
	return obj
}

// MarshalJSON encodes the definition in canonical form.
func (def Definition) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(def.Object())
}

// UnmarshalJSON decodes a definition produced by MarshalJSON.
func (def *Definition) UnmarshalJSON(data []byte) error {
	v, err := UnmarshalValue(data)
	if err != nil {
		return err
	}
	obj, ok := v.(Object)
	if !ok {
		return fmt.Errorf("definition must be an object, got %T", v)
	}
	parsed, err := DefinitionFromObject(obj)
	if err != nil {
		return err
	}
	*def = parsed
	return nil
}

// DefinitionFromObject is the inverse of Definition.Object.
func DefinitionFromObject(obj Object) (Definition, error) {
	var def Definition
	var err error
	if def.Name, err = stringField(obj, "name", true); err != nil {
		return Definition{}, err
	}
	if def.Kind, err = stringField(obj, "kind", true); err != nil {
		return Definition{}, err
	}
	if def.ValueType, err = stringField(obj, "value_type", false); err != nil {
		return Definition{}, err
	}
	if start, ok := obj["start"]; ok {
		def.Start = start
	}
	if u, ok := obj["unique"]; ok {
		b, ok := u.(Bool)
		if !ok {
			return Definition{}, fmt.Errorf("unique: expected bool, got %T", u)
		}
		def.Unique = bool(b)
	}
	if ig, ok := obj["ignore"]; ok {
		arr, ok := ig.(Array)
		if !ok {
			return Definition{}, fmt.Errorf("ignore: expected array, got %T", ig)
		}
		for i, elem := range arr {
			s, ok := elem.(String)
			if !ok {
				return Definition{}, fmt.Errorf("ignore[%d]: expected string, got %T", i, elem)
			}
			def.Ignore = append(def.Ignore, string(s))
		}
	}

	raw, ok := obj["members"]
	if !ok {
		return Definition{}, fmt.Errorf("members: missing")
	}
	arr, ok := raw.(Array)
	if !ok {
		return Definition{}, fmt.Errorf("members: expected array, got %T", raw)
	}
	def.Members = make([]Declaration, 0, len(arr))
	for i, elem := range arr {
		m, ok := elem.(Object)
		if !ok {
			return Definition{}, fmt.Errorf("members[%d]: expected object, got %T", i, elem)
		}
		name, err := stringField(m, "name", true)
		if err != nil {
			return Definition{}, fmt.Errorf("members[%d]: %w", i, err)
		}
		decl := Declaration{Name: name}
		if a, ok := m["auto"]; ok {
			b, ok := a.(Bool)
			if !ok {
				return Definition{}, fmt.Errorf("members[%d].auto: expected bool, got %T", i, a)
			}
			decl.Auto = bool(b)
		}
		if !decl.Auto {
			v, ok := m["value"]
			if !ok {
				return Definition{}, fmt.Errorf("members[%d]: value or auto required", i)
			}
			decl.Value = v
		}
		def.Members = append(def.Members, decl)
	}
	return def, nil
}

func stringField(obj Object, key string, required bool) (string, error) {
	v, ok := obj[key]
	if !ok {
		if required {
			return "", fmt.Errorf("%s: missing", key)
		}
		return "", nil
	}
	s, ok := v.(String)
	if !ok {
		return "", fmt.Errorf("%s: expected string, got %T", key, v)
	}
	return string(s), nil
}
