package enum

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode"

	"github.com/roach88/enums/internal/ir"
)

// FromNameList builds an enumeration from a comma- or space-separated list
// of names, all with auto values: FromNameList("Color", KindEnum, "RED, GREEN BLUE").
func FromNameList(name string, kind Kind, names string, opts ...Option) (*Enumeration, error) {
	fields := strings.FieldsFunc(names, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	return FromNames(name, kind, fields, opts...)
}

// FromNames builds an enumeration from ordered names, all with auto values.
func FromNames(name string, kind Kind, names []string, opts ...Option) (*Enumeration, error) {
	pairs := make([]Pair, len(names))
	for i, n := range names {
		pairs[i] = Pair{Name: n, Value: Auto()}
	}
	return FromPairs(name, kind, pairs, opts...)
}

// FromPairs builds an enumeration from ordered (name, value) declarations.
func FromPairs(name string, kind Kind, pairs []Pair, opts ...Option) (*Enumeration, error) {
	b := Begin(name, kind, opts...)
	for _, p := range pairs {
		if err := b.Declare(p.Name, p.Value); err != nil {
			return nil, err
		}
	}
	return b.Finalize()
}

// FromMap builds an enumeration from a name to value mapping.
// Go maps are unordered, so names are declared in sorted order.
func FromMap(name string, kind Kind, members map[string]ir.Value, opts ...Option) (*Enumeration, error) {
	keys := slices.Sorted(maps.Keys(members))
	pairs := make([]Pair, len(keys))
	for i, k := range keys {
		pairs[i] = Pair{Name: k, Value: Value(members[k])}
	}
	return FromPairs(name, kind, pairs, opts...)
}

// FromDefinition builds an enumeration from a compiled definition.
// Options given here are applied after the definition's own settings.
func FromDefinition(def ir.Definition, opts ...Option) (*Enumeration, error) {
	b, err := definitionBuilder(def, opts)
	if err != nil {
		return nil, err
	}
	for _, m := range def.Members {
		raw := Value(m.Value)
		if m.Auto {
			raw = Auto()
		}
		if err := b.Declare(m.Name, raw); err != nil {
			return nil, err
		}
	}
	return b.Finalize()
}

// Rebuild restores an enumeration from its definition settings and a
// History, reproducing aliases, promotions and synthesized members exactly.
// The definition's member list is not used.
func Rebuild(def ir.Definition, history []Entry, opts ...Option) (*Enumeration, error) {
	b, err := definitionBuilder(def, opts)
	if err != nil {
		return nil, err
	}
	b.done = true
	e := b.e

	e.mu.Lock()
	err = e.replayLocked(history)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if e.cfg.unique {
		if err := EnsureUnique(e); err != nil {
			return nil, err
		}
	}
	e.cfg.logger.Debug("enumeration rebuilt",
		"enum", e.name,
		"entries", len(history),
		"members", e.Len())
	return e, nil
}

func definitionBuilder(def ir.Definition, opts []Option) (*Builder, error) {
	kind, err := ParseKind(def.Kind)
	if err != nil {
		return nil, &Error{Code: ErrCodeInvalidValue, Enum: def.Name, Message: err.Error()}
	}
	var base []Option
	if def.ValueType != "" {
		vt, err := ParseValueType(def.ValueType)
		if err != nil {
			return nil, &Error{Code: ErrCodeInvalidValue, Enum: def.Name, Message: err.Error()}
		}
		base = append(base, WithValueType(vt))
	}
	if def.Start != nil {
		base = append(base, WithStart(def.Start))
	}
	if def.Unique {
		base = append(base, WithUnique())
	}
	if len(def.Ignore) > 0 {
		base = append(base, WithIgnore(def.Ignore...))
	}
	if def.Name == "" {
		return nil, &Error{Code: ErrCodeInvalidName, Message: fmt.Sprintf("definition of kind %s has no name", def.Kind)}
	}
	return Begin(def.Name, kind, append(base, opts...)...), nil
}
