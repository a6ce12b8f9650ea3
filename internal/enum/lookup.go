package enum

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/enums/internal/ir"
)

// ByName returns the member bound to name exactly, aliases included.
func (e *Enumeration) ByName(name string) (*Member, error) {
	e.mu.RLock()
	m, ok := e.byName[name]
	e.mu.RUnlock()
	if !ok {
		return nil, newNotFoundNameError(e.name, name)
	}
	return m, nil
}

// ByValue returns the canonical member holding v.
//
// Lookup order: hashed value map, linear scan for unhashable values, then
// the missing-value hook. A nil v is treated as ir.Null.
func (e *Enumeration) ByValue(v ir.Value) (*Member, error) {
	if v == nil {
		v = ir.Null{}
	}
	e.mu.RLock()
	m := e.lookupLocked(v)
	e.mu.RUnlock()
	if m != nil {
		return m, nil
	}
	return e.missingValue(v)
}

// missingValue runs the hook with no lock held and validates its result.
func (e *Enumeration) missingValue(v ir.Value) (*Member, error) {
	hook := e.cfg.missing
	if hook == nil {
		return nil, newNotFoundValueError(e.name, v, nil)
	}

	m, err := hook(e, v)
	if err != nil {
		var ee *Error
		if !errors.As(err, &ee) {
			err = &Error{
				Code:    ErrCodeMissingHook,
				Enum:    e.name,
				Value:   v,
				Message: "missing-value hook failed",
				Err:     err,
			}
		}
		e.cfg.logger.Debug("missing-value hook rejected value",
			"enum", e.name,
			"value", ir.Format(v),
			"error", err)
		return nil, newNotFoundValueError(e.name, v, err)
	}
	if m == nil {
		return nil, newNotFoundValueError(e.name, v, nil)
	}
	if m.owner != e {
		return nil, newNotFoundValueError(e.name, v, &Error{
			Code:    ErrCodeMissingHook,
			Enum:    e.name,
			Value:   v,
			Message: fmt.Sprintf("hook returned a member of %s instead of None or a valid member", m.owner.name),
		})
	}
	return m, nil
}

// Resolve returns x itself when it is a member of e, and otherwise looks up
// x as a value. x may be an ir.Value or a plain Go value accepted by ir.FromGo.
func (e *Enumeration) Resolve(x any) (*Member, error) {
	if m, ok := x.(*Member); ok {
		if m != nil && m.owner == e {
			return m, nil
		}
		return nil, &Error{
			Code:    ErrCodeMemberNotFound,
			Enum:    e.name,
			Message: fmt.Sprintf("%v is not a member of %s", x, e.name),
		}
	}
	v, err := ir.FromGo(x)
	if err != nil {
		return nil, &Error{
			Code:    ErrCodeMemberNotFound,
			Enum:    e.name,
			Message: fmt.Sprintf("%v is not a valid %s", x, e.name),
			Err:     &Error{Code: ErrCodeInvalidValue, Message: err.Error()},
		}
	}
	return e.ByValue(v)
}

// FromName looks up a name ignoring case and underscores, so "some_value",
// "SOMEVALUE" and "SomeValue" all find SOME_VALUE. When two names fold to
// the same key the first declared wins.
func (e *Enumeration) FromName(name string) (*Member, error) {
	index := e.foldedIndex()
	if m, ok := index[foldName(name)]; ok {
		return m, nil
	}
	return nil, newNotFoundNameError(e.name, name)
}

// foldedIndex returns the case-insensitive index, building it on first use
// after any name was bound. Built maps are never mutated.
func (e *Enumeration) foldedIndex() map[string]*Member {
	e.mu.RLock()
	index := e.folded
	e.mu.RUnlock()
	if index != nil {
		return index
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.folded == nil {
		index = make(map[string]*Member, len(e.order))
		for _, n := range e.order {
			key := foldName(n)
			if _, ok := index[key]; !ok {
				index[key] = e.byName[n]
			}
		}
		e.folded = index
	}
	return e.folded
}

// foldName case-folds and removes underscores. Casers are stateful, so one
// is created per call.
func foldName(name string) string {
	return strings.ReplaceAll(cases.Fold().String(name), "_", "")
}

// FromValue resolves x by name first when it is a string, then as a value.
func (e *Enumeration) FromValue(x any) (*Member, error) {
	var s string
	isString := false
	switch v := x.(type) {
	case string:
		s, isString = v, true
	case ir.String:
		s, isString = string(v), true
	}
	if isString {
		if m, err := e.FromName(s); err == nil {
			return m, nil
		}
	}
	return e.Resolve(x)
}

// FromValueOr is FromValue with a fallback that is itself resolved through
// FromValue when x does not resolve.
func (e *Enumeration) FromValueOr(x, fallback any) (*Member, error) {
	m, err := e.FromValue(x)
	if err == nil {
		return m, nil
	}
	return e.FromValue(fallback)
}
