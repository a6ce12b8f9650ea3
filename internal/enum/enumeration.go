package enum

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/enums/internal/ir"
)

// MissingHook is invoked when a value lookup finds no member.
//
// It returns a member of e to resolve the lookup, (nil, nil) to report
// MEMBER_NOT_FOUND, or an error that becomes the cause of the lookup failure.
// Hooks run without any lock held and may call back into e.
type MissingHook func(e *Enumeration, v ir.Value) (*Member, error)

// Entry records one successful declaration in registry order.
// Name is empty for unnamed synthesized members.
type Entry struct {
	Name  string
	Value ir.Value
}

// Enumeration is a closed, append-only registry of members.
//
// Thread-safety: all exported methods are safe for concurrent use.
//
// INVARIANTS:
//   - names holds canonical names in declaration order, aliases excluded
//   - every name in names is bound in byName
//   - byValue holds canonical members only; the first insert for a value wins
//   - members are never removed or reordered
type Enumeration struct {
	mu   sync.RWMutex
	id   uuid.UUID
	name string
	kind Kind
	cfg  config

	// names holds canonical names in declaration order; order holds every
	// bound name, aliases included.
	names  []string
	order  []string
	byName map[string]*Member

	// byValue and canonical are the value map and its insertion order.
	// canonical also holds members whose values cannot be map keys.
	byValue   map[ir.Value]*Member
	canonical []*Member

	// values is the declaration-order value list allocators see.
	values  []ir.Value
	history []Entry

	// folded is the case-insensitive name index, rebuilt after new names.
	folded map[string]*Member
}

func newEnumeration(name string, kind Kind, cfg config) *Enumeration {
	return &Enumeration{
		id:      cfg.ids.NewID(),
		name:    name,
		kind:    kind,
		cfg:     cfg,
		byName:  make(map[string]*Member),
		byValue: make(map[ir.Value]*Member),
	}
}

// ID returns the instance id assigned at Begin.
func (e *Enumeration) ID() uuid.UUID { return e.id }

// Name returns the enumeration name.
func (e *Enumeration) Name() string { return e.name }

// Kind returns the enumeration kind.
func (e *Enumeration) Kind() Kind { return e.kind }

// ValueType returns the declared member value type.
func (e *Enumeration) ValueType() ValueType { return e.cfg.valueType }

// Strategy returns how raw values become member values.
func (e *Enumeration) Strategy() Strategy {
	if e.cfg.construct != nil {
		return CustomConstructor
	}
	return Direct
}

// Start returns the configured start value, or nil.
func (e *Enumeration) Start() ir.Value { return e.cfg.start }

// String returns the enumeration name.
func (e *Enumeration) String() string { return e.name }

// Len returns the number of canonical named members.
func (e *Enumeration) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.names)
}

// Names returns canonical member names in declaration order.
func (e *Enumeration) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.names)
}

// Members returns canonical named members in declaration order.
func (e *Enumeration) Members() []*Member {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.membersLocked()
}

func (e *Enumeration) membersLocked() []*Member {
	out := make([]*Member, len(e.names))
	for i, n := range e.names {
		out[i] = e.byName[n]
	}
	return out
}

// All iterates canonical named members in declaration order.
// Members added during iteration are not visited.
func (e *Enumeration) All() iter.Seq[*Member] {
	members := e.Members()
	return func(yield func(*Member) bool) {
		for _, m := range members {
			if !yield(m) {
				return
			}
		}
	}
}

// Backward iterates canonical named members in reverse declaration order.
func (e *Enumeration) Backward() iter.Seq[*Member] {
	members := e.Members()
	return func(yield func(*Member) bool) {
		for i := len(members) - 1; i >= 0; i-- {
			if !yield(members[i]) {
				return
			}
		}
	}
}

// NameMap returns every bound name, aliases included, mapped to its member.
func (e *Enumeration) NameMap() map[string]*Member {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]*Member, len(e.byName))
	for n, m := range e.byName {
		out[n] = m
	}
	return out
}

// Bindings returns every bound name, aliases included, in declaration order.
func (e *Enumeration) Bindings() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.order)
}

// AsMap returns lower-cased names, aliases included, mapped to values.
func (e *Enumeration) AsMap() map[string]ir.Value {
	lower := cases.Lower(language.Und)
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]ir.Value, len(e.byName))
	for n, m := range e.byName {
		out[lower.String(n)] = m.value
	}
	return out
}

// Values returns every recorded value in declaration order, aliases and
// synthesized values included. This is the prior list allocators see.
func (e *Enumeration) Values() []ir.Value {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.values)
}

// History returns every successful declaration in order, including unnamed
// synthesized members. Replaying it with Rebuild reproduces the registry.
func (e *Enumeration) History() []Entry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.history)
}

// Contains reports whether m is a named member of e.
func (e *Enumeration) Contains(m *Member) bool {
	if m == nil || m.owner != e {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return m.named && e.byName[m.name] == m
}

// AddMember declares one more member after definition. Auto values are
// allocated from the current registry state.
func (e *Enumeration) AddMember(name string, raw Raw) (*Member, error) {
	if err := checkName(e.name, name); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	value, err := e.resolveRawLocked(name, raw)
	if err != nil {
		return nil, err
	}
	m, err := e.declareLocked(name, true, value)
	if err != nil {
		return nil, err
	}
	e.cfg.logger.Debug("member added", "enum", e.name, "name", name, "value", ir.Format(m.value))
	return m, nil
}

// Update adds each pair in order with AddMember, stopping at the first error.
func (e *Enumeration) Update(pairs ...Pair) error {
	for _, p := range pairs {
		if _, err := e.AddMember(p.Name, p.Value); err != nil {
			return err
		}
	}
	return nil
}

// resolveRawLocked turns a declaration into a concrete value, calling the
// allocator for Auto.
func (e *Enumeration) resolveRawLocked(name string, raw Raw) (ir.Value, error) {
	if !raw.auto {
		if raw.value == nil {
			return ir.Null{}, nil
		}
		return raw.value, nil
	}
	if e.cfg.next == nil {
		return nil, &Error{
			Code:    ErrCodeAutoUnavailable,
			Enum:    e.name,
			Name:    name,
			Message: "auto value requested but no allocator is configured",
		}
	}
	v, err := e.cfg.next(name, e.cfg.start, len(e.names), slices.Clone(e.values))
	if err != nil {
		return nil, annotate(err, e.name, name)
	}
	if v == nil {
		return nil, &Error{Code: ErrCodeInvalidValue, Enum: e.name, Name: name, Message: "allocator returned no value"}
	}
	return v, nil
}

// construct normalizes raw into an argument tuple and applies the
// configured constructor. Direct enumerations store raw unchanged.
func (e *Enumeration) construct(name string, raw ir.Value) (ir.Value, error) {
	if e.cfg.construct == nil {
		return raw, nil
	}
	args, ok := raw.(ir.Array)
	if !ok {
		args = ir.Array{raw}
	}
	if e.cfg.valueType == ValueTuple {
		args = ir.Array{args}
	}
	v, err := e.cfg.construct(args)
	if err != nil {
		var ee *Error
		if !errors.As(err, &ee) {
			err = &Error{Code: ErrCodeInvalidValue, Value: raw, Message: "constructor failed", Err: err}
		}
		return nil, annotate(err, e.name, name)
	}
	if v == nil {
		return nil, &Error{Code: ErrCodeInvalidValue, Enum: e.name, Name: name, Value: raw, Message: "constructor returned no value"}
	}
	return v, nil
}

// lookupLocked finds the canonical member for v: hashed when v can be a map
// key, by linear scan otherwise.
func (e *Enumeration) lookupLocked(v ir.Value) *Member {
	if ir.Hashable(v) {
		return e.byValue[v]
	}
	for _, m := range e.canonical {
		if ir.Equal(m.value, v) {
			return m
		}
	}
	return nil
}

// insertValueLocked registers m as canonical for its value unless a member
// already holds it.
func (e *Enumeration) insertValueLocked(m *Member) {
	if ir.Hashable(m.value) {
		if _, ok := e.byValue[m.value]; ok {
			return
		}
		e.byValue[m.value] = m
	} else if e.lookupLocked(m.value) != nil {
		return
	}
	e.canonical = append(e.canonical, m)
}

// declareLocked registers one declaration. named=false is the synthesis
// path: the value is registered in the value map only.
func (e *Enumeration) declareLocked(name string, named bool, raw ir.Value) (*Member, error) {
	if named {
		if existing, ok := e.byName[name]; ok {
			return nil, newDuplicateNameError(e.name, name, existing)
		}
	}

	value, err := e.construct(name, raw)
	if err != nil {
		return nil, err
	}
	return e.registerLocked(name, named, value), nil
}

// registerLocked records an already constructed value and binds it.
func (e *Enumeration) registerLocked(name string, named bool, value ir.Value) *Member {
	e.values = append(e.values, value)
	e.history = append(e.history, Entry{Name: name, Value: value})

	member := e.lookupLocked(value)
	if !named {
		if member == nil {
			member = &Member{value: value, owner: e}
			e.insertValueLocked(member)
		}
		return member
	}

	switch {
	case member == nil:
		member = &Member{name: name, named: true, value: value, owner: e}
		e.names = append(e.names, name)
		e.insertValueLocked(member)
	case !member.named:
		// Promote a synthesized member in place.
		member.name = name
		member.named = true
		e.names = append(e.names, name)
	}
	e.byName[name] = member
	e.order = append(e.order, name)
	e.folded = nil
	return member
}

// replayLocked re-applies recorded declarations. History holds constructed
// values, so allocators and the constructor are bypassed.
func (e *Enumeration) replayLocked(entries []Entry) error {
	for i, entry := range entries {
		named := entry.Name != ""
		if named {
			if existing, ok := e.byName[entry.Name]; ok {
				return fmt.Errorf("replay entry %d: %w", i, newDuplicateNameError(e.name, entry.Name, existing))
			}
		}
		if entry.Value == nil {
			return fmt.Errorf("replay entry %d: %w", i,
				&Error{Code: ErrCodeInvalidValue, Enum: e.name, Name: entry.Name, Message: "recorded value is missing"})
		}
		e.registerLocked(entry.Name, named, entry.Value)
	}
	return nil
}
