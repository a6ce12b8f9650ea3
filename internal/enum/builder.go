package enum

import (
	"slices"

	"github.com/roach88/enums/internal/ir"
)

// Builder collects declarations in source order and resolves them in Finalize.
//
// Declare fails fast on empty and repeated names; the first error is kept
// and returned again by every later call, including Finalize.
//
// Thread-safety: a Builder must be used from one goroutine.
type Builder struct {
	e      *Enumeration
	decls  []Pair
	seen   map[string]bool
	ignore map[string]bool
	err    error
	done   bool
}

// Begin starts the definition of an enumeration.
func Begin(name string, kind Kind, opts ...Option) *Builder {
	return newBuilder(name, kind, newConfig(kind, opts))
}

func newBuilder(name string, kind Kind, cfg config) *Builder {
	b := &Builder{
		e:      newEnumeration(name, kind, cfg),
		seen:   make(map[string]bool),
		ignore: make(map[string]bool),
	}
	for _, n := range cfg.ignore {
		b.ignore[n] = true
	}
	return b
}

// Derive starts an enumeration that inherits the configuration of base:
// kind, value type, constructor, allocator, start, hook and logger. Options
// are applied on top. Only member-less enumerations can be derived from.
func Derive(base *Enumeration, name string, opts ...Option) (*Builder, error) {
	base.mu.RLock()
	populated := len(base.values) > 0
	cfg := base.cfg
	base.mu.RUnlock()

	if populated {
		return nil, newDeclarationOrderError(base.name, "cannot derive from an enumeration that already has members")
	}

	cfg.ignore = slices.Clone(cfg.ignore)
	for _, opt := range opts {
		opt(&cfg)
	}
	return newBuilder(name, base.kind, cfg.resolve(base.kind)), nil
}

// Name returns the name of the enumeration being built.
func (b *Builder) Name() string {
	return b.e.name
}

// Declare records one declaration. Names listed by WithIgnore are skipped.
func (b *Builder) Declare(name string, raw Raw) error {
	if b.done {
		return newDeclarationOrderError(b.e.name, "declaration after Finalize")
	}
	if b.err != nil {
		return b.err
	}
	if err := checkName(b.e.name, name); err != nil {
		b.err = err
		return b.err
	}
	if b.ignore[name] {
		return nil
	}
	if b.seen[name] {
		b.err = &Error{
			Code:    ErrCodeDuplicateName,
			Enum:    b.e.name,
			Name:    name,
			Message: "attempt to reuse name " + name,
		}
		return b.err
	}
	b.seen[name] = true
	b.decls = append(b.decls, Pair{Name: name, Value: raw})
	return nil
}

// DeclareValue is Declare with an explicit value.
func (b *Builder) DeclareValue(name string, v ir.Value) error {
	return b.Declare(name, Value(v))
}

// DeclareAuto is Declare with a generated value.
func (b *Builder) DeclareAuto(name string) error {
	return b.Declare(name, Auto())
}

// Finalize resolves every declaration in order and returns the enumeration.
// Any failure aborts the definition and no enumeration is returned.
func (b *Builder) Finalize() (*Enumeration, error) {
	if b.done {
		return nil, newDeclarationOrderError(b.e.name, "builder already finalized")
	}
	b.done = true
	if b.err != nil {
		return nil, b.err
	}

	e := b.e
	if err := e.defineAll(b.decls); err != nil {
		return nil, err
	}
	if e.cfg.unique {
		if err := EnsureUnique(e); err != nil {
			return nil, err
		}
	}

	e.cfg.logger.Debug("enumeration defined",
		"enum", e.name,
		"kind", e.kind.String(),
		"id", e.id.String(),
		"members", e.Len())
	return e, nil
}

func (e *Enumeration) defineAll(decls []Pair) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, d := range decls {
		value, err := e.resolveRawLocked(d.Name, d.Value)
		if err != nil {
			return err
		}
		if _, err := e.declareLocked(d.Name, true, value); err != nil {
			return err
		}
	}
	return nil
}
