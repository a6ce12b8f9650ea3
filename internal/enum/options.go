package enum

import (
	"log/slog"

	"github.com/roach88/enums/internal/ir"
)

// config holds the resolved configuration of an enumeration.
// Derive copies it from a member-less base.
type config struct {
	logger    *slog.Logger
	ids       IDGenerator
	next      NextValueFunc
	nextSet   bool
	start     ir.Value
	missing   MissingHook
	hookSet   bool
	construct Constructor
	ctorSet   bool
	valueType ValueType
	typeSet   bool
	unique    bool
	ignore    []string
}

// Option configures an enumeration at Begin, Derive or a functional constructor.
type Option func(*config)

// WithLogger sets the logger used for definition and synthesis records.
//
// Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithIDGenerator sets the generator of the enumeration instance id.
//
// Default: UUIDv7Generator
func WithIDGenerator(ids IDGenerator) Option {
	return func(c *config) {
		c.ids = ids
	}
}

// WithAllocator replaces the kind's default auto value strategy
// (Incremental for enums, StrictBit for flags). A nil allocator makes
// every Auto declaration fail with AUTO_UNAVAILABLE.
func WithAllocator(next NextValueFunc) Option {
	return func(c *config) {
		c.next = next
		c.nextSet = true
	}
}

// WithStart sets the value allocators return when no prior value applies.
func WithStart(start ir.Value) Option {
	return func(c *config) {
		c.start = start
	}
}

// WithMissingHook replaces the kind's default missing-value hook.
// A nil hook makes failed value lookups return MEMBER_NOT_FOUND directly.
func WithMissingHook(hook MissingHook) Option {
	return func(c *config) {
		c.missing = hook
		c.hookSet = true
	}
}

// WithConstructor selects the CustomConstructor strategy with fn.
func WithConstructor(fn Constructor) Option {
	return func(c *config) {
		c.construct = fn
		c.ctorSet = true
	}
}

// WithValueType sets the member value type. It installs the built-in
// constructor for that type unless WithConstructor is also given.
//
// Default: ValueInt for int kinds, ValueAny otherwise.
func WithValueType(t ValueType) Option {
	return func(c *config) {
		c.valueType = t
		c.typeSet = true
	}
}

// WithUnique makes Finalize fail with DUPLICATE_VALUE if any alias was declared.
func WithUnique() Option {
	return func(c *config) {
		c.unique = true
	}
}

// WithIgnore skips declarations with the given names.
func WithIgnore(names ...string) Option {
	return func(c *config) {
		c.ignore = append(c.ignore, names...)
	}
}

func newConfig(kind Kind, opts []Option) config {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	return c.resolve(kind)
}

// resolve fills kind defaults for everything the options left unset.
func (c config) resolve(kind Kind) config {
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.ids == nil {
		c.ids = UUIDv7Generator{}
	}
	if !c.nextSet {
		c.next = Incremental
		if kind.IsFlag() {
			c.next = StrictBit
		}
		c.nextSet = true
	}
	if !c.hookSet {
		switch kind {
		case KindFlag:
			c.missing = StrictFlagHook
		case KindIntFlag:
			c.missing = IntFlagHook
		}
		c.hookSet = true
	}
	if !c.typeSet {
		c.valueType = ValueAny
		if kind.IsInt() {
			c.valueType = ValueInt
		}
		c.typeSet = true
	}
	if !c.ctorSet {
		c.construct = builtinConstructor(c.valueType)
	}
	return c
}
