package enum

import (
	"cmp"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/enums/internal/ir"
)

// Member is one constant of an Enumeration.
//
// Members are compared by identity: an alias is the same *Member as the
// canonical member it refers to. The value never changes. A synthesized
// unnamed member may receive a name once, when a later named declaration
// has an equal value.
type Member struct {
	name  string // guarded by owner.mu
	named bool   // guarded by owner.mu
	value ir.Value
	owner *Enumeration
}

// Name returns the member's canonical name, or "" for an unnamed member.
func (m *Member) Name() string {
	m.owner.mu.RLock()
	defer m.owner.mu.RUnlock()
	return m.name
}

// Named reports whether the member has a name.
func (m *Member) Named() bool {
	m.owner.mu.RLock()
	defer m.owner.mu.RUnlock()
	return m.named
}

// Value returns the member's value.
func (m *Member) Value() ir.Value {
	return m.value
}

// Enumeration returns the enumeration that owns the member.
func (m *Member) Enumeration() *Enumeration {
	return m.owner
}

// String returns "Enum.NAME". Unnamed flag members render their
// decomposition as "Enum.B|A", using values for unnamed parts; other unnamed
// members render as "Enum(value)".
func (m *Member) String() string {
	m.owner.mu.RLock()
	name, named := m.name, m.named
	m.owner.mu.RUnlock()

	if named {
		return m.owner.name + "." + name
	}
	if n, ok := m.value.(ir.Int); ok && m.owner.kind.IsFlag() {
		parts, _ := m.owner.Decompose(int64(n))
		labels := make([]string, len(parts))
		for i, p := range parts {
			labels[i] = p.label()
		}
		return m.owner.name + "." + strings.Join(labels, "|")
	}
	return fmt.Sprintf("%s(%s)", m.owner.name, ir.Format(m.value))
}

// Title returns a human-readable name: "SOME_VALUE" becomes "Some Value",
// mixed-case names are kept. Flag titles join the decomposition with ", ".
func (m *Member) Title() string {
	if n, ok := m.value.(ir.Int); ok && m.owner.kind.IsFlag() {
		parts, _ := m.owner.Decompose(int64(n))
		titles := make([]string, len(parts))
		for i, p := range parts {
			titles[i] = readable(p.label())
		}
		return strings.Join(titles, ", ")
	}

	m.owner.mu.RLock()
	name, named := m.name, m.named
	m.owner.mu.RUnlock()
	if !named {
		return "undefined"
	}
	return readable(name)
}

// Compare orders m against other, which is resolved through the owning
// enumeration. Integer, string and boolean values are ordered; anything else
// is an INVALID_VALUE error.
func (m *Member) Compare(other any) (int, error) {
	o, err := m.owner.Resolve(other)
	if err != nil {
		return 0, err
	}
	switch a := m.value.(type) {
	case ir.Int:
		if b, ok := o.value.(ir.Int); ok {
			return cmp.Compare(a, b), nil
		}
	case ir.String:
		if b, ok := o.value.(ir.String); ok {
			return cmp.Compare(a, b), nil
		}
	case ir.Bool:
		if b, ok := o.value.(ir.Bool); ok {
			return cmp.Compare(boolRank(bool(a)), boolRank(bool(b))), nil
		}
	}
	return 0, &Error{
		Code:    ErrCodeInvalidValue,
		Enum:    m.owner.name,
		Value:   m.value,
		Message: fmt.Sprintf("values %s and %s are not ordered", ir.Format(m.value), ir.Format(o.value)),
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// label is the name of the member, or its formatted value when unnamed.
func (m *Member) label() string {
	m.owner.mu.RLock()
	defer m.owner.mu.RUnlock()
	if m.named {
		return m.name
	}
	return ir.Format(m.value)
}

// describe renders the member for error messages. Callers may hold the
// owner's lock, so it reads fields directly.
func (m *Member) describe() string {
	if m.named {
		return fmt.Sprintf("<%s.%s: %s>", m.owner.name, m.name, ir.Format(m.value))
	}
	return fmt.Sprintf("<%s: %s>", m.owner.name, ir.Format(m.value))
}

func readable(name string) string {
	upper := strings.ToUpper(name)
	if name != upper || upper == strings.ToLower(name) {
		return name
	}
	return cases.Title(language.Und).String(strings.ReplaceAll(name, "_", " "))
}
