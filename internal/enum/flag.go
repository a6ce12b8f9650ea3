package enum

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/roach88/enums/internal/ir"
)

// Decompose expresses value as known members plus the bits none of them cover.
//
// For negative values only canonical named members are candidates; for
// non-negative values canonical members whose value is a power of two are
// candidates too, so earlier synthesized single bits take part. Candidates
// are tested in value map insertion order and the result is sorted by
// descending value. When nothing matched but value itself is a member, that
// member is returned alone. When several members matched and the largest
// equals value, it is dropped in favor of its constituents.
func (e *Enumeration) Decompose(value int64) ([]*Member, int64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.decomposeLocked(value)
}

func (e *Enumeration) decomposeLocked(value int64) ([]*Member, int64) {
	uncovered := value
	var found []*Member

	for _, m := range e.canonical {
		n, ok := m.value.(ir.Int)
		if !ok {
			continue
		}
		v := int64(n)
		if !m.named && (value < 0 || !powerOfTwo(v)) {
			continue
		}
		if v != 0 && value&v == v {
			found = append(found, m)
			uncovered &^= v
		}
	}

	if len(found) == 0 {
		if m, ok := e.byValue[ir.Int(value)]; ok {
			found = append(found, m)
		}
	}

	slices.SortStableFunc(found, func(a, b *Member) int {
		return cmp.Compare(intValue(b), intValue(a))
	})
	if len(found) > 1 && intValue(found[0]) == value {
		found = found[1:]
	}
	return found, uncovered
}

func intValue(m *Member) int64 {
	n, _ := m.value.(ir.Int)
	return int64(n)
}

// StrictFlagHook is the missing-value hook of KindFlag enumerations.
// It synthesizes an unnamed member for a union of known flags and rejects
// values with uncovered bits with INVALID_FLAG_VALUE.
func StrictFlagHook(e *Enumeration, v ir.Value) (*Member, error) {
	return e.synthesize(v, e.createComposite)
}

// IntFlagHook is the missing-value hook of KindIntFlag enumerations.
// Unknown bits are synthesized as new unnamed single-bit members before
// the requested composite.
func IntFlagHook(e *Enumeration, v ir.Value) (*Member, error) {
	return e.synthesize(v, e.createIntComposite)
}

// synthesize complements negative input, builds the composite and inverts
// the result again for negative input.
func (e *Enumeration) synthesize(v ir.Value, create func(int64) (*Member, error)) (*Member, error) {
	n, ok := v.(ir.Int)
	if !ok {
		return nil, &Error{
			Code:    ErrCodeInvalidFlagValue,
			Enum:    e.name,
			Value:   v,
			Message: "flag values must be integers",
		}
	}

	value := int64(n)
	if value < 0 {
		value = ^value
	}
	m, err := create(value)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return m.Invert()
	}
	return m, nil
}

func (e *Enumeration) createComposite(value int64) (*Member, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if m, ok := e.byValue[ir.Int(value)]; ok {
		return m, nil
	}
	if _, extra := e.decomposeLocked(value); extra != 0 {
		return nil, &Error{
			Code:    ErrCodeInvalidFlagValue,
			Enum:    e.name,
			Value:   ir.Int(value),
			Message: fmt.Sprintf("%d is not a valid %s: bits %#x are not covered by any flag", value, e.name, extra),
		}
	}

	m, err := e.declareLocked("", false, ir.Int(value))
	if err != nil {
		return nil, err
	}
	e.cfg.logger.Debug("composite member synthesized", "enum", e.name, "value", value)
	return m, nil
}

// createIntComposite queues value and every unknown bit, then registers the
// queue last-discovered first so that single bits exist before the
// composite. The member for value is registered last and returned.
func (e *Enumeration) createIntComposite(value int64) (*Member, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if m, ok := e.byValue[ir.Int(value)]; ok {
		return m, nil
	}

	pending := []int64{value}
	_, extra := e.decomposeLocked(value)
	for extra != 0 {
		bit := int64(1) << highBit(extra)
		if _, known := e.byValue[ir.Int(bit)]; !known && !slices.Contains(pending, bit) {
			pending = append(pending, bit)
		}
		if extra == -bit {
			// only sign bits remain
			extra = 0
		} else {
			extra ^= bit
		}
	}

	var m *Member
	for i := len(pending) - 1; i >= 0; i-- {
		var err error
		m, err = e.declareLocked("", false, ir.Int(pending[i]))
		if err != nil {
			return nil, err
		}
		e.cfg.logger.Debug("flag member synthesized", "enum", e.name, "value", pending[i])
	}
	return m, nil
}

// FromArgs returns the union of the members that args resolve to through
// FromValue. With no args it returns the zero member.
func (e *Enumeration) FromArgs(args ...any) (*Member, error) {
	var union int64
	for _, arg := range args {
		m, err := e.FromValue(arg)
		if err != nil {
			return nil, err
		}
		v, err := m.flagValue()
		if err != nil {
			return nil, err
		}
		union |= v
	}
	return e.ByValue(ir.Int(union))
}

// flagValue returns the integer value of a flag member.
func (m *Member) flagValue() (int64, error) {
	if !m.owner.kind.IsFlag() {
		return 0, &Error{
			Code:    ErrCodeInvalidFlagValue,
			Enum:    m.owner.name,
			Value:   m.value,
			Message: fmt.Sprintf("%s is not a flag enumeration", m.owner.name),
		}
	}
	n, ok := m.value.(ir.Int)
	if !ok {
		return 0, &Error{
			Code:    ErrCodeInvalidFlagValue,
			Enum:    m.owner.name,
			Value:   m.value,
			Message: "flag values must be integers",
		}
	}
	return int64(n), nil
}

func (m *Member) binary(other any, op func(a, b int64) int64) (*Member, error) {
	a, err := m.flagValue()
	if err != nil {
		return nil, err
	}
	o, err := m.owner.Resolve(other)
	if err != nil {
		return nil, err
	}
	b, err := o.flagValue()
	if err != nil {
		return nil, err
	}
	return m.owner.ByValue(ir.Int(op(a, b)))
}

// Or returns the member for the union of m and other.
func (m *Member) Or(other any) (*Member, error) {
	return m.binary(other, func(a, b int64) int64 { return a | b })
}

// And returns the member for the intersection of m and other.
func (m *Member) And(other any) (*Member, error) {
	return m.binary(other, func(a, b int64) int64 { return a & b })
}

// Xor returns the member for the symmetric difference of m and other.
func (m *Member) Xor(other any) (*Member, error) {
	return m.binary(other, func(a, b int64) int64 { return a ^ b })
}

// Invert returns the union of the canonical named flags that are neither
// part of m's decomposition nor overlap m. The complement is relative to
// the known flags, not to the 64-bit width.
func (m *Member) Invert() (*Member, error) {
	v, err := m.flagValue()
	if err != nil {
		return nil, err
	}

	e := m.owner
	e.mu.RLock()
	parts, _ := e.decomposeLocked(v)
	var union int64
	for _, c := range e.membersLocked() {
		n, ok := c.value.(ir.Int)
		if !ok || slices.Contains(parts, c) || int64(n)&v != 0 {
			continue
		}
		union |= int64(n)
	}
	e.mu.RUnlock()

	return e.ByValue(ir.Int(union))
}

// Has reports whether every bit of other is set in m.
func (m *Member) Has(other any) (bool, error) {
	v, err := m.flagValue()
	if err != nil {
		return false, err
	}
	o, err := m.owner.Resolve(other)
	if err != nil {
		return false, err
	}
	ov, err := o.flagValue()
	if err != nil {
		return false, err
	}
	return ov&v == ov, nil
}

// Decompose returns the members m's value is composed of, largest first.
func (m *Member) Decompose() []*Member {
	n, ok := m.value.(ir.Int)
	if !ok {
		return []*Member{m}
	}
	parts, _ := m.owner.Decompose(int64(n))
	return parts
}

// IsZero reports whether m holds the integer zero.
func (m *Member) IsZero() bool {
	n, ok := m.value.(ir.Int)
	return ok && n == 0
}
