package enum

import (
	"fmt"
	"strings"
)

// Alias is a name bound to a member whose canonical name differs.
type Alias struct {
	Name      string
	Canonical string
}

// Aliases returns every alias in declaration order.
func (e *Enumeration) Aliases() []Alias {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []Alias
	for _, n := range e.order {
		if m := e.byName[n]; m.name != n {
			out = append(out, Alias{Name: n, Canonical: m.name})
		}
	}
	return out
}

// EnsureUnique fails with DUPLICATE_VALUE when any declaration became an alias.
func EnsureUnique(e *Enumeration) error {
	aliases := e.Aliases()
	if len(aliases) == 0 {
		return nil
	}
	details := make([]string, len(aliases))
	for i, a := range aliases {
		details[i] = a.Name + " -> " + a.Canonical
	}
	return &Error{
		Code:    ErrCodeDuplicateValue,
		Enum:    e.name,
		Message: fmt.Sprintf("duplicates found: %s", strings.Join(details, ", ")),
	}
}
