package testutil

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// SequentialIDs generates predictable UUIDs for tests and scenarios.
//
// The n-th call returns 00000000-0000-7000-8000-<n as 12 decimal digits>,
// a valid version 7 layout, so ids in golden traces never change between runs.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu  sync.Mutex
	seq int64
}

// NewSequentialIDs creates a generator whose first id ends in ...000000000001.
func NewSequentialIDs() *SequentialIDs {
	return &SequentialIDs{}
}

// NewID returns the next id in sequence.
//
// Implements enum.IDGenerator.
func (g *SequentialIDs) NewID() uuid.UUID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return SequentialID(g.seq)
}

// Count returns how many ids were generated since the last Reset.
func (g *SequentialIDs) Count() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence. The next call to NewID returns SequentialID(1).
func (g *SequentialIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}

// SequentialID returns the n-th id of a SequentialIDs sequence.
func SequentialID(n int64) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-7000-8000-%012d", n))
}

// FixedID returns the same id on every call.
//
// Useful when every enumeration in a scenario should share one id, e.g. when
// comparing catalog snapshots taken from independent runs.
//
// Thread-safety: FixedID is stateless and safe for concurrent use.
type FixedID uuid.UUID

// NewID returns the fixed id.
func (f FixedID) NewID() uuid.UUID {
	return uuid.UUID(f)
}
