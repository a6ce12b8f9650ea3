package store

import (
	"context"
	"fmt"

	"github.com/roach88/enums/internal/enum"
)

// Restore rebuilds the enumeration captured by a snapshot. The registry
// comes back with the same names, aliases and synthesized members, in the
// same order. opts are passed to enum.Rebuild (logger, id generator).
func (s *Store) Restore(ctx context.Context, snapshotID string, opts ...enum.Option) (*enum.Enumeration, error) {
	snap, err := s.ReadSnapshot(ctx, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", snapshotID, err)
	}
	def, err := s.ReadDefinition(ctx, snap.DefinitionID)
	if err != nil {
		return nil, fmt.Errorf("restore %s: definition %s: %w", snapshotID, snap.DefinitionID, err)
	}
	e, err := enum.Rebuild(def, snap.Entries, opts...)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", snapshotID, err)
	}
	return e, nil
}

// RestoreLatest rebuilds the newest snapshot of the newest definition named
// name. Without any snapshot, the enumeration is built from the definition.
func (s *Store) RestoreLatest(ctx context.Context, name string, opts ...enum.Option) (*enum.Enumeration, error) {
	defID, def, err := s.LatestDefinition(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", name, err)
	}
	snaps, err := s.ListSnapshots(ctx, defID)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", name, err)
	}
	if len(snaps) == 0 {
		return enum.FromDefinition(def, opts...)
	}
	return s.Restore(ctx, snaps[len(snaps)-1].ID, opts...)
}
