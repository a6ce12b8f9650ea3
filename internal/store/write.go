package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/enums/internal/enum"
	"github.com/roach88/enums/internal/ir"
)

// WriteDefinition stores a definition under its content-addressed id.
// Uses ON CONFLICT(id) DO NOTHING for idempotency: writing the same
// definition twice returns the same id and inserted=false.
func (s *Store) WriteDefinition(ctx context.Context, def ir.Definition) (id string, inserted bool, err error) {
	id, err = ir.DefinitionID(def)
	if err != nil {
		return "", false, fmt.Errorf("write definition: %w", err)
	}
	body, err := marshalDefinition(def)
	if err != nil {
		return "", false, fmt.Errorf("write definition: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO definitions
		(id, name, kind, body, ir_version, engine_version, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		id,
		def.Name,
		def.Kind,
		body,
		ir.IRVersion,
		ir.EngineVersion,
		s.clock.Next(),
	)
	if err != nil {
		return "", false, fmt.Errorf("write definition: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return "", false, fmt.Errorf("write definition: rows affected: %w", err)
	}
	return id, rowsAffected > 0, nil
}

// WriteSnapshot records the declaration history of one enumeration
// instance. The definition must already be stored (foreign key constraint).
// Entries are written in one transaction; a failure leaves no snapshot.
func (s *Store) WriteSnapshot(ctx context.Context, definitionID string, instance uuid.UUID, history []enum.Entry) (Snapshot, error) {
	snap := Snapshot{
		ID:           s.ids.NewID().String(),
		DefinitionID: definitionID,
		InstanceID:   instance.String(),
		Entries:      history,
		Seq:          s.clock.Next(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("write snapshot: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots
		(id, definition_id, instance_id, entry_count, seq)
		VALUES (?, ?, ?, ?, ?)
	`,
		snap.ID,
		snap.DefinitionID,
		snap.InstanceID,
		len(history),
		snap.Seq,
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("write snapshot: insert: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_entries (snapshot_id, position, name, value)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("write snapshot: prepare: %w", err)
	}
	defer stmt.Close()

	for i, entry := range history {
		value, err := marshalValue(entry.Value)
		if err != nil {
			return Snapshot{}, fmt.Errorf("write snapshot: entry %d: %w", i, err)
		}
		name := sql.NullString{String: entry.Name, Valid: entry.Name != ""}
		if _, err := stmt.ExecContext(ctx, snap.ID, i, name, value); err != nil {
			return Snapshot{}, fmt.Errorf("write snapshot: entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Snapshot{}, fmt.Errorf("write snapshot: commit: %w", err)
	}
	return snap, nil
}

// Save stores def and a snapshot of e, the enumeration built from it.
func (s *Store) Save(ctx context.Context, def ir.Definition, e *enum.Enumeration) (Snapshot, error) {
	defID, _, err := s.WriteDefinition(ctx, def)
	if err != nil {
		return Snapshot{}, err
	}
	return s.WriteSnapshot(ctx, defID, e.ID(), e.History())
}
