package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/enums/internal/enum"
	"github.com/roach88/enums/internal/ir"
)

// DefinitionRecord describes a stored definition without its body.
type DefinitionRecord struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Kind          string `json:"kind"`
	IRVersion     string `json:"ir_version"`
	EngineVersion string `json:"engine_version"`
	Seq           int64  `json:"seq"`
}

// Snapshot is the recorded declaration history of one enumeration instance.
type Snapshot struct {
	ID           string       `json:"id"`
	DefinitionID string       `json:"definition_id"`
	InstanceID   string       `json:"instance_id"`
	Entries      []enum.Entry `json:"-"`
	Seq          int64        `json:"seq"`
}

// ReadDefinition retrieves a definition by id.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadDefinition(ctx context.Context, id string) (ir.Definition, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `
		SELECT body FROM definitions WHERE id = ?
	`, id).Scan(&body)
	if err != nil {
		return ir.Definition{}, err
	}
	return unmarshalDefinition(body)
}

// LatestDefinition retrieves the most recently stored definition with the
// given enumeration name. Returns sql.ErrNoRows if none exists.
func (s *Store) LatestDefinition(ctx context.Context, name string) (string, ir.Definition, error) {
	var id, body string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, body FROM definitions
		WHERE name = ?
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT 1
	`, name).Scan(&id, &body)
	if err != nil {
		return "", ir.Definition{}, err
	}
	def, err := unmarshalDefinition(body)
	if err != nil {
		return "", ir.Definition{}, err
	}
	return id, def, nil
}

// ListDefinitions returns every stored definition ordered by seq, id.
// Returns an empty slice (not nil) for an empty catalog.
func (s *Store) ListDefinitions(ctx context.Context) ([]DefinitionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, kind, ir_version, engine_version, seq
		FROM definitions
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query definitions: %w", err)
	}
	defer rows.Close()

	records := []DefinitionRecord{}
	for rows.Next() {
		var r DefinitionRecord
		if err := rows.Scan(&r.ID, &r.Name, &r.Kind, &r.IRVersion, &r.EngineVersion, &r.Seq); err != nil {
			return nil, fmt.Errorf("scan definition: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate definitions: %w", err)
	}
	return records, nil
}

// ReadSnapshot retrieves a snapshot and its entries by id.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadSnapshot(ctx context.Context, id string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, definition_id, instance_id, seq
		FROM snapshots
		WHERE id = ?
	`, id)
	return s.scanSnapshot(ctx, row)
}

// LatestSnapshot retrieves the most recent snapshot of a definition.
// Returns sql.ErrNoRows if the definition has none.
func (s *Store) LatestSnapshot(ctx context.Context, definitionID string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, definition_id, instance_id, seq
		FROM snapshots
		WHERE definition_id = ?
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT 1
	`, definitionID)
	return s.scanSnapshot(ctx, row)
}

// ListSnapshots returns the snapshots of a definition ordered by seq, id.
// Entries are not loaded; use ReadSnapshot for those.
func (s *Store) ListSnapshots(ctx context.Context, definitionID string) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, definition_id, instance_id, seq
		FROM snapshots
		WHERE definition_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, definitionID)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	snaps := []Snapshot{}
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.DefinitionID, &snap.InstanceID, &snap.Seq); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snaps, nil
}

func (s *Store) scanSnapshot(ctx context.Context, row *sql.Row) (Snapshot, error) {
	var snap Snapshot
	if err := row.Scan(&snap.ID, &snap.DefinitionID, &snap.InstanceID, &snap.Seq); err != nil {
		return Snapshot{}, err
	}
	entries, err := s.readEntries(ctx, snap.ID)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Entries = entries
	return snap, nil
}

func (s *Store) readEntries(ctx context.Context, snapshotID string) ([]enum.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, value
		FROM snapshot_entries
		WHERE snapshot_id = ?
		ORDER BY position ASC
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("query snapshot entries: %w", err)
	}
	defer rows.Close()

	entries := []enum.Entry{}
	for rows.Next() {
		var (
			name sql.NullString
			data string
		)
		if err := rows.Scan(&name, &data); err != nil {
			return nil, fmt.Errorf("scan snapshot entry: %w", err)
		}
		value, err := unmarshalValue(data)
		if err != nil {
			return nil, err
		}
		entries = append(entries, enum.Entry{Name: name.String, Value: value})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot entries: %w", err)
	}
	return entries, nil
}
