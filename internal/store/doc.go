// Package store provides SQLite-backed durable storage for enumeration
// catalogs.
//
// The store keeps two append-only records:
//   - Definitions: compiled ir.Definition bodies, content-addressed by
//     ir.DefinitionID so that writing the same definition twice is a no-op
//   - Snapshots: the declaration history of a live enumeration, including
//     aliases, promotions and members synthesized by flag lookups
//
// Restore replays a snapshot through enum.Rebuild and yields a registry
// identical to the one captured.
//
// # Ordering
//
// Every record is stamped with seq from a logical Clock, never a timestamp.
// Queries order by seq ASC, id ASC COLLATE BINARY so results are identical
// across runs.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
