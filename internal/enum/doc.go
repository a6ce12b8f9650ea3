// Package enum implements enumeration construction and flag composition.
//
// An Enumeration is a closed, named set of constant members. It is built
// once, in declaration order, and is append-only afterwards: AddMember and
// flag synthesis may add members, nothing ever removes or reorders them.
//
// CONSTRUCTION:
//
// Declarations are collected by a Builder and resolved in Finalize:
//  1. Auto values are produced by the configured NextValueFunc, in order,
//     each call seeing every value chosen before it
//  2. Each declaration is constructed and registered
//  3. A declaration whose value equals an earlier member becomes an alias
//     that shares the earlier member's identity
//  4. Optional checks (WithUnique) run over the finished registry
//
// Any error aborts the whole definition; no partial Enumeration is returned.
//
// LOOKUP:
//
// Value lookup tries the hashed value map, then a linear scan for values
// that cannot be map keys (tuples and records), then the missing-value hook.
// Flag kinds install a hook that synthesizes composite members on demand.
//
// CONCURRENCY:
//
// Lookups take the enumeration's read lock. Synthesis and AddMember take the
// write lock and re-check the value map before inserting, so the first
// registered member for a value is permanent. Missing-value hooks run without
// any lock held. Builders are not safe for concurrent use.
package enum
