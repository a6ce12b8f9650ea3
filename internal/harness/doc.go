// Package harness provides conformance testing for enumeration definitions.
//
// The harness compiles enumeration definitions, runs a scenario of lookups
// and flag operations against them, and records every step in a trace that
// can be compared against golden files.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	definitions:
//	  - ../definitions/catalog.cue
//	enums:                     # inline definitions, same format as *.enum.yaml
//	  Color:
//	    kind: enum
//	    members: {RED: 1, GREEN: ~}
//	enum: Color                # default target of steps
//	steps:
//	  - op: value
//	    value: 1
//	    expect: {name: RED}
//	  - op: or
//	    name: R
//	    args: [W]
//	    expect: {value: 6, named: false, string: Perm.R|W}
//	assertions:
//	  - type: names
//	    names: [RED, GREEN]
//	  - type: restore
//
// # Operations
//
//   - name, from_name: lookup by exact / case-insensitive name
//   - value, from_value: lookup by value / by name or value
//   - decompose: split an integer into flag members and uncovered bits
//   - or, and, xor, has: binary flag operations on the target member
//   - invert: flag complement of the target member
//   - from_args: union of several members
//   - add: declare a member after definition (auto when value is omitted)
//
// # Assertion Types
//
//   - names: canonical member names in declaration order
//   - bindings: every bound name, aliases included, in declaration order
//   - len: number of canonical members
//   - unique: the enumeration has no aliases
//   - restore: saving to a catalog store and restoring reproduces the registry
//
// # Deterministic Testing
//
// Enumeration and snapshot ids come from testutil.SequentialIDs and steps
// are stamped by a logical clock, so traces are identical across runs.
package harness
