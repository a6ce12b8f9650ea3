// Package ir provides the value model and the serializable definition form
// shared by the enumeration engine, the compilers and the catalog store.
//
// All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float member values - numbers are int64
//   - Array and Object values are unhashable and compared with Equal
//   - All JSON tags use snake_case
//   - Content identity always goes through MarshalCanonical
package ir
