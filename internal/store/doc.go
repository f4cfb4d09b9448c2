// Package store supplies named collections of records to the engine.
//
// The Provider contract is deliberately small: GetTable returns the
// rows of a named table, and a missing table is an empty sequence, not
// an error. The engine treats the store as an external collaborator -
// it never mutates what a provider returns (it deep-copies at pipeline
// entry) and never assumes exclusive ownership.
//
// Three providers ship:
//   - Memory: the primary backend; plain in-process tables.
//   - SQLite: loads tables from a SQLite database file.
//   - Pebble: loads JSON-encoded rows from a pebble key-value store.
package store
