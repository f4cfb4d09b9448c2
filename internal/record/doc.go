// Package record defines the schema-less record model shared by every
// other internal package.
//
// This package contains the data model only. All other internal packages
// import record; record imports nothing internal. This keeps it the
// foundational layer with no circular dependencies.
//
// A Record is an untyped field→value mapping. Field names are never
// declared ahead of time; any record may have any shape. Values are the
// JSON-ish set: string, numeric (any Go integer or float), bool,
// time.Time, nil, []any, and nested map[string]any / Record.
//
// Canonical serialization (sorted keys, NFC-normalized strings) provides
// the structural row equality used for UNION deduplication and
// COUNT_DISTINCT.
package record
