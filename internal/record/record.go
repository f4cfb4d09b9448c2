package record

import (
	"slices"
	"time"
)

// Record is a schema-less row: an untyped mapping from field name to
// value. Any record may have any shape.
type Record map[string]any

// Get returns the value for field and whether the field is present.
// A present field holding nil reports (nil, true).
func (r Record) Get(field string) (any, bool) {
	v, ok := r[field]
	return v, ok
}

// SortedKeys returns the record's field names in ascending order.
// Used wherever deterministic iteration over a record is required.
func (r Record) SortedKeys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Clone returns a deep copy of the record. Nested objects and arrays are
// copied recursively, so mutating the clone never touches the original.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies a record value. Scalars (strings, numbers,
// bools, time.Time, nil) are returned as-is.
func CloneValue(v any) any {
	switch val := v.(type) {
	case Record:
		return val.Clone()
	case map[string]any:
		return Record(val).Clone()
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = CloneValue(elem)
		}
		return out
	default:
		return v
	}
}

// CloneTable deep-copies a sequence of records. The engine calls this at
// pipeline entry so the store's own arrays are never observably mutated
// (in particular by sorting).
func CloneTable(rows []Record) []Record {
	out := make([]Record, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}

// Equal reports structural equality of two records, via canonical
// serialization. Field order is irrelevant; string values are compared
// NFC-normalized.
func Equal(a, b Record) bool {
	return Canonical(a) == Canonical(b)
}

// IsTime reports whether v is a time.Time.
func IsTime(v any) bool {
	_, ok := v.(time.Time)
	return ok
}
