// Package engine executes declarative query plans over in-memory
// collections of schema-less records.
//
// The engine is the heart of quarry - it builds plans through a fluent
// builder, fetches tables from a store.Provider, and drives the
// multi-stage pipeline to a result.
//
// PIPELINE ORDER:
//
// Execute snapshots the builder state into an immutable plan and runs:
//
//	Join → Filter(+Subquery) → Group/Aggregate(+Having) → Sort →
//	Paginate → Calculated Fields → Field Projection → Union
//
// Each stage consumes the previous stage's record sequence and is pure:
// no shared mutable state crosses stages except the defensive copies
// taken at pipeline entry. The store's own arrays are never observably
// mutated - in particular, sorting always operates on an owned copy.
//
// EXECUTION MODEL:
//
// Execution is synchronous and single-threaded; Execute runs the whole
// pipeline to completion on the calling goroutine. Nested queries
// (subqueries, unions) recurse on the same call stack, bounded by a
// fixed depth limit so a self-referential plan degrades to an empty
// result instead of exhausting the stack.
//
// ERROR PHILOSOPHY:
//
// Fail soft. Data-shape problems never abort the pipeline: unknown
// operators evaluate false, unknown conversions pass values through,
// invalid regexes and unparseable dates are false, and a panicking
// calculated-field callback yields nil for that field only. All such
// events are reported on the engine's diagnostic sink, never thrown.
package engine
