package engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/roach88/quarry/internal/query"
	"github.com/roach88/quarry/internal/record"
	"github.com/roach88/quarry/internal/store"
)

// maxDepth bounds subquery/union recursion. A plan nested (or
// self-referential) beyond this yields an empty result plus a
// diagnostic instead of exhausting the stack.
const maxDepth = 32

// Engine executes query plans against a record store. It holds no
// per-query state; one engine serves any number of sequential queries.
type Engine struct {
	store store.Provider
	diag  Sink
}

// Option configures an Engine.
type Option func(*Engine)

// WithSink installs a diagnostic sink. The default logs via slog.
func WithSink(s Sink) Option {
	return func(e *Engine) { e.diag = s }
}

// New creates an engine over the given record store.
func New(p store.Provider, opts ...Option) *Engine {
	e := &Engine{
		store: p,
		diag:  logSink{logger: slog.Default()},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// fetch loads a table and deep-copies it. Absence and store errors both
// produce an empty sequence; errors are additionally reported. The copy
// guarantees the store's own arrays are never observably mutated by
// later stages (sorting in particular).
func (e *Engine) fetch(ctx context.Context, table string) []record.Record {
	rows, err := e.store.GetTable(ctx, table)
	if err != nil {
		e.reportf(StageStore, "table %q: %v", table, err)
		return nil
	}
	return record.CloneTable(rows)
}

// FindWhere is the AND-equality shortcut: all given fields must equal
// their values.
func (e *Engine) FindWhere(ctx context.Context, table string, conditions map[string]any) []record.Record {
	q := e.Build(table)
	// Deterministic filter order regardless of map iteration.
	for _, field := range record.Record(conditions).SortedKeys() {
		q.Where(field, query.OpEq, conditions[field])
	}
	return q.Execute(ctx)
}

// FindOneWhere returns the first FindWhere match, or nil.
func (e *Engine) FindOneWhere(ctx context.Context, table string, conditions map[string]any) record.Record {
	rows := e.FindWhere(ctx, table, conditions)
	if len(rows) == 0 {
		return nil
	}
	return rows[0]
}

// Search scans every field value of every record in the table for a
// case-insensitive substring match against term.
func (e *Engine) Search(ctx context.Context, table, term string) []record.Record {
	needle := strings.ToLower(term)
	var out []record.Record
	for _, rec := range e.fetch(ctx, table) {
		for _, k := range rec.SortedKeys() {
			if strings.Contains(strings.ToLower(record.KeyString(rec[k])), needle) {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}
