package engine

import (
	"context"

	"github.com/roach88/quarry/internal/query"
	"github.com/roach88/quarry/internal/record"
)

// applySubqueries filters rows through the plan's subquery condition
// chain, folded with the same shifted left-fold as plain filters.
//
// Each nested plan is re-executed independently for every outer record:
// no caching, no correlation. The nested query receives no outer-record
// context, so its result set is identical across outer records - the
// re-execution is kept anyway to preserve the original evaluation
// model (and its cost profile).
func (e *Engine) applySubqueries(ctx context.Context, p *query.Plan, rows []record.Record, depth int) []record.Record {
	if len(p.Subqueries) == 0 {
		return rows
	}

	out := make([]record.Record, 0, len(rows))
	for _, rec := range rows {
		result := true
		carry := query.ConnNone
		for _, sq := range p.Subqueries {
			nested := e.run(ctx, sq.Plan, depth+1)
			cond := e.evalSubquery(rec, sq, nested)
			if carry == query.ConnOr {
				result = result || cond
			} else {
				result = result && cond
			}
			carry = sq.Connective
		}
		if result {
			out = append(out, rec)
		}
	}
	return out
}

// evalSubquery tests one outer record against a nested result set.
func (e *Engine) evalSubquery(rec record.Record, sq query.Subquery, nested []record.Record) bool {
	switch sq.Op {
	case query.SubExists:
		return len(nested) > 0
	case query.SubNotExists:
		return len(nested) == 0

	case query.SubIn, query.SubNotIn:
		v, ok := rec.Get(sq.Field)
		if !ok || v == nil {
			return false
		}
		found := false
		for _, row := range nested {
			if strictEqual(v, firstColumn(sq.Plan, row)) {
				found = true
				break
			}
		}
		if sq.Op == query.SubNotIn {
			return !found
		}
		return found

	default:
		e.reportf(StageSubquery, "unknown subquery operator %q", sq.Op)
		return false
	}
}

// firstColumn picks the comparison value from a schema-less nested row.
// Preference order: the nested plan's first projected field, first
// group-by field, first aggregation alias, then the row's
// lexicographically smallest key.
func firstColumn(p *query.Plan, row record.Record) any {
	if p != nil {
		if len(p.Selection) > 0 {
			return row[p.Selection[0]]
		}
		if len(p.GroupBy) > 0 {
			return row[p.GroupBy[0]]
		}
		if len(p.Aggregations) > 0 {
			return row[p.Aggregations[0].Alias]
		}
	}
	keys := row.SortedKeys()
	if len(keys) == 0 {
		return nil
	}
	return row[keys[0]]
}

// applyUnions concatenates each union entry's full result after the
// main pipeline. UNION ALL preserves duplicates; plain UNION
// deduplicates the combined result by canonical (structural) row
// equality - an O(row) serialization per comparison.
func (e *Engine) applyUnions(ctx context.Context, p *query.Plan, rows []record.Record, depth int) []record.Record {
	for _, entry := range p.Unions {
		nested := e.run(ctx, entry.Plan, depth+1)
		rows = append(rows, nested...)
		if !entry.All {
			rows = dedupe(rows)
		}
	}
	return rows
}

// dedupe keeps the first occurrence of each structurally distinct row.
func dedupe(rows []record.Record) []record.Record {
	seen := make(map[string]struct{}, len(rows))
	out := make([]record.Record, 0, len(rows))
	for _, rec := range rows {
		key := record.Canonical(rec)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}
