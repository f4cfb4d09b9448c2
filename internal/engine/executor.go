package engine

import (
	"context"

	"github.com/roach88/quarry/internal/query"
	"github.com/roach88/quarry/internal/record"
)

// ExecutePlan runs a plan through the full pipeline and returns the
// result rows. The plan is treated as immutable; pass the snapshot from
// Explain (or a Def-derived plan).
func (e *Engine) ExecutePlan(ctx context.Context, p *query.Plan) []record.Record {
	return e.run(ctx, p, 0)
}

// run is the pipeline driver. depth tracks subquery/union recursion.
//
// Stage order is fixed: Join → Filter(+Subquery) → Group/Aggregate
// (+Having) → Sort → Paginate → Calculated → Projection → Union.
func (e *Engine) run(ctx context.Context, p *query.Plan, depth int) []record.Record {
	if p == nil {
		return nil
	}
	if depth > maxDepth {
		e.reportf(StageSubquery, "query nesting exceeds depth %d; returning empty result", maxDepth)
		return nil
	}

	rows := e.fetch(ctx, p.Table)
	rows = e.applyJoins(ctx, p, rows)
	rows = e.applyFilters(p.Filters, rows, StageFilter)
	rows = e.applySubqueries(ctx, p, rows, depth)

	grouped := p.Grouped()
	if grouped {
		rows = e.aggregate(p, rows)
		rows = e.applyFilters(p.Having, rows, StageGroup)
	}

	rows = e.sortRows(rows, p.Sorts)
	rows = paginate(rows, p.Offset, p.Limit)
	rows = e.applyCalculated(p.Calculated, rows)

	// Grouping suppresses plain field projection.
	if !grouped {
		rows = project(rows, p.Selection)
	}

	rows = e.applyUnions(ctx, p, rows, depth)
	return rows
}

// project restricts rows to the selected fields. Fields absent from a
// row are simply omitted from its projection.
func project(rows []record.Record, selection []string) []record.Record {
	if len(selection) == 0 {
		return rows
	}
	out := make([]record.Record, len(rows))
	for i, rec := range rows {
		slim := make(record.Record, len(selection))
		for _, field := range selection {
			if v, ok := rec.Get(field); ok {
				slim[field] = v
			}
		}
		out[i] = slim
	}
	return out
}
