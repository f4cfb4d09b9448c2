package engine

import (
	"context"

	"github.com/roach88/quarry/internal/query"
	"github.com/roach88/quarry/internal/record"
)

// applyJoins runs the plan's joins in declaration order. The output of
// join k becomes the left input of join k+1.
func (e *Engine) applyJoins(ctx context.Context, p *query.Plan, rows []record.Record) []record.Record {
	for _, spec := range p.Joins {
		rows = e.joinOne(ctx, spec, rows)
	}
	return rows
}

// joinOne is an O(n·m) nested-loop equality join of the current rows
// (left) against a named table (right).
//
// For each left record, every matching right record produces a separate
// output row with the right record attached under the synthetic key
// "{table}_{joinField}". A left record with zero matches survives (with
// the key set to nil) only for LEFT and FULL joins. For RIGHT and FULL
// joins, right records that matched no left record are appended as
// standalone rows carrying only the synthetic key.
//
// Only equality joins are supported; no range or composite keys.
func (e *Engine) joinOne(ctx context.Context, spec query.JoinSpec, left []record.Record) []record.Record {
	right := e.fetch(ctx, spec.Table)
	key := spec.SyntheticKey()

	keepUnmatchedLeft := spec.Type == query.JoinLeft || spec.Type == query.JoinFull
	keepUnmatchedRight := spec.Type == query.JoinRight || spec.Type == query.JoinFull

	switch spec.Type {
	case query.JoinInner, query.JoinLeft, query.JoinRight, query.JoinFull:
	default:
		e.reportf(StageJoin, "unknown join type %q on table %q; treating as inner", spec.Type, spec.Table)
	}

	rightMatched := make([]bool, len(right))
	var out []record.Record

	for _, lrec := range left {
		lval, lok := lrec.Get(spec.LocalField)
		matched := false

		if lok && lval != nil {
			for i, rrec := range right {
				rval, rok := rrec.Get(spec.JoinField)
				if !rok || rval == nil || !strictEqual(lval, rval) {
					continue
				}
				matched = true
				rightMatched[i] = true

				row := lrec.Clone()
				row[key] = rrec.Clone()
				out = append(out, row)
			}
		}

		if !matched && keepUnmatchedLeft {
			row := lrec.Clone()
			row[key] = nil
			out = append(out, row)
		}
	}

	if keepUnmatchedRight {
		for i, rrec := range right {
			if rightMatched[i] {
				continue
			}
			out = append(out, record.Record{key: rrec.Clone()})
		}
	}

	return out
}
