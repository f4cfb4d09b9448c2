package engine

import (
	"strings"

	"github.com/roach88/quarry/internal/query"
	"github.com/roach88/quarry/internal/record"
)

// aggregate partitions rows into groups and reduces each group to one
// output row: the group-by field values plus one column per aggregation
// alias. With aggregations but no group-by fields the whole input is a
// single implicit group. Groups emit in first-seen order.
//
// Group keys are the "|"-joined string forms of the group-by values;
// values containing "|" can collide with neighbouring fields. A known
// limitation of the keying scheme, kept as-is.
func (e *Engine) aggregate(p *query.Plan, rows []record.Record) []record.Record {
	if len(p.GroupBy) == 0 {
		row := make(record.Record, len(p.Aggregations))
		for _, agg := range p.Aggregations {
			row[agg.Alias] = e.aggValue(agg, rows)
		}
		return []record.Record{row}
	}

	groups := make(map[string][]record.Record)
	var order []string
	for _, rec := range rows {
		parts := make([]string, len(p.GroupBy))
		for i, field := range p.GroupBy {
			parts[i] = record.KeyString(rec[field])
		}
		key := strings.Join(parts, "|")
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], rec)
	}

	out := make([]record.Record, 0, len(order))
	for _, key := range order {
		group := groups[key]
		row := make(record.Record, len(p.GroupBy)+len(p.Aggregations))
		for _, field := range p.GroupBy {
			row[field] = group[0][field]
		}
		for _, agg := range p.Aggregations {
			row[agg.Alias] = e.aggValue(agg, group)
		}
		out = append(out, row)
	}
	return out
}

// aggValue reduces one group under one aggregation. Every function
// ignores null/absent inputs except COUNT with no field (COUNT(*)),
// which counts rows. Unknown functions report a diagnostic and yield
// nil.
func (e *Engine) aggValue(agg query.Aggregation, group []record.Record) any {
	switch agg.Func {
	case query.AggCount:
		if agg.Field == "" {
			return len(group)
		}
		return len(fieldValues(group, agg.Field))

	case query.AggCountDistinct:
		seen := make(map[string]struct{})
		for _, v := range fieldValues(group, agg.Field) {
			seen[record.Canonical(v)] = struct{}{}
		}
		return len(seen)

	case query.AggSum:
		sum := 0.0
		for _, v := range fieldValues(group, agg.Field) {
			if f, ok := toFloat(v); ok {
				sum += f
			}
		}
		return sum

	case query.AggAvg:
		sum, n := 0.0, 0
		for _, v := range fieldValues(group, agg.Field) {
			if f, ok := toFloat(v); ok {
				sum += f
				n++
			}
		}
		if n == 0 {
			return nil
		}
		return sum / float64(n)

	case query.AggMin, query.AggMax:
		var best any
		for _, v := range fieldValues(group, agg.Field) {
			if best == nil {
				best = v
				continue
			}
			cmp := compareValues(v, best)
			if (agg.Func == query.AggMin && cmp < 0) || (agg.Func == query.AggMax && cmp > 0) {
				best = v
			}
		}
		return best

	case query.AggFirst:
		for _, v := range fieldValues(group, agg.Field) {
			return v
		}
		return nil

	case query.AggLast:
		var last any
		for _, v := range fieldValues(group, agg.Field) {
			last = v
		}
		return last

	case query.AggStringAgg:
		var parts []string
		for _, v := range fieldValues(group, agg.Field) {
			parts = append(parts, record.KeyString(v))
		}
		return strings.Join(parts, ", ")

	default:
		e.reportf(StageGroup, "unknown aggregation %q for alias %q", agg.Func, agg.Alias)
		return nil
	}
}

// fieldValues returns the non-null values of field across the group,
// in row order.
func fieldValues(group []record.Record, field string) []any {
	var out []any
	for _, rec := range group {
		if v, ok := rec.Get(field); ok && v != nil {
			out = append(out, v)
		}
	}
	return out
}
