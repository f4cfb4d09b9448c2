package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/roach88/quarry/internal/query"
	"github.com/roach88/quarry/internal/record"
)

// Query accumulates a declarative plan through chained calls. Every
// builder method mutates and returns the same instance; no call fails
// for malformed input - invalid states surface downstream as empty or
// nil results, never as construction-time errors.
//
// A Query is created per logical query via Engine.Build, mutated in
// place, and discarded after Execute or Explain.
type Query struct {
	engine *Engine
	plan   *query.Plan
}

// Build starts a query over the named table.
func (e *Engine) Build(table string) *Query {
	return &Query{engine: e, plan: query.NewPlan(table)}
}

// Where adds an AND-linked condition to the filter chain.
func (q *Query) Where(field string, op query.Operator, value any) *Query {
	q.plan.Filters = append(q.plan.Filters, query.Filter{
		Field:      field,
		Op:         op,
		Value:      value,
		Connective: chainConnective(len(q.plan.Filters), false),
	})
	return q
}

// OrWhere adds an OR-linked condition to the filter chain.
//
// Note the shifted fold: the OR recorded here governs how the NEXT
// condition combines, not this one. See query.Connective.
func (q *Query) OrWhere(field string, op query.Operator, value any) *Query {
	q.plan.Filters = append(q.plan.Filters, query.Filter{
		Field:      field,
		Op:         op,
		Value:      value,
		Connective: chainConnective(len(q.plan.Filters), true),
	})
	return q
}

// OrderBy appends a sort key. Keys apply in declaration order as
// tie-breakers.
func (q *Query) OrderBy(field string, dir query.Direction) *Query {
	if dir == "" {
		dir = query.Asc
	}
	q.plan.Sorts = append(q.plan.Sorts, query.SortKey{Field: field, Direction: dir})
	return q
}

// Limit bounds the result window. Negative values mean unbounded.
func (q *Query) Limit(n int) *Query {
	q.plan.Limit = n
	return q
}

// Offset sets the result window start.
func (q *Query) Offset(n int) *Query {
	if n < 0 {
		n = 0
	}
	q.plan.Offset = n
	return q
}

// Select restricts output to the named fields. Ignored once the plan
// groups or aggregates.
func (q *Query) Select(fields ...string) *Query {
	q.plan.Selection = append(q.plan.Selection, fields...)
	return q
}

// Join adds an equality join against a named table. Joins apply in
// declaration order, each consuming the previous stage's output as its
// new left side.
func (q *Query) Join(table, joinField, localField string, joinType query.JoinType) *Query {
	if joinType == "" {
		joinType = query.JoinInner
	}
	q.plan.Joins = append(q.plan.Joins, query.JoinSpec{
		Table:      table,
		JoinField:  joinField,
		LocalField: localField,
		Type:       joinType,
	})
	return q
}

// GroupBy adds grouping fields.
func (q *Query) GroupBy(fields ...string) *Query {
	q.plan.GroupBy = append(q.plan.GroupBy, fields...)
	return q
}

// Aggregate adds an aggregation stored under alias. An empty field with
// AggCount counts rows (COUNT(*)).
func (q *Query) Aggregate(fn query.AggFunc, field, alias string) *Query {
	q.plan.Aggregations = append(q.plan.Aggregations, query.Aggregation{
		Func:  fn,
		Field: field,
		Alias: alias,
	})
	return q
}

// Having adds an AND-linked condition evaluated against aggregated
// rows; field names resolve to aggregation aliases.
func (q *Query) Having(field string, op query.Operator, value any) *Query {
	q.plan.Having = append(q.plan.Having, query.Filter{
		Field:      field,
		Op:         op,
		Value:      value,
		Connective: chainConnective(len(q.plan.Having), false),
	})
	return q
}

// WhereSubquery adds a subquery condition (IN / NOT IN / EXISTS /
// NOT EXISTS) over a nested query.
func (q *Query) WhereSubquery(field string, op query.SubqueryOp, sub *Query) *Query {
	q.plan.Subqueries = append(q.plan.Subqueries, query.Subquery{
		Field:      field,
		Op:         op,
		Plan:       subPlan(sub),
		Connective: chainConnective(len(q.plan.Subqueries), false),
	})
	return q
}

// WhereExists is shorthand for WhereSubquery with EXISTS.
func (q *Query) WhereExists(sub *Query) *Query {
	return q.WhereSubquery("", query.SubExists, sub)
}

// Union appends a nested query's results after the main pipeline. With
// all=false the combined result is deduplicated by structural row
// equality; with all=true duplicates are preserved.
func (q *Query) Union(sub *Query, all bool) *Query {
	q.plan.Unions = append(q.plan.Unions, query.UnionEntry{Plan: subPlan(sub), All: all})
	return q
}

// AddCase declares a CASE calculated field: ordered predicate→result
// branches, first match wins, def as fallback. Use query.FieldRef for
// row-derived results or defaults.
func (q *Query) AddCase(name string, branches []query.CaseBranch, def any) *Query {
	q.plan.Calculated = append(q.plan.Calculated, query.CalculatedField{
		Name: name,
		Expr: query.CaseExpr{Branches: branches, Default: def},
	})
	return q
}

// AddCalculatedField declares a FUNCTION calculated field backed by a
// row→value callback. A panicking callback yields nil for the field.
func (q *Query) AddCalculatedField(name string, fn func(record.Record) any) *Query {
	q.plan.Calculated = append(q.plan.Calculated, query.CalculatedField{
		Name: name,
		Expr: query.FuncExpr{Fn: fn},
	})
	return q
}

// AddConvertedField declares a CONVERT calculated field applying one
// named conversion to a source field.
func (q *Query) AddConvertedField(name, sourceField string, fn query.ConvertFunc, params query.ConvertParams) *Query {
	q.plan.Calculated = append(q.plan.Calculated, query.CalculatedField{
		Name: name,
		Expr: query.ConvertExpr{SourceField: sourceField, Fn: fn, Params: params},
	})
	return q
}

// EstimateComplexity buckets the current plan's weighted feature count.
func (q *Query) EstimateComplexity() query.Complexity {
	return q.plan.EstimateComplexity()
}

// Explain snapshots the accumulated plan. The snapshot is deep-copied
// and stamped with a fresh ID; later builder calls do not affect it.
func (q *Query) Explain() *query.Plan {
	p := q.plan.Clone()
	p.ID = uuid.Must(uuid.NewV7()).String()
	return p
}

// Execute snapshots the plan and drives the full pipeline to
// completion, synchronously, on the calling goroutine.
func (q *Query) Execute(ctx context.Context) []record.Record {
	return q.engine.ExecutePlan(ctx, q.Explain())
}

// subPlan snapshots a nested builder without stamping an ID; nil
// builders become nil plans, which execute as empty tables.
func subPlan(sub *Query) *query.Plan {
	if sub == nil {
		return nil
	}
	return sub.plan.Clone()
}

// chainConnective implements the shifted connective placement shared
// with query.Def: first condition none, later ones OR or AND by how
// they were added.
func chainConnective(index int, or bool) query.Connective {
	if index == 0 {
		return query.ConnNone
	}
	if or {
		return query.ConnOr
	}
	return query.ConnAnd
}
