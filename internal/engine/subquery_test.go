package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quarry/internal/query"
	"github.com/roach88/quarry/internal/record"
)

func subqueryTables() map[string][]record.Record {
	return map[string][]record.Record{
		"orders": {
			{"id": 100, "customer_id": 1, "total": 50},
			{"id": 101, "customer_id": 2, "total": 10},
			{"id": 102, "customer_id": 3, "total": 99},
		},
		"vips": {
			{"id": 1, "tier": "gold"},
			{"id": 3, "tier": "silver"},
		},
	}
}

func TestWhereSubqueryIn(t *testing.T) {
	e, _ := newTestEngine(subqueryTables())

	rows := e.Build("orders").
		WhereSubquery("customer_id", query.SubIn, e.Build("vips").Select("id")).
		Execute(context.Background())

	assert.Equal(t, []int{100, 102}, filterIDs(t, rows))
}

func TestWhereSubqueryNotIn(t *testing.T) {
	e, _ := newTestEngine(subqueryTables())

	rows := e.Build("orders").
		WhereSubquery("customer_id", query.SubNotIn, e.Build("vips").Select("id")).
		Execute(context.Background())

	assert.Equal(t, []int{101}, filterIDs(t, rows))
}

func TestWhereExists(t *testing.T) {
	e, _ := newTestEngine(subqueryTables())

	all := e.Build("orders").
		WhereExists(e.Build("vips")).
		Execute(context.Background())
	assert.Len(t, all, 3, "non-empty nested result keeps every outer row")

	none := e.Build("orders").
		WhereExists(e.Build("vips").Where("tier", query.OpEq, "platinum")).
		Execute(context.Background())
	assert.Empty(t, none)
}

func TestWhereNotExists(t *testing.T) {
	e, _ := newTestEngine(subqueryTables())

	rows := e.Build("orders").
		WhereSubquery("", query.SubNotExists, e.Build("vips").Where("tier", query.OpEq, "platinum")).
		Execute(context.Background())
	assert.Len(t, rows, 3)
}

func TestSubqueryFirstColumnFallbacks(t *testing.T) {
	e, _ := newTestEngine(subqueryTables())
	ctx := context.Background()

	// No selection: the lexicographically smallest key ("id") is used.
	rows := e.Build("orders").
		WhereSubquery("customer_id", query.SubIn, e.Build("vips")).
		Execute(ctx)
	assert.Equal(t, []int{100, 102}, filterIDs(t, rows))

	// Grouped nested query: the first group-by field is used.
	rows = e.Build("orders").
		WhereSubquery("customer_id", query.SubIn, e.Build("vips").GroupBy("id")).
		Execute(ctx)
	assert.Equal(t, []int{100, 102}, filterIDs(t, rows))
}

func TestSubqueryNullOuterFieldNeverMatches(t *testing.T) {
	e, _ := newTestEngine(map[string][]record.Record{
		"orders": {
			{"id": 1, "customer_id": nil},
		},
		"vips": {
			{"id": nil},
		},
	})

	rows := e.Build("orders").
		WhereSubquery("customer_id", query.SubIn, e.Build("vips").Select("id")).
		Execute(context.Background())
	assert.Empty(t, rows)

	// NOT IN also fails on a null outer field, asymmetrically with
	// plain notIn semantics.
	rows = e.Build("orders").
		WhereSubquery("customer_id", query.SubNotIn, e.Build("vips").Select("id")).
		Execute(context.Background())
	assert.Empty(t, rows)
}

func TestSubqueryChainConnectives(t *testing.T) {
	e, _ := newTestEngine(subqueryTables())

	// Two subquery conditions fold with the same shifted connective
	// chain as plain filters (both AND-linked here).
	rows := e.Build("orders").
		WhereSubquery("customer_id", query.SubIn, e.Build("vips").Select("id")).
		WhereSubquery("customer_id", query.SubNotIn,
			e.Build("vips").Where("tier", query.OpEq, "silver").Select("id")).
		Execute(context.Background())

	assert.Equal(t, []int{100}, filterIDs(t, rows))
}

func TestNilSubqueryPlanExecutesEmpty(t *testing.T) {
	e, _ := newTestEngine(subqueryTables())

	rows := e.Build("orders").
		WhereSubquery("customer_id", query.SubIn, nil).
		Execute(context.Background())
	assert.Empty(t, rows)
}

func TestUnionDeduplicates(t *testing.T) {
	e, _ := newTestEngine(map[string][]record.Record{
		"a": {{"v": 1}, {"v": 2}},
		"b": {{"v": 2}, {"v": 3}},
	})

	rows := e.Build("a").Union(e.Build("b"), false).Execute(context.Background())
	require.Len(t, rows, 3)
	assert.Equal(t, 1, rows[0]["v"])
	assert.Equal(t, 2, rows[1]["v"])
	assert.Equal(t, 3, rows[2]["v"])
}

func TestUnionAllKeepsDuplicates(t *testing.T) {
	e, _ := newTestEngine(map[string][]record.Record{
		"a": {{"v": 1}, {"v": 2}},
		"b": {{"v": 2}, {"v": 3}},
	})

	rows := e.Build("a").Union(e.Build("b"), true).Execute(context.Background())
	assert.Len(t, rows, 4)
}

func TestUnionDeduplicationIsStructural(t *testing.T) {
	e, _ := newTestEngine(map[string][]record.Record{
		"a": {{"v": int64(2)}},
		"b": {{"v": float64(2)}},
	})

	// int64(2) and float64(2) are the same row canonically.
	rows := e.Build("a").Union(e.Build("b"), false).Execute(context.Background())
	assert.Len(t, rows, 1)
}

func TestMixedUnionEntriesDedupePerStep(t *testing.T) {
	e, _ := newTestEngine(map[string][]record.Record{
		"a": {{"v": 1}},
		"b": {{"v": 1}},
		"c": {{"v": 1}},
	})

	// ALL first (duplicate kept), then a plain union dedupes everything
	// accumulated so far.
	rows := e.Build("a").
		Union(e.Build("b"), true).
		Union(e.Build("c"), false).
		Execute(context.Background())
	assert.Len(t, rows, 1)
}

func TestUnionAppliesAfterPagination(t *testing.T) {
	e, _ := newTestEngine(map[string][]record.Record{
		"a": {{"v": 1}, {"v": 2}, {"v": 3}},
		"b": {{"v": 9}},
	})

	// The limit bounds only the main pipeline; union rows land after.
	rows := e.Build("a").Limit(1).Union(e.Build("b"), true).Execute(context.Background())
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0]["v"])
	assert.Equal(t, 9, rows[1]["v"])
}
