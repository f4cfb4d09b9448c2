package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quarry/internal/query"
	"github.com/roach88/quarry/internal/record"
)

func orderTable() []record.Record {
	return []record.Record{
		{"id": 1, "customer": "alice", "total": 10, "status": "paid"},
		{"id": 2, "customer": "bob", "total": 20, "status": "paid"},
		{"id": 3, "customer": "alice", "total": 5, "status": "open"},
		{"id": 4, "customer": "carol", "total": nil, "status": "paid"},
		{"id": 5, "customer": "alice", "total": 25, "status": "paid"},
	}
}

func TestGroupByFirstSeenOrder(t *testing.T) {
	e, _ := newTestEngine(map[string][]record.Record{"orders": orderTable()})

	rows := e.Build("orders").
		GroupBy("customer").
		Aggregate(query.AggCount, "", "n").
		Execute(context.Background())

	require.Len(t, rows, 3)
	assert.Equal(t, "alice", rows[0]["customer"])
	assert.Equal(t, "bob", rows[1]["customer"])
	assert.Equal(t, "carol", rows[2]["customer"])
	assert.Equal(t, 3, rows[0]["n"])
}

func TestImplicitSingleGroup(t *testing.T) {
	e, _ := newTestEngine(map[string][]record.Record{"orders": orderTable()})

	rows := e.Build("orders").
		Aggregate(query.AggCount, "", "n").
		Aggregate(query.AggSum, "total", "revenue").
		Execute(context.Background())

	require.Len(t, rows, 1)
	assert.Equal(t, 5, rows[0]["n"])
	assert.Equal(t, 60.0, rows[0]["revenue"])
}

func TestAggregationsIgnoreNulls(t *testing.T) {
	e, _ := newTestEngine(map[string][]record.Record{"orders": orderTable()})

	rows := e.Build("orders").
		Aggregate(query.AggCount, "total", "with_total").
		Aggregate(query.AggAvg, "total", "avg_total").
		Aggregate(query.AggMin, "total", "min_total").
		Aggregate(query.AggMax, "total", "max_total").
		Execute(context.Background())

	require.Len(t, rows, 1)
	// carol's nil total is excluded everywhere; COUNT(field) skips it.
	assert.Equal(t, 4, rows[0]["with_total"])
	assert.Equal(t, 15.0, rows[0]["avg_total"])
	assert.Equal(t, 5, rows[0]["min_total"])
	assert.Equal(t, 25, rows[0]["max_total"])
}

func TestAvgOfNoValuesIsNil(t *testing.T) {
	e, _ := newTestEngine(map[string][]record.Record{
		"empty": {{"id": 1, "v": nil}},
	})

	rows := e.Build("empty").Aggregate(query.AggAvg, "v", "avg").Execute(context.Background())
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0]["avg"])
}

func TestCountDistinct(t *testing.T) {
	e, _ := newTestEngine(map[string][]record.Record{
		"visits": {
			{"user": "a"},
			{"user": "b"},
			{"user": "a"},
			{"user": nil},
		},
	})

	rows := e.Build("visits").Aggregate(query.AggCountDistinct, "user", "uniques").Execute(context.Background())
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0]["uniques"])
}

func TestCountDistinctNormalizesNumericWidths(t *testing.T) {
	e, _ := newTestEngine(map[string][]record.Record{
		"vals": {
			{"v": int64(15)},
			{"v": float64(15)},
			{"v": 16},
		},
	})

	rows := e.Build("vals").Aggregate(query.AggCountDistinct, "v", "uniques").Execute(context.Background())
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0]["uniques"])
}

func TestFirstLastStringAgg(t *testing.T) {
	e, _ := newTestEngine(map[string][]record.Record{"orders": orderTable()})

	rows := e.Build("orders").
		GroupBy("customer").
		Aggregate(query.AggFirst, "id", "first_id").
		Aggregate(query.AggLast, "id", "last_id").
		Aggregate(query.AggStringAgg, "status", "statuses").
		Execute(context.Background())

	require.Len(t, rows, 3)
	assert.Equal(t, 1, rows[0]["first_id"])
	assert.Equal(t, 5, rows[0]["last_id"])
	assert.Equal(t, "paid, open, paid", rows[0]["statuses"])
}

func TestMultiFieldGroupKey(t *testing.T) {
	e, _ := newTestEngine(map[string][]record.Record{"orders": orderTable()})

	rows := e.Build("orders").
		GroupBy("customer", "status").
		Aggregate(query.AggCount, "", "n").
		Execute(context.Background())

	// alice/paid, bob/paid, alice/open, carol/paid.
	require.Len(t, rows, 4)
	assert.Equal(t, "alice", rows[0]["customer"])
	assert.Equal(t, "paid", rows[0]["status"])
	assert.Equal(t, 2, rows[0]["n"])
}

func TestGroupByWithoutAggregations(t *testing.T) {
	e, _ := newTestEngine(map[string][]record.Record{"orders": orderTable()})

	rows := e.Build("orders").GroupBy("status").Execute(context.Background())

	// One row per distinct status, carrying only the group field.
	require.Len(t, rows, 2)
	assert.True(t, record.Equal(record.Record{"status": "paid"}, rows[0]))
	assert.True(t, record.Equal(record.Record{"status": "open"}, rows[1]))
}

func TestHavingFiltersGroups(t *testing.T) {
	e, _ := newTestEngine(map[string][]record.Record{"orders": orderTable()})

	rows := e.Build("orders").
		GroupBy("customer").
		Aggregate(query.AggSum, "total", "revenue").
		Having("revenue", query.OpGt, 15).
		Execute(context.Background())

	require.Len(t, rows, 2)
	assert.Equal(t, "alice", rows[0]["customer"])
	assert.Equal(t, "bob", rows[1]["customer"])
}

func TestGroupingSuppressesSelection(t *testing.T) {
	e, _ := newTestEngine(map[string][]record.Record{"orders": orderTable()})

	rows := e.Build("orders").
		GroupBy("customer").
		Aggregate(query.AggCount, "", "n").
		Select("id").
		Execute(context.Background())

	require.NotEmpty(t, rows)
	_, hasCustomer := rows[0].Get("customer")
	_, hasID := rows[0].Get("id")
	assert.True(t, hasCustomer, "group fields survive despite the selection")
	assert.False(t, hasID)
}

func TestUnknownAggregationReportsNil(t *testing.T) {
	e, collector := newTestEngine(map[string][]record.Record{"orders": orderTable()})

	rows := e.Build("orders").Aggregate("median", "total", "med").Execute(context.Background())
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0]["med"])

	diags := collector.Diagnostics()
	require.NotEmpty(t, diags)
	assert.Equal(t, StageGroup, diags[0].Stage)
}
