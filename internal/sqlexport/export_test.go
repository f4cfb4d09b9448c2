package sqlexport

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/roach88/quarry/internal/query"
)

// reportPlan builds a plan exercising every clause the exporter renders.
func reportPlan() *query.Plan {
	inner := query.NewPlan("vips")
	inner.Selection = []string{"id"}
	inner.Filters = []query.Filter{{Field: "tier", Op: query.OpEq, Value: "gold"}}

	archived := query.NewPlan("archived_orders")

	p := query.NewPlan("orders")
	p.Joins = []query.JoinSpec{
		{Table: "users", JoinField: "id", LocalField: "user_id", Type: query.JoinInner},
	}
	p.Filters = []query.Filter{
		{Field: "status", Op: query.OpEq, Value: "paid"},
		{Field: "total", Op: query.OpGt, Value: 100, Connective: query.ConnOr},
		{Field: "customer_id", Op: query.OpIn, Value: []any{1, 2, 3}, Connective: query.ConnAnd},
	}
	p.Subqueries = []query.Subquery{
		{Field: "customer_id", Op: query.SubIn, Plan: inner},
	}
	p.GroupBy = []string{"customer"}
	p.Aggregations = []query.Aggregation{
		{Func: query.AggSum, Field: "total", Alias: "revenue"},
		{Func: query.AggStringAgg, Field: "status", Alias: "statuses"},
	}
	p.Having = []query.Filter{{Field: "revenue", Op: query.OpGte, Value: 50}}
	p.Sorts = []query.SortKey{{Field: "revenue", Direction: query.Desc}}
	p.Limit = 10
	p.Offset = 5
	p.Unions = []query.UnionEntry{{Plan: archived, All: true}}
	return p
}

func TestExportDialectGolden(t *testing.T) {
	g := goldie.New(t)
	for _, d := range Dialects {
		d := d
		t.Run(string(d), func(t *testing.T) {
			g.Assert(t, "export_"+string(d), []byte(Export(reportPlan(), d)))
		})
	}
}

func TestExportNilPlan(t *testing.T) {
	assert.Equal(t, "", Export(nil, Standard))
}

func TestExportUnknownDialectFallsBack(t *testing.T) {
	p := query.NewPlan("items")
	assert.Equal(t, Export(p, Standard), Export(p, "oracle"))
}

func TestExportBareTable(t *testing.T) {
	p := query.NewPlan("items")
	assert.Equal(t, "SELECT * FROM items", Export(p, Standard))
}

func TestExportSelection(t *testing.T) {
	p := query.NewPlan("items")
	p.Selection = []string{"id", "name"}
	assert.Equal(t, "SELECT id, name FROM items", Export(p, PostgreSQL))
}

func TestConditionRendering(t *testing.T) {
	cases := []struct {
		filter query.Filter
		want   string
	}{
		{query.Filter{Field: "a", Op: query.OpEq, Value: "x"}, "a = 'x'"},
		{query.Filter{Field: "a", Op: query.OpNeq, Value: 5}, "a <> 5"},
		{query.Filter{Field: "a", Op: query.OpGt, Value: 1.5}, "a > 1.5"},
		{query.Filter{Field: "a", Op: query.OpContains, Value: "mid"}, "a LIKE '%mid%'"},
		{query.Filter{Field: "a", Op: query.OpStartsWith, Value: "pre"}, "a LIKE 'pre%'"},
		{query.Filter{Field: "a", Op: query.OpEndsWith, Value: "suf"}, "a LIKE '%suf'"},
		{query.Filter{Field: "a", Op: query.OpIsNull}, "a IS NULL"},
		{query.Filter{Field: "a", Op: query.OpIsNotNull}, "a IS NOT NULL"},
		{query.Filter{Field: "a", Op: query.OpIn, Value: []any{"x", 2}}, "a IN ('x', 2)"},
		{query.Filter{Field: "a", Op: query.OpEq, Value: true}, "a = TRUE"},
		{query.Filter{Field: "a", Op: query.OpEq, Value: nil}, "a = NULL"},
		{query.Filter{Field: "a", Op: "mystery", Value: 1}, "1 = 0"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, condition(tc.filter, Standard), "op %s", tc.filter.Op)
	}
}

func TestStringLiteralEscaping(t *testing.T) {
	f := query.Filter{Field: "name", Op: query.OpEq, Value: "O'Brien"}
	assert.Equal(t, "name = 'O''Brien'", condition(f, Standard))
}

func TestRegexConditionPerDialect(t *testing.T) {
	f := query.Filter{Field: "path", Op: query.OpRegex, Value: "^doc"}
	assert.Equal(t, "path ~* '^doc'", condition(f, PostgreSQL))
	assert.Equal(t, "path REGEXP '^doc'", condition(f, MySQL))
	assert.Equal(t, "path REGEXP '^doc'", condition(f, Standard))
}

func TestConnectivePlacementInChain(t *testing.T) {
	filters := []query.Filter{
		{Field: "a", Op: query.OpEq, Value: 1},
		{Field: "b", Op: query.OpEq, Value: 2, Connective: query.ConnOr},
		{Field: "c", Op: query.OpEq, Value: 3, Connective: query.ConnAnd},
	}
	// The stored connective prints between its condition and the next,
	// mirroring the evaluator's shifted fold.
	assert.Equal(t, "a = 1 AND b = 2 OR c = 3", conditionChain(filters, Standard))
}

func TestCaseColumn(t *testing.T) {
	cf := query.CalculatedField{
		Name: "tier",
		Expr: query.CaseExpr{
			Branches: []query.CaseBranch{
				{Field: "score", Op: query.OpGte, Value: 90, Result: "gold"},
			},
			Default: query.FieldRef("fallback"),
		},
	}
	assert.Equal(t, "CASE WHEN score >= 90 THEN 'gold' ELSE fallback END", calcColumn(cf, Standard))
}

func TestFunctionColumnHasNoSQLForm(t *testing.T) {
	cf := query.CalculatedField{Name: "derived", Expr: query.FuncExpr{}}
	assert.Equal(t, "NULL", calcColumn(cf, Standard))
}

func TestConvertColumns(t *testing.T) {
	col := func(fn query.ConvertFunc, params query.ConvertParams, d Dialect) string {
		return convertColumn(query.ConvertExpr{SourceField: "f", Fn: fn, Params: params}, d)
	}

	assert.Equal(t, "CAST(f AS VARCHAR)", col(query.ConvToString, query.ConvertParams{}, Standard))
	assert.Equal(t, "CAST(f AS CHAR)", col(query.ConvToString, query.ConvertParams{}, MySQL))
	assert.Equal(t, "CAST(f AS DECIMAL)", col(query.ConvToNumber, query.ConvertParams{}, MySQL))
	assert.Equal(t, "CAST(f AS REAL)", col(query.ConvToNumber, query.ConvertParams{}, SQLite))
	assert.Equal(t, "CAST(f AS TIMESTAMP)", col(query.ConvToDate, query.ConvertParams{}, PostgreSQL))
	assert.Equal(t, "CHAR_LENGTH(f)", col(query.ConvLength, query.ConvertParams{}, MySQL))
	assert.Equal(t, "LENGTH(f)", col(query.ConvLength, query.ConvertParams{}, SQLite))
	assert.Equal(t, "SUBSTRING(f, 3, 4)", col(query.ConvSubstring, query.ConvertParams{Start: 2, Length: 4}, Standard))
	assert.Equal(t, "SUBSTRING(f, 1)", col(query.ConvSubstring, query.ConvertParams{}, Standard))
	assert.Equal(t, "CONCAT(f, '-x')", col(query.ConvConcat, query.ConvertParams{With: "-x"}, Standard))
	assert.Equal(t, "ROUND(f, 2)", col(query.ConvRound, query.ConvertParams{Precision: 2}, Standard))
}

func TestPaginationClauses(t *testing.T) {
	assert.Equal(t, "", Standard.pagination(-1, 0))
	assert.Equal(t, " OFFSET 0 ROWS FETCH NEXT 10 ROWS ONLY", Standard.pagination(10, 0))
	assert.Equal(t, " OFFSET 5 ROWS", Standard.pagination(-1, 5))
	assert.Equal(t, " LIMIT 10", MySQL.pagination(10, 0))
	assert.Equal(t, " LIMIT 10 OFFSET 5", PostgreSQL.pagination(10, 5))
	assert.Equal(t, " OFFSET 5", SQLite.pagination(-1, 5))
}

func TestExportJoinKeywords(t *testing.T) {
	p := query.NewPlan("a")
	p.Joins = []query.JoinSpec{{Table: "b", JoinField: "id", LocalField: "b_id", Type: query.JoinLeft}}
	assert.Equal(t, "SELECT * FROM a LEFT JOIN b ON a.b_id = b.id", Export(p, Standard))

	p.Joins[0].Type = query.JoinFull
	assert.Equal(t, "SELECT * FROM a FULL OUTER JOIN b ON a.b_id = b.id", Export(p, Standard))
}

func TestExportExistsSubquery(t *testing.T) {
	inner := query.NewPlan("audit")
	p := query.NewPlan("users")
	p.Subqueries = []query.Subquery{{Op: query.SubNotExists, Plan: inner}}
	assert.Equal(t, "SELECT * FROM users WHERE NOT EXISTS (SELECT * FROM audit)", Export(p, Standard))
}
