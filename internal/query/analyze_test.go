package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateCostBase(t *testing.T) {
	p := NewPlan("items")
	p.Limit = 10
	assert.Equal(t, 10, EstimateCost(p))
}

func TestEstimateCostWeights(t *testing.T) {
	p := NewPlan("items")
	p.Limit = 10
	p.Filters = []Filter{{Field: "a", Op: OpEq, Value: 1}}
	p.Sorts = []SortKey{{Field: "a", Direction: Asc}}
	p.Joins = []JoinSpec{{Table: "b", JoinField: "id", LocalField: "b_id", Type: JoinInner}}

	// 10 base + 2 filter + 5 sort + 25 join.
	assert.Equal(t, 42, EstimateCost(p))
}

func TestEstimateCostUnboundedScanDoubles(t *testing.T) {
	p := NewPlan("items")
	p.Sorts = []SortKey{{Field: "a", Direction: Asc}}

	// (10 + 5) doubled: no filters and no limit.
	assert.Equal(t, 30, EstimateCost(p))
}

func TestEstimateCostRecursesIntoNestedPlans(t *testing.T) {
	inner := NewPlan("other")
	inner.Limit = 5

	p := NewPlan("items")
	p.Filters = []Filter{{Field: "a", Op: OpEq, Value: 1}}
	p.Subqueries = []Subquery{{Field: "id", Op: SubIn, Plan: inner}}

	// 10 base + 2 filter + 30 subquery + 10 nested base.
	assert.Equal(t, 52, EstimateCost(p))

	p.Unions = []UnionEntry{{Plan: inner.Clone()}}
	// + 20 union + 10 nested base.
	assert.Equal(t, 82, EstimateCost(p))
}

func TestAnalyzeCleanPlan(t *testing.T) {
	p := NewPlan("items")
	p.Limit = 10
	p.Filters = []Filter{{Field: "a", Op: OpEq, Value: 1}}

	a := Analyze(p)
	assert.Empty(t, a.Issues)
	assert.Empty(t, a.Suggestions)
	assert.Equal(t, ComplexityLow, a.Complexity)
	assert.Equal(t, 12, a.EstimatedCost)
}

func TestAnalyzeFullScan(t *testing.T) {
	a := Analyze(NewPlan("items"))
	require.Len(t, a.Issues, 1)
	assert.Contains(t, a.Issues[0], "full scan")
	require.Len(t, a.Suggestions, 1)
}

func TestAnalyzeJoinFanout(t *testing.T) {
	p := NewPlan("items")
	p.Limit = 10
	p.Filters = []Filter{{Field: "a", Op: OpEq, Value: 1}}
	p.Joins = []JoinSpec{
		{Table: "b", JoinField: "id", LocalField: "b_id", Type: JoinInner},
		{Table: "c", JoinField: "id", LocalField: "c_id", Type: JoinInner},
		{Table: "d", JoinField: "id", LocalField: "d_id", Type: JoinInner},
	}

	a := Analyze(p)
	assert.True(t, hasIssueContaining(a, "nested loop"))
}

func TestAnalyzeSubqueryWithJoins(t *testing.T) {
	p := NewPlan("items")
	p.Limit = 10
	p.Joins = []JoinSpec{{Table: "b", JoinField: "id", LocalField: "b_id", Type: JoinInner}}
	p.Subqueries = []Subquery{{Op: SubExists, Plan: NewPlan("other")}}

	a := Analyze(p)
	assert.True(t, hasIssueContaining(a, "re-execute per joined row"))
}

func TestAnalyzeRegexSuggestion(t *testing.T) {
	p := NewPlan("items")
	p.Limit = 10
	p.Filters = []Filter{{Field: "name", Op: OpRegex, Value: "^a.*"}}

	a := Analyze(p)
	found := false
	for _, s := range a.Suggestions {
		if strings.Contains(s, "regex") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnalyzeSelectionIgnoredWhenGrouped(t *testing.T) {
	p := NewPlan("items")
	p.Limit = 10
	p.Filters = []Filter{{Field: "a", Op: OpEq, Value: 1}}
	p.GroupBy = []string{"a"}
	p.Selection = []string{"a", "b"}

	a := Analyze(p)
	assert.True(t, hasIssueContaining(a, "selection is ignored"))
}

func hasIssueContaining(a Analysis, substr string) bool {
	for _, issue := range a.Issues {
		if strings.Contains(issue, substr) {
			return true
		}
	}
	return false
}
