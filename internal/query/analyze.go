package query

import "fmt"

// Analysis is the advisory performance report for a plan. It never
// blocks execution.
type Analysis struct {
	Complexity    Complexity `json:"complexity"`
	Issues        []string   `json:"issues"`
	Suggestions   []string   `json:"suggestions"`
	EstimatedCost int        `json:"estimated_cost"`
}

// Cost weights for EstimateCost. Deterministic; no sampling, no
// statistics — these are heuristics over the plan shape only.
const (
	costBase        = 10
	costFilter      = 2
	costSort        = 5
	costJoin        = 25
	costGroupField  = 15
	costAggregation = 10
	costHaving      = 5
	costSubquery    = 30
	costUnion       = 20
	costCalculated  = 5
)

// Analyze inspects a plan against a fixed rule set and returns the
// issues and suggestions a careful reviewer would raise, plus the
// deterministic cost score.
//
// Analyze is a pure function with no side effects.
func Analyze(p *Plan) Analysis {
	a := &analyzer{
		issues:      []string{},
		suggestions: []string{},
	}
	a.inspect(p)

	return Analysis{
		Complexity:    p.EstimateComplexity(),
		Issues:        a.issues,
		Suggestions:   a.suggestions,
		EstimatedCost: EstimateCost(p),
	}
}

// EstimateCost returns a deterministic weighted score for a plan.
// Nested subquery and union plans contribute their own full cost on top
// of the per-entry weight. The score is doubled when the plan has no
// filter and no limit (a full, unbounded scan).
func EstimateCost(p *Plan) int {
	cost := costBase +
		len(p.Filters)*costFilter +
		len(p.Sorts)*costSort +
		len(p.Joins)*costJoin +
		len(p.GroupBy)*costGroupField +
		len(p.Aggregations)*costAggregation +
		len(p.Having)*costHaving +
		len(p.Calculated)*costCalculated

	for _, sq := range p.Subqueries {
		cost += costSubquery
		if sq.Plan != nil {
			cost += EstimateCost(sq.Plan)
		}
	}
	for _, u := range p.Unions {
		cost += costUnion
		if u.Plan != nil {
			cost += EstimateCost(u.Plan)
		}
	}

	if len(p.Filters) == 0 && p.Limit < 0 {
		cost *= 2
	}
	return cost
}

// analyzer accumulates issues and suggestions during inspection.
type analyzer struct {
	issues      []string
	suggestions []string
}

func (a *analyzer) addIssue(format string, args ...any) {
	a.issues = append(a.issues, fmt.Sprintf(format, args...))
}

func (a *analyzer) addSuggestion(format string, args ...any) {
	a.suggestions = append(a.suggestions, fmt.Sprintf(format, args...))
}

func (a *analyzer) inspect(p *Plan) {
	if len(p.Filters) == 0 && len(p.Subqueries) == 0 && p.Limit < 0 {
		a.addIssue("full scan of %q without filter or limit", p.Table)
		a.addSuggestion("add a filter or a limit to bound the scan of %q", p.Table)
	}

	if len(p.Joins) > 2 {
		a.addIssue("%d joins; each join is a nested loop over the previous stage's output", len(p.Joins))
		a.addSuggestion("reduce the join count or pre-filter the joined tables")
	}

	if len(p.Subqueries) > 1 {
		a.addIssue("%d subqueries; each re-executes its nested query per candidate row", len(p.Subqueries))
		a.addSuggestion("fold subquery conditions into plain filters where possible")
	}
	if len(p.Subqueries) > 0 && len(p.Joins) > 0 {
		a.addIssue("subqueries combined with joins re-execute per joined row")
	}

	for _, f := range p.Filters {
		if f.Op == OpRegex {
			a.addSuggestion("regex filter on %q recompiles per row; prefer contains/startsWith when a literal match suffices", f.Field)
		}
	}

	if len(p.Sorts) > 0 && p.Limit < 0 {
		a.addSuggestion("sorting an unbounded result; add a limit if only the head is needed")
	}

	if len(p.Unions) > 2 {
		a.addIssue("%d unions; deduplication serializes every row for comparison", len(p.Unions))
	}

	if p.Grouped() && len(p.Selection) > 0 {
		a.addIssue("field selection is ignored once grouping occurs")
	}
}
