package query

// Plan is the full declarative description of a query: the immutable
// snapshot produced by the builder's Explain. It is the only input
// accepted by the SQL exporter and the performance analyzer.
//
// Limit uses -1 for "unbounded"; NewPlan sets it.
type Plan struct {
	// ID correlates diagnostics and exports with a specific snapshot.
	// Assigned (UUIDv7) when the builder snapshots the plan; empty on
	// hand-built plans.
	ID string

	Table        string
	Filters      []Filter
	Joins        []JoinSpec
	Subqueries   []Subquery
	GroupBy      []string
	Aggregations []Aggregation
	Having       []Filter
	Sorts        []SortKey
	Limit        int
	Offset       int
	Selection    []string
	Calculated   []CalculatedField
	Unions       []UnionEntry
}

// NewPlan returns an empty plan over the named table.
func NewPlan(table string) *Plan {
	return &Plan{Table: table, Limit: -1}
}

// Grouped reports whether the plan aggregates. A grouped plan suppresses
// plain field projection: Selection is ignored once grouping occurs.
func (p *Plan) Grouped() bool {
	return len(p.GroupBy) > 0 || len(p.Aggregations) > 0
}

// Clone returns a deep copy of the plan. Nested subquery and union
// plans are cloned recursively; filter values and calculated-field
// expressions are shared (they are treated as immutable once added).
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	out := *p
	out.Filters = append([]Filter(nil), p.Filters...)
	out.Joins = append([]JoinSpec(nil), p.Joins...)
	out.GroupBy = append([]string(nil), p.GroupBy...)
	out.Aggregations = append([]Aggregation(nil), p.Aggregations...)
	out.Having = append([]Filter(nil), p.Having...)
	out.Sorts = append([]SortKey(nil), p.Sorts...)
	out.Selection = append([]string(nil), p.Selection...)
	out.Calculated = append([]CalculatedField(nil), p.Calculated...)

	out.Subqueries = make([]Subquery, len(p.Subqueries))
	for i, sq := range p.Subqueries {
		sq.Plan = sq.Plan.Clone()
		out.Subqueries[i] = sq
	}
	out.Unions = make([]UnionEntry, len(p.Unions))
	for i, u := range p.Unions {
		u.Plan = u.Plan.Clone()
		out.Unions[i] = u
	}
	return &out
}
