package query

// Def is the serializable form of a query, decodable from CUE, YAML, or
// JSON. The CLI loader and the HTTP API accept Defs; Plan() converts one
// into an executable plan.
//
// FUNCTION calculated fields are not expressible in a Def — a Go
// callback has no serialized form. They are available through the
// builder only.
type Def struct {
	Table        string        `yaml:"table" json:"table"`
	Select       []string      `yaml:"select,omitempty" json:"select,omitempty"`
	Filters      []FilterDef   `yaml:"filters,omitempty" json:"filters,omitempty"`
	Joins        []JoinDef     `yaml:"joins,omitempty" json:"joins,omitempty"`
	GroupBy      []string      `yaml:"group_by,omitempty" json:"group_by,omitempty"`
	Aggregations []AggDef      `yaml:"aggregations,omitempty" json:"aggregations,omitempty"`
	Having       []FilterDef   `yaml:"having,omitempty" json:"having,omitempty"`
	Sorts        []SortDef     `yaml:"sorts,omitempty" json:"sorts,omitempty"`
	Limit        *int          `yaml:"limit,omitempty" json:"limit,omitempty"`
	Offset       int           `yaml:"offset,omitempty" json:"offset,omitempty"`
	Subqueries   []SubqueryDef `yaml:"subqueries,omitempty" json:"subqueries,omitempty"`
	Unions       []UnionDef    `yaml:"unions,omitempty" json:"unions,omitempty"`
	Cases        []CaseDef     `yaml:"cases,omitempty" json:"cases,omitempty"`
	Conversions  []ConvertDef  `yaml:"conversions,omitempty" json:"conversions,omitempty"`
}

// FilterDef is one condition in a WHERE or HAVING chain. Or marks the
// condition as added via orWhere; the first condition of a chain always
// folds with no connective regardless of Or.
type FilterDef struct {
	Field string `yaml:"field" json:"field"`
	Op    string `yaml:"op" json:"op"`
	Value any    `yaml:"value,omitempty" json:"value,omitempty"`
	Or    bool   `yaml:"or,omitempty" json:"or,omitempty"`
}

type JoinDef struct {
	Table      string `yaml:"table" json:"table"`
	JoinField  string `yaml:"join_field" json:"join_field"`
	LocalField string `yaml:"local_field" json:"local_field"`
	Type       string `yaml:"type,omitempty" json:"type,omitempty"` // defaults to inner
}

type AggDef struct {
	Func  string `yaml:"func" json:"func"`
	Field string `yaml:"field,omitempty" json:"field,omitempty"`
	Alias string `yaml:"alias" json:"alias"`
}

type SortDef struct {
	Field     string `yaml:"field" json:"field"`
	Direction string `yaml:"direction,omitempty" json:"direction,omitempty"` // defaults to ASC
}

type SubqueryDef struct {
	Field string `yaml:"field,omitempty" json:"field,omitempty"`
	Op    string `yaml:"op" json:"op"`
	Query Def    `yaml:"query" json:"query"`
	Or    bool   `yaml:"or,omitempty" json:"or,omitempty"`
}

type UnionDef struct {
	Query Def  `yaml:"query" json:"query"`
	All   bool `yaml:"all,omitempty" json:"all,omitempty"`
}

type CaseBranchDef struct {
	Field  string `yaml:"field" json:"field"`
	Op     string `yaml:"op" json:"op"`
	Value  any    `yaml:"value,omitempty" json:"value,omitempty"`
	Result any    `yaml:"result" json:"result"`
}

// CaseDef declares a CASE calculated field. DefaultField, when set,
// makes the default row-derived; otherwise Default is a literal.
type CaseDef struct {
	Name         string          `yaml:"name" json:"name"`
	Branches     []CaseBranchDef `yaml:"branches" json:"branches"`
	Default      any             `yaml:"default,omitempty" json:"default,omitempty"`
	DefaultField string          `yaml:"default_field,omitempty" json:"default_field,omitempty"`
}

type ConvertDef struct {
	Name   string        `yaml:"name" json:"name"`
	Source string        `yaml:"source" json:"source"`
	Func   string        `yaml:"func" json:"func"`
	Params ConvertParams `yaml:"params,omitempty" json:"params,omitempty"`
}

// Plan converts the definition into an executable plan. Invalid pieces
// (unknown operators, missing tables) are carried through verbatim: the
// engine surfaces them as diagnostics and empty results, never as
// construction-time errors.
func (d *Def) Plan() *Plan {
	p := NewPlan(d.Table)
	p.Selection = append(p.Selection, d.Select...)
	p.Filters = filtersFromDefs(d.Filters)
	p.Having = filtersFromDefs(d.Having)
	p.GroupBy = append(p.GroupBy, d.GroupBy...)
	p.Offset = d.Offset
	if d.Limit != nil {
		p.Limit = *d.Limit
	}

	for _, j := range d.Joins {
		jt := JoinType(j.Type)
		if jt == "" {
			jt = JoinInner
		}
		p.Joins = append(p.Joins, JoinSpec{
			Table:      j.Table,
			JoinField:  j.JoinField,
			LocalField: j.LocalField,
			Type:       jt,
		})
	}

	for _, a := range d.Aggregations {
		p.Aggregations = append(p.Aggregations, Aggregation{
			Func:  AggFunc(a.Func),
			Field: a.Field,
			Alias: a.Alias,
		})
	}

	for _, s := range d.Sorts {
		dir := Direction(s.Direction)
		if dir == "" {
			dir = Asc
		}
		p.Sorts = append(p.Sorts, SortKey{Field: s.Field, Direction: dir})
	}

	for i, sq := range d.Subqueries {
		sub := sq.Query
		p.Subqueries = append(p.Subqueries, Subquery{
			Field:      sq.Field,
			Op:         SubqueryOp(sq.Op),
			Plan:       sub.Plan(),
			Connective: chainConnective(i, sq.Or),
		})
	}

	for _, u := range d.Unions {
		sub := u.Query
		p.Unions = append(p.Unions, UnionEntry{Plan: sub.Plan(), All: u.All})
	}

	for _, c := range d.Cases {
		expr := CaseExpr{Default: c.Default}
		if c.DefaultField != "" {
			expr.Default = FieldRef(c.DefaultField)
		}
		for _, b := range c.Branches {
			expr.Branches = append(expr.Branches, CaseBranch{
				Field:  b.Field,
				Op:     Operator(b.Op),
				Value:  b.Value,
				Result: b.Result,
			})
		}
		p.Calculated = append(p.Calculated, CalculatedField{Name: c.Name, Expr: expr})
	}

	for _, c := range d.Conversions {
		p.Calculated = append(p.Calculated, CalculatedField{
			Name: c.Name,
			Expr: ConvertExpr{
				SourceField: c.Source,
				Fn:          ConvertFunc(c.Func),
				Params:      c.Params,
			},
		})
	}

	return p
}

func filtersFromDefs(defs []FilterDef) []Filter {
	if len(defs) == 0 {
		return nil
	}
	out := make([]Filter, len(defs))
	for i, f := range defs {
		out[i] = Filter{
			Field:      f.Field,
			Op:         Operator(f.Op),
			Value:      f.Value,
			Connective: chainConnective(i, f.Or),
		}
	}
	return out
}

// chainConnective implements the builder's connective placement: the
// first condition carries none; later conditions carry OR when added
// via orWhere and AND otherwise.
func chainConnective(index int, or bool) Connective {
	if index == 0 {
		return ConnNone
	}
	if or {
		return ConnOr
	}
	return ConnAnd
}
