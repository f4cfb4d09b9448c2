// Package sqlexport renders finalized query plans as dialect-specific
// SQL text. It never executes anything: output is purely textual, for
// inspection, porting, and golden-file comparison.
package sqlexport

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/quarry/internal/query"
	"github.com/roach88/quarry/internal/record"
)

func sprintf(format string, args ...any) string { return fmt.Sprintf(format, args...) }

// Export assembles SELECT/FROM/JOIN/WHERE/GROUP BY/HAVING/ORDER BY and
// the dialect's pagination clause from a plan snapshot. Nested
// subqueries and unions are exported recursively. Unknown dialects fall
// back to Standard.
func Export(p *query.Plan, d Dialect) string {
	if p == nil {
		return ""
	}
	if !d.Valid() {
		d = Standard
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(selectList(p, d))
	b.WriteString(" FROM ")
	b.WriteString(p.Table)

	for _, j := range p.Joins {
		b.WriteString(" ")
		b.WriteString(joinKeyword(j.Type))
		b.WriteString(" ")
		b.WriteString(j.Table)
		b.WriteString(" ON ")
		b.WriteString(p.Table + "." + j.LocalField + " = " + j.Table + "." + j.JoinField)
	}

	if where := whereClause(p, d); where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}

	if len(p.GroupBy) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(p.GroupBy, ", "))
	}
	if len(p.Having) > 0 {
		b.WriteString(" HAVING ")
		b.WriteString(conditionChain(p.Having, d))
	}

	if len(p.Sorts) > 0 {
		parts := make([]string, len(p.Sorts))
		for i, s := range p.Sorts {
			parts[i] = s.Field + " " + string(s.Direction)
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(parts, ", "))
	}

	b.WriteString(d.pagination(p.Limit, p.Offset))

	sql := b.String()
	for _, u := range p.Unions {
		keyword := "UNION"
		if u.All {
			keyword = "UNION ALL"
		}
		sql += " " + keyword + " " + Export(u.Plan, d)
	}
	return sql
}

func joinKeyword(t query.JoinType) string {
	switch t {
	case query.JoinLeft:
		return "LEFT JOIN"
	case query.JoinRight:
		return "RIGHT JOIN"
	case query.JoinFull:
		return "FULL OUTER JOIN"
	default:
		return "INNER JOIN"
	}
}

// selectList renders the output columns: group-by fields plus
// aggregations when the plan groups, the plain selection otherwise,
// with calculated-field fragments appended either way.
func selectList(p *query.Plan, d Dialect) string {
	var cols []string
	if p.Grouped() {
		cols = append(cols, p.GroupBy...)
		for _, agg := range p.Aggregations {
			cols = append(cols, aggColumn(agg, d)+" AS "+agg.Alias)
		}
	} else if len(p.Selection) > 0 {
		cols = append(cols, p.Selection...)
	}

	for _, cf := range p.Calculated {
		cols = append(cols, calcColumn(cf, d)+" AS "+cf.Name)
	}

	if len(cols) == 0 {
		return "*"
	}
	return strings.Join(cols, ", ")
}

func aggColumn(agg query.Aggregation, d Dialect) string {
	field := agg.Field
	if field == "" {
		field = "*"
	}
	switch agg.Func {
	case query.AggCount:
		return "COUNT(" + field + ")"
	case query.AggCountDistinct:
		return "COUNT(DISTINCT " + field + ")"
	case query.AggSum:
		return "SUM(" + field + ")"
	case query.AggAvg:
		return "AVG(" + field + ")"
	case query.AggMin:
		return "MIN(" + field + ")"
	case query.AggMax:
		return "MAX(" + field + ")"
	case query.AggStringAgg:
		return d.stringAgg(field)
	case query.AggFirst:
		// No portable FIRST/LAST aggregate; MIN/MAX is the closest
		// single-expression rendering.
		return "MIN(" + field + ")"
	case query.AggLast:
		return "MAX(" + field + ")"
	default:
		return "NULL"
	}
}

func calcColumn(cf query.CalculatedField, d Dialect) string {
	switch expr := cf.Expr.(type) {
	case query.CaseExpr:
		var b strings.Builder
		b.WriteString("CASE")
		for _, br := range expr.Branches {
			b.WriteString(" WHEN ")
			b.WriteString(condition(query.Filter{Field: br.Field, Op: br.Op, Value: br.Value}, d))
			b.WriteString(" THEN ")
			b.WriteString(resultLiteral(br.Result))
		}
		b.WriteString(" ELSE ")
		b.WriteString(resultLiteral(expr.Default))
		b.WriteString(" END")
		return b.String()

	case query.ConvertExpr:
		return convertColumn(expr, d)

	case query.FuncExpr:
		// Callback fields have no SQL form.
		return "NULL"

	default:
		return "NULL"
	}
}

func convertColumn(expr query.ConvertExpr, d Dialect) string {
	f := expr.SourceField
	switch expr.Fn {
	case query.ConvToString:
		return "CAST(" + f + " AS " + d.castType("string") + ")"
	case query.ConvToNumber:
		return "CAST(" + f + " AS " + d.castType("number") + ")"
	case query.ConvToDate:
		return "CAST(" + f + " AS " + d.castType("date") + ")"
	case query.ConvToBoolean:
		return "CAST(" + f + " AS BOOLEAN)"
	case query.ConvLength:
		return d.lengthFunc() + "(" + f + ")"
	case query.ConvUpper:
		return "UPPER(" + f + ")"
	case query.ConvLower:
		return "LOWER(" + f + ")"
	case query.ConvTrim:
		return "TRIM(" + f + ")"
	case query.ConvSubstring:
		// SQL SUBSTRING is 1-based; plan offsets are 0-based.
		if expr.Params.Length > 0 {
			return sprintf("SUBSTRING(%s, %d, %d)", f, expr.Params.Start+1, expr.Params.Length)
		}
		return sprintf("SUBSTRING(%s, %d)", f, expr.Params.Start+1)
	case query.ConvConcat:
		return "CONCAT(" + f + ", " + resultLiteral(expr.Params.With) + ")"
	case query.ConvRound:
		return sprintf("ROUND(%s, %d)", f, expr.Params.Precision)
	case query.ConvFloor:
		return "FLOOR(" + f + ")"
	case query.ConvCeil:
		return "CEIL(" + f + ")"
	case query.ConvAbs:
		return "ABS(" + f + ")"
	default:
		return f
	}
}

// whereClause renders the filter chain followed by the subquery
// conditions. Chains print their connectives in declaration positions,
// reading left to right - the same flat, no-precedence reading the
// evaluator uses.
func whereClause(p *query.Plan, d Dialect) string {
	var b strings.Builder
	b.WriteString(conditionChain(p.Filters, d))

	for i, sq := range p.Subqueries {
		if b.Len() > 0 || i > 0 {
			b.WriteString(" " + foldWord(i, p.Subqueries) + " ")
		}
		b.WriteString(subqueryCondition(sq, d))
	}
	return b.String()
}

// foldWord picks the printed connective before subquery condition i:
// the connective of the previous condition in the chain, AND when none.
func foldWord(i int, chain []query.Subquery) string {
	if i > 0 && chain[i-1].Connective == query.ConnOr {
		return "OR"
	}
	return "AND"
}

func subqueryCondition(sq query.Subquery, d Dialect) string {
	inner := Export(sq.Plan, d)
	switch sq.Op {
	case query.SubExists:
		return "EXISTS (" + inner + ")"
	case query.SubNotExists:
		return "NOT EXISTS (" + inner + ")"
	case query.SubNotIn:
		return sq.Field + " NOT IN (" + inner + ")"
	default:
		return sq.Field + " IN (" + inner + ")"
	}
}

// conditionChain prints conditions with each stored connective between
// a condition and its successor.
func conditionChain(filters []query.Filter, d Dialect) string {
	var b strings.Builder
	for i, f := range filters {
		if i > 0 {
			word := "AND"
			if filters[i-1].Connective == query.ConnOr {
				word = "OR"
			}
			b.WriteString(" " + word + " ")
		}
		b.WriteString(condition(f, d))
	}
	return b.String()
}

func condition(f query.Filter, d Dialect) string {
	switch f.Op {
	case query.OpEq:
		return f.Field + " = " + literal(f.Value)
	case query.OpNeq:
		return f.Field + " <> " + literal(f.Value)
	case query.OpGt, query.OpDateAfter:
		return f.Field + " > " + literal(f.Value)
	case query.OpGte:
		return f.Field + " >= " + literal(f.Value)
	case query.OpLt, query.OpDateBefore:
		return f.Field + " < " + literal(f.Value)
	case query.OpLte:
		return f.Field + " <= " + literal(f.Value)
	case query.OpDateEq:
		return f.Field + " = " + literal(f.Value)
	case query.OpContains:
		return f.Field + " LIKE " + likeLiteral("%", f.Value, "%")
	case query.OpStartsWith:
		return f.Field + " LIKE " + likeLiteral("", f.Value, "%")
	case query.OpEndsWith:
		return f.Field + " LIKE " + likeLiteral("%", f.Value, "")
	case query.OpRegex:
		return d.regexCondition(f.Field, literal(f.Value))
	case query.OpIn:
		return f.Field + " IN " + listLiteral(f.Value)
	case query.OpNotIn:
		return f.Field + " NOT IN " + listLiteral(f.Value)
	case query.OpIsNull:
		return f.Field + " IS NULL"
	case query.OpIsNotNull:
		return f.Field + " IS NOT NULL"
	default:
		// Unknown operators evaluate false at runtime; render the same.
		return "1 = 0"
	}
}

// resultLiteral renders a CASE result or default: FieldRefs as bare
// column names, everything else as a literal.
func resultLiteral(v any) string {
	if ref, ok := v.(query.FieldRef); ok {
		return string(ref)
	}
	return literal(v)
}

func literal(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return quoteString(val)
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case time.Time:
		return quoteString(val.UTC().Format("2006-01-02 15:04:05"))
	case []any:
		return listLiteral(val)
	default:
		if f, ok := record.NumericValue(v); ok {
			if f == float64(int64(f)) {
				return sprintf("%d", int64(f))
			}
			return sprintf("%g", f)
		}
		return quoteString(record.KeyString(v))
	}
}

func listLiteral(v any) string {
	items, ok := v.([]any)
	if !ok {
		return "(NULL)"
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = literal(item)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func likeLiteral(prefix string, v any, suffix string) string {
	return quoteString(prefix + record.KeyString(v) + suffix)
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
