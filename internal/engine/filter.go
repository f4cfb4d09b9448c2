package engine

import (
	"regexp"
	"strings"

	"github.com/roach88/quarry/internal/query"
	"github.com/roach88/quarry/internal/record"
)

// applyFilters keeps the rows matching an ordered condition chain. Used
// for both WHERE (stage "filter") and HAVING (stage "group").
func (e *Engine) applyFilters(filters []query.Filter, rows []record.Record, stage string) []record.Record {
	if len(filters) == 0 {
		return rows
	}
	out := make([]record.Record, 0, len(rows))
	for _, rec := range rows {
		if e.matchChain(rec, filters, stage) {
			out = append(out, rec)
		}
	}
	return out
}

// matchChain folds an ordered condition chain into a single boolean.
//
// The fold is deliberately shifted: the connective recorded on
// condition i governs how condition i+1 combines, and there is no
// AND/OR precedence - strictly left to right. Initialize result=true,
// carry=none; for each condition, evaluate it, combine under carry
// (OR → result||cond, otherwise result&&cond), then set carry to the
// condition's own connective for the next iteration.
func (e *Engine) matchChain(rec record.Record, filters []query.Filter, stage string) bool {
	result := true
	carry := query.ConnNone
	for _, f := range filters {
		cond := e.evalCondition(rec, f, stage)
		if carry == query.ConnOr {
			result = result || cond
		} else {
			result = result && cond
		}
		carry = f.Connective
	}
	return result
}

// evalCondition evaluates one field/operator/value test against a
// record. Null/absent field values satisfy only isNull; every other
// operator evaluates false on them. Unknown operators report a
// diagnostic and evaluate false.
func (e *Engine) evalCondition(rec record.Record, f query.Filter, stage string) bool {
	v, present := rec.Get(f.Field)

	switch f.Op {
	case query.OpIsNull:
		return !present || v == nil
	case query.OpIsNotNull:
		return present && v != nil
	}

	if !present || v == nil {
		return false
	}

	switch f.Op {
	case query.OpEq:
		return strictEqual(v, f.Value)
	case query.OpNeq:
		return !strictEqual(v, f.Value)

	case query.OpGt:
		return compareValues(v, f.Value) > 0
	case query.OpGte:
		return compareValues(v, f.Value) >= 0
	case query.OpLt:
		return compareValues(v, f.Value) < 0
	case query.OpLte:
		return compareValues(v, f.Value) <= 0

	case query.OpContains:
		return strings.Contains(foldString(v), foldString(f.Value))
	case query.OpStartsWith:
		return strings.HasPrefix(foldString(v), foldString(f.Value))
	case query.OpEndsWith:
		return strings.HasSuffix(foldString(v), foldString(f.Value))

	case query.OpRegex:
		re, err := regexp.Compile("(?i)" + record.KeyString(f.Value))
		if err != nil {
			e.reportf(stage, "invalid regex %q on field %q: %v", record.KeyString(f.Value), f.Field, err)
			return false
		}
		return re.MatchString(record.KeyString(v))

	case query.OpIn:
		return valueIn(v, f.Value)
	case query.OpNotIn:
		return !valueIn(v, f.Value)

	case query.OpDateEq, query.OpDateBefore, query.OpDateAfter:
		lhs, lok := toTime(v)
		rhs, rok := toTime(f.Value)
		if !lok || !rok {
			return false
		}
		switch f.Op {
		case query.OpDateBefore:
			return lhs.Before(rhs)
		case query.OpDateAfter:
			return lhs.After(rhs)
		default:
			return lhs.Equal(rhs)
		}

	default:
		e.reportf(stage, "unknown operator %q on field %q", f.Op, f.Field)
		return false
	}
}

// foldString renders a value for case-insensitive string operators.
func foldString(v any) string {
	return strings.ToLower(record.KeyString(v))
}

// valueIn tests array membership with strict equality. A non-array
// right-hand side matches nothing.
func valueIn(v, set any) bool {
	items, ok := set.([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		if strictEqual(v, item) {
			return true
		}
	}
	return false
}
