package engine

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/roach88/quarry/internal/query"
	"github.com/roach88/quarry/internal/record"
)

// applyCalculated runs once over every surviving row, after pagination
// and before field projection, appending one value per declared
// calculated field.
func (e *Engine) applyCalculated(fields []query.CalculatedField, rows []record.Record) []record.Record {
	if len(fields) == 0 {
		return rows
	}
	for _, rec := range rows {
		for _, cf := range fields {
			rec[cf.Name] = e.calcValue(rec, cf)
		}
	}
	return rows
}

func (e *Engine) calcValue(rec record.Record, cf query.CalculatedField) any {
	switch expr := cf.Expr.(type) {
	case query.CaseExpr:
		return e.caseValue(rec, expr)
	case query.FuncExpr:
		return e.funcValue(rec, cf.Name, expr)
	case query.ConvertExpr:
		return e.convertValue(rec, cf.Name, expr)
	default:
		e.reportf(StageCalc, "calculated field %q has no expression", cf.Name)
		return nil
	}
}

// caseValue evaluates the branches in order with single-condition
// filter semantics; the first match wins, else the default applies.
func (e *Engine) caseValue(rec record.Record, expr query.CaseExpr) any {
	for _, branch := range expr.Branches {
		cond := query.Filter{Field: branch.Field, Op: branch.Op, Value: branch.Value}
		if e.evalCondition(rec, cond, StageCalc) {
			return resolveResult(rec, branch.Result)
		}
	}
	return resolveResult(rec, expr.Default)
}

// resolveResult turns a branch result or default into a value: a
// FieldRef reads from the row, anything else is a literal.
func resolveResult(rec record.Record, result any) any {
	if ref, ok := result.(query.FieldRef); ok {
		return rec[string(ref)]
	}
	return result
}

// funcValue invokes the user callback. A panic is caught and reported;
// the field becomes nil and the query continues - failure is isolated
// per field.
func (e *Engine) funcValue(rec record.Record, name string, expr query.FuncExpr) (out any) {
	defer func() {
		if r := recover(); r != nil {
			e.reportf(StageCalc, "calculated field %q: callback panicked: %v", name, r)
			out = nil
		}
	}()
	if expr.Fn == nil {
		return nil
	}
	return expr.Fn(rec)
}

// convertValue applies one named conversion to the source field.
// Unknown functions pass the value through unchanged with a warning;
// conversions that cannot apply to the value yield nil.
func (e *Engine) convertValue(rec record.Record, name string, expr query.ConvertExpr) any {
	v, ok := rec.Get(expr.SourceField)
	if !ok {
		v = nil
	}

	switch expr.Fn {
	case query.ConvToString:
		if v == nil {
			return nil
		}
		return record.KeyString(v)

	case query.ConvToNumber:
		if f, ok := toFloat(v); ok {
			return f
		}
		return nil

	case query.ConvToDate:
		if expr.Params.Layout != "" {
			if s, ok := v.(string); ok {
				if t, err := time.Parse(expr.Params.Layout, s); err == nil {
					return t
				}
				return nil
			}
		}
		if t, ok := toTime(v); ok {
			return t
		}
		return nil

	case query.ConvToBoolean:
		return truthy(v)

	case query.ConvLength:
		switch val := v.(type) {
		case string:
			return utf8.RuneCountInString(val)
		case []any:
			return len(val)
		case record.Record:
			return len(val)
		case map[string]any:
			return len(val)
		default:
			return nil
		}

	case query.ConvUpper:
		if v == nil {
			return nil
		}
		return strings.ToUpper(record.KeyString(v))
	case query.ConvLower:
		if v == nil {
			return nil
		}
		return strings.ToLower(record.KeyString(v))
	case query.ConvTrim:
		if v == nil {
			return nil
		}
		return strings.TrimSpace(record.KeyString(v))

	case query.ConvSubstring:
		if v == nil {
			return nil
		}
		return substring(record.KeyString(v), expr.Params.Start, expr.Params.Length)

	case query.ConvConcat:
		if v == nil {
			return nil
		}
		suffix := ""
		if expr.Params.With != nil {
			suffix = record.KeyString(resolveResult(rec, expr.Params.With))
		}
		return record.KeyString(v) + suffix

	case query.ConvRound:
		if f, ok := toFloat(v); ok {
			shift := math.Pow(10, float64(expr.Params.Precision))
			return math.Round(f*shift) / shift
		}
		return nil
	case query.ConvFloor:
		if f, ok := toFloat(v); ok {
			return math.Floor(f)
		}
		return nil
	case query.ConvCeil:
		if f, ok := toFloat(v); ok {
			return math.Ceil(f)
		}
		return nil
	case query.ConvAbs:
		if f, ok := toFloat(v); ok {
			return math.Abs(f)
		}
		return nil

	default:
		e.reportf(StageConvert, "unknown conversion %q for field %q; value passed through", expr.Fn, name)
		return v
	}
}

// truthy mirrors loose boolean coercion: nil, false, zero, and the
// empty string are false; everything else is true.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	default:
		if f, ok := record.NumericValue(v); ok {
			return f != 0
		}
		return true
	}
}

// substring slices by rune offsets with clamping. length<=0 means "to
// the end".
func substring(s string, start, length int) string {
	runes := []rune(s)
	if start < 0 {
		start = 0
	}
	if start >= len(runes) {
		return ""
	}
	end := len(runes)
	if length > 0 && start+length < end {
		end = start + length
	}
	return string(runes[start:end])
}
