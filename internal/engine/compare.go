package engine

import (
	"strconv"
	"strings"
	"time"

	"github.com/roach88/quarry/internal/record"
)

// dateLayouts are tried in order when coercing a string to a date.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// toFloat coerces a value for numeric comparison: native numeric types
// plus strings that parse as numbers. Booleans and dates do not coerce.
func toFloat(v any) (float64, bool) {
	if f, ok := record.NumericValue(v); ok {
		return f, true
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	return 0, false
}

// toTime coerces a value to a date: time.Time directly, or a string
// matching one of dateLayouts.
func toTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		s := strings.TrimSpace(val)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// compareValues is the type-aware comparator shared by ordering
// operators and sorting. It tries numeric coercion first, then date
// parsing, then falls back to case-insensitive lexicographic string
// comparison. Returns <0, 0, >0.
func compareValues(a, b any) int {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}

	if at, aok := toTime(a); aok {
		if bt, bok := toTime(b); bok {
			return at.Compare(bt)
		}
	}

	return strings.Compare(
		strings.ToLower(record.KeyString(a)),
		strings.ToLower(record.KeyString(b)),
	)
}

// strictEqual is the equality used by eq/neq and in/notIn membership.
// Values of different kinds are unequal (no cross-type coercion), with
// one normalization: all numeric widths compare as numbers. Arrays and
// nested objects compare structurally.
func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if af, ok := record.NumericValue(a); ok {
		bf, bok := record.NumericValue(b)
		return bok && af == bf
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	default:
		// Arrays and nested objects: structural comparison.
		return record.Canonical(a) == record.Canonical(b)
	}
}
