package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Canonical returns a deterministic serialization of a record value:
// object keys sorted ascending, strings NFC-normalized, numbers collapsed
// to a single numeric form (so int64(15) and float64(15) serialize the
// same way). Two rows are structurally equal iff their canonical forms
// are byte-identical.
func Canonical(v any) string {
	var buf bytes.Buffer
	writeCanonical(&buf, v)
	return buf.String()
}

func writeCanonical(buf *bytes.Buffer, v any) {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case string:
		writeCanonicalString(buf, val)
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case time.Time:
		writeCanonicalString(buf, val.UTC().Format(time.RFC3339Nano))
	case Record:
		writeCanonicalObject(buf, val)
	case map[string]any:
		writeCanonicalObject(buf, Record(val))
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonical(buf, elem)
		}
		buf.WriteByte(']')
	default:
		if f, ok := NumericValue(v); ok {
			writeCanonicalNumber(buf, f)
			return
		}
		// Unknown scalar type: fall back to its string form.
		writeCanonicalString(buf, fmt.Sprintf("%v", val))
	}
}

func writeCanonicalObject(buf *bytes.Buffer, r Record) {
	buf.WriteByte('{')
	for i, k := range r.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeCanonicalString(buf, k)
		buf.WriteByte(':')
		writeCanonical(buf, r[k])
	}
	buf.WriteByte('}')
}

func writeCanonicalString(buf *bytes.Buffer, s string) {
	b, err := json.Marshal(norm.NFC.String(s))
	if err != nil {
		// json.Marshal of a string cannot fail; keep the raw form if it
		// somehow does.
		buf.WriteString(strconv.Quote(s))
		return
	}
	buf.Write(b)
}

func writeCanonicalNumber(buf *bytes.Buffer, f float64) {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		buf.WriteString(strconv.FormatInt(int64(f), 10))
		return
	}
	buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
}

// NumericValue reports whether v is a numeric type, and its float64
// form. json.Number and all Go integer/float widths are accepted.
// Strings are NOT coerced here; see the engine's comparator for the
// looser coercion used by ordering operators.
func NumericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// KeyString renders a single field value for use in a "|"-joined group
// key. Strings are used as-is (NFC-normalized); everything else uses the
// canonical form. Values that themselves contain "|" can collide with
// neighbouring fields — a documented limitation of the keying scheme.
func KeyString(v any) string {
	if s, ok := v.(string); ok {
		return norm.NFC.String(s)
	}
	return Canonical(v)
}
