package trigger

import (
	"fmt"
	"strconv"
	"strings"
)

// ExtractTrimmedNonEmptyValues turns a raw column of cell values into trimmed,
// non-empty strings. With dropQueryString each value is cut at its first '?'.
// Order and duplicates are preserved.
func ExtractTrimmedNonEmptyValues(raw []any, dropQueryString bool) []string {
	values := make([]string, 0, len(raw))
	for _, cell := range raw {
		v := strings.TrimSpace(scalarString(cell))
		if dropQueryString {
			v, _, _ = strings.Cut(v, "?")
			v = strings.TrimSpace(v)
		}
		if v == "" {
			continue
		}
		values = append(values, v)
	}
	return values
}

// scalarString renders a decoded JSON scalar the way a spreadsheet shows it.
func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
