package table

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// UnknownLabel is the label used for missing values in grouped/labelled output.
const UnknownLabel = "Unknown"

// IsMissing reports whether a cell is missing: nil (absent key or null) or the empty string.
func IsMissing(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok && s == "" {
		return true
	}
	return false
}

// IsEmptyRow reports whether every value of r is missing.
func IsEmptyRow(r Row) bool {
	for _, v := range r {
		if !IsMissing(v) {
			return false
		}
	}
	return true
}

// asFloat converts Go numeric kinds to float64.
func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// StrictNumber reports whether v as a whole is a finite number. Strings must
// parse completely once surrounding whitespace is trimmed; booleans and nil
// never count.
func StrictNumber(v any) (float64, bool) {
	if f, ok := asFloat(v); ok {
		return f, finite(f)
	}
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	// reject the spellings ParseFloat accepts but a plain decimal reader would not
	if strings.ContainsAny(s, "_xXpP") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(f) {
		return 0, false
	}
	return f, true
}

var leadingNumber = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// LooseNumber extracts the numeric value of a cell. Strings yield their
// longest leading decimal literal, so "12kg" is 12.
func LooseNumber(v any) (float64, bool) {
	if f, ok := asFloat(v); ok {
		return f, finite(f)
	}
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	s = strings.TrimLeft(s, " \t\r\n ")
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		// exponent overflow and similar; retry without the exponent
		if i := strings.IndexAny(m, "eE"); i > 0 {
			f, err = strconv.ParseFloat(m[:i], 64)
		}
		if err != nil {
			return 0, false
		}
	}
	return f, finite(f)
}

// NumericValues returns the loose numeric values of a column, skipping cells
// without one. Order follows the rows.
func (t *Table) NumericValues(col string) []float64 {
	out := make([]float64, 0, len(t.Rows))
	for _, r := range t.Rows {
		if r == nil {
			continue
		}
		if f, ok := LooseNumber(r[col]); ok {
			out = append(out, f)
		}
	}
	return out
}

// Stringify renders a cell the way it is shown in labels and the step log.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	}
	if f, ok := asFloat(v); ok {
		return FormatNumber(f)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Label is Stringify with missing cells mapped to UnknownLabel.
func Label(v any) string {
	if v == nil {
		return UnknownLabel
	}
	return Stringify(v)
}

// FormatNumber prints integers without a fractional part and everything else
// in the shortest round-trip form.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Round2 rounds to two decimal places.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-01",
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"01-02-2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"January 2 2006",
	"2 January 2006",
	"Jan 2006",
	"January 2006",
	"Mon, 02 Jan 2006 15:04:05 MST",
	"Mon Jan 2 2006",
	time.RFC1123Z,
	time.ANSIC,
}

// ParseDate reports whether v reads as a calendar date. Bare numbers are
// accepted only as four-digit years.
func ParseDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false
		}
		for _, l := range dateLayouts {
			if t, err := time.Parse(l, s); err == nil {
				return t, true
			}
		}
		if len(s) == 4 {
			if y, err := strconv.Atoi(s); err == nil && y > 0 {
				return time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC), true
			}
		}
		return time.Time{}, false
	}
	if f, ok := asFloat(v); ok && f == math.Trunc(f) && f >= 1000 && f <= 9999 {
		return time.Date(int(f), 1, 1, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}
