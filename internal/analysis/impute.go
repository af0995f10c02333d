package analysis

import (
	"fmt"
	"sort"

	"github.com/KaramelBytes/dataclinic-cli/internal/table"
)

// Impute fills missing cells column by column, in column order, choosing the
// method from the column's inferred type at the moment it is processed. It
// returns a new table and one log entry per filled column. Row count never
// changes and columns without missing cells are skipped.
func Impute(t *table.Table) (*table.Table, []string) {
	out := t.Clone()
	for i, r := range out.Rows {
		if r == nil {
			out.Rows[i] = table.Row{}
		}
	}
	var steps []string
	for _, col := range out.Columns {
		missing := countMissing(out, col)
		if missing == 0 {
			continue
		}
		switch Classify(out, col) {
		case Numeric:
			nums := out.NumericValues(col)
			if len(nums) > 0 {
				fill := Median(nums)
				fillCells(out, col, table.Round2(fill))
				steps = append(steps, fmt.Sprintf("Replaced %d null values in '%s' (numeric) with median (%.2f)", missing, col, fill))
			} else {
				fillCells(out, col, 0.0)
				steps = append(steps, fmt.Sprintf("Replaced %d null values in '%s' (numeric) with default 0", missing, col))
			}
		case Categorical:
			fill := Mode(PresentValues(out, col))
			fillCells(out, col, fill)
			steps = append(steps, fmt.Sprintf("Replaced %d null values in '%s' (categorical) with mode (%s)", missing, col, fill))
		case Datetime:
			forwardFill(out, col)
			if countMissing(out, col) > 0 {
				backwardFill(out, col)
			}
			steps = append(steps, fmt.Sprintf("Applied forward/backward fill to %d null values in '%s' (datetime)", missing, col))
		default:
			fillCells(out, col, table.UnknownLabel)
			steps = append(steps, fmt.Sprintf("Replaced %d null values in '%s' (unknown type) with '%s'", missing, col, table.UnknownLabel))
		}
	}
	return out, steps
}

func countMissing(t *table.Table, col string) int {
	n := 0
	for _, r := range t.Rows {
		if table.IsMissing(r[col]) {
			n++
		}
	}
	return n
}

// PresentValues returns the non-missing cells of col in row order.
func PresentValues(t *table.Table, col string) []any {
	var out []any
	for _, r := range t.Rows {
		if v := r[col]; !table.IsMissing(v) {
			out = append(out, v)
		}
	}
	return out
}

// fillCells sets every missing cell of col to v, in place on rows owned by the caller.
func fillCells(t *table.Table, col string, v any) {
	for _, r := range t.Rows {
		if table.IsMissing(r[col]) {
			r[col] = v
		}
	}
}

func forwardFill(t *table.Table, col string) {
	var last any
	for _, r := range t.Rows {
		if v := r[col]; !table.IsMissing(v) {
			last = v
		} else if last != nil {
			r[col] = last
		}
	}
}

func backwardFill(t *table.Table, col string) {
	var next any
	for i := len(t.Rows) - 1; i >= 0; i-- {
		r := t.Rows[i]
		if v := r[col]; !table.IsMissing(v) {
			next = v
		} else if next != nil {
			r[col] = next
		}
	}
}

// Median is the textbook median (mean of the two middle elements for even
// lengths) used when imputing. Statistics use UpperMedian instead.
func Median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	s := sortedCopy(vals)
	mid := len(s) / 2
	if len(s)%2 == 0 {
		return (s[mid-1] + s[mid]) / 2
	}
	return s[mid]
}

// UpperMedian returns sorted[n/2]: for even lengths the upper middle element.
func UpperMedian(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	s := sortedCopy(vals)
	return s[len(s)/2]
}

func sortedCopy(vals []float64) []float64 {
	s := make([]float64, len(vals))
	copy(s, vals)
	sort.Float64s(s)
	return s
}

// ModeValue returns the most frequent value of vals, compared by their
// string form. Ties go to the value seen first; the raw value is returned.
func ModeValue(vals []any) (any, bool) {
	if len(vals) == 0 {
		return nil, false
	}
	counts := make(map[string]int)
	first := make(map[string]any)
	var order []string
	for _, v := range vals {
		k := table.Stringify(v)
		if counts[k] == 0 {
			order = append(order, k)
			first[k] = v
		}
		counts[k]++
	}
	best := order[0]
	for _, k := range order[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return first[best], true
}

// Mode is ModeValue in string form, or the unknown label for no values.
func Mode(vals []any) string {
	v, ok := ModeValue(vals)
	if !ok {
		return table.UnknownLabel
	}
	return table.Stringify(v)
}
