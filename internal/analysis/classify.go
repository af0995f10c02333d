package analysis

import (
	"github.com/KaramelBytes/dataclinic-cli/internal/table"
)

// ColumnType is the inferred semantic type of a column.
type ColumnType string

const (
	Numeric     ColumnType = "numeric"
	Categorical ColumnType = "categorical"
	Datetime    ColumnType = "datetime"
)

// Classifier thresholds. These are behavioral contracts.
const (
	classifySampleMax      = 50
	classifySampleFraction = 0.2
	numericRatio           = 0.8
	datetimeRatio          = 0.7
	// screenHeadRows is the head sample used by statistics screening and
	// numeric coercion; it is intentionally separate from the classifier sample.
	screenHeadRows = 10
)

// classifySampleSize is min(50, floor(20% of rows)), never negative.
func classifySampleSize(rows int) int {
	n := int(float64(rows) * classifySampleFraction)
	if n > classifySampleMax {
		n = classifySampleMax
	}
	if n < 0 {
		n = 0
	}
	return n
}

// Classify infers the type of column from a bounded head sample of the
// current table state. Numbers are tested before dates so that values such as
// "2020" classify as numeric.
func Classify(t *table.Table, column string) ColumnType {
	if t == nil {
		return Categorical
	}
	head := t.Head(column, classifySampleSize(t.Len()))
	sample := head[:0:0]
	for _, v := range head {
		if !table.IsMissing(v) {
			sample = append(sample, v)
		}
	}
	if len(sample) == 0 {
		return Categorical
	}
	var nums, dates int
	for _, v := range sample {
		if _, ok := table.StrictNumber(v); ok {
			nums++
		}
	}
	if float64(nums)/float64(len(sample)) >= numericRatio {
		return Numeric
	}
	for _, v := range sample {
		if _, ok := table.ParseDate(v); ok {
			dates++
		}
	}
	if float64(dates)/float64(len(sample)) >= datetimeRatio {
		return Datetime
	}
	return Categorical
}

// ClassifyAll classifies every column, keyed by name.
func ClassifyAll(t *table.Table) map[string]ColumnType {
	out := make(map[string]ColumnType, len(t.Columns))
	for _, c := range t.Columns {
		out[c] = Classify(t, c)
	}
	return out
}

// ColumnsOfType returns the columns of the given type in column order.
func ColumnsOfType(t *table.Table, types map[string]ColumnType, want ColumnType) []string {
	var out []string
	for _, c := range t.Columns {
		if types[c] == want {
			out = append(out, c)
		}
	}
	return out
}

// isScreenNumeric is the statistics-screening test: at least 80% of the
// first ten rows' cells (missing ones included in the denominator) are numbers.
func isScreenNumeric(t *table.Table, column string) bool {
	head := t.Head(column, screenHeadRows)
	if len(head) == 0 {
		return false
	}
	n := 0
	for _, v := range head {
		if _, ok := table.StrictNumber(v); ok {
			n++
		}
	}
	return float64(n) >= float64(len(head))*numericRatio
}

// NumericColumns returns the columns passing statistics screening, in column order.
func NumericColumns(t *table.Table) []string {
	var out []string
	for _, c := range t.Columns {
		if isScreenNumeric(t, c) {
			out = append(out, c)
		}
	}
	return out
}

// ScreenCategoricalColumns returns the columns failing statistics screening.
func ScreenCategoricalColumns(t *table.Table) []string {
	var out []string
	for _, c := range t.Columns {
		if !isScreenNumeric(t, c) {
			out = append(out, c)
		}
	}
	return out
}
