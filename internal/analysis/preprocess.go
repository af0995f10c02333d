package analysis

import (
	"fmt"

	"github.com/KaramelBytes/dataclinic-cli/internal/parser"
	"github.com/KaramelBytes/dataclinic-cli/internal/table"
)

// NoValidRowsStep is the single step reported when nothing survives row validation.
const NoValidRowsStep = "No valid data rows available for processing"

// Preprocess runs the fixed cleaning pipeline over raw rows:
//
//  1. drop rows that are nil or have no keys
//  2. remove fully empty rows
//  3. impute missing values column by column
//  4. remove exact duplicates
//  5. coerce screen-numeric columns to numbers
//
// Imputation runs before deduplication and coercion so that filled values
// take part in both. Each step logs only when it changed something. The
// input table is not modified.
func Preprocess(raw *table.Table) (*table.Table, []string) {
	var cols []string
	var rows []table.Row
	if raw != nil {
		cols = raw.Columns
		for _, r := range raw.Rows {
			if len(r) == 0 {
				continue
			}
			rows = append(rows, r.Clone())
		}
	}
	if len(rows) == 0 {
		return &table.Table{}, []string{NoValidRowsStep}
	}
	t := table.NewWithColumns(cols, rows)
	t = t.WithRows(t.Rows)
	var steps []string

	t, removed := RemoveEmptyRows(t)
	if removed > 0 {
		steps = append(steps, fmt.Sprintf("Removed %d empty rows", removed))
	}

	t, filled := Impute(t)
	steps = append(steps, filled...)

	t, dups := Dedupe(t)
	if dups > 0 {
		steps = append(steps, fmt.Sprintf("Removed %d duplicate rows", dups))
	}

	t, converted := CoerceNumeric(t)
	for _, c := range converted {
		steps = append(steps, fmt.Sprintf("Converted '%s' to numeric type", c))
	}
	return t, steps
}

// PreprocessRows is Preprocess over a plain row slice.
func PreprocessRows(rows []table.Row) (*table.Table, []string) {
	return Preprocess(table.New(rows))
}

// PreprocessJSON decodes a JSON array of records and preprocesses it.
// Elements that are not objects are discarded and noted in the step log.
func PreprocessJSON(data []byte) (*table.Table, []string, error) {
	raw, skipped, err := parser.DecodeJSON(data)
	if err != nil {
		return nil, nil, err
	}
	t, steps := PreprocessUpload(&parser.Result{Table: raw, Format: "json", Skipped: skipped})
	return t, steps, nil
}

// PreprocessUpload preprocesses a parsed upload. Records the parser dropped
// are noted ahead of the pipeline steps.
func PreprocessUpload(res *parser.Result) (*table.Table, []string) {
	t, steps := Preprocess(res.Table)
	if res.Skipped > 0 {
		steps = append([]string{fmt.Sprintf("Skipped %d records that were not objects", res.Skipped)}, steps...)
	}
	return t, steps
}

// CoerceNumeric converts every cell with a numeric reading to float64 in each
// column that passes the ten-row screening test. Cells without a numeric
// reading are left as they are. It returns the columns where at least one
// cell changed; applying it twice is a no-op.
func CoerceNumeric(t *table.Table) (*table.Table, []string) {
	out := t.Clone()
	var changed []string
	for _, col := range out.Columns {
		if !isScreenNumeric(out, col) {
			continue
		}
		n := 0
		for _, r := range out.Rows {
			v, ok := r[col]
			if !ok {
				continue
			}
			f, isNum := table.LooseNumber(v)
			if !isNum {
				continue
			}
			if _, already := v.(float64); already {
				continue
			}
			r[col] = f
			if _, isString := v.(string); isString {
				n++
			}
		}
		if n > 0 {
			changed = append(changed, col)
		}
	}
	return out, changed
}
