package command

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/dataclinic-cli/internal/analysis"
	"github.com/KaramelBytes/dataclinic-cli/internal/charts"
	"github.com/KaramelBytes/dataclinic-cli/internal/table"
)

// Outcome is the result of applying an Action. Table and Step are set only
// when the table changed; Chart only when a chart was built.
type Outcome struct {
	Message string
	Chart   *charts.Spec
	Table   *table.Table
	Step    string
	Err     error
}

// Changed reports whether the outcome replaces the table.
func (o Outcome) Changed() bool { return o.Table != nil }

// Apply executes a on t. It never mutates t; resolution and build failures
// come back as a message with Err set and no table.
func Apply(a Action, t *table.Table) Outcome {
	if a.Err != nil {
		return Outcome{Message: a.Message, Err: a.Err}
	}
	if a.Op != OpDescribe && a.Op != OpUnrecognized {
		if len(a.Columns) == 0 {
			return Outcome{Message: HelpText}
		}
		for _, c := range a.Columns {
			if !t.HasColumn(c) {
				err := &UnresolvedColumnError{Name: c}
				return Outcome{Message: fmt.Sprintf("Column '%s' not found.", c), Err: err}
			}
		}
	}
	switch a.Op {
	case OpChart:
		return applyChart(a, t)
	case OpBarAuto:
		return applyBarAuto(a, t)
	case OpFill:
		return applyFill(a, t)
	case OpRemoveNullRows:
		return applyRemoveNullRows(a, t)
	case OpDropColumn:
		return applyDropColumn(a, t)
	case OpRenameColumn:
		return applyRename(a, t)
	case OpDescribe:
		return Outcome{Message: describe(t)}
	}
	msg := a.Message
	if msg == "" {
		msg = HelpText
	}
	return Outcome{Message: msg}
}

func chartOutcome(s *charts.Spec, err error, note string) Outcome {
	if err != nil {
		return Outcome{Message: err.Error(), Err: err}
	}
	return Outcome{Chart: s, Message: strings.TrimSpace(fmt.Sprintf("Added %s. %s", s.Title(), note))}
}

func applyChart(a Action, t *table.Table) Outcome {
	s, err := charts.NewBuilder(t).Build(a.Chart, a.Columns, charts.AggMean)
	return chartOutcome(s, err, a.Note())
}

func countNumeric(t *table.Table, col string) int {
	return len(t.NumericValues(col))
}

// applyBarAuto puts the more numeric of the two columns on y and plots its
// mean per x label, falling back to counts of x when y has no numbers.
func applyBarAuto(a Action, t *table.Table) Outcome {
	x, y := a.Columns[0], a.Columns[1]
	if countNumeric(t, x) > countNumeric(t, y) {
		x, y = y, x
	}
	b := charts.NewBuilder(t)
	if countNumeric(t, y) > 0 {
		s, err := b.BarAgg(y, x, charts.AggMean)
		return chartOutcome(s, err, a.Note())
	}
	s, err := b.BarCount(x)
	return chartOutcome(s, err, a.Note())
}

// fillValue computes the replacement for a fill strategy. mean and median
// use the column's current numeric values, mode its present raw values.
// Unknown strategies are literal values.
func fillValue(t *table.Table, col, strategy string) any {
	switch strategy {
	case "mode":
		if v, ok := analysis.ModeValue(analysis.PresentValues(t, col)); ok {
			return v
		}
		return 0.0
	case "mean", "median":
	default:
		return strategy
	}
	vals := t.NumericValues(col)
	if len(vals) == 0 {
		return 0.0
	}
	if strategy == "mean" {
		return analysis.Mean(vals)
	}
	return analysis.UpperMedian(vals)
}

func applyFill(a Action, t *table.Table) Outcome {
	col := a.Columns[0]
	v := fillValue(t, col, a.Strategy)
	out := t.Clone()
	for i, r := range out.Rows {
		if r == nil {
			r = table.Row{}
			out.Rows[i] = r
		}
		if table.IsMissing(r[col]) {
			r[col] = v
		}
	}
	return Outcome{
		Table:   out,
		Step:    fmt.Sprintf("Filled nulls in '%s' with %s", col, table.Stringify(v)),
		Message: strings.TrimSpace(fmt.Sprintf("Filled nulls in %s. %s", col, a.Note())),
	}
}

func applyRemoveNullRows(a Action, t *table.Table) Outcome {
	col := a.Columns[0]
	kept := make([]table.Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		if !table.IsMissing(r[col]) {
			kept = append(kept, r.Clone())
		}
	}
	removed := len(t.Rows) - len(kept)
	return Outcome{
		Table:   t.WithRows(kept),
		Step:    fmt.Sprintf("Removed %d rows where '%s' was null", removed, col),
		Message: strings.TrimSpace(fmt.Sprintf("Removed %d rows with null %s. %s", removed, col, a.Note())),
	}
}

func applyDropColumn(a Action, t *table.Table) Outcome {
	col := a.Columns[0]
	out := t.Clone()
	for _, r := range out.Rows {
		delete(r, col)
	}
	cols := make([]string, 0, len(out.Columns))
	for _, c := range out.Columns {
		if c != col {
			cols = append(cols, c)
		}
	}
	out.Columns = cols
	return Outcome{
		Table:   out,
		Step:    fmt.Sprintf("Dropped column '%s'", col),
		Message: strings.TrimSpace(fmt.Sprintf("Dropped column %s. %s", col, a.Note())),
	}
}

// applyRename moves values to the new key, keeping the column's position. A
// column already named like the target is replaced.
func applyRename(a Action, t *table.Table) Outcome {
	from, to := a.Columns[0], a.NewName
	out := t.Clone()
	if from != to {
		for _, r := range out.Rows {
			v, ok := r[from]
			delete(r, from)
			if ok {
				r[to] = v
			} else {
				delete(r, to)
			}
		}
		cols := make([]string, 0, len(out.Columns))
		for _, c := range out.Columns {
			switch c {
			case from:
				cols = append(cols, to)
			case to:
			default:
				cols = append(cols, c)
			}
		}
		out.Columns = cols
	}
	return Outcome{
		Table:   out,
		Step:    fmt.Sprintf("Renamed column '%s' to '%s'", from, to),
		Message: strings.TrimSpace(fmt.Sprintf("Renamed column %s to %s. %s", from, to, a.Note())),
	}
}

func describe(t *table.Table) string {
	return fmt.Sprintf("Rows: %d. Columns: %d. Numeric: %d. Suggestions available: %d.",
		t.Len(), len(t.Columns), len(analysis.NumericColumns(t)), len(analysis.GenerateSuggestions(t)))
}
