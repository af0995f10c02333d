package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/dataclinic-cli/internal/table"
)

// Report is a markdown-friendly view of a cleaned dataset.
type Report struct {
	Name        string
	Rows        int
	Cols        []ColumnSummary
	Steps       []string
	Corr        Correlations
	Samples     []table.Row
	Suggestions []Suggestion
}

// ColumnSummary captures inferred type and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    ColumnType
	NonNull int
	Missing int
	Unique  int
	Stats   *ColumnStats
	// Categorical top values
	TopValues []CategoryCount
}

type CategoryCount struct {
	Value string
	Count int
}

// ReportOptions controls what BuildReport includes.
type ReportOptions struct {
	SampleRows   int
	TopValues    int
	Correlations bool
}

// DefaultReportOptions returns reasonable defaults for a report.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{SampleRows: 5, TopValues: 5, Correlations: true}
}

// BuildReport summarizes a cleaned table together with its step log.
func BuildReport(name string, t *table.Table, steps []string, opt ReportOptions) *Report {
	r := &Report{Name: name, Rows: t.Len(), Steps: steps}
	types := ClassifyAll(t)
	stats := DescriptiveStats(t)
	for _, c := range t.Columns {
		cs := ColumnSummary{Name: c, Kind: types[c]}
		counts := make(map[string]int)
		var order []string
		for _, v := range t.Values(c) {
			if table.IsMissing(v) {
				cs.Missing++
				continue
			}
			cs.NonNull++
			k := table.Stringify(v)
			if counts[k] == 0 {
				order = append(order, k)
			}
			counts[k]++
		}
		cs.Unique = len(order)
		if st, ok := stats.Get(c); ok {
			cs.Stats = &st
		} else if opt.TopValues > 0 {
			sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
			for i := 0; i < len(order) && i < opt.TopValues; i++ {
				cs.TopValues = append(cs.TopValues, CategoryCount{Value: order[i], Count: counts[order[i]]})
			}
		}
		r.Cols = append(r.Cols, cs)
	}
	if opt.Correlations {
		r.Corr = CorrelationMatrix(t)
	}
	for i := 0; i < len(t.Rows) && i < opt.SampleRows; i++ {
		r.Samples = append(r.Samples, t.Rows[i])
	}
	r.Suggestions = GenerateSuggestions(t)
	return r
}

// Markdown renders the report as plain sections suitable for a prompt or a file.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	if len(r.Steps) > 0 {
		b.WriteString("[PREPROCESSING]\n")
		for _, s := range r.Steps {
			b.WriteString("- " + s + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct))
		if s := c.Stats; s != nil {
			b.WriteString(fmt.Sprintf(" - min %.4g, max %.4g, mean %.4g, median %.4g, std %.4g", s.Min, s.Max, s.Mean, s.Median, s.Std))
		} else if len(c.TopValues) > 0 {
			b.WriteString(" - top: ")
			for i, kv := range c.TopValues {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
			}
			if c.Unique > len(c.TopValues) {
				b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
			}
		}
		b.WriteString("\n")
	}

	if top := r.Corr.Strongest(10); len(top) > 0 {
		b.WriteString("\n[CORRELATIONS]\n")
		for _, p := range top {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
		}
		if undefined := len(r.Corr) - len(r.Corr.Strongest(-1)); undefined > 0 {
			b.WriteString(fmt.Sprintf("- %d pair(s) undefined (constant column)\n", undefined))
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n| ")
		for i, c := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n| ")
		for i := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i, c := range r.Cols {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if v, ok := row[c.Name]; ok && v != nil {
					val = table.Stringify(v)
				}
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}

	if len(r.Suggestions) > 0 {
		b.WriteString("\n[SUGGESTIONS]\n")
		for _, s := range r.Suggestions {
			b.WriteString(fmt.Sprintf("- [%s] %s (%s, confidence %.0f%%)\n", s.Type, s.Title, s.ID, math.Round(s.Confidence*100)))
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
