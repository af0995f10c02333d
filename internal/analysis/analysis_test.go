package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/KaramelBytes/dataclinic-cli/internal/table"
)

func col(name string, vals ...any) []table.Row {
	rows := make([]table.Row, len(vals))
	for i, v := range vals {
		rows[i] = table.Row{name: v}
	}
	return rows
}

func TestClassifyNumericBeforeDatetime(t *testing.T) {
	var vals []any
	for y := 2020; y < 2030; y++ {
		vals = append(vals, fmt.Sprint(y))
	}
	tbl := table.New(col("year", vals...))
	if got := Classify(tbl, "year"); got != Numeric {
		t.Fatalf("Classify(year) = %s, want numeric", got)
	}
	if Classify(tbl, "year") != Classify(tbl, "year") {
		t.Fatalf("classification not stable")
	}
}

func TestClassifyDatetimeAndEmptySample(t *testing.T) {
	dates := table.New(col("d", "2024-01-01", "2024-02-01", "x", "2024-04-01", "2024-05-01"))
	if got := Classify(dates, "d"); got != Datetime {
		t.Fatalf("Classify(d) = %s, want datetime", got)
	}
	// fewer than five rows gives a zero-size sample
	small := table.New(col("v", 1.0, 2.0, 3.0))
	if got := Classify(small, "v"); got != Categorical {
		t.Fatalf("Classify(small) = %s, want categorical", got)
	}
}

func TestScreeningIsSeparateFromClassifier(t *testing.T) {
	small := table.New(col("v", 1.0, 2.0, 3.0))
	if cols := NumericColumns(small); len(cols) != 1 || cols[0] != "v" {
		t.Fatalf("NumericColumns = %v, want [v]", cols)
	}
	edge := table.New(col("m", "1", "2", "a", "b", "5", "6", "7", "8", "9", "10"))
	if cols := NumericColumns(edge); len(cols) != 1 {
		t.Fatalf("NumericColumns = %v, want [m] at exactly 80%%", cols)
	}
	below := table.New(col("m", "1", "2", "a", "b", "c", "6", "7", "8", "9", "10"))
	if cols := NumericColumns(below); len(cols) != 0 {
		t.Fatalf("NumericColumns = %v, want none", cols)
	}
}

func TestImputeNumericUsesRoundedMedian(t *testing.T) {
	tbl := table.New(col("v", 1.0, 2.0, nil, 4.0, 3.0))
	out, steps := Impute(tbl)
	if got := out.Rows[2]["v"]; got != 2.5 {
		t.Fatalf("filled value = %v, want 2.5", got)
	}
	want := []string{"Replaced 1 null values in 'v' (numeric) with median (2.50)"}
	if !reflect.DeepEqual(steps, want) {
		t.Fatalf("steps = %q, want %q", steps, want)
	}
	if tbl.Rows[2]["v"] != nil {
		t.Fatalf("input table mutated")
	}
}

func TestImputeCategoricalMode(t *testing.T) {
	tbl := table.New(col("c", "b", "a", "", "a", "b", nil))
	out, steps := Impute(tbl)
	for i, r := range out.Rows {
		if table.IsMissing(r["c"]) {
			t.Fatalf("row %d still missing", i)
		}
	}
	// b and a tie; b was seen first
	if out.Rows[2]["c"] != "b" {
		t.Fatalf("mode fill = %v, want b", out.Rows[2]["c"])
	}
	if len(steps) != 1 || !strings.Contains(steps[0], "(categorical) with mode (b)") {
		t.Fatalf("steps = %q", steps)
	}
}

func TestModeValueKeepsRawFirstSeen(t *testing.T) {
	v, ok := ModeValue([]any{1.0, 2.0, 2.0, 1.0})
	if !ok || v != 1.0 {
		t.Fatalf("mode = %#v, want 1.0", v)
	}
	if v, _ := ModeValue([]any{"Rome", "Paris", "Paris"}); v != "Paris" {
		t.Fatalf("mode = %#v", v)
	}
	if _, ok := ModeValue(nil); ok || Mode(nil) != table.UnknownLabel {
		t.Fatalf("empty input should have no mode")
	}
}

func TestImputeDatetimeForwardThenBackward(t *testing.T) {
	tbl := table.New(col("d", "", "2024-01-02", nil, "2024-01-04", "2024-01-05",
		"2024-01-06", "2024-01-07", "2024-01-08", "2024-01-09", "2024-01-10"))
	out, steps := Impute(tbl)
	if out.Rows[0]["d"] != "2024-01-02" || out.Rows[2]["d"] != "2024-01-02" {
		t.Fatalf("fill = %v / %v", out.Rows[0]["d"], out.Rows[2]["d"])
	}
	want := "Applied forward/backward fill to 2 null values in 'd' (datetime)"
	if len(steps) != 1 || steps[0] != want {
		t.Fatalf("steps = %q", steps)
	}
}

func TestImputeLeavesNoMissingWhereValuesExist(t *testing.T) {
	tbl := table.NewWithColumns([]string{"n", "c", "empty"}, []table.Row{
		{"n": 1.0, "c": "x", "empty": nil},
		{"n": nil, "c": "", "empty": ""},
		{"c": "y"},
		{"n": 5.0, "c": nil},
		{"n": "7", "c": "x"},
		{"n": 3.0},
	})
	out, _ := Impute(tbl)
	if out.Len() != tbl.Len() {
		t.Fatalf("row count changed: %d -> %d", tbl.Len(), out.Len())
	}
	for _, c := range []string{"n", "c"} {
		for i, v := range out.Values(c) {
			if table.IsMissing(v) {
				t.Fatalf("%s row %d still missing", c, i)
			}
		}
	}
	if v := out.Rows[0]["empty"]; v != table.UnknownLabel {
		t.Fatalf("all-missing column filled with %v, want Unknown", v)
	}
}

func TestDedupeIdempotentAndOrdered(t *testing.T) {
	tbl := table.New([]table.Row{
		{"a": 1.0, "b": "x"},
		{"b": "x", "a": 1.0},
		{"a": 2.0, "b": "y"},
		{"a": 1.0, "b": "x"},
		{"a": math.NaN()},
		{"a": math.NaN()},
	})
	once, removed := Dedupe(tbl)
	if removed != 3 {
		t.Fatalf("removed = %d, want 3", removed)
	}
	twice, again := Dedupe(once)
	if again != 0 || !reflect.DeepEqual(rowKeys(once), rowKeys(twice)) {
		t.Fatalf("dedupe not idempotent")
	}
	if once.Rows[1]["a"] != 2.0 {
		t.Fatalf("order not preserved: %v", once.Rows)
	}
	if n := CountDuplicates(tbl); n != 3 {
		t.Fatalf("CountDuplicates = %d, want 3", n)
	}
}

func rowKeys(t *table.Table) []string {
	var out []string
	for _, r := range t.Rows {
		out = append(out, rowKey(r))
	}
	return out
}

func TestRemoveEmptyRows(t *testing.T) {
	tbl := table.New([]table.Row{{"a": ""}, {"a": 1.0}, {"a": nil, "b": ""}})
	out, n := RemoveEmptyRows(tbl)
	if n != 2 || out.Len() != 1 {
		t.Fatalf("removed %d, left %d", n, out.Len())
	}
}

func TestPreprocessScenario(t *testing.T) {
	raw := table.NewWithColumns([]string{"a", "b"}, []table.Row{
		{"a": 1.0, "b": "x"},
		{"a": nil, "b": "x"},
		{"a": 1.0, "b": "x"},
	})
	out, steps := Preprocess(raw)
	if out.Len() != 2 {
		t.Fatalf("rows = %d, want 2", out.Len())
	}
	for i, r := range out.Rows {
		if r["a"] != 1.0 {
			t.Fatalf("row %d a = %#v, want 1.0", i, r["a"])
		}
	}
	want := []string{
		"Replaced 1 null values in 'a' (categorical) with mode (1)",
		"Removed 1 duplicate rows",
		"Converted 'a' to numeric type",
	}
	if !reflect.DeepEqual(steps, want) {
		t.Fatalf("steps = %q\nwant %q", steps, want)
	}
	if raw.Rows[1]["a"] != nil {
		t.Fatalf("input mutated")
	}
}

func TestPreprocessNoValidRows(t *testing.T) {
	out, steps := PreprocessRows([]table.Row{nil, {}})
	if out.Len() != 0 || len(steps) != 1 || steps[0] != NoValidRowsStep {
		t.Fatalf("got %d rows, steps %q", out.Len(), steps)
	}
}

func TestPreprocessEmptyRowsAndCoercionIdempotent(t *testing.T) {
	raw := table.NewWithColumns([]string{"n", "s"}, []table.Row{
		{"n": "10", "s": "a"},
		{"n": "", "s": ""},
		{"n": "12kg", "s": "b"},
		{"n": "14", "s": "c"},
		{"n": "16", "s": "d"},
		{"n": "18", "s": "e"},
	})
	out, steps := Preprocess(raw)
	if steps[0] != "Removed 1 empty rows" {
		t.Fatalf("first step = %q", steps[0])
	}
	if out.Rows[1]["n"] != 12.0 {
		t.Fatalf("loose coercion = %#v, want 12", out.Rows[1]["n"])
	}
	again, converted := CoerceNumeric(out)
	if len(converted) != 0 || !reflect.DeepEqual(again.Rows, out.Rows) {
		t.Fatalf("coercion not idempotent: %v", converted)
	}
}

func TestPreprocessJSONSkipsNonObjects(t *testing.T) {
	out, steps, err := PreprocessJSON([]byte(`[{"a": 1, "b": "x"}, 42, "text", {"a": 2, "b": "y"}]`))
	if err != nil {
		t.Fatalf("PreprocessJSON: %v", err)
	}
	if out.Len() != 2 {
		t.Fatalf("rows = %d, want 2", out.Len())
	}
	if len(steps) == 0 || steps[0] != "Skipped 2 records that were not objects" {
		t.Fatalf("steps = %q", steps)
	}
	if !reflect.DeepEqual(out.Columns, []string{"a", "b"}) {
		t.Fatalf("columns = %v", out.Columns)
	}
}

func TestUpperMedianAndPopulationStd(t *testing.T) {
	if got := UpperMedian([]float64{1, 2, 3, 4}); got != 3 {
		t.Fatalf("UpperMedian = %v, want 3", got)
	}
	if got := Median([]float64{1, 2, 3, 4}); got != 2.5 {
		t.Fatalf("Median = %v, want 2.5", got)
	}
	s := Summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if s.Std != 2 || s.Mean != 5 {
		t.Fatalf("std = %v mean = %v, want 2 and 5", s.Std, s.Mean)
	}
}

func TestDescriptiveStatsOrderAndValues(t *testing.T) {
	var rows []table.Row
	for i := 1; i <= 4; i++ {
		rows = append(rows, table.Row{"z": float64(i), "label": fmt.Sprint("r", i), "a": float64(i * 10)})
	}
	tbl := table.NewWithColumns([]string{"z", "label", "a"}, rows)
	st := DescriptiveStats(tbl)
	if !reflect.DeepEqual(st.Columns, []string{"z", "a"}) {
		t.Fatalf("columns = %v", st.Columns)
	}
	z, _ := st.Get("z")
	if z.Count != 4 || z.Median != 3 || z.Min != 1 || z.Max != 4 || z.Mean != 2.5 {
		t.Fatalf("z stats = %+v", z)
	}
	if _, ok := st.Get("label"); ok {
		t.Fatalf("label should not have stats")
	}
}

func TestPearson(t *testing.T) {
	if r := Pearson([]float64{1, 2, 3}, []float64{2, 4, 6}); math.Abs(r-1) > 1e-9 {
		t.Fatalf("r = %v, want 1", r)
	}
	if r := Pearson([]float64{1, 1, 1}, []float64{1, 2, 3}); !math.IsNaN(r) {
		t.Fatalf("r = %v, want NaN", r)
	}
}

func TestCorrelationMissingColumn(t *testing.T) {
	tbl := table.New([]table.Row{{"x": 1.0, "y": 2.0}})
	if _, err := Correlation(tbl, "x", "nope"); !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("err = %v, want ErrColumnNotFound", err)
	}
}

func TestCorrelationMatrixKeysAndJSON(t *testing.T) {
	tbl := table.NewWithColumns([]string{"x", "y", "k"}, []table.Row{
		{"x": 1.0, "y": 2.0, "k": 5.0},
		{"x": 2.0, "y": 4.0, "k": 5.0},
		{"x": 3.0, "y": 6.0, "k": 5.0},
	})
	m := CorrelationMatrix(tbl)
	var keys []string
	for _, p := range m {
		keys = append(keys, p.Key)
	}
	if !reflect.DeepEqual(keys, []string{"x_y", "x_k", "y_k"}) {
		t.Fatalf("keys = %v", keys)
	}
	if r, _ := m.Get("x_k"); !math.IsNaN(r) {
		t.Fatalf("x_k = %v, want NaN", r)
	}
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"key":"x_k","a":"x","b":"k","r":null`) {
		t.Fatalf("json = %s", b)
	}
	var back Correlations
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r, _ := back.Get("x_k"); !math.IsNaN(r) {
		t.Fatalf("round trip lost NaN: %v", r)
	}
}

func suggestionTable() *table.Table {
	var rows []table.Row
	for i := 0; i < 10; i++ {
		rows = append(rows, table.Row{
			"x":   float64(i),
			"y":   float64(i * 2),
			"z":   float64(10 - i),
			"cat": []string{"red", "blue"}[i%2],
		})
	}
	return table.NewWithColumns([]string{"x", "y", "z", "cat"}, rows)
}

func TestGenerateSuggestionsNumericAndCategorical(t *testing.T) {
	got := GenerateSuggestions(suggestionTable())
	var actions []string
	for _, s := range got {
		actions = append(actions, s.Action)
		if s.Applied {
			t.Fatalf("%s starts applied", s.ID)
		}
	}
	want := []string{
		ActionCorrelation,
		ActionDescriptiveStats,
		ActionHistograms,
		ActionScatterPlots,
		ActionPieCharts,
	}
	if !reflect.DeepEqual(actions, want) {
		t.Fatalf("actions = %v\nwant %v", actions, want)
	}
}

func TestGenerateSuggestionsCleaning(t *testing.T) {
	tbl := table.NewWithColumns([]string{"v", "when"}, []table.Row{
		{"v": 1.0, "when": "2024-01-01"},
		{"v": 2.0, "when": "2024-01-02"},
		{"v": nil, "when": "2024-01-03"},
		{"v": 4.0, "when": "2024-01-04"},
		{"v": 5.0, "when": "2024-01-05"},
		{"v": 5.0, "when": "2024-01-05"},
	})
	got := GenerateSuggestions(tbl)
	if got[0].ID != "missing-v" || got[0].Action != "fill_median_v" || got[0].Confidence != 0.95 {
		t.Fatalf("first = %+v", got[0])
	}
	if got[1].ID != "duplicates" || got[1].Description != "Found 1 duplicate rows. Consider removing duplicates to improve data quality." {
		t.Fatalf("second = %+v", got[1])
	}
	last := got[len(got)-1]
	if last.Action != ActionLineChartsDatetime {
		t.Fatalf("last = %+v", last)
	}
}

func TestMarkAppliedFlipsOnce(t *testing.T) {
	list := GenerateSuggestions(suggestionTable())
	if !MarkApplied(list, "histogram") {
		t.Fatalf("first MarkApplied returned false")
	}
	if MarkApplied(list, "histogram") {
		t.Fatalf("second MarkApplied returned true")
	}
	s, _ := FindSuggestion(list, "histogram")
	if !s.Applied {
		t.Fatalf("not applied")
	}
	if MarkApplied(list, "nope") {
		t.Fatalf("unknown id applied")
	}
}

func TestComputeInsights(t *testing.T) {
	tbl := suggestionTable()
	in := ComputeInsights(tbl, DescriptiveStats(tbl))
	if in.TotalRows != 10 || in.TotalColumns != 4 || in.NumericColumns != 3 || in.CategoricalColumns != 1 {
		t.Fatalf("insights = %+v", in)
	}
	if in.BasicStats.TotalNumericValues != 30 {
		t.Fatalf("total numeric = %d", in.BasicStats.TotalNumericValues)
	}
	// means: 4.5, 9, 5.5
	if math.Abs(in.BasicStats.AverageMean-19.0/3) > 1e-9 {
		t.Fatalf("average mean = %v", in.BasicStats.AverageMean)
	}
}

func TestReportMarkdownSections(t *testing.T) {
	tbl := suggestionTable()
	md := BuildReport("sales.csv", tbl, []string{"Removed 1 empty rows"}, DefaultReportOptions()).Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]", "File: sales.csv", "Rows: 10",
		"[PREPROCESSING]", "- Removed 1 empty rows",
		"[SCHEMA]", "- x: numeric", "- cat: categorical",
		"[CORRELATIONS]", "x ~ y: r=1.000",
		"[HEAD AND SAMPLE ROWS]", "[SUGGESTIONS]",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}
