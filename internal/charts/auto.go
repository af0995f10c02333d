package charts

import (
	"math"
	"sort"

	"github.com/KaramelBytes/dataclinic-cli/internal/analysis"
	"github.com/KaramelBytes/dataclinic-cli/internal/table"
)

// Pie auto-selection keeps columns with a manageable number of categories.
const (
	pieMinCategories = 2
	pieMaxCategories = 12
)

// AutoHistograms picks up to n screening-numeric columns with the largest
// population variance. Columns without numeric values rank last.
func AutoHistograms(t *table.Table, n int) []*Spec {
	type ranked struct {
		col      string
		variance float64
		values   []float64
	}
	var cands []ranked
	for _, c := range analysis.NumericColumns(t) {
		vals := t.NumericValues(c)
		v := math.Inf(-1)
		if len(vals) > 0 {
			v = analysis.Variance(vals)
		}
		cands = append(cands, ranked{c, v, vals})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].variance > cands[j].variance })
	var out []*Spec
	for i := 0; i < len(cands) && i < n; i++ {
		out = append(out, &Spec{Kind: KindHistogram, Column: cands[i].col, Values: cands[i].values})
	}
	return out
}

// AutoScatter picks up to n pairs of screening-numeric columns with the
// strongest absolute correlation. Only pairs whose filtered value lists have
// the same length, greater than one, are considered; undefined coefficients
// rank last.
func AutoScatter(t *table.Table, n int) []*Spec {
	type pair struct {
		x, y string
		r    float64
	}
	cols := analysis.NumericColumns(t)
	vals := make([][]float64, len(cols))
	for i, c := range cols {
		vals[i] = t.NumericValues(c)
	}
	var pairs []pair
	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			if len(vals[i]) > 1 && len(vals[j]) > 1 && len(vals[i]) == len(vals[j]) {
				pairs = append(pairs, pair{cols[i], cols[j], analysis.Pearson(vals[i], vals[j])})
			}
		}
	}
	strength := func(r float64) float64 {
		if math.IsNaN(r) {
			return -1
		}
		return math.Abs(r)
	}
	sort.SliceStable(pairs, func(i, j int) bool { return strength(pairs[i].r) > strength(pairs[j].r) })
	b := NewBuilder(t)
	var out []*Spec
	for i := 0; i < len(pairs) && i < n; i++ {
		out = append(out, &Spec{Kind: KindScatter, X: pairs[i].x, Y: pairs[i].y, Points: b.points(pairs[i].x, pairs[i].y)})
	}
	return out
}

// AutoPie picks up to n screening-categorical columns whose distinct label
// count lies in [2, 12], most categories first.
func AutoPie(t *table.Table, n int) []*Spec {
	b := NewBuilder(t)
	var cands []*Spec
	for _, c := range analysis.ScreenCategoricalColumns(t) {
		s, err := b.Pie(c)
		if err != nil {
			continue
		}
		if k := len(s.Slices); k >= pieMinCategories && k <= pieMaxCategories {
			cands = append(cands, s)
		}
	}
	sort.SliceStable(cands, func(i, j int) bool { return len(cands[i].Slices) > len(cands[j].Slices) })
	if len(cands) > n {
		cands = cands[:n]
	}
	return cands
}

// AutoLines plots up to n numeric columns over the first datetime column.
func AutoLines(t *table.Table, n int) []*Spec {
	types := analysis.ClassifyAll(t)
	dates := analysis.ColumnsOfType(t, types, analysis.Datetime)
	nums := analysis.ColumnsOfType(t, types, analysis.Numeric)
	if len(dates) == 0 {
		return nil
	}
	b := NewBuilder(t)
	var out []*Spec
	for i := 0; i < len(nums) && i < n; i++ {
		s, err := b.Line(dates[0], nums[i])
		if err != nil {
			continue
		}
		out = append(out, s)
	}
	return out
}
