package charts

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/dataclinic-cli/internal/analysis"
	"github.com/KaramelBytes/dataclinic-cli/internal/table"
)

// ErrColumnNotFound signals a usage error: the column is not in the table.
// A column without numeric data is not an error and yields an empty spec.
var ErrColumnNotFound = analysis.ErrColumnNotFound

// ErrUnsupportedAgg is returned by BarAgg for aggregations other than mean.
var ErrUnsupportedAgg = errors.New("unsupported aggregation")

// AggMean is the only supported bar aggregation.
const AggMean = "mean"

// Builder derives chart specs from one table. It never modifies the table.
type Builder struct {
	t *table.Table
}

// NewBuilder binds a builder to t.
func NewBuilder(t *table.Table) *Builder {
	return &Builder{t: t}
}

func (b *Builder) require(cols ...string) error {
	for _, c := range cols {
		if !b.t.HasColumn(c) {
			return fmt.Errorf("%w: %s", ErrColumnNotFound, c)
		}
	}
	return nil
}

// labelOf is the category label of a cell; missing cells group under "Unknown".
func labelOf(v any) string {
	if table.IsMissing(v) {
		return table.UnknownLabel
	}
	return table.Stringify(v)
}

// Histogram returns the numeric values of col.
func (b *Builder) Histogram(col string) (*Spec, error) {
	if err := b.require(col); err != nil {
		return nil, err
	}
	return &Spec{Kind: KindHistogram, Column: col, Values: b.t.NumericValues(col)}, nil
}

// Scatter returns the rows where both x and y are numeric.
func (b *Builder) Scatter(x, y string) (*Spec, error) {
	if err := b.require(x, y); err != nil {
		return nil, err
	}
	return &Spec{Kind: KindScatter, X: x, Y: y, Points: b.points(x, y)}, nil
}

// Heatmap returns numeric pairs for 2D binning by the renderer.
func (b *Builder) Heatmap(x, y string) (*Spec, error) {
	if err := b.require(x, y); err != nil {
		return nil, err
	}
	return &Spec{Kind: KindHeatmap, X: x, Y: y, Points: b.points(x, y)}, nil
}

func (b *Builder) points(x, y string) []Point {
	var out []Point
	for _, r := range b.t.Rows {
		xv, okx := table.LooseNumber(r[x])
		yv, oky := table.LooseNumber(r[y])
		if okx && oky {
			out = append(out, Point{X: xv, Y: yv})
		}
	}
	return out
}

// Pie counts the labels of col in first-seen order.
func (b *Builder) Pie(col string) (*Spec, error) {
	if err := b.require(col); err != nil {
		return nil, err
	}
	labels, counts := b.frequencies(col)
	slices := make([]Slice, len(labels))
	for i := range labels {
		slices[i] = Slice{Label: labels[i], Value: counts[i]}
	}
	return &Spec{Kind: KindPie, Column: col, Slices: slices}, nil
}

// BarCount counts the labels of col in first-seen order.
func (b *Builder) BarCount(col string) (*Spec, error) {
	if err := b.require(col); err != nil {
		return nil, err
	}
	labels, counts := b.frequencies(col)
	return &Spec{Kind: KindBarCount, X: col, Labels: labels, Counts: counts}, nil
}

func (b *Builder) frequencies(col string) ([]string, []int) {
	idx := make(map[string]int)
	var labels []string
	var counts []int
	for _, r := range b.t.Rows {
		l := labelOf(r[col])
		i, ok := idx[l]
		if !ok {
			i = len(labels)
			idx[l] = i
			labels = append(labels, l)
			counts = append(counts, 0)
		}
		counts[i]++
	}
	return labels, counts
}

// Line pairs each row's x value, passed through unmodified, with a numeric y.
// Rows where x is absent or y has no numeric value are skipped.
func (b *Builder) Line(x, y string) (*Spec, error) {
	if err := b.require(x, y); err != nil {
		return nil, err
	}
	var pts []LinePoint
	for _, r := range b.t.Rows {
		xv, present := r[x]
		yv, ok := table.LooseNumber(r[y])
		if !present || !ok {
			continue
		}
		pts = append(pts, LinePoint{X: xv, Y: yv})
	}
	return &Spec{Kind: KindLine, X: x, Y: y, Line: pts}, nil
}

// BarAgg groups numeric y values by the label of x and aggregates each group.
func (b *Builder) BarAgg(y, x, agg string) (*Spec, error) {
	if agg == "" {
		agg = AggMean
	}
	if agg != AggMean {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAgg, agg)
	}
	if err := b.require(y, x); err != nil {
		return nil, err
	}
	groups := b.groups(y, x)
	s := &Spec{Kind: KindBarAgg, X: x, Y: y, Agg: agg}
	for _, g := range groups {
		s.Labels = append(s.Labels, g.Label)
		s.Means = append(s.Means, analysis.Mean(g.Values))
	}
	return s, nil
}

// Box groups numeric y values by the label of x without aggregating.
func (b *Builder) Box(y, x string) (*Spec, error) {
	if err := b.require(y, x); err != nil {
		return nil, err
	}
	return &Spec{Kind: KindBox, X: x, Y: y, Groups: b.groups(y, x)}, nil
}

func (b *Builder) groups(y, x string) []Group {
	idx := make(map[string]int)
	var out []Group
	for _, r := range b.t.Rows {
		v, ok := table.LooseNumber(r[y])
		if !ok {
			continue
		}
		l := labelOf(r[x])
		i, seen := idx[l]
		if !seen {
			i = len(out)
			idx[l] = i
			out = append(out, Group{Label: l})
		}
		out[i].Values = append(out[i].Values, v)
	}
	return out
}

// Arity returns how many columns a chart kind takes, or 0 for an unknown kind.
func Arity(kind Kind) int {
	switch kind {
	case KindHistogram, KindPie, KindBarCount:
		return 1
	case KindScatter, KindLine, KindBarAgg, KindBox, KindHeatmap:
		return 2
	}
	return 0
}

// Build dispatches to the builder for kind. cols follow the builder's
// argument order; agg is only read by bar_agg.
func (b *Builder) Build(kind Kind, cols []string, agg string) (*Spec, error) {
	n := Arity(kind)
	if n == 0 {
		return nil, fmt.Errorf("unknown chart kind %q", kind)
	}
	if len(cols) != n {
		return nil, fmt.Errorf("%s chart takes %d column(s), got %d", kind, n, len(cols))
	}
	switch kind {
	case KindHistogram:
		return b.Histogram(cols[0])
	case KindPie:
		return b.Pie(cols[0])
	case KindBarCount:
		return b.BarCount(cols[0])
	case KindScatter:
		return b.Scatter(cols[0], cols[1])
	case KindLine:
		return b.Line(cols[0], cols[1])
	case KindBarAgg:
		return b.BarAgg(cols[0], cols[1], agg)
	case KindBox:
		return b.Box(cols[0], cols[1])
	default:
		return b.Heatmap(cols[0], cols[1])
	}
}
