package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/dataclinic-cli/internal/table"
)

// ErrColumnNotFound is returned when a requested column is not part of the table.
var ErrColumnNotFound = errors.New("column not found")

// ColumnStats summarizes the numeric values of one column.
type ColumnStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Std    float64 `json:"std"`
}

// Stats maps numeric columns to their summaries. Columns keeps table order.
type Stats struct {
	Columns  []string               `json:"columns"`
	ByColumn map[string]ColumnStats `json:"by_column"`
}

// Get returns the summary for col.
func (s Stats) Get(col string) (ColumnStats, bool) {
	cs, ok := s.ByColumn[col]
	return cs, ok
}

// statsWorkers bounds the per-column fan-out.
const statsWorkers = 8

// DescriptiveStats summarizes every screening-numeric column that has at least
// one numeric value. Columns are summarized concurrently; the output order is
// the table's column order regardless of completion order.
func DescriptiveStats(t *table.Table) Stats {
	cols := NumericColumns(t)
	results := make([]*ColumnStats, len(cols))

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(statsWorkers)
	for i, col := range cols {
		g.Go(func() error {
			vals := t.NumericValues(col)
			if len(vals) == 0 {
				return nil
			}
			cs := Summarize(vals)
			results[i] = &cs
			return nil
		})
	}
	_ = g.Wait()

	out := Stats{ByColumn: make(map[string]ColumnStats, len(cols))}
	for i, col := range cols {
		if results[i] == nil {
			continue
		}
		out.Columns = append(out.Columns, col)
		out.ByColumn[col] = *results[i]
	}
	return out
}

// Summarize computes count, mean, upper median, min, max and population
// standard deviation of vals. vals must be non-empty.
func Summarize(vals []float64) ColumnStats {
	n := float64(len(vals))
	mean := Mean(vals)
	var sq float64
	for _, v := range vals {
		d := v - mean
		sq += d * d
	}
	s := sortedCopy(vals)
	return ColumnStats{
		Count:  len(vals),
		Mean:   mean,
		Median: s[len(s)/2],
		Min:    s[0],
		Max:    s[len(s)-1],
		Std:    math.Sqrt(sq / n),
	}
}

// Mean is the arithmetic mean; zero for an empty slice.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// Variance is the population variance; zero for an empty slice.
func Variance(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m := Mean(vals)
	var sq float64
	for _, v := range vals {
		d := v - m
		sq += d * d
	}
	return sq / float64(len(vals))
}

// Pearson computes (nΣxy − ΣxΣy) / sqrt((nΣx² − (Σx)²)(nΣy² − (Σy)²)) over
// the first min(len(x), len(y)) pairs. A zero denominator yields NaN.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	var sx, sy, sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		sx += x[i]
		sy += y[i]
		sxy += x[i] * y[i]
		sxx += x[i] * x[i]
		syy += y[i] * y[i]
	}
	fn := float64(n)
	den := math.Sqrt((fn*sxx - sx*sx) * (fn*syy - sy*sy))
	if den == 0 || math.IsNaN(den) {
		return math.NaN()
	}
	return (fn*sxy - sx*sy) / den
}

// Correlation is the Pearson coefficient between two columns, each filtered
// to its numeric values independently and then paired by position.
func Correlation(t *table.Table, a, b string) (float64, error) {
	for _, c := range []string{a, b} {
		if !t.HasColumn(c) {
			return math.NaN(), fmt.Errorf("%w: %s", ErrColumnNotFound, c)
		}
	}
	return Pearson(t.NumericValues(a), t.NumericValues(b)), nil
}

// Pair is one entry of a correlation matrix.
type Pair struct {
	Key string  `json:"key"`
	A   string  `json:"a"`
	B   string  `json:"b"`
	R   float64 `json:"r"`
}

// MarshalJSON writes an undefined coefficient as null.
func (p Pair) MarshalJSON() ([]byte, error) {
	var r *float64
	if !math.IsNaN(p.R) && !math.IsInf(p.R, 0) {
		r = &p.R
	}
	return json.Marshal(struct {
		Key string   `json:"key"`
		A   string   `json:"a"`
		B   string   `json:"b"`
		R   *float64 `json:"r"`
	}{p.Key, p.A, p.B, r})
}

// UnmarshalJSON reads null as NaN.
func (p *Pair) UnmarshalJSON(data []byte) error {
	var raw struct {
		Key string   `json:"key"`
		A   string   `json:"a"`
		B   string   `json:"b"`
		R   *float64 `json:"r"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Key, p.A, p.B = raw.Key, raw.A, raw.B
	p.R = math.NaN()
	if raw.R != nil {
		p.R = *raw.R
	}
	return nil
}

// Correlations is an ordered correlation matrix keyed "colA_colB".
type Correlations []Pair

// Get returns the coefficient stored under key.
func (c Correlations) Get(key string) (float64, bool) {
	for _, p := range c {
		if p.Key == key {
			return p.R, true
		}
	}
	return 0, false
}

// Strongest returns up to n pairs with a defined coefficient, by |r| descending.
func (c Correlations) Strongest(n int) []Pair {
	var out []Pair
	for _, p := range c {
		if !math.IsNaN(p.R) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return math.Abs(out[i].R) > math.Abs(out[j].R) })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// CorrelationMatrix correlates every unordered pair of screening-numeric
// columns, in column order.
func CorrelationMatrix(t *table.Table) Correlations {
	cols := NumericColumns(t)
	vals := make([][]float64, len(cols))
	for i, c := range cols {
		vals[i] = t.NumericValues(c)
	}
	var out Correlations
	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			out = append(out, Pair{
				Key: cols[i] + "_" + cols[j],
				A:   cols[i],
				B:   cols[j],
				R:   Pearson(vals[i], vals[j]),
			})
		}
	}
	return out
}
