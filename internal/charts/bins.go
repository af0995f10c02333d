package charts

import "math"

// DefaultBins is the histogram bin count when none is given.
const DefaultBins = 10

// Bin is one histogram bucket covering [Start, End).
type Bin struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Count int     `json:"count"`
}

// HistogramBins buckets values into at most n equal-width bins (DefaultBins
// when n <= 0), never more bins than values. Equal min and max fall back to
// width 1; the maximum lands in the last bin.
func HistogramBins(values []float64, n int) []Bin {
	if len(values) == 0 {
		return nil
	}
	if n <= 0 {
		n = DefaultBins
	}
	count := n
	if len(values) < count {
		count = len(values)
	}
	if count < 1 {
		count = 1
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	width := (hi - lo) / float64(count)
	if width == 0 {
		width = 1
	}
	bins := make([]Bin, count)
	for i := range bins {
		bins[i].Start = lo + float64(i)*width
		bins[i].End = lo + float64(i+1)*width
	}
	for _, v := range values {
		i := int(math.Floor((v - lo) / width))
		if i >= count {
			i = count - 1
		}
		if i < 0 {
			i = 0
		}
		bins[i].Count++
	}
	return bins
}
