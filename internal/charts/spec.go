package charts

import "fmt"

// Kind tags the variant carried by a Spec.
type Kind string

const (
	KindHistogram Kind = "histogram"
	KindScatter   Kind = "scatter"
	KindPie       Kind = "pie"
	KindLine      Kind = "line"
	KindBarCount  Kind = "bar_count"
	KindBarAgg    Kind = "bar_agg"
	KindBox       Kind = "box"
	KindHeatmap   Kind = "heatmap"
)

// Point is one numeric pair of a scatter or heatmap.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LinePoint pairs an untouched x value with a numeric y.
type LinePoint struct {
	X any     `json:"x"`
	Y float64 `json:"y"`
}

// Slice is one labelled share of a pie chart.
type Slice struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Group holds the numeric values that share one category label.
type Group struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// Spec is renderer-ready chart data. Which data fields are set depends on Kind:
//
//	histogram  Column, Values
//	scatter    X, Y, Points
//	heatmap    X, Y, Points
//	pie        Column, Slices
//	line       X, Y, Line
//	bar_count  X, Labels, Counts
//	bar_agg    X, Y, Agg, Labels, Means
//	box        X, Y, Groups
type Spec struct {
	Kind   Kind        `json:"type"`
	Column string      `json:"column,omitempty"`
	X      string      `json:"x,omitempty"`
	Y      string      `json:"y,omitempty"`
	Agg    string      `json:"agg,omitempty"`
	Values []float64   `json:"values,omitempty"`
	Points []Point     `json:"points,omitempty"`
	Line   []LinePoint `json:"line,omitempty"`
	Slices []Slice     `json:"slices,omitempty"`
	Labels []string    `json:"labels,omitempty"`
	Counts []int       `json:"counts,omitempty"`
	Means  []float64   `json:"means,omitempty"`
	Groups []Group     `json:"groups,omitempty"`
}

// Title is the display name of the chart.
func (s *Spec) Title() string {
	switch s.Kind {
	case KindHistogram:
		return "Histogram - " + s.Column
	case KindScatter:
		return fmt.Sprintf("Scatter Plot - %s vs %s", s.X, s.Y)
	case KindPie:
		return "Pie Chart - " + s.Column
	case KindLine:
		return fmt.Sprintf("Line Chart - %s over %s", s.Y, s.X)
	case KindBarCount:
		return "Bar Chart - count by " + s.X
	case KindBarAgg:
		return fmt.Sprintf("Bar Chart - %s %s by %s", s.Agg, s.Y, s.X)
	case KindBox:
		return fmt.Sprintf("Box Plot - %s by %s", s.Y, s.X)
	case KindHeatmap:
		return fmt.Sprintf("Heatmap - %s vs %s", s.X, s.Y)
	}
	return "Chart"
}

// Size is the number of data points carried by the spec.
func (s *Spec) Size() int {
	switch s.Kind {
	case KindHistogram:
		return len(s.Values)
	case KindScatter, KindHeatmap:
		return len(s.Points)
	case KindLine:
		return len(s.Line)
	case KindPie:
		return len(s.Slices)
	case KindBarCount, KindBarAgg:
		return len(s.Labels)
	case KindBox:
		n := 0
		for _, g := range s.Groups {
			n += len(g.Values)
		}
		return n
	}
	return 0
}
