package analysis

import (
	"fmt"

	"github.com/KaramelBytes/dataclinic-cli/internal/table"
)

// SuggestionType groups suggestions for display.
type SuggestionType string

const (
	Cleaning      SuggestionType = "cleaning"
	Analysis      SuggestionType = "analysis"
	Visualization SuggestionType = "visualization"
)

// Suggestion is a proposed action over the current table. Action is the
// identifier the runner dispatches on.
type Suggestion struct {
	ID          string         `json:"id"`
	Type        SuggestionType `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Action      string         `json:"action"`
	Confidence  float64        `json:"confidence"`
	Applied     bool           `json:"applied"`
}

// Action identifiers shared by the generator and the runner.
const (
	ActionRemoveDuplicates   = "remove_duplicates"
	ActionCorrelation        = "correlation_analysis"
	ActionDescriptiveStats   = "descriptive_stats"
	ActionTrendAnalysis      = "trend_analysis_datetime"
	ActionHistograms         = "create_histograms"
	ActionScatterPlots       = "create_scatter_plots"
	ActionPieCharts          = "create_pie_charts"
	ActionLineChartsDatetime = "create_line_charts_datetime"
)

// GenerateSuggestions derives the ordered suggestion list for a table
// snapshot. Regenerating after a change yields a fresh list.
func GenerateSuggestions(t *table.Table) []Suggestion {
	types := ClassifyAll(t)
	var out []Suggestion

	for _, col := range t.Columns {
		missing := countMissing(t, col)
		if missing == 0 {
			continue
		}
		out = append(out, missingSuggestion(col, types[col], missing))
	}

	if dups := CountDuplicates(t); dups > 0 {
		out = append(out, Suggestion{
			ID:          "duplicates",
			Type:        Cleaning,
			Title:       "Duplicate Rows Detected",
			Description: fmt.Sprintf("Found %d duplicate rows. Consider removing duplicates to improve data quality.", dups),
			Action:      ActionRemoveDuplicates,
			Confidence:  0.95,
		})
	}

	numeric := len(ColumnsOfType(t, types, Numeric))
	categorical := len(ColumnsOfType(t, types, Categorical))
	datetime := len(ColumnsOfType(t, types, Datetime))

	if numeric >= 2 {
		out = append(out, Suggestion{
			ID:          "correlation",
			Type:        Analysis,
			Title:       "Correlation Analysis",
			Description: fmt.Sprintf("Analyze correlations between %d numeric columns to find relationships.", numeric),
			Action:      ActionCorrelation,
			Confidence:  0.8,
		})
	}
	if numeric > 0 {
		out = append(out, Suggestion{
			ID:          "descriptive_stats",
			Type:        Analysis,
			Title:       "Descriptive Statistics",
			Description: fmt.Sprintf("Generate summary statistics for %d numeric columns.", numeric),
			Action:      ActionDescriptiveStats,
			Confidence:  0.9,
		})
	}
	if datetime > 0 {
		out = append(out, Suggestion{
			ID:          "trend_analysis",
			Type:        Analysis,
			Title:       "Trend Analysis over Time",
			Description: fmt.Sprintf("Analyze trends in %d datetime columns to identify temporal patterns.", datetime),
			Action:      ActionTrendAnalysis,
			Confidence:  0.85,
		})
	}
	if numeric >= 1 {
		out = append(out, Suggestion{
			ID:          "histogram",
			Type:        Visualization,
			Title:       "Distribution Analysis",
			Description: "Create histograms to visualize the distribution of numeric data.",
			Action:      ActionHistograms,
			Confidence:  0.85,
		})
	}
	if numeric >= 2 {
		out = append(out, Suggestion{
			ID:          "scatter_plot",
			Type:        Visualization,
			Title:       "Scatter Plot Matrix",
			Description: "Create scatter plots to explore relationships between numeric variables.",
			Action:      ActionScatterPlots,
			Confidence:  0.8,
		})
	}
	if categorical > 0 {
		out = append(out, Suggestion{
			ID:          "pie_chart",
			Type:        Visualization,
			Title:       "Categorical Distribution",
			Description: "Create pie charts to visualize the distribution of categorical data.",
			Action:      ActionPieCharts,
			Confidence:  0.75,
		})
	}
	if datetime > 0 && numeric > 0 {
		out = append(out, Suggestion{
			ID:          "line_chart_time",
			Type:        Visualization,
			Title:       "Time Series Line Chart",
			Description: "Create line charts to visualize numeric trends over datetime columns.",
			Action:      ActionLineChartsDatetime,
			Confidence:  0.8,
		})
	}
	return out
}

func missingSuggestion(col string, kind ColumnType, missing int) Suggestion {
	s := Suggestion{ID: "missing-" + col, Type: Cleaning}
	switch kind {
	case Numeric:
		s.Title = fmt.Sprintf("Missing Values in %s (Numeric)", col)
		s.Description = fmt.Sprintf("Found %d missing values in numeric column '%s'. Suggest filling with median.", missing, col)
		s.Action = "fill_median_" + col
		s.Confidence = 0.95
	case Categorical:
		s.Title = fmt.Sprintf("Missing Values in %s (Categorical)", col)
		s.Description = fmt.Sprintf("Found %d missing values in categorical column '%s'. Suggest filling with mode.", missing, col)
		s.Action = "fill_mode_" + col
		s.Confidence = 0.9
	case Datetime:
		s.Title = fmt.Sprintf("Missing Values in %s (Datetime)", col)
		s.Description = fmt.Sprintf("Found %d missing values in datetime column '%s'. Suggest forward fill.", missing, col)
		s.Action = "forward_fill_datetime_" + col
		s.Confidence = 0.92
	default:
		s.Title = fmt.Sprintf("Missing Values in %s", col)
		s.Description = fmt.Sprintf("Found %d missing values in '%s'. Suggest filling with appropriate method.", missing, col)
		s.Action = "fill_missing_" + col
		s.Confidence = 0.85
	}
	return s
}

// MarkApplied flips Applied on the suggestion with the given id. It reports
// whether the flag changed; an already applied suggestion stays applied.
func MarkApplied(list []Suggestion, id string) bool {
	for i := range list {
		if list[i].ID != id {
			continue
		}
		if list[i].Applied {
			return false
		}
		list[i].Applied = true
		return true
	}
	return false
}

// FindSuggestion returns the suggestion with the given id.
func FindSuggestion(list []Suggestion, id string) (Suggestion, bool) {
	for _, s := range list {
		if s.ID == id {
			return s, true
		}
	}
	return Suggestion{}, false
}
