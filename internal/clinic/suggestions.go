package clinic

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/dataclinic-cli/internal/analysis"
	"github.com/KaramelBytes/dataclinic-cli/internal/charts"
	"github.com/KaramelBytes/dataclinic-cli/internal/session"
	"github.com/KaramelBytes/dataclinic-cli/internal/table"
)

// ErrUnknownSuggestion is returned when a suggestion id is not in the session.
var ErrUnknownSuggestion = errors.New("unknown suggestion")

// Result is what running a suggestion produced. Only the field matching the
// action is set.
type Result struct {
	Action       string                `json:"action"`
	Message      string                `json:"message,omitempty"`
	Stats        *analysis.Stats       `json:"stats,omitempty"`
	Correlations analysis.Correlations `json:"correlations,omitempty"`
	Charts       []*charts.Spec        `json:"charts,omitempty"`
}

// MaxAutoCharts caps the charts a single chart suggestion builds.
const MaxAutoCharts = 3

// ExecuteSuggestion runs s against t. Chart actions build at most limit
// charts; limit <= 0 or above MaxAutoCharts means MaxAutoCharts.
func ExecuteSuggestion(t *table.Table, s analysis.Suggestion, limit int) Result {
	if limit <= 0 || limit > MaxAutoCharts {
		limit = MaxAutoCharts
	}
	r := Result{Action: s.Action}
	switch s.Action {
	case analysis.ActionDescriptiveStats:
		st := analysis.DescriptiveStats(t)
		r.Stats = &st
	case analysis.ActionCorrelation:
		r.Correlations = analysis.CorrelationMatrix(t)
	case analysis.ActionHistograms:
		r.Charts = charts.AutoHistograms(t, limit)
	case analysis.ActionScatterPlots:
		r.Charts = charts.AutoScatter(t, limit)
	case analysis.ActionPieCharts:
		r.Charts = charts.AutoPie(t, limit)
	case analysis.ActionLineChartsDatetime:
		r.Charts = charts.AutoLines(t, limit)
	default:
		r.Message = "Suggestion executed successfully"
	}
	return r
}

// RunSuggestion executes the session suggestion with id, marks it applied
// and keeps the first chart of a visualization as the session chart.
func RunSuggestion(sess *session.Session, id string, limit int) (Result, error) {
	s, ok := analysis.FindSuggestion(sess.Suggestions, id)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownSuggestion, id)
	}
	r := ExecuteSuggestion(sess.Table(), s, limit)
	sess.MarkApplied(id)
	if s.Type == analysis.Visualization && len(r.Charts) > 0 {
		sess.SetChart(r.Charts[0])
	}
	return r, nil
}
