package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataclinic-cli/internal/charts"
	"github.com/KaramelBytes/dataclinic-cli/internal/command"
	"github.com/KaramelBytes/dataclinic-cli/internal/utils"
)

var (
	chartAgg  string
	chartBins int
	chartLast bool
)

// chartOutput is the JSON printed by the chart command. Bins is only set for
// histograms.
type chartOutput struct {
	Title string       `json:"title"`
	Spec  *charts.Spec `json:"spec"`
	Bins  []charts.Bin `json:"bins,omitempty"`
}

var chartCmd = &cobra.Command{
	Use:   "chart <session> [kind] [columns...]",
	Short: "Build chart data (JSON) from a session",
	Long: `Build chart-ready data from a session and print it as JSON.

Kinds: histogram, pie, bar_count (one column); scatter, line, bar_agg, box,
heatmap (two columns). Two-column kinds take y before x for bar_agg and box
and x before y otherwise. Column names are matched fuzzily.
Use --last to print the chart most recently stored in the session.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, s, err := openSession(args[0])
		if err != nil {
			return err
		}
		var spec *charts.Spec
		if chartLast {
			if s.Chart == nil {
				return fmt.Errorf("session '%s' has no stored chart", s.Name)
			}
			spec = s.Chart
		} else {
			if len(args) < 2 {
				return fmt.Errorf("chart kind is required unless --last is set")
			}
			kind := charts.Kind(strings.ToLower(args[1]))
			t := s.Table()
			cols := make([]string, 0, len(args)-2)
			for _, lit := range args[2:] {
				res, err := command.Resolve(lit, t.Columns)
				if err != nil {
					return err
				}
				if res.Note != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), res.Note)
				}
				cols = append(cols, res.Name)
			}
			spec, err = charts.NewBuilder(t).Build(kind, cols, chartAgg)
			if err != nil {
				return err
			}
			s.SetChart(spec)
			if err := st.Save(s); err != nil {
				return err
			}
		}
		out := chartOutput{Title: spec.Title(), Spec: spec}
		if spec.Kind == charts.KindHistogram {
			bins := chartBins
			if bins <= 0 && cfg != nil {
				bins = cfg.HistogramBins
			}
			out.Bins = charts.HistogramBins(spec.Values, bins)
		}
		b, err := utils.PrettyJSON(out)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().StringVar(&chartAgg, "agg", charts.AggMean, "bar_agg aggregation (only 'mean' is supported)")
	chartCmd.Flags().IntVar(&chartBins, "bins", 0, "histogram bins (0 = config histogram_bins)")
	chartCmd.Flags().BoolVar(&chartLast, "last", false, "print the chart stored in the session")
}
