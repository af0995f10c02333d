package cmd

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataclinic-cli/internal/analysis"
	"github.com/KaramelBytes/dataclinic-cli/internal/table"
	"github.com/KaramelBytes/dataclinic-cli/internal/utils"
)

var (
	statsJSON bool
	statsTop  int
)

var statsCmd = &cobra.Command{
	Use:   "stats <session>",
	Short: "Show descriptive statistics, correlations and insights for a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, s, err := openSession(args[0])
		if err != nil {
			return err
		}
		t := s.Table()
		st := analysis.DescriptiveStats(t)
		corr := analysis.CorrelationMatrix(t)
		in := analysis.ComputeInsights(t, st)

		w := cmd.OutOrStdout()
		if statsJSON {
			b, err := utils.PrettyJSON(map[string]any{
				"session":      s.Name,
				"insights":     in,
				"stats":        st,
				"correlations": corr,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(w, string(b))
			return nil
		}

		heading(w, "OVERVIEW")
		field(w, "Rows", humanize.Comma(int64(in.TotalRows)))
		field(w, "Columns", fmt.Sprintf("%d (%d numeric, %d categorical, %d datetime)",
			in.TotalColumns, in.NumericColumns, in.CategoricalColumns, in.DatetimeColumns))
		field(w, "Missing", humanize.Comma(int64(in.MissingValues)))
		field(w, "Duplicates", humanize.Comma(int64(in.DuplicateRows)))
		fmt.Fprintln(w)

		heading(w, "DESCRIPTIVE STATISTICS")
		if len(st.Columns) == 0 {
			fmt.Fprintln(w, mutedStyle.Render("  (no numeric columns)"))
		} else {
			fmt.Fprintln(w, statsTable(st))
		}

		if top := corr.Strongest(statsTop); len(top) > 0 {
			fmt.Fprintln(w)
			heading(w, "CORRELATIONS")
			for _, p := range top {
				fmt.Fprintf(w, "  %s ~ %s: r=%.3f\n", p.A, p.B, p.R)
			}
		}
		return nil
	},
}

func statsTable(st analysis.Stats) string {
	tb := ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers("column", "count", "mean", "median", "min", "max", "std")
	for _, c := range st.Columns {
		cs := st.ByColumn[c]
		tb.Row(c, humanize.Comma(int64(cs.Count)), num(cs.Mean), num(cs.Median), num(cs.Min), num(cs.Max), num(cs.Std))
	}
	return tb.Render()
}

func num(f float64) string {
	if math.IsNaN(f) {
		return "-"
	}
	return table.FormatNumber(table.Round2(f))
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print JSON instead of tables")
	statsCmd.Flags().IntVar(&statsTop, "top", 10, "number of strongest correlations to show")
}
