package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataclinic-cli/internal/clinic"
	"github.com/KaramelBytes/dataclinic-cli/internal/utils"
)

var (
	sugApply string
	sugLimit int
	sugJSON  bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <session>",
	Short: "List suggestions for a session, or run one with --apply",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, s, err := openSession(args[0])
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()

		if sugApply == "" {
			if sugJSON {
				b, err := utils.PrettyJSON(s.Suggestions)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, string(b))
				return nil
			}
			if len(s.Suggestions) == 0 {
				fmt.Fprintln(w, "(no suggestions)")
				return nil
			}
			heading(w, fmt.Sprintf("SUGGESTIONS FOR %s", s.Name))
			for _, sg := range s.Suggestions {
				mark := " "
				if sg.Applied {
					mark = successStyle.Render("✓")
				}
				fmt.Fprintf(w, "  %s %-18s %s %s\n", mark, sg.ID, titleStyle.Render(sg.Title),
					mutedStyle.Render(fmt.Sprintf("[%s, %.0f%%]", sg.Type, math.Round(sg.Confidence*100))))
				fmt.Fprintf(w, "      %s\n", mutedStyle.Render(sg.Description))
			}
			fmt.Fprintf(w, "\n  Run one with: dataclinic suggest %s --apply <id>\n", s.Name)
			return nil
		}

		res, err := clinic.RunSuggestion(s, sugApply, sugLimit)
		if err != nil {
			return err
		}
		if err := st.Save(s); err != nil {
			return err
		}
		if sugJSON {
			b, err := utils.PrettyJSON(res)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, string(b))
			return nil
		}
		switch {
		case res.Stats != nil:
			if len(res.Stats.Columns) == 0 {
				fmt.Fprintln(w, "(no numeric columns)")
			} else {
				fmt.Fprintln(w, statsTable(*res.Stats))
			}
		case res.Correlations != nil:
			for _, p := range res.Correlations {
				r := "undefined"
				if !math.IsNaN(p.R) {
					r = fmt.Sprintf("%.3f", p.R)
				}
				fmt.Fprintf(w, "  %s ~ %s: r=%s\n", p.A, p.B, r)
			}
		case len(res.Charts) > 0:
			for _, c := range res.Charts {
				fmt.Fprintf(w, "  • %s (%d points)\n", c.Title(), c.Size())
			}
			if s.Chart != nil {
				fmt.Fprintf(w, "  Kept '%s' as the session chart. Print it with: dataclinic chart %s --last\n", s.Chart.Title(), s.Name)
			}
		case res.Message != "":
			fmt.Fprintln(w, res.Message)
		default:
			fmt.Fprintln(w, "(nothing to show)")
		}
		fmt.Fprintf(w, "✓ Applied suggestion '%s'\n", sugApply)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)
	suggestCmd.Flags().StringVarP(&sugApply, "apply", "a", "", "suggestion id to run")
	suggestCmd.Flags().IntVar(&sugLimit, "limit", clinic.MaxAutoCharts, "max charts built by chart suggestions (at most 3)")
	suggestCmd.Flags().BoolVar(&sugJSON, "json", false, "print JSON")
}
