package cmd

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataclinic-cli/internal/ai"
	"github.com/KaramelBytes/dataclinic-cli/internal/utils"
)

var modelsJSON bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Show chat providers and the model catalog used for estimates",
	Example: `  dataclinic models
  dataclinic models --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		cat := ai.Catalog()
		if modelsJSON {
			b, err := utils.PrettyJSON(map[string]any{
				"providers": ai.Providers(),
				"models":    cat,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(w, string(b))
			return nil
		}
		field(w, "Providers", strings.Join(ai.Providers(), ", "))
		if cfg != nil {
			field(w, "Default", fmt.Sprintf("%s via %s", cfg.DefaultModel, cfg.DefaultProvider))
		}
		fmt.Fprintln(w)
		for _, m := range cat {
			price := mutedStyle.Render("free/local")
			if m.InputPerK > 0 || m.OutputPerK > 0 {
				price = fmt.Sprintf("$%.5f in / $%.5f out per 1K", m.InputPerK, m.OutputPerK)
			}
			fmt.Fprintf(w, "  %-34s %8s ctx  %s\n", m.Name, humanize.SIWithDigits(float64(m.ContextTokens), 0, ""), price)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().BoolVar(&modelsJSON, "json", false, "print JSON")
}
