package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataclinic-cli/internal/analysis"
	"github.com/KaramelBytes/dataclinic-cli/internal/table"
)

var (
	anaSession    string
	anaOutputPath string
	anaDelimiter  string
	anaSheetName  string
	anaSampleRows int
	anaMaxRows    int
	anaTopValues  int
	anaNoCorr     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Clean a dataset (or load a session) and print a Markdown report",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (len(args) == 0) == (anaSession == "") {
			return fmt.Errorf("specify exactly one of <file> or --session")
		}
		var (
			name  string
			t     *table.Table
			steps []string
		)
		if anaSession != "" {
			_, s, err := openSession(anaSession)
			if err != nil {
				return err
			}
			name, t, steps = filepath.Base(s.Source), s.Table(), s.Steps
		} else {
			opt, err := parserOptions(anaDelimiter, anaSheetName, anaMaxRows)
			if err != nil {
				return err
			}
			_, cleaned, st, err := loadCleaned(args[0], opt)
			if err != nil {
				return err
			}
			name, t, steps = filepath.Base(args[0]), cleaned, st
		}

		md := analysis.BuildReport(name, t, steps, reportOptions(cmd, "sample-rows", anaSampleRows, anaTopValues, anaNoCorr)).Markdown()
		if anaOutputPath != "" {
			if err := os.WriteFile(anaOutputPath, []byte(md), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), md)
		return nil
	},
}

// reportOptions merges report flags with defaults and config. The sample row
// count comes from config unless the named flag was set.
func reportOptions(cmd *cobra.Command, sampleFlag string, sampleRows, topValues int, noCorr bool) analysis.ReportOptions {
	opt := analysis.DefaultReportOptions()
	if cfg != nil {
		opt.SampleRows = cfg.SampleRows
	}
	if cmd.Flags().Changed(sampleFlag) && sampleRows >= 0 {
		opt.SampleRows = sampleRows
	}
	if topValues >= 0 {
		opt.TopValues = topValues
	}
	opt.Correlations = !noCorr
	return opt
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaSession, "session", "s", "", "report on a stored session instead of a file")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write analysis (Markdown)")
	analyzeCmd.Flags().StringVar(&anaDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | 'pipe'")
	analyzeCmd.Flags().StringVar(&anaSheetName, "sheet", "", "XLSX: sheet name to analyze")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 5, "number of sample rows to include (0 disables samples)")
	analyzeCmd.Flags().IntVar(&anaMaxRows, "max-rows", 0, "maximum rows to process (0 = config max_rows)")
	analyzeCmd.Flags().IntVar(&anaTopValues, "top-values", 5, "top categorical values per column")
	analyzeCmd.Flags().BoolVar(&anaNoCorr, "no-correlations", false, "omit the correlation section")
}
