package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/dataclinic-cli/internal/analysis"
	"github.com/KaramelBytes/dataclinic-cli/internal/parser"
	"github.com/KaramelBytes/dataclinic-cli/internal/session"
	"github.com/KaramelBytes/dataclinic-cli/internal/utils"
)

var (
	abOutDir       string
	abDelimiter    string
	abSheetName    string
	abSampleRows   int
	abMaxRows      int
	abTopValues    int
	abNoCorr       bool
	abWorkers      int
	abSaveSessions bool
	abQuiet        bool
)

type batchResult struct {
	path     string
	markdown string
	rows     int
	session  string
}

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Clean and analyze multiple datasets concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		opt, err := parserOptions(abDelimiter, abSheetName, abMaxRows)
		if err != nil {
			return err
		}
		repOpt := reportOptions(cmd, "sample-rows", abSampleRows, abTopValues, abNoCorr)
		workers := abWorkers
		if workers <= 0 && cfg != nil {
			workers = cfg.Workers
		}
		if workers <= 0 {
			workers = 1
		}
		if abOutDir != "" {
			if err := utils.EnsureDir(abOutDir); err != nil {
				return fmt.Errorf("ensure output dir: %w", err)
			}
		}

		var store *session.Store
		if abSaveSessions {
			if store, err = openStore(); err != nil {
				return err
			}
		}

		results := make([]batchResult, len(files))
		barOut := cmd.ErrOrStderr()
		if abQuiet {
			barOut = io.Discard
		}
		bar := newProgress(barOut, len(files), "Analyzing")
		g, ctx := errgroup.WithContext(context.Background())
		g.SetLimit(workers)
		for i, path := range files {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				res, t, steps, err := loadCleaned(path, opt)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				r := batchResult{
					path:     path,
					markdown: analysis.BuildReport(filepath.Base(path), t, steps, repOpt).Markdown(),
					rows:     t.Len(),
				}
				if store != nil {
					s, err := store.Create(utils.BaseName(path), path, res.Format, t, steps, true)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					r.session = s.Name
				}
				results[i] = r
				_ = bar.Add(1)
				logger.Debug("batch item done", zap.String("file", path), zap.Int("rows", r.rows))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		_ = bar.Finish()

		w := cmd.OutOrStdout()
		used := map[string]int{}
		for _, r := range results {
			if abOutDir == "" {
				if !abQuiet {
					fmt.Fprintln(w, r.markdown)
				}
				continue
			}
			outFile := summaryPath(abOutDir, r.path, used)
			if err := os.WriteFile(outFile, []byte(r.markdown), 0o644); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			if !abQuiet {
				fmt.Fprintf(w, "✓ %s → %s\n", filepath.Base(r.path), filepath.Base(outFile))
			}
		}
		if abSaveSessions && !abQuiet {
			for _, r := range results {
				fmt.Fprintf(w, "✓ Saved session '%s' (%d rows)\n", r.session, r.rows)
			}
		}
		return nil
	},
}

// expandInputs expands globs, keeps literal paths that exist, drops
// duplicates and unsupported extensions, and sorts the result.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if !parser.Supported(m) {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// summaryPath picks <dir>/<base>.summary.md, adding a __N suffix when the
// base was already used in this run or the file exists on disk.
func summaryPath(dir, path string, used map[string]int) string {
	base := utils.Slugify(utils.BaseName(path), "dataset")
	for idx := used[base] + 1; ; idx++ {
		name := base + ".summary.md"
		if idx > 1 {
			name = fmt.Sprintf("%s__%d.summary.md", base, idx)
		}
		cand := filepath.Join(dir, name)
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			used[base] = idx
			return cand
		}
	}
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVarP(&abOutDir, "out-dir", "o", "", "write one <name>.summary.md per file into this directory")
	analyzeBatchCmd.Flags().StringVar(&abDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | 'pipe'")
	analyzeBatchCmd.Flags().StringVar(&abSheetName, "sheet", "", "XLSX: sheet name to analyze")
	analyzeBatchCmd.Flags().IntVar(&abSampleRows, "sample-rows", 5, "number of sample rows to include (0 disables samples)")
	analyzeBatchCmd.Flags().IntVar(&abMaxRows, "max-rows", 0, "maximum rows to process per file (0 = config max_rows)")
	analyzeBatchCmd.Flags().IntVar(&abTopValues, "top-values", 5, "top categorical values per column")
	analyzeBatchCmd.Flags().BoolVar(&abNoCorr, "no-correlations", false, "omit the correlation section")
	analyzeBatchCmd.Flags().IntVarP(&abWorkers, "workers", "w", 0, "parallel workers (0 = config workers)")
	analyzeBatchCmd.Flags().BoolVar(&abSaveSessions, "save-sessions", false, "also store each cleaned dataset as a session")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
