package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/dataclinic-cli/internal/utils"
)

var (
	cleanName      string
	cleanDelimiter string
	cleanSheet     string
	cleanMaxRows   int
	cleanForce     bool
	cleanQuiet     bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Parse and clean a dataset into a new session",
	Long: `Parse a CSV, TSV, XLSX or JSON file, run the cleaning pipeline
(empty-row removal, imputation, de-duplication, numeric coercion) and store
the result as a session for later commands.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat dataset: %w", err)
		}
		opt, err := parserOptions(cleanDelimiter, cleanSheet, cleanMaxRows)
		if err != nil {
			return err
		}
		res, t, steps, err := loadCleaned(path, opt)
		if err != nil {
			return err
		}
		name := cleanName
		if name == "" {
			name = utils.BaseName(path)
		}
		st, err := openStore()
		if err != nil {
			return err
		}
		s, err := st.Create(name, path, res.Format, t, steps, cleanForce)
		if err != nil {
			return err
		}
		logger.Info("dataset cleaned",
			zap.String("file", path),
			zap.Int("rows_in", res.Table.Len()),
			zap.Int("rows_out", t.Len()))

		w := cmd.OutOrStdout()
		if cleanQuiet {
			fmt.Fprintln(w, s.Name)
			return nil
		}
		heading(w, "DATASET")
		field(w, "File", filepath.Base(path))
		field(w, "Format", res.Format)
		field(w, "Size", humanize.Bytes(uint64(info.Size())))
		field(w, "Rows", fmt.Sprintf("%s → %s", humanize.Comma(int64(res.Table.Len())), humanize.Comma(int64(t.Len()))))
		field(w, "Columns", len(t.Columns))
		fmt.Fprintln(w)
		heading(w, "CLEANING")
		if len(steps) == 0 {
			fmt.Fprintln(w, mutedStyle.Render("  (no changes needed)"))
		}
		for _, step := range steps {
			fmt.Fprintf(w, "  %s %s\n", successStyle.Render("✓"), step)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "✓ Saved session '%s' with %d suggestion(s)\n", s.Name, len(s.Suggestions))
		fmt.Fprintf(w, "  Next: dataclinic suggest %s\n", s.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVarP(&cleanName, "name", "n", "", "session name (default is the file name)")
	cleanCmd.Flags().StringVar(&cleanDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | 'pipe' (auto-detect if omitted)")
	cleanCmd.Flags().StringVar(&cleanSheet, "sheet", "", "XLSX: sheet name (default is the first sheet)")
	cleanCmd.Flags().IntVar(&cleanMaxRows, "max-rows", 0, "maximum rows to read (0 = config max_rows)")
	cleanCmd.Flags().BoolVarP(&cleanForce, "force", "f", false, "overwrite an existing session with the same name")
	cleanCmd.Flags().BoolVarP(&cleanQuiet, "quiet", "q", false, "print only the session name")
}
