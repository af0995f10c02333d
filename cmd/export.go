package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataclinic-cli/internal/session"
	"github.com/KaramelBytes/dataclinic-cli/internal/table"
	"github.com/KaramelBytes/dataclinic-cli/internal/utils"
)

var (
	exportOutput string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export <session>",
	Short: "Export the cleaned table of a session as CSV, TSV or JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, s, err := openSession(args[0])
		if err != nil {
			return err
		}
		format := strings.ToLower(exportFormat)
		if format == "" {
			format = strings.TrimPrefix(strings.ToLower(filepath.Ext(exportOutput)), ".")
		}
		if format == "" {
			format = "csv"
		}
		data, err := encodeTable(s, format)
		if err != nil {
			return err
		}
		if exportOutput == "" {
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}
		if err := utils.SafeWriteFile(exportOutput, data); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %s rows to %s (%s)\n",
			humanize.Comma(int64(len(s.Rows))), exportOutput, humanize.Bytes(uint64(len(data))))
		return nil
	},
}

func encodeTable(s *session.Session, format string) ([]byte, error) {
	switch format {
	case "csv", "tsv":
		delim := ','
		if format == "tsv" {
			delim = '\t'
		}
		var buf bytes.Buffer
		if err := table.WriteCSV(&buf, s.Table(), delim); err != nil {
			return nil, fmt.Errorf("encode %s: %w", format, err)
		}
		return buf.Bytes(), nil
	case "json":
		b, err := utils.PrettyJSON(s.Rows)
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported --format: %s (use csv|tsv|json)", format)
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output path (default is stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "csv | tsv | json (default from the output extension, else csv)")
}
