package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var listSources bool

var listCmd = &cobra.Command{
	Use:   "list [session]",
	Short: "List sessions, or the cleaning steps of one session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if len(args) == 1 {
			_, s, err := openSession(args[0])
			if err != nil {
				return err
			}
			heading(w, s.Name)
			field(w, "ID", s.ID)
			field(w, "Source", s.Source)
			field(w, "Directory", s.RootDir())
			field(w, "Rows", humanize.Comma(int64(len(s.Rows))))
			field(w, "Columns", len(s.Columns))
			field(w, "Updated", humanize.Time(s.UpdatedAt))
			if len(s.Steps) == 0 {
				fmt.Fprintln(w, mutedStyle.Render("  (no cleaning steps)"))
			}
			for i, step := range s.Steps {
				fmt.Fprintf(w, "  %d. %s\n", i+1, step)
			}
			return nil
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		list, err := st.List()
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(w, "(no sessions)")
			return nil
		}
		for _, s := range list {
			fmt.Fprintf(w, "- %s: %s rows × %d columns, %d steps, updated %s\n",
				s.Name, humanize.Comma(int64(s.Rows)), s.Columns, s.Steps, humanize.Time(s.UpdatedAt))
			if listSources {
				fmt.Fprintf(w, "    %s\n", mutedStyle.Render(s.Source))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listSources, "sources", false, "also show each session's source file")
}
