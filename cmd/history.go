package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/video-trim-cli/db"
	"github.com/user/video-trim-cli/pkg/timeutil"
)

var historyCmd = &cobra.Command{
	Use:   "history [video-file]",
	Short: "List recorded exports",
	Long:  `List exports from the history database, newest first. With a video argument only that video's exports are shown.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		database, err := db.Open()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()

		var exports []db.Export
		if len(args) == 1 {
			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve path: %w", err)
			}
			exports, err = db.SelectExports(database, absPath)
			if err != nil {
				return fmt.Errorf("failed to query exports: %w", err)
			}
		} else {
			exports, err = db.SelectRecentExports(database, limit)
			if err != nil {
				return fmt.Errorf("failed to query exports: %w", err)
			}
		}

		if len(exports) == 0 {
			fmt.Println("No exports recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tVIDEO\tRANGE\tLENGTH\tSTATUS\tOUTPUT\tCREATED")
		for _, e := range exports {
			output := e.OutputPath
			if e.Status == db.StatusError {
				output = truncate(e.Log, 40)
			}
			fmt.Fprintf(w, "%d\t%s\t%s-%s\t%.2fs\t%s\t%s\t%s\n",
				e.ID,
				filepath.Base(e.VideoPath),
				timeutil.FormatSeconds(e.Start),
				timeutil.FormatSeconds(e.End),
				e.Length(),
				e.Status,
				output,
				e.CreatedAt.Local().Format("2006-01-02 15:04"),
			)
		}
		return w.Flush()
	},
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of exports to show")
	rootCmd.AddCommand(historyCmd)
}
