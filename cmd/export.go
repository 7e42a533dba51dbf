package cmd

import (
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/video-trim-cli/db"
	"github.com/user/video-trim-cli/deps"
	"github.com/user/video-trim-cli/export"
	"github.com/user/video-trim-cli/media"
	"github.com/user/video-trim-cli/pkg/timeutil"
)

// rangeTolerance is the display precision of a trim range, in seconds.
const rangeTolerance = 0.005

var exportCmd = &cobra.Command{
	Use:   "export <video-file>",
	Short: "Export a range without opening the TUI",
	Long: `Export a range of a video with ffmpeg. The range goes through the same
handle rules as the TUI, so it is capped at the maximum trim length and the
handles keep their minimum gap. Times can be in seconds, MM:SS or HH:MM:SS.`,
	Example: `  video-trim-cli export match.mp4 --start 1:02 --end 1:07.5
  video-trim-cli export match.mp4 --start 30 --end 36 --out ./clips`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		startStr, _ := cmd.Flags().GetString("start")
		endStr, _ := cmd.Flags().GetString("end")
		noHistory, _ := cmd.Flags().GetBool("no-history")

		start, err := timeutil.ParseTimeToSeconds(startStr)
		if err != nil {
			return fmt.Errorf("invalid start time: %w", err)
		}
		end, err := timeutil.ParseTimeToSeconds(endStr)
		if err != nil {
			return fmt.Errorf("invalid end time: %w", err)
		}
		if start >= end {
			return fmt.Errorf("end time must be after start time")
		}

		absPath, err := resolveVideo(args[0])
		if err != nil {
			return err
		}
		if err := deps.CheckFfmpeg(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		src := media.NewFFmpegSource(absPath, logger.Named("media"))
		duration, err := readDuration(ctx, src, nil)
		if err != nil {
			return err
		}
		ctrl, err := newController(nil, duration)
		if err != nil {
			return err
		}
		rng := ctrl.SelectRange(start, end)
		if math.Abs(rng.Start-start) > rangeTolerance || math.Abs(rng.End-end) > rangeTolerance {
			fmt.Printf("Range adjusted to %s - %s\n", timeutil.FormatSeconds(rng.Start), timeutil.FormatSeconds(rng.End))
		}

		runner := export.NewRunner(newExporter(), nil, logger.Named("export"))
		if !noHistory {
			database, err := db.Open()
			if err != nil {
				logger.Warn("export history disabled", zap.Error(err))
			} else {
				defer database.Close()
				runner = export.NewRunner(newExporter(), database, logger.Named("export"))
			}
		}

		fmt.Printf("Exporting %s (%s - %s)\n", absPath, timeutil.FormatSeconds(rng.Start), timeutil.FormatSeconds(rng.End))
		last := -1
		out, err := runner.Run(ctx, src, rng, func(f float64) {
			pct := int(f * 100)
			if pct/10 != last/10 {
				fmt.Printf("  %3d%%\n", pct)
			}
			last = pct
		})
		if errors.Is(err, media.ErrExportCancelled) {
			return fmt.Errorf("export cancelled")
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		fmt.Printf("Exported: %s (%d bytes)\n", out.Path, out.Size)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("start", "0", "Range start (seconds, MM:SS or HH:MM:SS)")
	exportCmd.Flags().String("end", "", "Range end (seconds, MM:SS or HH:MM:SS)")
	exportCmd.Flags().Bool("no-history", false, "Do not record the export in the history database")
	_ = exportCmd.MarkFlagRequired("end")
	rootCmd.AddCommand(exportCmd)
}
