package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/user/video-trim-cli/deps"
	"github.com/user/video-trim-cli/media"
	"github.com/user/video-trim-cli/pkg/timeutil"
)

var thumbnailsCmd = &cobra.Command{
	Use:   "thumbnails <video-file>",
	Short: "Write the timeline thumbnails as PNG files",
	Long:  `Extract the evenly spaced frames the timeline is drawn from and write them to a directory.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")

		absPath, err := resolveVideo(args[0])
		if err != nil {
			return err
		}
		if err := deps.CheckFfmpeg(); err != nil {
			return err
		}

		ctx := cmd.Context()
		src := media.NewFFmpegSource(absPath, logger.Named("media"))
		duration, err := readDuration(ctx, src, nil)
		if err != nil {
			return err
		}
		ctrl, err := newController(nil, duration)
		if err != nil {
			return err
		}

		size := media.Size{Width: appConfig.Thumbnails.MaxWidth, Height: appConfig.Thumbnails.MaxHeight}
		thumbs, err := media.Thumbnails(ctx, src, ctrl.ThumbnailTimes(), size, logger.Named("media"))
		if err != nil {
			return err
		}
		if len(thumbs) == 0 {
			return fmt.Errorf("no thumbnails could be extracted from %s", filepath.Base(absPath))
		}

		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
		for i, t := range thumbs {
			name := filepath.Join(dir, fmt.Sprintf("thumb_%02d.png", i))
			if err := os.WriteFile(name, t.Data, 0644); err != nil {
				return fmt.Errorf("failed to write thumbnail: %w", err)
			}
			fmt.Printf("%s  %s  %dx%d\n", name, timeutil.FormatSeconds(t.At), t.Width, t.Height)
		}
		return nil
	},
}

func init() {
	thumbnailsCmd.Flags().String("dir", ".", "Directory to write the PNG files to")
	rootCmd.AddCommand(thumbnailsCmd)
}
