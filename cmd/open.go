package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/video-trim-cli/db"
	"github.com/user/video-trim-cli/deps"
	"github.com/user/video-trim-cli/export"
	"github.com/user/video-trim-cli/media"
	"github.com/user/video-trim-cli/mpv"
	"github.com/user/video-trim-cli/tui"
	"github.com/user/video-trim-cli/tui/forms"
)

const (
	// dialAttempts and dialDelay wait up to 5 seconds for the mpv socket.
	dialAttempts = 50
	dialDelay    = 100 * time.Millisecond
)

var openCmd = &cobra.Command{
	Use:   "open [video-file]",
	Short: "Open a video in the trimmer",
	Long: `Open a video in mpv and start the trimming TUI. Without an argument a file
picker is shown in the current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var videoPath string
		if len(args) == 1 {
			videoPath = args[0]
		} else {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
			videoPath, err = forms.PickVideo(cwd)
			if errors.Is(err, forms.ErrCancelled) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("file picker failed: %w", err)
			}
		}

		absPath, err := resolveVideo(videoPath)
		if err != nil {
			return err
		}
		if err := deps.CheckMpv(); err != nil {
			return err
		}
		if err := deps.CheckFfmpeg(); err != nil {
			// preview still works without ffmpeg; thumbnails and export will fail
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			logger.Warn("ffmpeg unavailable", zap.Error(err))
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		socket := appConfig.Playback.MpvSocket
		fmt.Printf("Opening video: %s\n", filepath.Base(absPath))
		process, err := mpv.Launch(ctx, absPath, socket)
		if err != nil {
			return fmt.Errorf("failed to launch mpv: %w", err)
		}

		client, err := mpv.Dial(ctx, socket, dialAttempts, dialDelay)
		if err != nil {
			if process.Process != nil {
				_ = process.Process.Kill()
			}
			return fmt.Errorf("failed to connect to mpv: %w", err)
		}
		defer func() {
			_ = client.Quit()
			_ = client.Close()
			_ = process.Wait()
		}()

		src := media.NewFFmpegSource(absPath, logger.Named("media"))
		duration, err := readDuration(ctx, src, client.GetDuration)
		if err != nil {
			return err
		}
		ctrl, err := newController(client, duration)
		if err != nil {
			return err
		}

		database, err := db.Open()
		if err != nil {
			// history is optional; exports still run without it
			logger.Warn("export history disabled", zap.Error(err))
			database = nil
		} else {
			defer database.Close()
		}

		logger.Info("session started",
			zap.String("video", absPath),
			zap.Float64("duration", duration),
			zap.String("socket", socket))

		return tui.Run(tui.Options{
			Controller:    ctrl,
			Player:        client,
			Source:        src,
			Runner:        export.NewRunner(newExporter(), database, logger.Named("export")),
			ClockInterval: appConfig.ClockInterval(),
			ThumbSize: media.Size{
				Width:  appConfig.Thumbnails.MaxWidth,
				Height: appConfig.Thumbnails.MaxHeight,
			},
			Logger: logger.Named("tui"),

			OpenSource: func(path string) media.Source {
				return media.NewFFmpegSource(path, logger.Named("media"))
			},
			OnComplete: func(out *media.Output) {
				logger.Info("export ready",
					zap.String("output", out.Path),
					zap.Int64("bytes", out.Size),
					zap.Float64("start", out.Range.Start),
					zap.Float64("end", out.Range.End))
			},
		})
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}
