package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/video-trim-cli/config"
	applog "github.com/user/video-trim-cli/log"
	"github.com/user/video-trim-cli/media"
)

var Version = "0.1.0"

// Flags shared by every command.
var (
	configPath string
	socketPath string
	outputDir  string
	logLevel   string
	verbose    bool
)

// appConfig and logger are set up by rootCmd's PersistentPreRunE.
var (
	appConfig = config.Default()
	logger    = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "video-trim-cli",
	Short: "Trim short clips out of videos from the terminal",
	Long: `video-trim-cli previews a video in mpv and lets you pick a short range on a
terminal timeline, then exports that range with ffmpeg.

Features:
  - Thumbnail timeline with draggable start and end handles
  - Looping preview of the selected range
  - Background export with progress
  - Export history stored in SQLite`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("video-trim-cli version %s\n", Version)
	},
}

// setup loads the config file, applies flag overrides and starts logging.
func setup(cmd *cobra.Command, args []string) error {
	cfg, created, err := config.LoadOrCreate(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("socket") {
		cfg.Playback.MpvSocket = socketPath
	}
	if cmd.Flags().Changed("out") {
		cfg.Export.OutputDir = outputDir
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	dir := cfg.Log.Dir
	if dir == "" {
		if dir, err = applog.DefaultDir(); err != nil {
			return fmt.Errorf("failed to resolve log dir: %w", err)
		}
	}
	l, err := applog.Init(applog.Options{Dir: dir, Level: cfg.Log.Level, Console: verbose})
	if err != nil {
		return fmt.Errorf("failed to start logging: %w", err)
	}

	appConfig = cfg
	logger = l
	if created {
		path := configPath
		if path == "" {
			path, _ = config.DefaultPath()
		}
		logger.Info("wrote default config", zap.String("path", path))
	}
	logger.Debug("starting", zap.String("command", cmd.Name()), zap.String("version", Version))
	return nil
}

// newExporter builds the ffmpeg exporter from the export section.
func newExporter() *media.FFmpegExporter {
	return media.NewFFmpegExporter(media.ExportSettings{
		OutputDir:  appConfig.OutputDir(),
		VideoCodec: appConfig.Export.VideoCodec,
		AudioCodec: appConfig.Export.AudioCodec,
		Preset:     appConfig.Export.Preset,
	}, logger)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/video-trim-cli/config.toml)")
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", config.DefaultSocketPath, "mpv IPC socket path")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "out", "o", "", "Directory for exported clips (default: OS temp dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Also log to stderr")

	rootCmd.AddCommand(versionCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		_ = applog.GetLogger().Sync()
		os.Exit(1)
	}
	_ = applog.GetLogger().Sync()
}
