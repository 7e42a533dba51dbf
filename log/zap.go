// Package log holds the process-wide zap logger.
package log

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileName is the name of the log file written inside the log directory.
const FileName = "video-trim-cli.log"

// Logger is the shared logger. It discards everything until Init is called.
var Logger = zap.NewNop()

// Options controls where log output goes.
type Options struct {
	// Dir is the directory holding the log file. Empty disables file logging.
	Dir string
	// Level is a zap level name such as "debug" or "info".
	Level string
	// Console mirrors log lines to stderr. The TUI owns stdout, so this is off by default.
	Console bool
}

// Init builds the shared logger from opts and returns it.
func Init(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
		level = parsed
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var cores []zapcore.Core
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log dir: %w", err)
		}
		file, err := os.OpenFile(filepath.Join(opts.Dir, FileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(file), level))
	}
	if opts.Console {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stderr), level))
	}
	if len(cores) == 0 {
		Logger = zap.NewNop()
		return Logger, nil
	}

	Logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return Logger, nil
}

// GetLogger returns the shared logger.
func GetLogger() *zap.Logger {
	return Logger
}

// DefaultDir returns ~/.local/state/video-trim-cli.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "video-trim-cli"), nil
}
