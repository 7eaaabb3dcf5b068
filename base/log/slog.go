package log

import (
	"log/slog"
	"os"
	"runtime"

	"github.com/lmittmann/tint"
)

const timeFormat = "060102 15:04:05.000"

// SetupSLog initializes the default slog logger with the given level.
func SetupSLog(level slog.Level) {
	// Create handler depending on OS.
	var logHandler slog.Handler
	switch runtime.GOOS {
	case "linux", "windows":
		logHandler = tint.NewHandler(os.Stdout, &tint.Options{
			AddSource:  true,
			Level:      level,
			TimeFormat: timeFormat,
		})
	default:
		logHandler = tint.NewHandler(os.Stdout, &tint.Options{
			AddSource:  true,
			Level:      level,
			TimeFormat: timeFormat,
			NoColor:    true,
		})
	}

	// Set as default logger.
	slog.SetDefault(slog.New(logHandler))
	// Set actual log level.
	slog.SetLogLoggerLevel(level)
}

// ParseLevel returns the slog level with the given name.
// Unknown names map to the info level.
func ParseLevel(name string) slog.Level {
	switch name {
	case "trace", "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "critical":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
