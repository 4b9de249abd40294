package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup installs a JSON slog logger on stdout as the default. Extra
// handlers (the PostgreSQL sink in production) receive the same records.
func Setup(level string, extra ...slog.Handler) *slog.Logger {
	return SetupWriter(os.Stdout, level, extra...)
}

func SetupWriter(w io.Writer, level string, extra ...slog.Handler) *slog.Logger {
	var handler slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	if len(extra) > 0 {
		handler = NewMultiHandler(append([]slog.Handler{handler}, extra...)...)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps LOG_LEVEL values to slog levels; anything unknown is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
