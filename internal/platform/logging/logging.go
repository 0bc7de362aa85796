package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.uber.org/automaxprocs/maxprocs"
)

// New builds the JSON process logger. Unknown levels fall back to info.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}

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

// Install makes logger the process default and aligns GOMAXPROCS with the
// container CPU quota, reporting through the same logger.
func Install(logger *slog.Logger) error {
	slog.SetDefault(logger)
	_, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Info(fmt.Sprintf(format, args...),
			"event", "maxprocs_configured",
			"module", "internal/platform/logging",
			"layer", "platform",
		)
	}))
	return err
}
