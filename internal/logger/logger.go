package logger

import (
	"log/slog"
	"os"

	"github.com/saltmarsh-games/worldengine/internal/config"
)

// Setup builds the process-wide slog logger. Production gets JSON output
// for log shippers, everything else gets the text handler. Debug level
// also turns on source locations.
func Setup(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     cfg.LogLevel,
		AddSource: cfg.LogLevel == slog.LevelDebug,
	}

	var handler slog.Handler
	if cfg.Environment == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With("service", "worldengine")
	slog.SetDefault(logger)

	return logger
}
