package logger

import (
	"log/slog"
	"os"
)

var Log *slog.Logger

// Init configures the process-wide structured logger. JSON output so the
// back-office log pipeline can index cancellation and refund fields; every
// record is tagged with the service name.
func Init() {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	Log = slog.New(handler).With("service", "placement-backoffice")
}
