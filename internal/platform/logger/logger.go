package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. JSON to stdout so log shippers can index
// the structured sweep and evaluation summaries without parsing.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("CUSTOS_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
