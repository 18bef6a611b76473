package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger: JSON in deployments that set
// LOG_FORMAT=json, readable text otherwise. Every line carries the
// service name so the two binaries are distinguishable in shared log
// streams.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	var handler slog.Handler
	if cfg != nil && cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler).With(slog.String("service", "societyhub"))
}
