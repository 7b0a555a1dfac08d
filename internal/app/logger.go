package app

import (
	"io"
	"log/slog"
)

// newLogger builds the slog.Logger the application threads through context.
// Everything flowgraph reports goes through it: loader progress, build
// passes, and graph mutation events. It never touches the global logger, so
// tests can hand each model an isolated instance. An unknown level or
// format falls back to the CLI defaults, info and json.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler

	if formatStr == "text" {
		handler = slog.NewTextHandler(outW, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	}

	return slog.New(handler)
}
