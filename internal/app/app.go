package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/flowgraph/internal/config"
	"github.com/vk/flowgraph/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	document *config.Document
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and the
// document loaded from the configured paths.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	var paths []string
	if cfg.TypesPath != "" {
		paths = append(paths, cfg.TypesPath)
	}
	if cfg.GraphPath != "" {
		paths = append(paths, cfg.GraphPath)
	}

	doc, err := loader.Load(ctx, paths...)
	if err != nil {
		// A failure to load the document is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified document.")

	return &App{
		outW:     outW,
		logger:   logger,
		document: doc,
	}
}

// Document returns the loaded document. This is primarily for testing.
func (a *App) Document() *config.Document {
	return a.document
}
