package app

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/flowgraph/internal/builder"
	"github.com/vk/flowgraph/internal/ctxlog"
	"github.com/vk/flowgraph/internal/events"
	"github.com/vk/flowgraph/internal/graph"
	"github.com/vk/flowgraph/internal/snapshot"
)

// Run executes the main application logic: build the declared graph, report
// its shape, and optionally persist a snapshot.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	bus := events.NewBus()
	cancel := logEvents(bus, a.logger)
	defer cancel()

	opts := []graph.Option{graph.WithBus(bus)}
	if cfg.RelaxedFanIn {
		opts = append(opts, graph.WithRelaxedFanIn())
	}

	a.logger.Debug("Building graph model from document...")
	res, err := builder.Build(ctx, a.document, opts...)
	if err != nil {
		return fmt.Errorf("failed to build graph: %w", err)
	}
	a.logger.Debug("Graph model built.", "node_count", len(res.Model.NodeIDs()))

	order, err := res.Model.TopoOrder()
	if err != nil {
		return fmt.Errorf("failed to order graph: %w", err)
	}

	fmt.Fprintf(a.outW, "graph: %d node types, %d nodes, %d connections, %d groups\n",
		res.Registry.Len(),
		len(res.Model.NodeIDs()),
		len(res.Model.ConnectionIDs()),
		len(res.Model.GroupIDs()),
	)
	fmt.Fprintln(a.outW, "evaluation order:")
	for i, id := range order {
		n, _ := res.Model.NodeByID(id)
		fmt.Fprintf(a.outW, "  %2d. %s (%s)\n", i+1, n.Name, n.TypeName)
	}

	if cfg.SnapshotPath != "" {
		if err := writeSnapshot(res.Model, cfg.SnapshotPath); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		a.logger.Info("Snapshot written.", "path", cfg.SnapshotPath)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

func writeSnapshot(m *graph.Model, path string) error {
	snap, err := m.Snapshot()
	if err != nil {
		return err
	}
	raw, err := snapshot.Encode(snap)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
