package app

import (
	"log/slog"

	"github.com/vk/flowgraph/internal/events"
)

// logEvents subscribes a structured-log observer to the bus, one line per
// committed mutation. It returns the cancel function.
func logEvents(bus *events.Bus, logger *slog.Logger) func() {
	return bus.Subscribe(func(e events.Event) {
		switch ev := e.(type) {
		case events.NodeAdded:
			logger.Debug("Node added.", "node", ev.Node)
		case events.NodeRemoved:
			logger.Debug("Node removed.", "node", ev.Node)
		case events.ConnectionAdded:
			logger.Debug("Connection added.", "connection", ev.Connection)
		case events.ConnectionRemoved:
			logger.Debug("Connection removed.", "connection", ev.Connection)
		case events.ConnectionInvalidated:
			if ev.Valid {
				logger.Info("Connection recovered.", "connection", ev.Connection)
			} else {
				logger.Warn("Connection invalidated.", "connection", ev.Connection, "reason", ev.Reason)
			}
		case events.GroupCreated:
			logger.Debug("Group created.", "group", ev.Group)
		case events.GroupDissolved:
			logger.Debug("Group dissolved.", "group", ev.Group)
		case events.InterfacePinChanged:
			logger.Debug("Interface pin changed.", "group", ev.Group, "pin", ev.Pin, "reason", ev.Reason)
		}
	})
}
