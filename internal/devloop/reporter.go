package devloop

import (
	"log/slog"

	"github.com/shaharia-lab/wasmdev/internal/eventbus"
	"github.com/shaharia-lab/wasmdev/internal/metrics"
)

// Reporter returns a listener that logs and counts every output update
// announced on the bus. Source change events are left to the Builder.
func Reporter(logger *slog.Logger, m *metrics.Metrics) eventbus.Listener {
	return func(e eventbus.Event) {
		switch e.Kind {
		case eventbus.AssetCopied, eventbus.StyleRebuilt:
		default:
			return
		}
		m.Rebuilds.WithLabelValues(string(e.Kind)).Inc()
		logger.Info("output updated",
			slog.String("kind", string(e.Kind)),
			slog.String("source", e.Path),
			slog.String("output", e.Dest),
		)
	}
}
