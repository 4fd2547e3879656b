package worker

import (
	"context"
	"log/slog"
	"time"

	"glucofeed/internal/apis"
)

// APICollector periodically runs an external API aggregation pass and
// logs a quality summary. The pass warms the aggregator's source cache
// so interactive queries get fresh-enough merged results.
type APICollector struct {
	Aggregator *apis.Aggregator
	Interval   time.Duration
}

func (w *APICollector) Start(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = 30 * time.Minute
	}

	// initial run
	w.runOnce(ctx)

	t := time.NewTicker(w.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			w.runOnce(ctx)
		}
	}
}

func (w *APICollector) runOnce(ctx context.Context) {
	res := w.Aggregator.FetchAll(ctx)
	flagged := 0
	for _, q := range res.Quality.Sources {
		if q.Flagged {
			flagged++
			slog.Warn("api-collector: source flagged", "source", q.Source, "score", q.Score, "recommendation", q.Recommendation)
		}
	}
	slog.Info("api-collector: pass complete",
		"items", len(res.Items),
		"overall_quality", res.Quality.Overall,
		"flagged_sources", flagged)
}
