package metrics

import (
	"context"

	"github.com/kilianp07/carheater/core/forecast"
	coremetrics "github.com/kilianp07/carheater/core/metrics"
	"github.com/kilianp07/carheater/internal/eventbus"
)

// StartForecastCollector records every batch published on bus until ctx is
// canceled. Sinks without ForecastRecorder are skipped.
func StartForecastCollector(ctx context.Context, bus *eventbus.TypedBus[forecast.Batch], sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	rec, ok := sink.(coremetrics.ForecastRecorder)
	if !ok {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case b, ok := <-sub:
				if !ok {
					return
				}
				_ = rec.RecordForecast(ForecastEventOf(b))
			}
		}
	}()
}

// ForecastEventOf summarizes a batch.
func ForecastEventOf(b forecast.Batch) coremetrics.ForecastEvent {
	ev := coremetrics.ForecastEvent{Samples: len(b.Samples), FetchedAt: b.FetchedAt}
	if n := len(b.Samples); n > 0 {
		ev.FirstAt = b.Samples[0].Timestamp
		ev.LastAt = b.Samples[n-1].Timestamp
	}
	return ev
}
