package metrics

import (
	"testing"
	"time"

	coremetrics "github.com/kilianp07/carheater/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromSinkRecordsSchedule(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	start := time.Date(2019, 12, 13, 6, 30, 0, 0, time.UTC)
	require.NoError(t, sink.RecordSchedule(coremetrics.ScheduleEvent{
		ReadyTime:       "07:30",
		Enabled:         true,
		Armed:           true,
		DurationMinutes: 60,
		MeanTemperature: -5,
		NextStart:       start,
	}))
	assert.Equal(t, 60.0, testutil.ToFloat64(sink.duration))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.enabled))
	assert.Equal(t, -5.0, testutil.ToFloat64(sink.meanTemp))
	assert.Equal(t, float64(start.Unix()), testutil.ToFloat64(sink.nextStart))

	require.NoError(t, sink.RecordSchedule(coremetrics.ScheduleEvent{ReadyTime: "07:30", NextStart: start}))
	assert.Equal(t, 0.0, testutil.ToFloat64(sink.nextStart), "disabled timer has no next start")
}

func TestPromSinkCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	_ = sink.RecordHeaterAction(coremetrics.HeaterActionEvent{Action: "on", Reason: "catch_up"})
	_ = sink.RecordHeaterAction(coremetrics.HeaterActionEvent{Action: "on", Reason: "catch_up", Err: "timeout"})
	_ = sink.RecordReconfigure(coremetrics.ReconfigureEvent{Result: "ok"})

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.actions.WithLabelValues("on", "catch_up", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.actions.WithLabelValues("on", "catch_up", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.reconfig.WithLabelValues("ok")))
}

func TestPromSinkReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	_ = first.RecordReconfigure(coremetrics.ReconfigureEvent{Result: "rearm"})
	assert.Equal(t, 1.0, testutil.ToFloat64(second.reconfig.WithLabelValues("rearm")))
}
