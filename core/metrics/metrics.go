package metrics

import "time"

// ScheduleEvent is emitted after every successful reconfiguration.
type ScheduleEvent struct {
	ReadyTime       string
	Enabled         bool
	Armed           bool
	DurationMinutes int
	// MeanTemperature is NaN when no forecast sample fell in the window.
	MeanTemperature float64
	Samples         int
	NextStart       time.Time
	NextReady       time.Time
	Time            time.Time
}

// MetricsSink records schedule changes.
type MetricsSink interface {
	RecordSchedule(ev ScheduleEvent) error
}

// HeaterActionEvent captures a single relay switch attempt.
type HeaterActionEvent struct {
	Action  string // "on" or "off"
	Reason  string
	Err     string
	Latency time.Duration
	Time    time.Time
}

// HeaterActionRecorder records relay switch attempts.
type HeaterActionRecorder interface {
	RecordHeaterAction(ev HeaterActionEvent) error
}

// ReconfigureEvent records the outcome of a reconfigure call.
type ReconfigureEvent struct {
	Result string // ok, invalid, persistence, rearm, not_ready
	Time   time.Time
}

type ReconfigureRecorder interface {
	RecordReconfigure(ev ReconfigureEvent) error
}

// ForecastEvent describes a received forecast batch.
type ForecastEvent struct {
	Samples   int
	FirstAt   time.Time
	LastAt    time.Time
	FetchedAt time.Time
}

type ForecastRecorder interface {
	RecordForecast(ev ForecastEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordSchedule(ScheduleEvent) error         { return nil }
func (NopSink) RecordHeaterAction(HeaterActionEvent) error { return nil }
func (NopSink) RecordReconfigure(ReconfigureEvent) error   { return nil }
func (NopSink) RecordForecast(ForecastEvent) error         { return nil }
