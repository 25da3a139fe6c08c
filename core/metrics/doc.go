// Package metrics defines the events the heater scheduler emits for
// observability and the sinks that record them. Sinks like PromSink and
// InfluxSink implement MetricsSink plus any optional recorder interfaces they
// support. NewMetricsSink returns a MultiSink when several are configured.
package metrics
