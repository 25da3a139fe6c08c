package metrics

import "github.com/kilianp07/carheater/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddress enables the /metrics listener when set, e.g. ":9100".
	PrometheusAddress string `json:"prometheus_address"`
}
