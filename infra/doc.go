// Package infra holds the adapters behind the core ports: relay backends,
// the forecast HTTP client, cron triggers, state stores, MQTT and metrics.
package infra
