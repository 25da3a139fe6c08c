package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	path := writeFile(t, "config.yaml", `logging:
  level: "debug"
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "garage"
  ack_topic: "heater/+/ack"
heater:
  backend: "mqtt"
  mqtt:
    device_id: "car"
    ack_timeout_ms: 2000
scheduler:
  lookback_hours: 4
  rearm_retries: 1
forecast:
  city: "tampere"
state:
  backend: "sqlite"
status:
  topic: "carheater/status"
metrics:
  sinks:
    - type: "prometheus"
  prometheus_address: ":9100"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"log level", cfg.Logging.Level, "debug"},
		{"log format default", cfg.Logging.Format, "json"},
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "garage"},
		{"heater backend", cfg.Heater.Backend, "mqtt"},
		{"device", cfg.Heater.MQTT.DeviceID, "car"},
		{"ack timeout", cfg.Heater.MQTT.AckTimeoutMS, 2000},
		{"lookback", cfg.Scheduler.LookbackHours, 4},
		{"heat start default", cfg.Scheduler.HeatStartTemp, 10.0},
		{"full heat default", cfg.Scheduler.FullHeatTemp, -15.0},
		{"max duration default", cfg.Scheduler.MaxDurationMinutes, 90},
		{"rearm retries", cfg.Scheduler.RearmRetries, 1},
		{"city", cfg.Forecast.City, "tampere"},
		{"poll interval default", cfg.Forecast.PollIntervalSeconds, 1800},
		{"state backend", cfg.State.Backend, "sqlite"},
		{"state path default", cfg.State.Path, "car_heater_state.db"},
		{"api address default", cfg.API.Address, ":4000"},
		{"status topic", cfg.Status.Topic, "carheater/status"},
		{"metrics sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "prometheus", true},
		{"prometheus address", cfg.Metrics.PrometheusAddress, ":9100"},
	}
	for _, c := range checks {
		assert.Equal(t, c.want, c.got, c.name)
	}
	assert.True(t, cfg.NeedsMQTT())
}

func TestLoadJSONWithEnvOverrides(t *testing.T) {
	path := writeFile(t, "config.json", `{"heater": {"backend": "log"}, "api": {"address": ":8080"}}`)
	t.Setenv("CARHEATER_HEATER__BACKEND", "gpio")
	t.Setenv("CARHEATER_HEATER__GPIO__PIN", "17")
	t.Setenv("CARHEATER_SCHEDULER__MAX_DURATION_MINUTES", "120")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gpio", cfg.Heater.Backend)
	assert.Equal(t, 17, cfg.Heater.GPIO.Pin)
	assert.Equal(t, "gpiochip0", cfg.Heater.GPIO.Chip)
	assert.Equal(t, 120, cfg.Scheduler.MaxDurationMinutes)
	assert.Equal(t, ":8080", cfg.API.Address)
	assert.False(t, cfg.NeedsMQTT())
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "log", cfg.Heater.Backend)
	assert.Equal(t, "espoo", cfg.Forecast.City)
	assert.Equal(t, "car_heater_state.json", cfg.State.Path)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
	}{
		{"unsupported extension", "config.toml", `a = 1`},
		{"mqtt heater without broker", "config.yaml", "heater:\n  backend: mqtt\n  mqtt:\n    device_id: car\n"},
		{"status without broker", "config.yaml", "status:\n  topic: carheater/status\n"},
		{"inverted temperatures", "config.yaml", "scheduler:\n  heat_start_temp: -20\n  full_heat_temp: 5\n"},
		{"unknown state backend", "config.yaml", "state:\n  backend: redis\n"},
		{"bad log level", "config.yaml", "logging:\n  level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoggingApply(t *testing.T) {
	c := LoggingConfig{}
	c.SetDefaults()
	require.NoError(t, c.Validate())
	assert.NoError(t, c.Apply())
}
