package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/carheater/core/metrics"
	"github.com/kilianp07/carheater/core/scheduler"
	"github.com/kilianp07/carheater/infra/forecast"
	"github.com/kilianp07/carheater/infra/heater"
	"github.com/kilianp07/carheater/infra/mqtt"
	"github.com/kilianp07/carheater/infra/store"
)

// EnvPrefix marks environment overrides: CARHEATER_HEATER__BACKEND=gpio sets
// heater.backend.
const EnvPrefix = "CARHEATER_"

type Config struct {
	Logging   LoggingConfig    `json:"logging"`
	MQTT      mqtt.Config      `json:"mqtt"`
	Heater    heater.Config    `json:"heater"`
	Scheduler scheduler.Config `json:"scheduler"`
	Forecast  forecast.Config  `json:"forecast"`
	State     store.Config     `json:"state"`
	API       APIConfig        `json:"api"`
	Status    StatusConfig     `json:"status"`
	Metrics   metrics.Config   `json:"metrics"`
	Sentry    SentryConfig     `json:"sentry"`
}

// Load reads path (yaml or json) when set, applies environment overrides,
// fills defaults and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) SetDefaults() {
	c.Logging.SetDefaults()
	c.MQTT.SetDefaults()
	c.Heater.SetDefaults()
	c.Scheduler.SetDefaults()
	c.Forecast.SetDefaults()
	c.State.SetDefaults()
	c.API.SetDefaults()
	c.Sentry.SetDefaults()
}

func (c Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Heater.Validate(); err != nil {
		return err
	}
	if c.Heater.Backend == heater.BackendMQTT && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required for the mqtt heater backend")
	}
	if c.Status.Topic != "" && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required for status publishing")
	}
	if err := c.Status.Validate(); err != nil {
		return err
	}
	if err := c.Scheduler.Validate(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	if err := c.Forecast.Validate(); err != nil {
		return err
	}
	return c.State.Validate()
}

// NeedsMQTT reports whether any component uses the broker.
func (c Config) NeedsMQTT() bool {
	return c.Heater.Backend == heater.BackendMQTT || c.Status.Topic != ""
}
