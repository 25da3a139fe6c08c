package config

import "fmt"

// StatusConfig controls retained status publishing over MQTT.
type StatusConfig struct {
	// Topic receives the schedule status as a retained message. Empty
	// disables publishing.
	Topic string `json:"topic"`
	// IntervalSeconds republishes the last status so displays keep a fresh
	// "next action" text. Zero publishes on changes only.
	IntervalSeconds int `json:"interval_seconds"`
}

func (c StatusConfig) Validate() error {
	if c.IntervalSeconds < 0 {
		return fmt.Errorf("status.interval_seconds must not be negative")
	}
	return nil
}

// APIConfig configures the HTTP listener.
type APIConfig struct {
	Address string `json:"address"`
}

func (c *APIConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":4000"
	}
}
