package heater

import (
	"fmt"
	"net/url"
)

// Backend names accepted in Config.Backend.
const (
	BackendLog  = "log"
	BackendMQTT = "mqtt"
	BackendHoum = "houm"
	BackendGPIO = "gpio"
)

type MQTTConfig struct {
	DeviceID     string `json:"device_id"`
	AckTimeoutMS int    `json:"ack_timeout_ms"`
}

type HoumConfig struct {
	BaseURL    string `json:"base_url"`
	SiteKey    string `json:"site_key"`
	DeviceID   string `json:"device_id"`
	Brightness int    `json:"brightness"`
	RetryMax   int    `json:"retry_max"`
}

type GPIOConfig struct {
	Chip      string `json:"chip"`
	Pin       int    `json:"pin"`
	ActiveLow bool   `json:"active_low"`
}

// Config selects and configures the heater backend.
type Config struct {
	Backend string     `json:"backend"`
	MQTT    MQTTConfig `json:"mqtt"`
	Houm    HoumConfig `json:"houm"`
	GPIO    GPIOConfig `json:"gpio"`
}

func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = BackendLog
	}
	if c.Houm.BaseURL == "" {
		c.Houm.BaseURL = "https://api.mountkelvin.com"
	}
	if c.Houm.Brightness == 0 {
		c.Houm.Brightness = 255
	}
	if c.Houm.RetryMax == 0 {
		c.Houm.RetryMax = 2
	}
	if c.GPIO.Chip == "" {
		c.GPIO.Chip = "gpiochip0"
	}
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendLog:
	case BackendMQTT:
		if c.MQTT.DeviceID == "" {
			return fmt.Errorf("heater.mqtt.device_id is required")
		}
		if c.MQTT.AckTimeoutMS < 0 {
			return fmt.Errorf("heater.mqtt.ack_timeout_ms must not be negative")
		}
	case BackendHoum:
		if _, err := url.ParseRequestURI(c.Houm.BaseURL); err != nil {
			return fmt.Errorf("heater.houm.base_url: %w", err)
		}
		if c.Houm.SiteKey == "" || c.Houm.DeviceID == "" {
			return fmt.Errorf("heater.houm.site_key and heater.houm.device_id are required")
		}
		if c.Houm.Brightness < 0 || c.Houm.Brightness > 255 {
			return fmt.Errorf("heater.houm.brightness must be within 0..255")
		}
	case BackendGPIO:
		if c.GPIO.Pin < 0 {
			return fmt.Errorf("heater.gpio.pin must not be negative")
		}
	default:
		return fmt.Errorf("unknown heater backend %q", c.Backend)
	}
	return nil
}
