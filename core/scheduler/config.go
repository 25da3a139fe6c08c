package scheduler

import (
	"fmt"
	"time"

	"github.com/kilianp07/carheater/core/heating"
)

// Config tunes the duration mapping and failure handling.
type Config struct {
	LookbackHours        int     `json:"lookback_hours"`
	HeatStartTemp        float64 `json:"heat_start_temp"`
	FullHeatTemp         float64 `json:"full_heat_temp"`
	MinDurationMinutes   int     `json:"min_duration_minutes"`
	MaxDurationMinutes   int     `json:"max_duration_minutes"`
	RearmRetries         int     `json:"rearm_retries"`
	ActionTimeoutSeconds int     `json:"action_timeout_seconds"`
}

// SetDefaults applies the stock mapping. The two temperatures are only
// defaulted together, since 0 °C is a valid threshold.
func (c *Config) SetDefaults() {
	d := heating.DefaultDurationParams()
	if c.LookbackHours == 0 {
		c.LookbackHours = int(d.Lookback / time.Hour)
	}
	if c.HeatStartTemp == 0 && c.FullHeatTemp == 0 {
		c.HeatStartTemp = d.HeatStartTemp
		c.FullHeatTemp = d.FullHeatTemp
	}
	if c.MinDurationMinutes == 0 {
		c.MinDurationMinutes = d.MinMinutes
	}
	if c.MaxDurationMinutes == 0 {
		c.MaxDurationMinutes = d.MaxMinutes
	}
	if c.RearmRetries == 0 {
		c.RearmRetries = 2
	}
	if c.ActionTimeoutSeconds == 0 {
		c.ActionTimeoutSeconds = 10
	}
}

func (c Config) Validate() error {
	if c.LookbackHours <= 0 {
		return fmt.Errorf("lookback_hours must be positive")
	}
	if c.HeatStartTemp <= c.FullHeatTemp {
		return fmt.Errorf("heat_start_temp (%.1f) must be above full_heat_temp (%.1f)", c.HeatStartTemp, c.FullHeatTemp)
	}
	if c.MinDurationMinutes <= 0 || c.MaxDurationMinutes < c.MinDurationMinutes {
		return fmt.Errorf("duration bounds [%d, %d] are invalid", c.MinDurationMinutes, c.MaxDurationMinutes)
	}
	if c.MaxDurationMinutes >= 24*60 {
		return fmt.Errorf("max_duration_minutes must be below one day")
	}
	if c.RearmRetries < 0 {
		return fmt.Errorf("rearm_retries must not be negative")
	}
	if c.ActionTimeoutSeconds <= 0 {
		return fmt.Errorf("action_timeout_seconds must be positive")
	}
	return nil
}

// DurationParams converts the config into the heating mapping.
func (c Config) DurationParams() heating.DurationParams {
	return heating.DurationParams{
		Lookback:      time.Duration(c.LookbackHours) * time.Hour,
		HeatStartTemp: c.HeatStartTemp,
		FullHeatTemp:  c.FullHeatTemp,
		MinMinutes:    c.MinDurationMinutes,
		MaxMinutes:    c.MaxDurationMinutes,
	}
}

func (c Config) actionTimeout() time.Duration {
	return time.Duration(c.ActionTimeoutSeconds) * time.Second
}
