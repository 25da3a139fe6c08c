package store

import (
	"fmt"

	"github.com/kilianp07/carheater/core/scheduler"
)

// Config selects the state backend.
type Config struct {
	// Backend is "file" or "sqlite".
	Backend string `json:"backend"`
	Path    string `json:"path"`
}

func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "file"
	}
	if c.Path == "" {
		if c.Backend == "sqlite" {
			c.Path = "car_heater_state.db"
		} else {
			c.Path = "car_heater_state.json"
		}
	}
}

func (c Config) Validate() error {
	if c.Backend != "file" && c.Backend != "sqlite" {
		return fmt.Errorf("unknown state backend %s", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("state path is required")
	}
	return nil
}

// New opens the configured store. SQLite stores implement io.Closer.
func New(cfg Config) (scheduler.Store, error) {
	switch cfg.Backend {
	case "sqlite":
		s, err := NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "file", "":
		return NewFileStore(cfg.Path), nil
	}
	return nil, fmt.Errorf("unknown state backend %s", cfg.Backend)
}
