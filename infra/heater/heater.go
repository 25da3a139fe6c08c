// Package heater provides the relay adapters behind core/heater.Control.
package heater

import (
	"context"
	"errors"
	"fmt"

	coreheater "github.com/kilianp07/carheater/core/heater"
	coremqtt "github.com/kilianp07/carheater/core/mqtt"
)

// Closer is implemented by adapters that hold hardware or network resources.
type Closer interface {
	Close() error
}

// New builds the configured backend. client is only used by the mqtt backend
// and may be nil otherwise.
func New(cfg Config, client coremqtt.Client) (coreheater.Control, error) {
	switch cfg.Backend {
	case BackendLog, "":
		return NewLogOnly(), nil
	case BackendMQTT:
		if client == nil {
			return nil, errors.New("mqtt heater backend requires an mqtt client")
		}
		return NewMQTTRelay(client, cfg.MQTT), nil
	case BackendHoum:
		h, err := NewHoum(cfg.Houm)
		if err != nil {
			return nil, err
		}
		return h, nil
	case BackendGPIO:
		g, err := NewGPIORelay(cfg.GPIO)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown heater backend %q", cfg.Backend)
	}
}

// Close releases adapter resources when the adapter holds any.
func Close(c coreheater.Control) error {
	if cl, ok := c.(Closer); ok {
		return cl.Close()
	}
	return nil
}

func stateName(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("heater action aborted: %w", err)
	}
	return nil
}
