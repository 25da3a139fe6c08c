// Package heater defines the switch the scheduler drives.
package heater

import "context"

// Control switches the car heater relay. Implementations must be safe to call
// repeatedly with the same target state.
type Control interface {
	TurnOn(ctx context.Context) error
	TurnOff(ctx context.Context) error
}
