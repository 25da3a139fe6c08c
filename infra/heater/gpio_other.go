//go:build !linux

package heater

import (
	"context"
	"errors"
)

var errGPIOUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// GPIORelay is not available on non-Linux platforms.
type GPIORelay struct{}

func NewGPIORelay(GPIOConfig) (*GPIORelay, error) {
	return nil, errGPIOUnsupported
}

func (*GPIORelay) TurnOn(context.Context) error  { return errGPIOUnsupported }
func (*GPIORelay) TurnOff(context.Context) error { return errGPIOUnsupported }
func (*GPIORelay) Close() error                  { return nil }
