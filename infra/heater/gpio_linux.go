//go:build linux

package heater

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"

	"github.com/kilianp07/carheater/infra/logger"
)

// GPIORelay drives a relay wired to a single GPIO output line.
type GPIORelay struct {
	mu   sync.Mutex
	line *gpiocdev.Line
	log  logger.Logger
}

// NewGPIORelay requests the line as an output that starts inactive.
func NewGPIORelay(cfg GPIOConfig) (*GPIORelay, error) {
	opts := []gpiocdev.LineReqOption{gpiocdev.WithConsumer("carheater"), gpiocdev.AsOutput(0)}
	if cfg.ActiveLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}
	line, err := gpiocdev.RequestLine(cfg.Chip, cfg.Pin, opts...)
	if err != nil {
		return nil, fmt.Errorf("request %s line %d: %w", cfg.Chip, cfg.Pin, err)
	}
	return &GPIORelay{line: line, log: logger.New("heater_gpio")}, nil
}

func (g *GPIORelay) TurnOn(ctx context.Context) error  { return g.set(ctx, true) }
func (g *GPIORelay) TurnOff(ctx context.Context) error { return g.set(ctx, false) }

func (g *GPIORelay) set(ctx context.Context, on bool) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.line == nil {
		return errors.New("gpio relay closed")
	}
	v := 0
	if on {
		v = 1
	}
	if err := g.line.SetValue(v); err != nil {
		return fmt.Errorf("set relay %s: %w", stateName(on), err)
	}
	g.log.Debugf("gpio relay %s", stateName(on))
	return nil
}

// Close forces the relay off and releases the line.
func (g *GPIORelay) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.line == nil {
		return nil
	}
	var errs []error
	if err := g.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("force relay off: %w", err))
	}
	if err := g.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close line: %w", err))
	}
	g.line = nil
	return errors.Join(errs...)
}
