package heater

import (
	"context"
	"sync"

	"github.com/kilianp07/carheater/infra/logger"
)

// LogOnly records the requested state without touching hardware.
type LogOnly struct {
	mu  sync.Mutex
	on  bool
	log logger.Logger
}

func NewLogOnly() *LogOnly {
	return &LogOnly{log: logger.New("heater")}
}

func (l *LogOnly) TurnOn(ctx context.Context) error  { return l.set(ctx, true) }
func (l *LogOnly) TurnOff(ctx context.Context) error { return l.set(ctx, false) }

// On reports the last requested state.
func (l *LogOnly) On() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}

func (l *LogOnly) set(ctx context.Context, on bool) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	l.mu.Lock()
	l.on = on
	l.mu.Unlock()
	l.log.Infof("heater %s (log-only backend)", stateName(on))
	return nil
}
