package logger

import (
	"fmt"

	corelogger "github.com/kilianp07/carheater/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// New returns a Logger tagged with component. Output format follows APP_ENV
// and the level follows LOG_LEVEL.
func New(component string) Logger {
	return NewZerologLogger(component)
}

// Leveled adapts a Logger to the key/value leveled interface used by
// retryablehttp and cron.
type Leveled struct {
	L Logger
}

func (l Leveled) Error(msg string, kv ...any) { l.L.Errorf("%s%s", msg, pairs(kv)) }
func (l Leveled) Warn(msg string, kv ...any)  { l.L.Warnf("%s%s", msg, pairs(kv)) }
func (l Leveled) Info(msg string, kv ...any)  { l.L.Debugf("%s%s", msg, pairs(kv)) }
func (l Leveled) Debug(msg string, kv ...any) { l.L.Debugf("%s%s", msg, pairs(kv)) }

func pairs(kv []any) string {
	if len(kv) == 0 {
		return ""
	}
	var out []byte
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, ' ')
		out = append(out, fmt.Sprint(kv[i])...)
		out = append(out, '=')
		out = append(out, fmt.Sprint(kv[i+1])...)
	}
	return string(out)
}
