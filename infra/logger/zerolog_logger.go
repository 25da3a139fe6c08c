package logger

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a ZerologLogger. APP_ENV=dev switches to the
// console writer. Every entry carries the component field.
func NewZerologLogger(component string) Logger {
	return &ZerologLogger{log: newZerolog(component, os.Stdout)}
}

var consoleFormat atomic.Bool

// SetFormat selects "console" or "json" output for loggers created
// afterwards. APP_ENV=dev forces console output.
func SetFormat(format string) error {
	switch strings.ToLower(format) {
	case "", "json":
		consoleFormat.Store(false)
	case "console":
		consoleFormat.Store(true)
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return nil
}

func newZerolog(component string, out *os.File) zerolog.Logger {
	var z zerolog.Logger
	if consoleFormat.Load() || strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		writer := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		z = zerolog.New(writer)
	} else {
		z = zerolog.New(out)
	}
	return z.Level(levelFromEnv()).With().Timestamp().Str("component", component).Logger()
}

// SetLevel changes the process-wide minimum level, e.g. from the logging
// config section.
func SetLevel(level string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

func levelFromEnv() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.DebugLevel
	}
	return lvl
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
