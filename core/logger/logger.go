// Package logger declares the logging surface shared by every component.
package logger

// Logger is implemented by infra/logger. Components take it as a dependency
// so tests can pass a no-op or capturing logger.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs msg with structured fields.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
