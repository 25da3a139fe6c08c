package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("LOG_LEVEL", "warn")
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestSetLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)

	assert.NoError(t, SetLevel("WARN"))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	assert.Error(t, SetLevel("loud"))
}

type captureLogger struct {
	NopLogger
	lines []string
}

func (c *captureLogger) Errorf(format string, args ...any) {
	c.lines = append(c.lines, format)
	if len(args) == 2 {
		c.lines = append(c.lines, args[0].(string)+args[1].(string))
	}
}

func TestLeveledFormatsPairs(t *testing.T) {
	c := &captureLogger{}
	Leveled{L: c}.Error("request failed", "url", "http://x", "attempt", 2)
	assert.Equal(t, []string{"%s%s", "request failed url=http://x attempt=2"}, c.lines)
}

func TestSetFormat(t *testing.T) {
	defer func() { _ = SetFormat("json") }()
	assert.NoError(t, SetFormat("console"))
	assert.True(t, consoleFormat.Load())
	assert.NoError(t, SetFormat("JSON"))
	assert.False(t, consoleFormat.Load())
	assert.Error(t, SetFormat("xml"))
}
