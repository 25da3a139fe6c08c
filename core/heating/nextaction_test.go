package heating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimeUntil(t *testing.T) {
	tests := []struct {
		now      string
		ready    string
		duration int
		phase    Phase
		want     string
	}{
		{"12:30", "14:00", 30, PhaseStarting, "in about 1 hour"},
		{"00:15", "00:30", 45, PhaseEnding, "in 15 minutes"},
		{"14:00", "12:00", 30, PhaseStarting, "in about 22 hours"},
		{"14:00", "12:00", 0, PhaseStarting, "in about 22 hours"},
		{"12:00", "12:00", 30, PhaseStarting, "in about 24 hours"},
		{"13:00", "13:30", 45, PhaseEnding, "in 30 minutes"},
		{"13:00", "16:00", 60, PhaseStarting, "in about 2 hours"},
	}
	for _, tt := range tests {
		t.Run(tt.now+"_"+tt.ready, func(t *testing.T) {
			now := at("2019-12-12T" + tt.now + ":13.120Z")
			action := NextAction(MustParseTimeOfDay(tt.ready), tt.duration, now)
			assert.Equal(t, tt.phase, action.Phase)
			assert.Equal(t, tt.want, FormatTimeUntil(action, now))
		})
	}
}

func TestApproximateDistanceShortRanges(t *testing.T) {
	now := at("2019-12-12T12:00:00Z")
	a := Action{Phase: PhaseStarting, At: now.Add(30e9)}
	assert.Equal(t, "in half a minute", FormatTimeUntil(a, now))

	a.At = now.Add(10 * 60e9)
	assert.Equal(t, "in 10 minutes", FormatTimeUntil(a, now))
}
