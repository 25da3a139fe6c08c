package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type scheduleOnly struct{ count int }

func (s *scheduleOnly) RecordSchedule(ScheduleEvent) error {
	s.count++
	return nil
}

type fullSink struct {
	scheduleOnly
	actions int
	fail    bool
}

func (f *fullSink) RecordHeaterAction(HeaterActionEvent) error {
	f.actions++
	if f.fail {
		return errors.New("write failed")
	}
	return nil
}

func TestMultiSinkForwardsToCapableSinks(t *testing.T) {
	basic := &scheduleOnly{}
	full := &fullSink{fail: true}
	healthy := &fullSink{}
	m := NewMultiSink(basic, full, healthy)

	assert.NoError(t, m.RecordSchedule(ScheduleEvent{ReadyTime: "07:00"}))
	assert.Equal(t, 1, basic.count)
	assert.Equal(t, 1, full.count)

	err := m.RecordHeaterAction(HeaterActionEvent{Action: "on"})
	assert.Error(t, err)
	assert.Equal(t, 1, full.actions)
	assert.Equal(t, 1, healthy.actions, "later sinks still receive the event")

	assert.NoError(t, m.RecordReconfigure(ReconfigureEvent{Result: "ok"}))
	assert.NoError(t, m.RecordForecast(ForecastEvent{Samples: 3}))
}
