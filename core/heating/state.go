package heating

import (
	"encoding/json"
	"fmt"
)

// DefaultReadyTime is used when no state has been persisted yet.
var DefaultReadyTime = TimeOfDay{Hour: 12, Minute: 0}

// ScheduleState is the user-controlled part of the schedule. It is the only
// thing that survives a restart.
type ScheduleState struct {
	ReadyTime TimeOfDay
	Enabled   bool
}

func DefaultScheduleState() ScheduleState {
	return ScheduleState{ReadyTime: DefaultReadyTime}
}

func NewScheduleState(readyTime string, enabled bool) (ScheduleState, error) {
	tod, err := ParseTimeOfDay(readyTime)
	if err != nil {
		return ScheduleState{}, err
	}
	return ScheduleState{ReadyTime: tod, Enabled: enabled}, nil
}

type scheduleStateJSON struct {
	ReadyTime    *string `json:"readyTime"`
	TimerEnabled *bool   `json:"timerEnabled"`
}

func (s ScheduleState) MarshalJSON() ([]byte, error) {
	rt := s.ReadyTime.String()
	return json.Marshal(scheduleStateJSON{ReadyTime: &rt, TimerEnabled: &s.Enabled})
}

// UnmarshalJSON requires both fields to be present.
func (s *ScheduleState) UnmarshalJSON(b []byte) error {
	var raw scheduleStateJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if raw.ReadyTime == nil || raw.TimerEnabled == nil {
		return fmt.Errorf("%w: readyTime and timerEnabled are required", ErrInvalidConfiguration)
	}
	st, err := NewScheduleState(*raw.ReadyTime, *raw.TimerEnabled)
	if err != nil {
		return err
	}
	*s = st
	return nil
}
