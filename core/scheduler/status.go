package scheduler

import (
	"time"

	"github.com/kilianp07/carheater/core/heating"
)

// Status is a snapshot of the schedule.
type Status struct {
	ReadyTime              heating.TimeOfDay `json:"readyTime"`
	Enabled                bool              `json:"timerEnabled"`
	HeatingDurationMinutes int               `json:"heatingDuration"`
	Armed                  bool              `json:"armed"`
	Heating                bool              `json:"heating"`
	HeaterOn               bool              `json:"heaterOn"`
	NextStart              time.Time         `json:"nextStart"`
	NextReady              time.Time         `json:"nextReady"`
	UpdatedAt              time.Time         `json:"updatedAt"`
}

// NextAction is the next transition a user should expect at now.
func (s Status) NextAction(now time.Time) heating.Action {
	return heating.NextAction(s.ReadyTime, s.HeatingDurationMinutes, now)
}
