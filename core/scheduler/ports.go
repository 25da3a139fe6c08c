package scheduler

import (
	"context"

	"github.com/kilianp07/carheater/core/heating"
)

// TriggerID identifies an armed trigger.
type TriggerID int

// Triggers arms callbacks that fire every day at a UTC time of day.
type Triggers interface {
	Daily(at heating.TimeOfDay, fn func()) (TriggerID, error)
	Cancel(id TriggerID)
}

// Store persists the schedule state.
type Store interface {
	// Load returns ErrStateNotFound when nothing has been saved.
	Load(ctx context.Context) (heating.ScheduleState, error)
	Save(ctx context.Context, st heating.ScheduleState) error
}
