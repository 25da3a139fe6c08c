package scheduler

import (
	"errors"

	"github.com/kilianp07/carheater/core/heating"
)

var (
	// ErrInvalidConfiguration is returned for a malformed ready time.
	ErrInvalidConfiguration = heating.ErrInvalidConfiguration
	// ErrPersistence is returned when the new state could not be saved. The
	// previous state and triggers remain in effect.
	ErrPersistence = errors.New("persisting schedule state failed")
	// ErrTriggerRearm is returned when triggers could not be armed. The new
	// state is kept but nothing is armed.
	ErrTriggerRearm = errors.New("arming heater triggers failed")
	// ErrNotReady is returned until the first forecast batch has arrived.
	ErrNotReady = errors.New("scheduler waiting for first forecast")
	// ErrStateNotFound is returned by a Store that has nothing persisted yet.
	ErrStateNotFound = errors.New("no persisted schedule state")
)
