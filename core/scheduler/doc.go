// Package scheduler owns the preheating schedule: the persisted ready time and
// enabled flag, the heating duration derived from the latest forecast, and
// the two daily triggers that switch the heater on and off.
//
// All reconfigurations are serialized. Every rearm bumps a generation
// counter, and trigger callbacks from an older generation are ignored, so a
// callback racing with a reconfigure can never act on a stale schedule.
package scheduler
