package heating

import "time"

// TimeOfDayToday returns the instant on now's UTC calendar date at tod,
// with seconds and sub-seconds zeroed.
func TimeOfDayToday(tod TimeOfDay, now time.Time) time.Time {
	u := now.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), tod.Hour, tod.Minute, 0, 0, time.UTC)
}

// NextReadyInstant returns the first occurrence of tod strictly after now.
// An occurrence equal to now counts as past.
func NextReadyInstant(tod TimeOfDay, now time.Time) time.Time {
	today := TimeOfDayToday(tod, now)
	if today.After(now) {
		return today
	}
	return today.AddDate(0, 0, 1)
}

// NextHeatingStartInstant returns the next instant the heater should be
// switched on so that it has run durationMinutes by the ready time. The
// result is always strictly after now.
func NextHeatingStartInstant(tod TimeOfDay, durationMinutes int, now time.Time) time.Time {
	candidate := NextReadyInstant(tod, now).Add(-minutes(durationMinutes))
	if candidate.After(now) {
		return candidate
	}
	return candidate.AddDate(0, 0, 1)
}

// IsCurrentlyHeating reports whether now falls inside the heating window
// ending at the next ready instant. A zero duration is never heating.
func IsCurrentlyHeating(tod TimeOfDay, durationMinutes int, now time.Time) bool {
	start := NextReadyInstant(tod, now).Add(-minutes(durationMinutes))
	return !start.After(now)
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}
