package heating

import (
	"fmt"
	"math"
	"time"
)

type Phase string

const (
	PhaseStarting Phase = "Starting"
	PhaseEnding   Phase = "Ending"
)

// Action is the next heater transition a user should expect.
type Action struct {
	Phase Phase
	At    time.Time
}

// NextAction returns the end of the current heating window while heating,
// otherwise the next start.
func NextAction(tod TimeOfDay, durationMinutes int, now time.Time) Action {
	if IsCurrentlyHeating(tod, durationMinutes, now) {
		return Action{Phase: PhaseEnding, At: NextReadyInstant(tod, now)}
	}
	return Action{Phase: PhaseStarting, At: NextHeatingStartInstant(tod, durationMinutes, now)}
}

// FormatTimeUntil renders the distance to a.At. An ending phase is shown in
// exact minutes, a starting phase in rounded words.
func FormatTimeUntil(a Action, now time.Time) string {
	d := a.At.Sub(now)
	if a.Phase == PhaseEnding {
		return "in " + exactMinutes(d)
	}
	return "in " + approximateDistance(d)
}

func exactMinutes(d time.Duration) string {
	m := int(math.Round(d.Minutes()))
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}

func approximateDistance(d time.Duration) string {
	secs := math.Abs(d.Seconds())
	mins := int(math.Round(secs / 60))
	switch {
	case mins < 2:
		switch {
		case secs < 5:
			return "less than 5 seconds"
		case secs < 10:
			return "less than 10 seconds"
		case secs < 20:
			return "less than 20 seconds"
		case secs < 40:
			return "half a minute"
		case secs < 60:
			return "less than a minute"
		}
		return "1 minute"
	case mins < 45:
		return fmt.Sprintf("%d minutes", mins)
	case mins < 90:
		return "about 1 hour"
	case mins < 24*60:
		return fmt.Sprintf("about %d hours", int(math.Round(float64(mins)/60)))
	case mins < 42*60:
		return "1 day"
	}
	return fmt.Sprintf("%d days", int(math.Round(float64(mins)/(24*60))))
}
