// Package heating holds the pure time and temperature arithmetic behind the
// preheating schedule. Every instant is interpreted in UTC at minute precision.
package heating

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfiguration is returned when a ready time or persisted state
// cannot be parsed.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// TimeOfDay is a wall-clock time in UTC.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay accepts exactly "HH:mm" with 00-23 hours and 00-59 minutes.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) != 5 || s[2] != ':' {
		return TimeOfDay{}, fmt.Errorf("%w: ready time %q is not HH:mm", ErrInvalidConfiguration, s)
	}
	h, okH := twoDigits(s[0], s[1])
	m, okM := twoDigits(s[3], s[4])
	if !okH || !okM || h > 23 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: ready time %q is out of range", ErrInvalidConfiguration, s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// MustParseTimeOfDay is ParseTimeOfDay for literals. It panics on error.
func MustParseTimeOfDay(s string) TimeOfDay {
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return tod
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

// TimeOfDayOf returns the UTC hour and minute of t.
func TimeOfDayOf(t time.Time) TimeOfDay {
	u := t.UTC()
	return TimeOfDay{Hour: u.Hour(), Minute: u.Minute()}
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	tod, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = tod
	return nil
}
