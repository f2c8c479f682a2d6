package booking

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the wire and storage format for booking dates.
	DateLayout = "2006-01-02"
	// ClockLayout is the wire and storage format for start/end times.
	ClockLayout = "15:04"
)

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" into minutes since midnight.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, err
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// String formats the time of day back to "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// MinutesOfDay extracts the TimeOfDay component of a time.Time.
func MinutesOfDay(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

// ParseDate parses a "YYYY-MM-DD" calendar day in the local zone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

// FormatDate renders the calendar-day component of t.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
