package booking

import (
	"fmt"
	"time"
)

// WindowDays is the number of days ahead of today that remain bookable.
// The bookable range is [today, today+WindowDays] inclusive.
const WindowDays = 6

// ValidateWindow checks that a proposed booking lies inside the rolling
// booking window and that its interval is well formed. It is pure: the
// reference day is passed in, no I/O happens.
//
// Returns ErrOutOfWindow when date is before today or after
// today+WindowDays (or unparseable), ErrInvalidInterval when
// start >= end (or either time is unparseable).
func ValidateWindow(date, start, end string, today time.Time) error {
	d, err := ParseDate(date)
	if err != nil {
		return fmt.Errorf("%w: bad date %q", ErrOutOfWindow, date)
	}
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return fmt.Errorf("%w: bad start time %q", ErrInvalidInterval, start)
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return fmt.Errorf("%w: bad end time %q", ErrInvalidInterval, end)
	}
	if s >= e {
		return ErrInvalidInterval
	}

	day := FormatDate(d)
	first := FormatDate(today)
	last := FormatDate(today.AddDate(0, 0, WindowDays))
	// ISO dates compare correctly as strings.
	if day < first || day > last {
		return fmt.Errorf("%w: %s is not between %s and %s", ErrOutOfWindow, day, first, last)
	}
	return nil
}
