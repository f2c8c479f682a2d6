package booking

import (
	"sort"
	"time"

	"meetingRoomBooking/models"
)

// Visible filters bookings down to the current-or-future ones as of the
// given instant: strictly future dates, plus today's bookings that have
// not yet ended. Past bookings are dropped from display, never deleted.
//
// The result is ordered newest date first, then ascending start time
// within a date. Pure: the input slice is not modified.
func Visible(bookings []models.Booking, asOf time.Time) []models.Booking {
	today := FormatDate(asOf)
	now := MinutesOfDay(asOf)

	out := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		switch {
		case b.Date > today:
			out = append(out, b)
		case b.Date == today:
			end, err := ParseTimeOfDay(b.End)
			if err == nil && end > now {
				out = append(out, b)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Start < out[j].Start
	})
	return out
}
