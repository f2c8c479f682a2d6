package booking

import (
	"errors"
	"fmt"

	"meetingRoomBooking/models"
)

var (
	// ErrInvalidInterval means the proposed [start, end) interval is
	// malformed or start is not strictly before end.
	ErrInvalidInterval = errors.New("end time must be after start time")
	// ErrOutOfWindow means the proposed date falls outside the rolling
	// booking window of today through today+6.
	ErrOutOfWindow = errors.New("date outside the bookable window")
	// ErrNotFound means the referenced booking does not exist.
	ErrNotFound = errors.New("booking not found")
	// ErrStoreDegraded marks a list read that failed against the store;
	// callers surface it as a warning alongside an empty result.
	ErrStoreDegraded = errors.New("booking store unavailable, showing no results")
)

// ConflictError reports that a proposed interval overlaps existing
// bookings. Blockers carries the overlapping bookings with owner details
// so the caller can name who holds each slot. When the conflict status
// could not be verified (store failure), Blockers is empty and Cause
// holds the underlying error: the check fails closed rather than
// letting an unverified booking through.
type ConflictError struct {
	Blockers []models.Booking
	Cause    error
}

func (e *ConflictError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("conflict check failed, booking rejected: %v", e.Cause)
	}
	return fmt.Sprintf("time slot conflicts with %d existing booking(s)", len(e.Blockers))
}

func (e *ConflictError) Unwrap() error { return e.Cause }
