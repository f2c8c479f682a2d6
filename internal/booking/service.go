package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"meetingRoomBooking/models"
)

// Store is the persistence collaborator for the scheduler. The IfFree
// writes re-check overlap and write inside one transaction so there is
// no race window between conflict check and insert.
type Store interface {
	ListByDate(ctx context.Context, date string) ([]models.Booking, error)
	ListFrom(ctx context.Context, date string, ownerID int64) ([]models.Booking, error)
	GetByID(ctx context.Context, id int64) (*models.Booking, error)
	FindOverlapping(ctx context.Context, date, start, end string, excludeID int64) ([]models.Booking, error)
	InsertIfFree(ctx context.Context, b *models.Booking) (int64, []models.Booking, error)
	UpdateIfFree(ctx context.Context, b *models.Booking) (bool, []models.Booking, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// Service orchestrates the booking lifecycle: every create and edit
// passes the window validation and the conflict check before anything
// is persisted. Authorization (owner-or-admin) is the caller's job;
// the service itself does not inspect identities.
type Service struct {
	store Store
	clock Clock
	log   *slog.Logger
}

// NewService builds a Service. A nil clock defaults to the real clock.
func NewService(store Store, clock Clock, log *slog.Logger) *Service {
	if clock == nil {
		clock = RealClock{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, clock: clock, log: log}
}

// Proposal carries the user-supplied fields of a create or edit request.
type Proposal struct {
	OwnerID   int64
	Date      string
	Start     string
	End       string
	Attendees int
	Purpose   string
}

func (p Proposal) validateFields() error {
	if p.Attendees < 1 {
		return fmt.Errorf("%w: attendees must be at least 1", ErrInvalidInterval)
	}
	return nil
}

// Propose creates a new booking. It validates the window, then hands
// the insert to the store, which re-checks overlap and writes
// atomically. Returns the created booking's id, or ErrOutOfWindow /
// ErrInvalidInterval / *ConflictError. Nothing is written on failure.
func (s *Service) Propose(ctx context.Context, p Proposal) (int64, error) {
	if err := ValidateWindow(p.Date, p.Start, p.End, s.clock.Now()); err != nil {
		return 0, err
	}
	if err := p.validateFields(); err != nil {
		return 0, err
	}

	b := &models.Booking{
		UserID:    p.OwnerID,
		Date:      p.Date,
		Start:     p.Start,
		End:       p.End,
		Attendees: p.Attendees,
		Purpose:   p.Purpose,
	}
	id, blockers, err := s.store.InsertIfFree(ctx, b)
	if err != nil {
		// Fail closed: if the conflict status cannot be verified the
		// booking is rejected, preserving the no-double-booking invariant.
		s.log.Warn("conflict check failed, rejecting booking", "date", p.Date, "error", err)
		return 0, &ConflictError{Cause: err}
	}
	if len(blockers) > 0 {
		return 0, &ConflictError{Blockers: blockers}
	}
	return id, nil
}

// ProposeEdit updates booking id in place with the proposed fields. The
// conflict check excludes the booking itself so an edit never collides
// with its own stored interval. The store applies the overwrite in a
// single transaction; no interim state is visible to concurrent readers.
func (s *Service) ProposeEdit(ctx context.Context, id int64, p Proposal) error {
	if err := ValidateWindow(p.Date, p.Start, p.End, s.clock.Now()); err != nil {
		return err
	}
	if err := p.validateFields(); err != nil {
		return err
	}

	b := &models.Booking{
		ID:        id,
		Date:      p.Date,
		Start:     p.Start,
		End:       p.End,
		Attendees: p.Attendees,
		Purpose:   p.Purpose,
	}
	found, blockers, err := s.store.UpdateIfFree(ctx, b)
	if err != nil {
		s.log.Warn("conflict check failed, rejecting edit", "id", id, "error", err)
		return &ConflictError{Cause: err}
	}
	if len(blockers) > 0 {
		return &ConflictError{Blockers: blockers}
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

// Remove deletes a booking. Deleting an id that no longer exists
// reports ErrNotFound; it never fails destructively, so retries are
// harmless.
func (s *Service) Remove(ctx context.Context, id int64) error {
	found, err := s.store.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete booking %d: %w", id, err)
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

// FindConflicts returns every existing booking on date whose interval
// overlaps [start, end), excluding excludeID when non-zero. A store
// failure fails closed: the caller receives a *ConflictError rather
// than an unverified all-clear.
func (s *Service) FindConflicts(ctx context.Context, date, start, end string, excludeID int64) ([]models.Booking, error) {
	blockers, err := s.store.FindOverlapping(ctx, date, start, end, excludeID)
	if err != nil {
		s.log.Warn("overlap query failed", "date", date, "error", err)
		return nil, &ConflictError{Cause: err}
	}
	return blockers, nil
}

// VisibleFor lists the current-or-future bookings as of now, owned by
// ownerID, or by everyone when ownerID is zero. A store failure
// degrades to an empty list with ErrStoreDegraded surfaced as a
// warning; listing never propagates a crash.
func (s *Service) VisibleFor(ctx context.Context, ownerID int64) ([]models.Booking, error) {
	return s.VisibleForAt(ctx, ownerID, s.clock.Now())
}

// VisibleForAt is VisibleFor pinned to an explicit instant.
func (s *Service) VisibleForAt(ctx context.Context, ownerID int64, asOf time.Time) ([]models.Booking, error) {
	all, err := s.store.ListFrom(ctx, FormatDate(asOf), ownerID)
	if err != nil {
		s.log.Warn("booking list read failed, degrading to empty", "owner", ownerID, "error", err)
		return []models.Booking{}, fmt.Errorf("%w: %v", ErrStoreDegraded, err)
	}
	return Visible(all, asOf), nil
}

// DaySchedule lists every booking on the given date ordered by start
// time, for the daily summary view. Degrades like VisibleFor on store
// failure.
func (s *Service) DaySchedule(ctx context.Context, date string) ([]models.Booking, error) {
	list, err := s.store.ListByDate(ctx, date)
	if err != nil {
		s.log.Warn("day schedule read failed, degrading to empty", "date", date, "error", err)
		return []models.Booking{}, fmt.Errorf("%w: %v", ErrStoreDegraded, err)
	}
	return list, nil
}
