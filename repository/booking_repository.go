package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"

	"meetingRoomBooking/models"
)

// BookingRepository is the repository for Booking rows. Rows are always
// read joined with their owner so conflict and list results can name
// who holds each slot.
type BookingRepository struct {
	db *sql.DB
}

// NewBookingRepository creates a new BookingRepository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `b.id, b.user_id, b.booking_date, b.start_time, b.end_time,
b.attendees, b.purpose, b.created_at, b.updated_at, u.name, u.student_id`

const bookingFrom = ` FROM bookings b JOIN users u ON u.id = b.user_id`

// overlapWhere matches rows whose half-open interval intersects
// [start, end) on the same date: existing.start < end AND existing.end > start.
// Zero-padded HH:MM strings compare correctly as text. Touching
// endpoints do not match. This is the SQL form of booking.Overlaps;
// the two must agree. Keep them in sync when changing either.
const overlapWhere = ` WHERE b.booking_date = ? AND b.start_time < ? AND b.end_time > ?`

func scanBookingRows(rows *sql.Rows) ([]models.Booking, error) {
	var out []models.Booking
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.Date, &b.Start, &b.End,
			&b.Attendees, &b.Purpose, &b.CreatedAt, &b.UpdatedAt,
			&b.OwnerName, &b.OwnerStudentID); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListByDate returns every booking on the given date ordered by start time.
func (r *BookingRepository) ListByDate(ctx context.Context, date string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+bookingFrom+` WHERE b.booking_date = ? ORDER BY b.start_time, b.id`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookingRows(rows)
}

// ListFrom returns bookings dated on or after date, newest date first
// then ascending start time. ownerID filters to one owner; zero means
// everyone.
func (r *BookingRepository) ListFrom(ctx context.Context, date string, ownerID int64) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT ` + bookingColumns + bookingFrom + ` WHERE b.booking_date >= ?`
	args := []any{date}
	if ownerID != 0 {
		query += ` AND b.user_id = ?`
		args = append(args, ownerID)
	}
	query += ` ORDER BY b.booking_date DESC, b.start_time ASC, b.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookingRows(rows)
}

// GetByID fetches one booking. Returns (nil, nil) when absent.
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var b models.Booking
	err := r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+bookingFrom+` WHERE b.id = ?`, id).
		Scan(&b.ID, &b.UserID, &b.Date, &b.Start, &b.End,
			&b.Attendees, &b.Purpose, &b.CreatedAt, &b.UpdatedAt,
			&b.OwnerName, &b.OwnerStudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// FindOverlapping returns the bookings on date whose intervals overlap
// [start, end), excluding excludeID when non-zero. Deliberately never
// served from any cache: conflict status must be read fresh before a
// write.
func (r *BookingRepository) FindOverlapping(ctx context.Context, date, start, end string, excludeID int64) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return r.findOverlapping(ctx, r.db, date, start, end, excludeID)
}

// querier abstracts *sql.DB and *sql.Tx so the overlap query can run
// inside the write transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *BookingRepository) findOverlapping(ctx context.Context, q querier, date, start, end string, excludeID int64) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + bookingFrom + overlapWhere
	args := []any{date, end, start}
	if excludeID != 0 {
		query += ` AND b.id != ?`
		args = append(args, excludeID)
	}
	query += ` ORDER BY b.start_time`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookingRows(rows)
}

// Insert writes a booking row without any conflict check. Prefer
// InsertIfFree; this exists for seeding and tests.
func (r *BookingRepository) Insert(ctx context.Context, b *models.Booking) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO bookings (user_id, booking_date, start_time, end_time, attendees, purpose) VALUES (?, ?, ?, ?, ?, ?)`,
		b.UserID, b.Date, b.Start, b.End, b.Attendees, b.Purpose)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// InsertIfFree checks for overlapping bookings and inserts in a single
// immediate transaction, closing the race between "check conflict" and
// "insert". Returns the new id, or the blocking bookings when the slot
// is taken. On the blocked path nothing is written.
func (r *BookingRepository) InsertIfFree(ctx context.Context, b *models.Booking) (int64, []models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	blockers, err := r.findOverlapping(ctx, tx, b.Date, b.Start, b.End, 0)
	if err != nil {
		return 0, nil, err
	}
	if len(blockers) > 0 {
		return 0, blockers, nil
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (user_id, booking_date, start_time, end_time, attendees, purpose) VALUES (?, ?, ?, ?, ?, ?)`,
		b.UserID, b.Date, b.Start, b.End, b.Attendees, b.Purpose)
	if err != nil {
		return r.asConflict(ctx, b, 0, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, nil, err
	}
	if err := tx.Commit(); err != nil {
		return 0, nil, err
	}
	return id, nil, nil
}

// UpdateIfFree overwrites booking b.ID with the new fields after
// re-checking overlap with every other booking, all in one transaction.
// The booking itself is excluded from the check so an edit never
// conflicts with its own stored interval. Reports found=false when the
// id does not exist.
func (r *BookingRepository) UpdateIfFree(ctx context.Context, b *models.Booking) (bool, []models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	blockers, err := r.findOverlapping(ctx, tx, b.Date, b.Start, b.End, b.ID)
	if err != nil {
		return false, nil, err
	}
	if len(blockers) > 0 {
		return false, blockers, nil
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET booking_date = ?, start_time = ?, end_time = ?, attendees = ?, purpose = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		b.Date, b.Start, b.End, b.Attendees, b.Purpose, b.ID)
	if err != nil {
		_, blockers, cerr := r.asConflict(ctx, b, b.ID, err)
		return false, blockers, cerr
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, nil, err
	}
	if n == 0 {
		return false, nil, nil
	}
	if err := tx.Commit(); err != nil {
		return false, nil, err
	}
	return true, nil, nil
}

// Update overwrites a booking without any conflict check. Prefer
// UpdateIfFree; this exists for tests.
func (r *BookingRepository) Update(ctx context.Context, b *models.Booking) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET booking_date = ?, start_time = ?, end_time = ?, attendees = ?, purpose = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		b.Date, b.Start, b.End, b.Attendees, b.Purpose, b.ID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete removes a booking. Reports whether a row actually existed.
func (r *BookingRepository) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// asConflict maps a unique-constraint violation on the exact-slot index
// to a conflict result naming the blockers, so a lost race surfaces the
// same way as an ordinary conflict. Any other error passes through.
func (r *BookingRepository) asConflict(ctx context.Context, b *models.Booking, excludeID int64, err error) (int64, []models.Booking, error) {
	var serr sqlite3.Error
	if !errors.As(err, &serr) || serr.Code != sqlite3.ErrConstraint {
		return 0, nil, err
	}
	blockers, qerr := r.findOverlapping(ctx, r.db, b.Date, b.Start, b.End, excludeID)
	if qerr != nil || len(blockers) == 0 {
		// Could not name the blockers; report the original error and let
		// the caller fail closed.
		return 0, nil, err
	}
	return 0, blockers, nil
}
