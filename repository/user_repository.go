package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"

	"meetingRoomBooking/models"
)

// ErrDuplicateStudentID reports an insert that collided with the unique
// index on users.student_id.
var ErrDuplicateStudentID = errors.New("student id is already registered")

// UserRepository is the repository for User accounts.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, student_id, name, password_hash, role, must_change_password, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.StudentID, &u.Name, &u.PasswordHash, &u.Role, &u.MustChangePassword, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new account. Newly created accounts must change
// their password on first login. Role defaults to 'user' when empty.
func (r *UserRepository) Create(ctx context.Context, studentID, name, passwordHash, role string) (*models.User, error) {
	if role == "" {
		role = models.RoleUser
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (student_id, name, password_hash, role, must_change_password) VALUES (?, ?, ?, ?, 1)`,
		studentID, name, passwordHash, role)
	if err != nil {
		var serr sqlite3.Error
		if errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint {
			return nil, ErrDuplicateStudentID
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetByID fetches an account by primary key. Returns (nil, nil) when absent.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// GetByStudentID fetches an account by its login key. Returns (nil, nil) when absent.
func (r *UserRepository) GetByStudentID(ctx context.Context, studentID string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE student_id = ?`, studentID))
}

// List returns all accounts ordered by display name.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.StudentID, &u.Name, &u.PasswordHash, &u.Role, &u.MustChangePassword, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Delete removes an account. The FK cascade removes all of the
// account's bookings in the same statement. Reports whether a row
// actually existed.
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// UpdateRole sets the role for the given account.
func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, role, id)
	return err
}

// UpdatePassword stores a new password hash chosen by the account
// holder and clears the forced-change flag.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, must_change_password = 0 WHERE id = ?`, passwordHash, id)
	return err
}

// ResetPassword stores an admin-issued temporary password hash and
// forces the account to change it on next login.
func (r *UserRepository) ResetPassword(ctx context.Context, id int64, passwordHash string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, must_change_password = 1 WHERE id = ?`, passwordHash, id)
	return err
}
