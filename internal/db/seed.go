package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// EnsureInitialAdmin creates the bootstrap administrator account if no
// admin with the given student id exists yet. The account logs in with
// the configured password and is not forced to rotate it; regular
// accounts created later always are.
func EnsureInitialAdmin(ctx context.Context, d *sql.DB, studentID, password, name string) error {
	if studentID == "" || password == "" {
		return errors.New("bootstrap admin student id and password are required")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var id int64
	err := d.QueryRowContext(ctx,
		`SELECT id FROM users WHERE student_id = ? AND role = 'admin'`, studentID).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check bootstrap admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash bootstrap admin password: %w", err)
	}
	_, err = d.ExecContext(ctx,
		`INSERT INTO users (student_id, password_hash, name, role) VALUES (?, ?, ?, 'admin')`,
		studentID, string(hash), name)
	if err != nil {
		return fmt.Errorf("insert bootstrap admin: %w", err)
	}
	return nil
}
