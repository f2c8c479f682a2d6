package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"meetingRoomBooking/internal/auth"
	"meetingRoomBooking/internal/db"
	"meetingRoomBooking/models"
)

// OpenInMemoryDB opens an in-memory SQLite database and applies migrations.
// Caller is responsible for closing the DB, typically via t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	// Shared cache so that multiple connections see the same database.
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// InsertUser inserts an account directly, bypassing the repository, and
// returns it. Password hashing is skipped unless password is non-empty.
func InsertUser(t *testing.T, d *sql.DB, studentID, name, password, role string) *models.User {
	t.Helper()
	hash := "x"
	if password != "" {
		var err error
		hash, err = auth.HashPassword(password)
		if err != nil {
			t.Fatalf("hash password: %v", err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := d.ExecContext(ctx,
		`INSERT INTO users (student_id, name, password_hash, role) VALUES (?, ?, ?, ?)`,
		studentID, name, hash, role)
	if err != nil {
		t.Fatalf("insert user %s: %v", studentID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("user id: %v", err)
	}
	return &models.User{ID: id, StudentID: studentID, Name: name, Role: role}
}

// BearerToken returns an Authorization header value carrying a signed
// session token for the user.
func BearerToken(t *testing.T, secret string, u *models.User) string {
	t.Helper()
	tok, err := auth.GenerateToken(u, secret, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + tok
}
