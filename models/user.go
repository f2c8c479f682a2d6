package models

// Role values stored in the users.role column.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account in the system.
// It maps to the `users` table in SQLite. StudentID is the login key.
type User struct {
	ID                 int64  `db:"id" json:"id"`
	StudentID          string `db:"student_id" json:"student_id"`
	Name               string `db:"name" json:"name"`
	PasswordHash       string `db:"password_hash" json:"-"`
	Role               string `db:"role" json:"role"`
	MustChangePassword bool   `db:"must_change_password" json:"must_change_password"`
	CreatedAt          string `db:"created_at" json:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
