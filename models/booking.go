package models

// Booking represents one reservation of the shared meeting room.
// It maps to the `bookings` table with a foreign key to User via UserID.
// Date is a calendar day ("2006-01-02"); Start and End are wall-clock
// times ("15:04") forming the half-open interval [Start, End) on that day.
type Booking struct {
	ID        int64  `db:"id" json:"id"`
	UserID    int64  `db:"user_id" json:"user_id"`
	Date      string `db:"booking_date" json:"date"`
	Start     string `db:"start_time" json:"start"`
	End       string `db:"end_time" json:"end"`
	Attendees int    `db:"attendees" json:"attendees"`
	Purpose   string `db:"purpose" json:"purpose"`
	CreatedAt string `db:"created_at" json:"created_at"`
	UpdatedAt string `db:"updated_at" json:"updated_at"`
	// Owner display fields joined from users; not columns of bookings.
	OwnerName      string `db:"owner_name" json:"owner_name,omitempty"`
	OwnerStudentID string `db:"owner_student_id" json:"owner_student_id,omitempty"`
}
