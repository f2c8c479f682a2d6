package repository

import (
	"context"

	"meetingRoomBooking/models"
)

// UserRepositoryI defines operations on User accounts.
type UserRepositoryI interface {
	Create(ctx context.Context, studentID, name, passwordHash, role string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByStudentID(ctx context.Context, studentID string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id int64) (bool, error)
	UpdateRole(ctx context.Context, id int64, role string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	ResetPassword(ctx context.Context, id int64, passwordHash string) error
}

// BookingRepositoryI defines operations on Booking rows. It satisfies
// booking.Store; the IfFree writes perform the overlap check and the
// write inside one immediate transaction.
type BookingRepositoryI interface {
	ListByDate(ctx context.Context, date string) ([]models.Booking, error)
	ListFrom(ctx context.Context, date string, ownerID int64) ([]models.Booking, error)
	GetByID(ctx context.Context, id int64) (*models.Booking, error)
	FindOverlapping(ctx context.Context, date, start, end string, excludeID int64) ([]models.Booking, error)
	Insert(ctx context.Context, b *models.Booking) (int64, error)
	InsertIfFree(ctx context.Context, b *models.Booking) (int64, []models.Booking, error)
	Update(ctx context.Context, b *models.Booking) (bool, error)
	UpdateIfFree(ctx context.Context, b *models.Booking) (bool, []models.Booking, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
