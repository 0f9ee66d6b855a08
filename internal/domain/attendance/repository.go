package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
// Implementations must back (user_id, date) with a unique constraint.
type AttendanceRepository interface {
	// Create inserts an open record. Returns ErrDuplicateDay when the user
	// already has a record for that date.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// GetByUserAndDate returns ErrAttendanceNotFound when no record exists.
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (Attendance, error)

	// Close sets clock-out only while it is still unset; a record that is
	// already closed yields ErrAlreadyCompleted.
	Close(ctx context.Context, id string, clockOut time.Time, hoursWorked float64) (Attendance, error)

	// List applies the filter and orders by date desc, clock-in desc.
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, error)
}
