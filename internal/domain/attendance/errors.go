package attendance

import "errors"

// Attendance domain errors
var (
	// State violations
	ErrAlreadyOpen      = errors.New("Already clocked in today. Please clock out first.")
	ErrAlreadyCompleted = errors.New("You have already completed attendance for today (clocked in and out).")
	ErrNoOpenSession    = errors.New("No clock-in found for today. Please clock in first.")
	ErrInvalidClockOut  = errors.New("Clock-out time must be after clock-in time.")

	// Storage level
	ErrDuplicateDay       = errors.New("attendance record already exists for this day")
	ErrAttendanceNotFound = errors.New("attendance record not found")
)
