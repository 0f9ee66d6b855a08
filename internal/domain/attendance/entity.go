package attendance

import (
	"fmt"
	"math"
	"time"
)

// State of a single (user, day) record.
type State string

const (
	StateNone   State = "NONE"
	StateOpen   State = "OPEN"
	StateClosed State = "CLOSED"
)

const (
	ActionClockIn  = "clockIn"
	ActionClockOut = "clockOut"
)

type Attendance struct {
	ID          string
	UserID      string
	Date        time.Time // calendar day, midnight UTC
	ClockIn     time.Time
	ClockOut    *time.Time
	HoursWorked *float64
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// DTO / Join
	EmployeeName  *string
	EmployeeEmail *string
}

// State returns OPEN until clock-out is recorded, CLOSED afterwards.
// A zero Attendance is NONE.
func (a *Attendance) State() State {
	switch {
	case a == nil || a.ID == "":
		return StateNone
	case a.ClockOut == nil:
		return StateOpen
	default:
		return StateClosed
	}
}

// HoursBetween is (out - in) in hours rounded to two decimals.
func HoursBetween(in, out time.Time) float64 {
	return math.Round(out.Sub(in).Hours()*100) / 100
}

// FormatDuration renders d as "8h 30m".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalMinutes := int(d / time.Minute)
	return fmt.Sprintf("%dh %dm", totalMinutes/60, totalMinutes%60)
}

// CalendarDay truncates t to its calendar day in loc, stored as midnight UTC
// so the value compares equal across storage backends.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
