package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type RecordRequest struct {
	Action string `json:"action"`
}

func (r *RecordRequest) Validate() error {
	if r.Action != ActionClockIn && r.Action != ActionClockOut {
		return validator.New("action", "Invalid action. Use 'clockIn' or 'clockOut'.")
	}
	return nil
}

// AttendanceFilter carries the raw query parameters of a listing.
// Validate fills StartDay and EndDay.
type AttendanceFilter struct {
	UserID    string
	StartDate string
	EndDate   string

	StartDay *time.Time
	EndDay   *time.Time
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.StartDate != "" {
		d, ok := validator.IsValidCalendarDate(f.StartDate)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "startDate",
				Message: "invalid date format",
			})
		} else {
			f.StartDay = &d
		}
	}

	if f.EndDate != "" {
		d, ok := validator.IsValidCalendarDate(f.EndDate)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "endDate",
				Message: "invalid date format",
			})
		} else {
			f.EndDay = &d
		}
	}

	if f.StartDay != nil && f.EndDay != nil && f.EndDay.Before(*f.StartDay) {
		errs = append(errs, validator.ValidationError{
			Field:   "endDate",
			Message: "end date must be after start date",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AttendanceResponse struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	EmployeeName *string    `json:"employeeName,omitempty"`
	Date         string     `json:"date"`
	ClockIn      time.Time  `json:"clockIn"`
	ClockOut     *time.Time `json:"clockOut"`
	HoursWorked  *float64   `json:"hoursWorked"`
	Duration     *string    `json:"duration,omitempty"`
	Status       State      `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type ListAttendanceResponse struct {
	Data  []AttendanceResponse `json:"data"`
	Count int                  `json:"count"`
}

func ToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:           a.ID,
		UserID:       a.UserID,
		EmployeeName: a.EmployeeName,
		Date:         a.Date.Format("2006-01-02"),
		ClockIn:      a.ClockIn,
		ClockOut:     a.ClockOut,
		HoursWorked:  a.HoursWorked,
		Status:       a.State(),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	if a.ClockOut != nil {
		d := FormatDuration(a.ClockOut.Sub(a.ClockIn))
		resp.Duration = &d
	}
	return resp
}
