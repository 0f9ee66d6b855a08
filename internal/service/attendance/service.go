package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/user"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	location *time.Location
	now      func() time.Time
}

// NewAttendanceService computes calendar days in location (UTC when nil).
func NewAttendanceService(attendanceRepository attendance.AttendanceRepository, location *time.Location) attendance.AttendanceService {
	if location == nil {
		location = time.UTC
	}
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepository,
		location:             location,
		now:                  time.Now,
	}
}

// conflictFor maps an existing day record to the state violation it causes.
func conflictFor(existing attendance.Attendance) error {
	if existing.State() == attendance.StateClosed {
		return attendance.ErrAlreadyCompleted
	}
	return attendance.ErrAlreadyOpen
}

// Record implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Record(ctx context.Context, actor auth.Identity, req attendance.RecordRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if req.Action == attendance.ActionClockOut {
		return a.ClockOut(ctx, actor.ID)
	}
	return a.ClockIn(ctx, actor.ID)
}

// ClockIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockIn(ctx context.Context, userID string) (attendance.AttendanceResponse, error) {
	nowUTC := a.now().UTC()
	today := attendance.CalendarDay(nowUTC, a.location)

	existing, err := a.AttendanceRepository.GetByUserAndDate(ctx, userID, today)
	if err == nil {
		return attendance.AttendanceResponse{}, conflictFor(existing)
	}
	if !errors.Is(err, attendance.ErrAttendanceNotFound) {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}

	created, err := a.AttendanceRepository.Create(ctx, attendance.Attendance{
		UserID:    userID,
		Date:      today,
		ClockIn:   nowUTC,
		CreatedAt: nowUTC,
		UpdatedAt: nowUTC,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrDuplicateDay) {
			// A concurrent clock-in won the unique index; report the state it left.
			current, getErr := a.AttendanceRepository.GetByUserAndDate(ctx, userID, today)
			if errors.Is(getErr, attendance.ErrAttendanceNotFound) {
				return attendance.AttendanceResponse{}, attendance.ErrAlreadyOpen
			}
			if getErr != nil {
				return attendance.AttendanceResponse{}, fmt.Errorf("failed to get today's attendance: %w", getErr)
			}
			return attendance.AttendanceResponse{}, conflictFor(current)
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	slog.Info("clocked in", "user_id", userID, "date", today.Format("2006-01-02"))
	return attendance.ToResponse(created), nil
}

// ClockOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockOut(ctx context.Context, userID string) (attendance.AttendanceResponse, error) {
	nowUTC := a.now().UTC()
	today := attendance.CalendarDay(nowUTC, a.location)

	existing, err := a.AttendanceRepository.GetByUserAndDate(ctx, userID, today)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrNoOpenSession
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}

	if existing.ClockOut != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCompleted
	}
	if !nowUTC.After(existing.ClockIn) {
		return attendance.AttendanceResponse{}, attendance.ErrInvalidClockOut
	}

	hoursWorked := attendance.HoursBetween(existing.ClockIn, nowUTC)
	updated, err := a.AttendanceRepository.Close(ctx, existing.ID, nowUTC, hoursWorked)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCompleted) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to clock out: %w", err)
	}

	slog.Info("clocked out", "user_id", userID, "hours_worked", hoursWorked)
	return attendance.ToResponse(updated), nil
}

// List implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) List(ctx context.Context, viewer auth.Identity, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	if !user.IsPrivileged(viewer.Roles) {
		filter.UserID = viewer.ID
	}

	records, err := a.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	data := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		data = append(data, attendance.ToResponse(r))
	}

	return attendance.ListAttendanceResponse{
		Data:  data,
		Count: len(data),
	}, nil
}
