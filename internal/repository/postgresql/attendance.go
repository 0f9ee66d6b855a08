package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
)

const (
	selectAttendanceColumns = `
		SELECT a.id, a.user_id, a.date, a.clock_in, a.clock_out, a.hours_worked,
			   a.created_at, a.updated_at, u.name, u.email
		FROM attendances a
		INNER JOIN users u ON u.id = a.user_id
	`

	insertAttendanceQuery = `
		INSERT INTO attendances (user_id, date, clock_in, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	closeAttendanceQuery = `
		UPDATE attendances
		SET clock_out = $2, hours_worked = $3, updated_at = $2
		WHERE id = $1 AND clock_out IS NULL
	`

	attendanceExistsQuery = `SELECT EXISTS(SELECT 1 FROM attendances WHERE id = $1)`
)

type attendanceRepository struct {
	db database.Pool
}

func NewAttendanceRepository(db database.Pool) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.UserID, &att.Date, &att.ClockIn, &att.ClockOut, &att.HoursWorked,
		&att.CreatedAt, &att.UpdatedAt, &att.EmployeeName, &att.EmployeeEmail,
	)
	return att, err
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	err := q.QueryRow(ctx, insertAttendanceQuery,
		newAttendance.UserID,
		newAttendance.Date,
		newAttendance.ClockIn,
		newAttendance.CreatedAt,
		newAttendance.UpdatedAt,
	).Scan(&newAttendance.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Attendance{}, attendance.ErrDuplicateDay
		}
		return attendance.Attendance{}, database.Wrap("insert attendance", err)
	}

	return a.getByID(ctx, newAttendance.ID)
}

func (a *attendanceRepository) getByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	att, err := scanAttendance(q.QueryRow(ctx, selectAttendanceColumns+"WHERE a.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, database.Wrap("get attendance", err)
	}
	return att, nil
}

// GetByUserAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	att, err := scanAttendance(q.QueryRow(ctx, selectAttendanceColumns+"WHERE a.user_id = $1 AND a.date = $2", userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, database.Wrap("get attendance by date", err)
	}
	return att, nil
}

// Close implements attendance.AttendanceRepository.
func (a *attendanceRepository) Close(ctx context.Context, id string, clockOut time.Time, hoursWorked float64) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, closeAttendanceQuery, id, clockOut, hoursWorked)
	if err != nil {
		return attendance.Attendance{}, database.Wrap("close attendance", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := q.QueryRow(ctx, attendanceExistsQuery, id).Scan(&exists); err != nil {
			return attendance.Attendance{}, database.Wrap("check attendance", err)
		}
		if !exists {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, attendance.ErrAlreadyCompleted
	}

	return a.getByID(ctx, id)
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, error) {
	if filter.UserID != "" && !validator.IsValidUUID(filter.UserID) {
		return []attendance.Attendance{}, nil
	}
	q := GetQuerier(ctx, a.db)

	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("a.user_id = $%d", argIndex))
		args = append(args, filter.UserID)
		argIndex++
	}
	if filter.StartDay != nil {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", argIndex))
		args = append(args, *filter.StartDay)
		argIndex++
	}
	if filter.EndDay != nil {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", argIndex))
		args = append(args, *filter.EndDay)
	}

	query := selectAttendanceColumns
	if len(conditions) > 0 {
		query += "WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY a.date DESC, a.clock_in DESC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, database.Wrap("list attendance", err)
	}
	defer rows.Close()

	records := []attendance.Attendance{}
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, database.Wrap("scan attendance", err)
		}
		records = append(records, att)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Wrap("list attendance", err)
	}

	return records, nil
}
