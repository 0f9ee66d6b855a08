package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
)

const (
	selectLeaveRequestColumns = `
		SELECT lr.id, lr.employee_id, lr.type, lr.status, lr.start_date, lr.end_date, lr.reason,
			   lr.approver_id, lr.approved_at, lr.denial_reason, lr.days_count,
			   lr.created_at, lr.updated_at,
			   u.name, u.email, u.department, u.job_title
		FROM leave_requests lr
		INNER JOIN users u ON u.id = lr.employee_id
	`

	insertLeaveRequestQuery = `
		INSERT INTO leave_requests (
			employee_id, type, status, start_date, end_date, reason,
			approver_id, approved_at, days_count, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11
		) RETURNING id
	`

	lockLeaveRequestQuery = `SELECT status FROM leave_requests WHERE id = $1 FOR UPDATE`

	updateLeaveRequestStatusQuery = `
		UPDATE leave_requests
		SET status = $2, approver_id = $3, approved_at = $4, denial_reason = $5, updated_at = $6
		WHERE id = $1
	`
)

type leaveRequestRepositoryImpl struct {
	db database.Pool
}

func NewLeaveRequestRepository(db database.Pool) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var req leave.LeaveRequest
	var emp leave.Employee

	err := row.Scan(
		&req.ID, &req.EmployeeID, &req.Type, &req.Status, &req.StartDate, &req.EndDate, &req.Reason,
		&req.ApproverID, &req.ApprovedAt, &req.DenialReason, &req.DaysCount,
		&req.CreatedAt, &req.UpdatedAt,
		&emp.Name, &emp.Email, &emp.Department, &emp.JobTitle,
	)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	emp.ID = req.EmployeeID
	req.Employee = &emp
	return req, nil
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	err := q.QueryRow(ctx, insertLeaveRequestQuery,
		request.EmployeeID, request.Type, request.Status, request.StartDate, request.EndDate, request.Reason,
		request.ApproverID, request.ApprovedAt, request.DaysCount, request.CreatedAt, request.UpdatedAt,
	).Scan(&request.ID)
	if err != nil {
		return leave.LeaveRequest{}, database.Wrap("insert leave request", err)
	}

	return request, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	if !validator.IsValidUUID(id) {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	q := GetQuerier(ctx, r.db)

	req, err := scanLeaveRequest(q.QueryRow(ctx, selectLeaveRequestColumns+"WHERE lr.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, database.Wrap("get leave request", err)
	}
	return req, nil
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	// No employee can own a malformed id.
	if filter.EmployeeID != "" && !validator.IsValidUUID(filter.EmployeeID) {
		return []leave.LeaveRequest{}, 0, nil
	}
	q := GetQuerier(ctx, r.db)

	// Build WHERE clause
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("lr.employee_id = $%d", argIndex))
		args = append(args, filter.EmployeeID)
		argIndex++
	}
	if filter.StatusValue != nil {
		conditions = append(conditions, fmt.Sprintf("lr.status = $%d", argIndex))
		args = append(args, *filter.StatusValue)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM leave_requests lr " + whereClause
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, database.Wrap("count leave requests", err)
	}

	query := selectLeaveRequestColumns + whereClause +
		fmt.Sprintf(" ORDER BY lr.created_at DESC, lr.id DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, database.Wrap("list leave requests", err)
	}
	defer rows.Close()

	requests := []leave.LeaveRequest{}
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, 0, database.Wrap("scan leave request", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, database.Wrap("list leave requests", err)
	}

	return requests, total, nil
}

// Transition implements leave.LeaveRequestRepository. The row is locked
// for the check so two approvers cannot both move it out of from.
func (r *leaveRequestRepositoryImpl) Transition(ctx context.Context, id string, from leave.Status, update leave.StatusUpdate) (leave.LeaveRequest, error) {
	if !validator.IsValidUUID(id) {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}

	var updated leave.LeaveRequest

	err := WithTransaction(ctx, r.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, r.db)

		var current leave.Status
		if err := q.QueryRow(txCtx, lockLeaveRequestQuery, id).Scan(&current); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return leave.ErrLeaveRequestNotFound
			}
			return database.Wrap("lock leave request", err)
		}
		if current != from {
			return leave.ErrInvalidTransition
		}

		if _, err := q.Exec(txCtx, updateLeaveRequestStatusQuery,
			id, update.Status, update.ApproverID, update.ApprovedAt, update.DenialReason, update.UpdatedAt,
		); err != nil {
			return database.Wrap("update leave request status", err)
		}

		var err error
		updated, err = r.GetByID(txCtx, id)
		return err
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	return updated, nil
}
