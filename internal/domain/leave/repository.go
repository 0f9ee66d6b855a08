package leave

import (
	"context"
)

// LeaveRequestRepository - interface for leave_requests storage
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	// GetByID returns the request joined with its employee's display fields.
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	// List filters by EmployeeID and StatusValue when set, newest first.
	List(ctx context.Context, filter LeaveRequestFilter) ([]LeaveRequest, int64, error)
	// Transition writes update only while the stored status equals from.
	// Returns ErrInvalidTransition when it does not, ErrLeaveRequestNotFound when missing.
	Transition(ctx context.Context, id string, from Status, update StatusUpdate) (LeaveRequest, error)
}
