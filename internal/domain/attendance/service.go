package attendance

import (
	"context"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/auth"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// Record dispatches a clockIn/clockOut action for the caller.
	Record(ctx context.Context, actor auth.Identity, req RecordRequest) (AttendanceResponse, error)

	ClockIn(ctx context.Context, userID string) (AttendanceResponse, error)
	ClockOut(ctx context.Context, userID string) (AttendanceResponse, error)

	// List returns records visible to viewer. Non-privileged viewers only see their own.
	List(ctx context.Context, viewer auth.Identity, filter AttendanceFilter) (ListAttendanceResponse, error)
}
