package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/user"
)

type LeaveServiceImpl struct {
	leave.LeaveRequestRepository
	now func() time.Time
}

func NewLeaveService(leaveRequestRepository leave.LeaveRequestRepository) leave.LeaveService {
	return &LeaveServiceImpl{
		LeaveRequestRepository: leaveRequestRepository,
		now:                    time.Now,
	}
}

// Submit implements leave.LeaveService.
func (s *LeaveServiceImpl) Submit(ctx context.Context, submitter auth.Identity, req leave.SubmitLeaveRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	now := s.now().UTC()
	request := leave.LeaveRequest{
		EmployeeID: submitter.ID,
		Type:       req.LeaveType,
		Status:     leave.StatusPending,
		StartDate:  req.StartDay,
		EndDate:    req.EndDay,
		Reason:     req.Reason,
		DaysCount:  leave.DaysCount(req.StartDay, req.EndDay),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	switch {
	case req.Draft:
		request.Status = leave.StatusDraft
	case user.IsPrivileged(submitter.Roles):
		// Auto-approved; no approver is recorded.
		request.Status = leave.StatusApproved
		request.ApprovedAt = &now
	}

	created, err := s.LeaveRequestRepository.Create(ctx, request)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	slog.Info("leave request submitted",
		"leave_request_id", created.ID,
		"employee_id", created.EmployeeID,
		"status", created.Status,
	)
	return leave.ToResponse(s.enrich(ctx, created)), nil
}

// SubmitDraft implements leave.LeaveService.
func (s *LeaveServiceImpl) SubmitDraft(ctx context.Context, submitter auth.Identity, id string) (leave.LeaveRequestResponse, error) {
	existing, err := s.LeaveRequestRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if existing.EmployeeID != submitter.ID {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
	}
	if existing.Status != leave.StatusDraft {
		return leave.LeaveRequestResponse{}, leave.ErrNotDraft
	}
	if err := leave.ValidateForSubmission(existing); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	now := s.now().UTC()
	update := leave.StatusUpdate{Status: leave.StatusPending, UpdatedAt: now}
	if user.IsPrivileged(submitter.Roles) {
		update.Status = leave.StatusApproved
		update.ApprovedAt = &now
	}

	updated, err := s.LeaveRequestRepository.Transition(ctx, id, leave.StatusDraft, update)
	if err != nil {
		if errors.Is(err, leave.ErrInvalidTransition) {
			return leave.LeaveRequestResponse{}, leave.ErrNotDraft
		}
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to submit draft: %w", err)
	}

	slog.Info("leave draft submitted", "leave_request_id", id, "status", updated.Status)
	return leave.ToResponse(s.enrich(ctx, updated)), nil
}

// Get implements leave.LeaveService.
func (s *LeaveServiceImpl) Get(ctx context.Context, viewer auth.Identity, id string) (leave.LeaveRequestResponse, error) {
	request, err := s.LeaveRequestRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !user.IsPrivileged(viewer.Roles) && request.EmployeeID != viewer.ID {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
	}
	return leave.ToResponse(request), nil
}

// ListForViewer implements leave.LeaveService.
func (s *LeaveServiceImpl) ListForViewer(ctx context.Context, viewer auth.Identity, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	if !user.IsPrivileged(viewer.Roles) {
		filter.EmployeeID = viewer.ID
	}

	requests, total, err := s.LeaveRequestRepository.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	data := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		data = append(data, leave.ToResponse(r))
	}

	return leave.ListLeaveRequestResponse{
		Data:       data,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Total:      total,
		TotalPages: leave.TotalPages(total, filter.Limit),
	}, nil
}

// Decide implements leave.LeaveService.
func (s *LeaveServiceImpl) Decide(ctx context.Context, approver auth.Identity, id string, req leave.DecisionRequest) (leave.LeaveRequestResponse, error) {
	if !user.IsPrivileged(approver.Roles) {
		return leave.LeaveRequestResponse{}, auth.ErrForbidden
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	existing, err := s.LeaveRequestRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if existing.Status != leave.StatusPending {
		return leave.LeaveRequestResponse{}, leave.ErrInvalidTransition
	}

	now := s.now().UTC()
	approverID := approver.ID
	update := leave.StatusUpdate{
		Status:     req.Decision,
		ApproverID: &approverID,
		ApprovedAt: &now,
		UpdatedAt:  now,
	}
	if req.Decision == leave.StatusDenied {
		update.DenialReason = req.DenialReason
	}

	// The write is conditional on PENDING, so a concurrent decision loses here.
	updated, err := s.LeaveRequestRepository.Transition(ctx, id, leave.StatusPending, update)
	if err != nil {
		if errors.Is(err, leave.ErrInvalidTransition) || errors.Is(err, leave.ErrLeaveRequestNotFound) {
			return leave.LeaveRequestResponse{}, err
		}
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to update leave request status: %w", err)
	}

	slog.Info("leave request decided",
		"leave_request_id", id,
		"approver_id", approverID,
		"status", updated.Status,
	)
	return leave.ToResponse(s.enrich(ctx, updated)), nil
}

// Approve implements leave.LeaveService.
func (s *LeaveServiceImpl) Approve(ctx context.Context, approver auth.Identity, id string) (leave.LeaveRequestResponse, error) {
	return s.Decide(ctx, approver, id, leave.DecisionRequest{Status: string(leave.StatusApproved)})
}

// Deny implements leave.LeaveService.
func (s *LeaveServiceImpl) Deny(ctx context.Context, approver auth.Identity, id string, reason *string) (leave.LeaveRequestResponse, error) {
	return s.Decide(ctx, approver, id, leave.DecisionRequest{Status: string(leave.StatusDenied), DenialReason: reason})
}

// enrich re-reads the request with employee display fields. The write has
// already succeeded, so a failed read falls back to the bare record.
func (s *LeaveServiceImpl) enrich(ctx context.Context, request leave.LeaveRequest) leave.LeaveRequest {
	if request.Employee != nil {
		return request
	}
	enriched, err := s.LeaveRequestRepository.GetByID(ctx, request.ID)
	if err != nil {
		slog.Warn("failed to enrich leave request", "leave_request_id", request.ID, "error", err)
		return request
	}
	return enriched
}
