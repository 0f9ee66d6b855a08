package leave

import (
	"context"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/auth"
)

type LeaveService interface {
	// Submit creates a request; ADMIN and MANAGER submitters are approved immediately.
	Submit(ctx context.Context, submitter auth.Identity, req SubmitLeaveRequest) (LeaveRequestResponse, error)
	// SubmitDraft moves the submitter's own DRAFT into the submission flow.
	SubmitDraft(ctx context.Context, submitter auth.Identity, id string) (LeaveRequestResponse, error)
	Get(ctx context.Context, viewer auth.Identity, id string) (LeaveRequestResponse, error)
	ListForViewer(ctx context.Context, viewer auth.Identity, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)

	// Decide is the single PENDING -> APPROVED|DENIED transition.
	Decide(ctx context.Context, approver auth.Identity, id string, req DecisionRequest) (LeaveRequestResponse, error)
	Approve(ctx context.Context, approver auth.Identity, id string) (LeaveRequestResponse, error)
	Deny(ctx context.Context, approver auth.Identity, id string, reason *string) (LeaveRequestResponse, error)
}
