package leave

import "errors"

var (
	ErrLeaveRequestNotFound = errors.New("Leave request not found")
	ErrInvalidTransition    = errors.New("Only pending leave requests can be approved or denied")
	ErrNotDraft             = errors.New("Only draft leave requests can be submitted")
)
