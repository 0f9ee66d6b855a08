package leave

import (
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/pkg/validator"
)

const (
	MinReasonLength     = 10
	MaxReasonLength     = 1000
	DefaultPageLimit    = 10
	MaxPageLimit        = 100
	maxDenialReasonSize = 500
)

type SubmitLeaveRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
	Type      string `json:"type,omitempty"`
	Status    string `json:"status,omitempty"`

	// Filled by Validate
	StartDay  time.Time `json:"-"`
	EndDay    time.Time `json:"-"`
	LeaveType Type      `json:"-"`
	Draft     bool      `json:"-"`
}

// Validate checks, in order: date presence, status, reason length, date
// format, date order. It stops at the first failing rule. Drafts skip the
// reason rule.
func (r *SubmitLeaveRequest) Validate() error {
	r.Reason = strings.TrimSpace(r.Reason)

	if validator.IsEmpty(r.StartDate) || validator.IsEmpty(r.EndDate) {
		return validator.New("startDate", "start date and end date are required")
	}

	switch strings.ToUpper(strings.TrimSpace(r.Status)) {
	case "", string(StatusPending):
		r.Draft = false
	case string(StatusDraft):
		r.Draft = true
	default:
		return validator.New("status", "status must be DRAFT or PENDING")
	}

	if !r.Draft && len([]rune(r.Reason)) < MinReasonLength {
		return validator.New("reason", "reason must be at least 10 characters")
	}
	if len([]rune(r.Reason)) > MaxReasonLength {
		return validator.New("reason", "reason must not exceed 1000 characters")
	}

	start, okStart := validator.IsValidCalendarDate(r.StartDate)
	end, okEnd := validator.IsValidCalendarDate(r.EndDate)
	if !okStart || !okEnd {
		return validator.New("startDate", "invalid date format")
	}

	if end.Before(start) {
		return validator.New("endDate", "end date must be after start date")
	}

	leaveType, ok := ParseType(r.Type)
	if !ok {
		return validator.New("type", "type must be one of: ANNUAL, SICK, PERSONAL, UNPAID, OTHER")
	}

	r.StartDay = start
	r.EndDay = end
	r.LeaveType = leaveType
	return nil
}

// ValidateForSubmission re-applies the submission rules to a stored draft.
func ValidateForSubmission(draft LeaveRequest) error {
	req := SubmitLeaveRequest{
		StartDate: draft.StartDate.Format("2006-01-02"),
		EndDate:   draft.EndDate.Format("2006-01-02"),
		Reason:    draft.Reason,
		Type:      string(draft.Type),
	}
	return req.Validate()
}

type LeaveRequestFilter struct {
	EmployeeID string
	Status     string
	Page       int
	Limit      int

	// Filled by Validate
	StatusValue *Status
}

func (f *LeaveRequestFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	f.StatusValue = nil
	if !validator.IsEmpty(f.Status) {
		s, ok := ParseStatus(f.Status)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: DRAFT, PENDING, APPROVED, DENIED, REJECTED",
			})
		} else {
			f.StatusValue = &s
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Offset of the first row of the current page.
func (f LeaveRequestFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type DecisionRequest struct {
	Status       string  `json:"status"`
	DenialReason *string `json:"denialReason,omitempty"`

	// Filled by Validate
	Decision Status `json:"-"`
}

func (r *DecisionRequest) Validate() error {
	s, ok := ParseStatus(r.Status)
	if !ok || (s != StatusApproved && s != StatusDenied) {
		return validator.New("status", "status must be APPROVED or REJECTED")
	}
	r.Decision = s

	if r.DenialReason != nil {
		trimmed := strings.TrimSpace(*r.DenialReason)
		if trimmed == "" || s != StatusDenied {
			r.DenialReason = nil
		} else {
			if len([]rune(trimmed)) > maxDenialReasonSize {
				return validator.New("denialReason", "denialReason must not exceed 500 characters")
			}
			r.DenialReason = &trimmed
		}
	}
	return nil
}

type LeaveRequestResponse struct {
	ID                 string     `json:"id"`
	EmployeeID         string     `json:"employeeId"`
	EmployeeName       string     `json:"employeeName,omitempty"`
	EmployeeEmail      string     `json:"employeeEmail,omitempty"`
	EmployeeDepartment string     `json:"department,omitempty"`
	EmployeeJobTitle   string     `json:"jobTitle,omitempty"`
	Type               Type       `json:"type"`
	Status             Status     `json:"status"`
	StartDate          string     `json:"startDate"`
	EndDate            string     `json:"endDate"`
	Reason             string     `json:"reason"`
	DaysCount          int        `json:"daysCount"`
	ApproverID         *string    `json:"approverId"`
	ApprovedAt         *time.Time `json:"approvedAt"`
	DenialReason       *string    `json:"denialReason"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

type ListLeaveRequestResponse struct {
	Data       []LeaveRequestResponse `json:"data"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	Total      int64                  `json:"total"`
	TotalPages int                    `json:"totalPages"`
}

func ToResponse(lr LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:           lr.ID,
		EmployeeID:   lr.EmployeeID,
		Type:         lr.Type,
		Status:       lr.Status,
		StartDate:    lr.StartDate.Format("2006-01-02"),
		EndDate:      lr.EndDate.Format("2006-01-02"),
		Reason:       lr.Reason,
		DaysCount:    lr.DaysCount,
		ApproverID:   lr.ApproverID,
		ApprovedAt:   lr.ApprovedAt,
		DenialReason: lr.DenialReason,
		CreatedAt:    lr.CreatedAt,
		UpdatedAt:    lr.UpdatedAt,
	}
	if lr.Employee != nil {
		resp.EmployeeName = lr.Employee.Name
		resp.EmployeeEmail = lr.Employee.Email
		resp.EmployeeDepartment = lr.Employee.Department
		resp.EmployeeJobTitle = lr.Employee.JobTitle
	}
	return resp
}

// TotalPages for total rows at limit rows per page.
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}
