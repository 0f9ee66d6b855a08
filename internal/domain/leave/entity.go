package leave

import (
	"math"
	"strings"
	"time"
)

type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusDenied   Status = "DENIED"

	// statusRejected is accepted on input and stored as DENIED.
	statusRejected = "REJECTED"
)

// ParseStatus resolves a status name case-insensitively, mapping REJECTED to DENIED.
func ParseStatus(s string) (Status, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(StatusDraft):
		return StatusDraft, true
	case string(StatusPending):
		return StatusPending, true
	case string(StatusApproved):
		return StatusApproved, true
	case string(StatusDenied), statusRejected:
		return StatusDenied, true
	}
	return "", false
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusDenied
}

type Type string

const (
	TypeAnnual   Type = "ANNUAL"
	TypeSick     Type = "SICK"
	TypePersonal Type = "PERSONAL"
	TypeUnpaid   Type = "UNPAID"
	TypeOther    Type = "OTHER"
)

var leaveTypes = []Type{TypeAnnual, TypeSick, TypePersonal, TypeUnpaid, TypeOther}

// ParseType resolves a leave type; empty input defaults to ANNUAL.
func ParseType(s string) (Type, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return TypeAnnual, true
	}
	for _, t := range leaveTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// LeaveRequest entity
type LeaveRequest struct {
	ID           string
	EmployeeID   string
	Type         Type
	Status       Status
	StartDate    time.Time
	EndDate      time.Time
	Reason       string
	ApproverID   *string
	ApprovedAt   *time.Time
	DenialReason *string
	DaysCount    int
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// DTO / Join
	Employee *Employee
}

// Employee holds the display fields joined from the user record.
type Employee struct {
	ID         string
	Name       string
	Email      string
	Department string
	JobTitle   string
}

// StatusUpdate is written by a conditional status transition.
type StatusUpdate struct {
	Status       Status
	ApproverID   *string
	ApprovedAt   *time.Time
	DenialReason *string
	UpdatedAt    time.Time
}

// DaysCount is the inclusive day span: ceil(end - start in days) + 1.
func DaysCount(start, end time.Time) int {
	diffDays := end.Sub(start).Hours() / 24
	return int(math.Ceil(diffDays)) + 1
}
