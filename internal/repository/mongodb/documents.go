package mongodb

import (
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/user"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	UserCollection         = "users"
	AttendanceCollection   = "attendances"
	LeaveRequestCollection = "leave_requests"
)

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash *string            `bson:"password_hash,omitempty"`
	Roles        []string           `bson:"roles"`
	Department   string             `bson:"department"`
	JobTitle     string             `bson:"job_title"`
	IsActive     bool               `bson:"is_active"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (d userDocument) toDomain() user.User {
	return user.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Roles:        d.Roles,
		Department:   d.Department,
		JobTitle:     d.JobTitle,
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type attendanceDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      primitive.ObjectID `bson:"user_id"`
	Date        time.Time          `bson:"date"`
	ClockIn     time.Time          `bson:"clock_in"`
	ClockOut    *time.Time         `bson:"clock_out"`
	HoursWorked *float64           `bson:"hours_worked"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`

	// Filled by $lookup
	User *userDocument `bson:"user,omitempty"`
}

func newAttendanceDocument(a attendance.Attendance, userID primitive.ObjectID) attendanceDocument {
	return attendanceDocument{
		UserID:    userID,
		Date:      a.Date.UTC(),
		ClockIn:   a.ClockIn.UTC(),
		CreatedAt: a.CreatedAt.UTC(),
		UpdatedAt: a.UpdatedAt.UTC(),
	}
}

func (d attendanceDocument) toDomain() attendance.Attendance {
	a := attendance.Attendance{
		ID:          d.ID.Hex(),
		UserID:      d.UserID.Hex(),
		Date:        d.Date.UTC(),
		ClockIn:     d.ClockIn.UTC(),
		HoursWorked: d.HoursWorked,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	if d.ClockOut != nil {
		out := d.ClockOut.UTC()
		a.ClockOut = &out
	}
	if d.User != nil {
		name, email := d.User.Name, d.User.Email
		a.EmployeeName = &name
		a.EmployeeEmail = &email
	}
	return a
}

type leaveRequestDocument struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty"`
	EmployeeID   primitive.ObjectID  `bson:"employee_id"`
	Type         string              `bson:"type"`
	Status       string              `bson:"status"`
	StartDate    time.Time           `bson:"start_date"`
	EndDate      time.Time           `bson:"end_date"`
	Reason       string              `bson:"reason"`
	ApproverID   *primitive.ObjectID `bson:"approver_id"`
	ApprovedAt   *time.Time          `bson:"approved_at"`
	DenialReason *string             `bson:"denial_reason"`
	DaysCount    int                 `bson:"days_count"`
	CreatedAt    time.Time           `bson:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at"`

	// Filled by $lookup
	Employee *userDocument `bson:"employee,omitempty"`
}

func newLeaveRequestDocument(r leave.LeaveRequest, employeeID primitive.ObjectID, approverID *primitive.ObjectID) leaveRequestDocument {
	return leaveRequestDocument{
		EmployeeID: employeeID,
		Type:       string(r.Type),
		Status:     string(r.Status),
		StartDate:  r.StartDate.UTC(),
		EndDate:    r.EndDate.UTC(),
		Reason:     r.Reason,
		ApproverID: approverID,
		ApprovedAt: r.ApprovedAt,
		DaysCount:  r.DaysCount,
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
}

func (d leaveRequestDocument) toDomain() leave.LeaveRequest {
	r := leave.LeaveRequest{
		ID:           d.ID.Hex(),
		EmployeeID:   d.EmployeeID.Hex(),
		Type:         leave.Type(d.Type),
		Status:       leave.Status(d.Status),
		StartDate:    d.StartDate.UTC(),
		EndDate:      d.EndDate.UTC(),
		Reason:       d.Reason,
		DenialReason: d.DenialReason,
		DaysCount:    d.DaysCount,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
	if d.ApproverID != nil {
		id := d.ApproverID.Hex()
		r.ApproverID = &id
	}
	if d.ApprovedAt != nil {
		at := d.ApprovedAt.UTC()
		r.ApprovedAt = &at
	}
	if d.Employee != nil {
		r.Employee = &leave.Employee{
			ID:         r.EmployeeID,
			Name:       d.Employee.Name,
			Email:      d.Employee.Email,
			Department: d.Employee.Department,
			JobTitle:   d.Employee.JobTitle,
		}
	}
	return r
}

// optionalObjectID converts an optional hex id; an invalid id reports ok=false.
func optionalObjectID(id *string) (*primitive.ObjectID, bool) {
	if id == nil {
		return nil, true
	}
	oid, err := primitive.ObjectIDFromHex(*id)
	if err != nil {
		return nil, false
	}
	return &oid, true
}
