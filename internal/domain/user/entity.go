package user

import "time"

type Role string

const (
	RoleAdmin    Role = "ADMIN"    // Full access, approves leave
	RoleManager  Role = "MANAGER"  // Approves leave, sees every employee
	RoleEmployee Role = "EMPLOYEE" // Regular employee
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash *string
	Roles        []string
	Department   string
	JobTitle     string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccessProfile is the minimal projection read on every authenticated request.
type AccessProfile struct {
	ID       string
	Email    string
	Roles    []string
	IsActive bool
}
