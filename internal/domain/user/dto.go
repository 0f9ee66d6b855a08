package user

import (
	"strings"

	"github.com/cmlabs-hris/hris-core-go/internal/pkg/validator"
)

// UserResponse represents user data in API responses
type UserResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Roles      []string `json:"roles"`
	Department string   `json:"department,omitempty"`
	JobTitle   string   `json:"jobTitle,omitempty"`
}

func ToResponse(u User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Roles:      NormalizeRoles(u.Roles),
		Department: u.Department,
		JobTitle:   u.JobTitle,
	}
}

// CreateUserRequest bootstraps an account from the command line.
type CreateUserRequest struct {
	Name       string   `json:"name" validate:"required,max=255"`
	Email      string   `json:"email" validate:"required,email"`
	Password   string   `json:"password" validate:"required,min=8"`
	Roles      []string `json:"roles"`
	Department string   `json:"department" validate:"max=255"`
	JobTitle   string   `json:"jobTitle" validate:"max=255"`
}

func (r *CreateUserRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)

	var errs validator.ValidationErrors
	if err := validator.Struct(r); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		errs = append(errs, fieldErrs...)
	}

	for _, role := range r.Roles {
		if _, ok := ParseRole(role); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "roles",
				Message: "roles may only contain ADMIN, MANAGER or EMPLOYEE",
			})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
