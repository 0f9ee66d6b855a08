package user

import (
	"context"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	// GetAccessProfile projects only email, roles and the active flag.
	GetAccessProfile(ctx context.Context, id string) (AccessProfile, error)
	Create(ctx context.Context, newUser User) (User, error)
}
