package auth

import "errors"

var (
	// Credential verification, in the order they are checked.
	ErrMissingAuthHeader = errors.New("authorization header is required")
	ErrEmptyToken        = errors.New("bearer token is empty")
	ErrServerConfig      = errors.New("token signing secret is not configured")
	ErrInvalidToken      = errors.New("invalid or expired token")
	ErrWrongTokenType    = errors.New("refresh token cannot be used to access this resource")
	ErrUserNotFound      = errors.New("user not found")

	ErrAccountInactive     = errors.New("account is inactive")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrRefreshTokenRevoked = errors.New("refresh token has been revoked")
	ErrForbidden           = errors.New("you do not have permission to perform this action")
)
