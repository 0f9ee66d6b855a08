package auth

import (
	"context"
	"net/http"
)

type AuthService interface {
	// Authenticate resolves the bearer credential on a request to an Identity.
	// Roles always come from storage, never from the token.
	Authenticate(ctx context.Context, header http.Header) (Identity, error)
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (TokenResponse, error)
	Logout(ctx context.Context, req RefreshTokenRequest) error
}
