package auth

import (
	"strings"

	"github.com/cmlabs-hris/hris-core-go/internal/pkg/validator"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Identity is the authenticated caller of a single request.
type Identity struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// Claims is the payload carried by signed tokens.
type Claims struct {
	ID    string
	Email string
	Roles []string
	Type  string
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	return validator.Struct(r)
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func (r *RefreshTokenRequest) Validate() error {
	r.RefreshToken = strings.TrimSpace(r.RefreshToken)
	return validator.Struct(r)
}

type TokenResponse struct {
	AccessToken           string   `json:"accessToken"`
	AccessTokenExpiresAt  int64    `json:"accessTokenExpiresAt"`
	RefreshToken          string   `json:"refreshToken,omitempty"`
	RefreshTokenExpiresAt int64    `json:"refreshTokenExpiresAt,omitempty"`
	TokenType             string   `json:"tokenType"`
	User                  Identity `json:"user"`
}
