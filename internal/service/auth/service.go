package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/revocation"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	user.UserRepository
	tokens  jwt.Service
	revoked revocation.Store
}

func NewAuthService(userRepository user.UserRepository, jwtService jwt.Service, revokedTokens revocation.Store) auth.AuthService {
	return &AuthServiceImpl{
		UserRepository: userRepository,
		tokens:         jwtService,
		revoked:        revokedTokens,
	}
}

// bearerToken strips an optional case-insensitive "Bearer " prefix.
func bearerToken(value string) string {
	value = strings.TrimSpace(value)
	const prefix = "bearer"
	if len(value) >= len(prefix) && strings.EqualFold(value[:len(prefix)], prefix) {
		rest := value[len(prefix):]
		if rest == "" || rest[0] == ' ' || rest[0] == '\t' {
			value = rest
		}
	}
	return strings.TrimSpace(value)
}

// Authenticate implements auth.AuthService.
func (a *AuthServiceImpl) Authenticate(ctx context.Context, header http.Header) (auth.Identity, error) {
	values := header.Values("Authorization")
	if len(values) == 0 {
		return auth.Identity{}, auth.ErrMissingAuthHeader
	}

	tokenString := bearerToken(values[0])
	if tokenString == "" {
		return auth.Identity{}, auth.ErrEmptyToken
	}

	claims, _, err := a.tokens.Parse(tokenString)
	if err != nil {
		return auth.Identity{}, err
	}
	if claims.Type != auth.TokenTypeAccess {
		return auth.Identity{}, auth.ErrWrongTokenType
	}

	return a.loadIdentity(ctx, claims.ID)
}

// loadIdentity re-reads email and roles from storage.
func (a *AuthServiceImpl) loadIdentity(ctx context.Context, userID string) (auth.Identity, error) {
	profile, err := a.UserRepository.GetAccessProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.Identity{}, auth.ErrUserNotFound
		}
		return auth.Identity{}, fmt.Errorf("failed to load user access profile: %w", err)
	}
	if !profile.IsActive {
		return auth.Identity{}, auth.ErrAccountInactive
	}

	return auth.Identity{
		ID:    profile.ID,
		Email: profile.Email,
		Roles: user.NormalizeRoles(profile.Roles),
	}, nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	userData, err := a.UserRepository.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if userData.PasswordHash == nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*userData.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if !userData.IsActive {
		return auth.TokenResponse{}, auth.ErrAccountInactive
	}

	identity := auth.Identity{
		ID:    userData.ID,
		Email: userData.Email,
		Roles: user.NormalizeRoles(userData.Roles),
	}
	resp, err := a.issueTokens(identity)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	slog.Info("user logged in", "user_id", identity.ID)
	return resp, nil
}

// RefreshToken implements auth.AuthService. The presented refresh token is
// rotated: it is revoked and a new one is issued with the access token.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	claims, err := a.verifyRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	identity, err := a.loadIdentity(ctx, claims.ID)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	resp, err := a.issueTokens(identity)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	if err := a.revoked.Revoke(ctx, req.RefreshToken, claims.expiresAt); err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to revoke rotated refresh token: %w", err)
	}
	return resp, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, req auth.RefreshTokenRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	claims, err := a.verifyRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrRefreshTokenRevoked) {
			return nil
		}
		return err
	}

	if err := a.revoked.Revoke(ctx, req.RefreshToken, claims.expiresAt); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	slog.Info("user logged out", "user_id", claims.ID)
	return nil
}

type refreshClaims struct {
	auth.Claims
	expiresAt time.Time
}

func (a *AuthServiceImpl) verifyRefreshToken(ctx context.Context, token string) (refreshClaims, error) {
	claims, expiresAt, err := a.tokens.Parse(token)
	if err != nil {
		return refreshClaims{}, err
	}
	if claims.Type != auth.TokenTypeRefresh {
		return refreshClaims{}, auth.ErrWrongTokenType
	}

	revoked, err := a.revoked.IsRevoked(ctx, token)
	if err != nil {
		return refreshClaims{}, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if revoked {
		return refreshClaims{}, auth.ErrRefreshTokenRevoked
	}
	return refreshClaims{Claims: claims, expiresAt: expiresAt}, nil
}

func (a *AuthServiceImpl) issueTokens(identity auth.Identity) (auth.TokenResponse, error) {
	var resp auth.TokenResponse
	var err error

	resp.AccessToken, resp.AccessTokenExpiresAt, err = a.tokens.GenerateAccessToken(identity.ID, identity.Email, identity.Roles)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	resp.RefreshToken, resp.RefreshTokenExpiresAt, err = a.tokens.GenerateRefreshToken(identity.ID, identity.Email)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create refresh token: %w", err)
	}
	resp.TokenType = "Bearer"
	resp.User = identity
	return resp, nil
}
