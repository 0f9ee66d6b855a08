package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/revocation"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAccessExp  = "1h"
	testRefreshExp = "24h"
	testSecret     = "test-secret-key-for-jwt"
	testPassword   = "password123"
)

type fakeUserRepository struct {
	users       map[string]user.User
	profileErr  error
	profileHits int
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]user.User)}
}

func (f *fakeUserRepository) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepository) GetByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepository) GetAccessProfile(_ context.Context, id string) (user.AccessProfile, error) {
	f.profileHits++
	if f.profileErr != nil {
		return user.AccessProfile{}, f.profileErr
	}
	u, ok := f.users[id]
	if !ok {
		return user.AccessProfile{}, user.ErrUserNotFound
	}
	return user.AccessProfile{ID: u.ID, Email: u.Email, Roles: u.Roles, IsActive: u.IsActive}, nil
}

func (f *fakeUserRepository) Create(_ context.Context, newUser user.User) (user.User, error) {
	f.users[newUser.ID] = newUser
	return newUser, nil
}

func (f *fakeUserRepository) addUser(t *testing.T, id, email string, roles ...string) user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	hashed := string(hash)
	u := user.User{
		ID:           id,
		Name:         "Test " + id,
		Email:        email,
		PasswordHash: &hashed,
		Roles:        roles,
		IsActive:     true,
	}
	f.users[id] = u
	return u
}

func newTestService(repo *fakeUserRepository, secret string) (*AuthServiceImpl, jwt.Service) {
	tokens := jwt.NewJWTService(secret, testAccessExp, testRefreshExp)
	svc := NewAuthService(repo, tokens, revocation.NewMemoryStore()).(*AuthServiceImpl)
	return svc, tokens
}

func bearer(token string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return h
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer   abc "))
	assert.Equal(t, "abc", bearerToken("abc"))
	assert.Equal(t, "", bearerToken("Bearer "))
	assert.Equal(t, "", bearerToken("Bearer"))
	assert.Equal(t, "", bearerToken("   "))
	assert.Equal(t, "Bearerabc", bearerToken("Bearerabc"))
}

func TestAuthenticate_Success(t *testing.T) {
	// Arrange
	repo := newFakeUserRepository()
	repo.addUser(t, "u-1", "ana@example.com", "employee")
	svc, tokens := newTestService(repo, testSecret)
	token, _, err := tokens.GenerateAccessToken("u-1", "ana@example.com", []string{"EMPLOYEE"})
	require.NoError(t, err)

	// Act
	identity, err := svc.Authenticate(context.Background(), bearer(token))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "u-1", identity.ID)
	assert.Equal(t, "ana@example.com", identity.Email)
	assert.Equal(t, []string{"EMPLOYEE"}, identity.Roles)
	assert.Equal(t, 1, repo.profileHits)
}

func TestAuthenticate_TokenWithoutBearerPrefix(t *testing.T) {
	repo := newFakeUserRepository()
	repo.addUser(t, "u-1", "ana@example.com")
	svc, tokens := newTestService(repo, testSecret)
	token, _, err := tokens.GenerateAccessToken("u-1", "ana@example.com", nil)
	require.NoError(t, err)

	h := http.Header{}
	h.Set("Authorization", token)
	identity, err := svc.Authenticate(context.Background(), h)

	require.NoError(t, err)
	assert.Equal(t, "u-1", identity.ID)
}

func TestAuthenticate_FailureModes(t *testing.T) {
	repo := newFakeUserRepository()
	repo.addUser(t, "u-1", "ana@example.com")
	svc, tokens := newTestService(repo, testSecret)

	refresh, _, err := tokens.GenerateRefreshToken("u-1", "ana@example.com")
	require.NoError(t, err)
	ghost, _, err := tokens.GenerateAccessToken("u-404", "ghost@example.com", []string{"ADMIN"})
	require.NoError(t, err)
	foreign, _, err := jwt.NewJWTService("other-secret", "1h", "1h").GenerateAccessToken("u-1", "ana@example.com", nil)
	require.NoError(t, err)
	expired, _, err := jwt.NewJWTService(testSecret, "-1h", "1h").GenerateAccessToken("u-1", "ana@example.com", nil)
	require.NoError(t, err)

	emptyValue := http.Header{}
	emptyValue.Set("Authorization", "Bearer ")

	tests := []struct {
		name    string
		header  http.Header
		wantErr error
	}{
		{"header absent", http.Header{}, auth.ErrMissingAuthHeader},
		{"empty after prefix", emptyValue, auth.ErrEmptyToken},
		{"bad signature", bearer(foreign), auth.ErrInvalidToken},
		{"expired", bearer(expired), auth.ErrInvalidToken},
		{"malformed", bearer("not.a.jwt"), auth.ErrInvalidToken},
		{"refresh token", bearer(refresh), auth.ErrWrongTokenType},
		{"unknown subject", bearer(ghost), auth.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authenticate(context.Background(), tt.header)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthenticate_MissingSecret(t *testing.T) {
	repo := newFakeUserRepository()
	svc, _ := newTestService(repo, "")

	_, err := svc.Authenticate(context.Background(), bearer("anything"))
	assert.ErrorIs(t, err, auth.ErrServerConfig)

	// Header checks still come first.
	_, err = svc.Authenticate(context.Background(), http.Header{})
	assert.ErrorIs(t, err, auth.ErrMissingAuthHeader)
}

func TestAuthenticate_RolesComeFromStorage(t *testing.T) {
	repo := newFakeUserRepository()
	repo.addUser(t, "u-1", "ana@example.com", "EMPLOYEE")
	svc, tokens := newTestService(repo, testSecret)

	// Token minted while the user was an admin.
	token, _, err := tokens.GenerateAccessToken("u-1", "ana@example.com", []string{"ADMIN"})
	require.NoError(t, err)

	identity, err := svc.Authenticate(context.Background(), bearer(token))
	require.NoError(t, err)
	assert.Equal(t, []string{"EMPLOYEE"}, identity.Roles)

	// Promotion is visible on the next request without a new token.
	promoted := repo.users["u-1"]
	promoted.Roles = []string{"manager"}
	repo.users["u-1"] = promoted

	identity, err = svc.Authenticate(context.Background(), bearer(token))
	require.NoError(t, err)
	assert.Equal(t, []string{"MANAGER"}, identity.Roles)
	assert.Equal(t, 2, repo.profileHits)
}

func TestAuthenticate_EmptyStoredRolesDefaultToEmployee(t *testing.T) {
	repo := newFakeUserRepository()
	repo.addUser(t, "u-1", "ana@example.com")
	svc, tokens := newTestService(repo, testSecret)
	token, _, err := tokens.GenerateAccessToken("u-1", "ana@example.com", nil)
	require.NoError(t, err)

	identity, err := svc.Authenticate(context.Background(), bearer(token))
	require.NoError(t, err)
	assert.Equal(t, []string{string(user.RoleEmployee)}, identity.Roles)
}

func TestAuthenticate_InactiveAndStorageFailure(t *testing.T) {
	repo := newFakeUserRepository()
	u := repo.addUser(t, "u-1", "ana@example.com")
	svc, tokens := newTestService(repo, testSecret)
	token, _, err := tokens.GenerateAccessToken("u-1", "ana@example.com", nil)
	require.NoError(t, err)

	u.IsActive = false
	repo.users["u-1"] = u
	_, err = svc.Authenticate(context.Background(), bearer(token))
	assert.ErrorIs(t, err, auth.ErrAccountInactive)

	repo.profileErr = database.Wrap("get access profile", errors.New("connection refused"))
	_, err = svc.Authenticate(context.Background(), bearer(token))
	assert.ErrorIs(t, err, database.ErrStorage)
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepository()
	repo.addUser(t, "u-1", "ana@example.com", "manager")
	svc, tokens := newTestService(repo, testSecret)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		resp, err := svc.Login(ctx, auth.LoginRequest{Email: " ANA@example.com ", Password: testPassword})
		require.NoError(t, err)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, []string{"MANAGER"}, resp.User.Roles)

		claims, _, err := tokens.Parse(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, auth.TokenTypeAccess, claims.Type)

		claims, _, err = tokens.Parse(resp.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, auth.TokenTypeRefresh, claims.Type)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginRequest{Email: "ana@example.com", Password: "nope-nope"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginRequest{Email: "who@example.com", Password: testPassword})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("invalid payload", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginRequest{Email: "not-an-email"})
		var errs validator.ValidationErrors
		assert.ErrorAs(t, err, &errs)
	})

	t.Run("inactive", func(t *testing.T) {
		u := repo.addUser(t, "u-2", "old@example.com")
		u.IsActive = false
		repo.users["u-2"] = u
		_, err := svc.Login(ctx, auth.LoginRequest{Email: "old@example.com", Password: testPassword})
		assert.ErrorIs(t, err, auth.ErrAccountInactive)
	})
}

func TestRefreshToken(t *testing.T) {
	repo := newFakeUserRepository()
	repo.addUser(t, "u-1", "ana@example.com")
	svc, tokens := newTestService(repo, testSecret)
	ctx := context.Background()

	login, err := svc.Login(ctx, auth.LoginRequest{Email: "ana@example.com", Password: testPassword})
	require.NoError(t, err)

	// Access tokens are not accepted for refresh.
	_, err = svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.AccessToken})
	assert.ErrorIs(t, err, auth.ErrWrongTokenType)

	// Roles changed since login are picked up.
	promoted := repo.users["u-1"]
	promoted.Roles = []string{"ADMIN"}
	repo.users["u-1"] = promoted

	refreshed, err := svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.Equal(t, []string{"ADMIN"}, refreshed.User.Roles)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	claims, _, err := tokens.Parse(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"ADMIN"}, claims.Roles)

	// The old refresh token was rotated out.
	_, err = svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)
}

func TestLogout(t *testing.T) {
	repo := newFakeUserRepository()
	repo.addUser(t, "u-1", "ana@example.com")
	svc, _ := newTestService(repo, testSecret)
	ctx := context.Background()

	login, err := svc.Login(ctx, auth.LoginRequest{Email: "ana@example.com", Password: testPassword})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, auth.RefreshTokenRequest{RefreshToken: login.RefreshToken}))
	// Logging out twice is harmless.
	require.NoError(t, svc.Logout(ctx, auth.RefreshTokenRequest{RefreshToken: login.RefreshToken}))

	_, err = svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)

	err = svc.Logout(ctx, auth.RefreshTokenRequest{RefreshToken: "garbage"})
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
