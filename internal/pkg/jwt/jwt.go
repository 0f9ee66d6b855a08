package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/auth"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type Service interface {
	GenerateAccessToken(userID string, email string, roles []string) (token string, expiresAt int64, err error)
	GenerateRefreshToken(userID string, email string) (token string, expiresAt int64, err error)
	// Parse verifies signature and expiry and returns the decoded claims.
	// It does not check the token type.
	Parse(tokenString string) (claims auth.Claims, expiresAt time.Time, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime  string
	refreshTokenExpirationTime string
	tokenAuth                  *jwtauth.JWTAuth
	now                        func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// NewJWTService builds an HS256 signer. An empty secret yields a service whose
// every call fails with auth.ErrServerConfig.
func NewJWTService(secretKey string, accessTokenExpirationTime string, refreshTokenExpirationTime string) Service {
	s := &JWTService{
		accessTokenExpirationTime:  accessTokenExpirationTime,
		refreshTokenExpirationTime: refreshTokenExpirationTime,
		now:                        time.Now,
	}
	if secretKey != "" {
		s.tokenAuth = jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second))
	}
	return s
}

func (j *JWTService) GenerateAccessToken(userID string, email string, roles []string) (token string, expiresAt int64, err error) {
	return j.issue(j.accessTokenExpirationTime, map[string]interface{}{
		"id":    userID,
		"email": email,
		"roles": roles,
		"type":  auth.TokenTypeAccess,
	})
}

func (j *JWTService) GenerateRefreshToken(userID string, email string) (token string, expiresAt int64, err error) {
	return j.issue(j.refreshTokenExpirationTime, map[string]interface{}{
		"id":    userID,
		"email": email,
		"type":  auth.TokenTypeRefresh,
	})
}

func (j *JWTService) issue(expiration string, claims map[string]interface{}) (string, int64, error) {
	if j.tokenAuth == nil {
		return "", 0, auth.ErrServerConfig
	}
	expDuration, err := time.ParseDuration(expiration)
	if err != nil {
		return "", 0, err
	}

	issuedAt := j.now()
	expiresAt := issuedAt.Add(expDuration).Unix()
	claims["sub"] = claims["id"]
	claims["jti"] = uuid.NewString()
	claims["iat"] = issuedAt.Unix()
	claims["exp"] = expiresAt

	_, tokenString, err := j.tokenAuth.Encode(claims)
	if err != nil {
		return "", 0, err
	}
	return tokenString, expiresAt, nil
}

func (j *JWTService) Parse(tokenString string) (auth.Claims, time.Time, error) {
	if j.tokenAuth == nil {
		return auth.Claims{}, time.Time{}, auth.ErrServerConfig
	}

	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return auth.Claims{}, time.Time{}, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}

	raw, err := token.AsMap(context.Background())
	if err != nil {
		return auth.Claims{}, time.Time{}, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}

	claims := auth.Claims{
		ID:    stringClaim(raw, "id"),
		Email: stringClaim(raw, "email"),
		Type:  stringClaim(raw, "type"),
	}
	if claims.ID == "" {
		claims.ID = token.Subject()
	}
	if claims.ID == "" {
		return auth.Claims{}, time.Time{}, fmt.Errorf("%w: missing subject", auth.ErrInvalidToken)
	}

	if roles, ok := raw["roles"].([]interface{}); ok {
		for _, r := range roles {
			if s, ok := r.(string); ok {
				claims.Roles = append(claims.Roles, s)
			}
		}
	}

	return claims, token.Expiration(), nil
}

func stringClaim(claims map[string]interface{}, key string) string {
	v, _ := claims[key].(string)
	return v
}
