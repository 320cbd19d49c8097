// Package auth provides credential handling and JWT session tokens for
// the leave service. Employees are provisioned by HR first; registration
// only attaches a password to an existing directory record.
package auth

import (
	"context"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/nandhu-6/leave-management-system/leave"
)

// DefaultTokenTTL is how long an issued session token stays valid.
const DefaultTokenTTL = 24 * time.Hour

// TokenService issues and verifies HS256 session tokens.
type TokenService struct {
	tokenAuth *jwtauth.JWTAuth
	ttl       time.Duration
	now       func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		tokenAuth: jwtauth.New("HS256", []byte(secret), nil, jwt.WithAcceptableSkew(30*time.Second)),
		ttl:       ttl,
		now:       time.Now,
	}
}

// JWTAuth exposes the underlying verifier for the HTTP middleware
// (jwtauth.Verifier / jwtauth.Authenticator).
func (s *TokenService) JWTAuth() *jwtauth.JWTAuth {
	return s.tokenAuth
}

// IssueToken encodes the employee's identity into a signed token.
func (s *TokenService) IssueToken(e *leave.Employee) (token string, expiresAt int64, err error) {
	expiresAt = s.now().Add(s.ttl).Unix()
	_, token, err = s.tokenAuth.Encode(map[string]interface{}{
		"employee_id": string(e.ID),
		"role":        string(e.Role),
		"exp":         expiresAt,
	})
	return token, expiresAt, err
}

// Identity is the caller's identity extracted from a verified token.
type Identity struct {
	EmployeeID leave.EmployeeID
	Role       leave.Role
}

// IdentityFromContext reads the verified claims placed in the request
// context by jwtauth.Verifier.
func IdentityFromContext(ctx context.Context) (Identity, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Identity{}, err
	}
	id, ok := claims["employee_id"].(string)
	if !ok || id == "" {
		return Identity{}, ErrInvalidToken
	}
	role, _ := claims["role"].(string)
	return Identity{
		EmployeeID: leave.EmployeeID(id),
		Role:       leave.Role(role),
	}, nil
}
