package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/catalogd/catalogd/internal/rbac"
)

// ErrInvalidToken indicates a malformed, expired or mis-signed token.
var ErrInvalidToken = errors.New("auth: invalid token")

// TokenManager issues and verifies HS256 bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager constructs a TokenManager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

type claims struct {
	Role string `json:"role"`
	UID  int64  `json:"uid"`
	jwt.RegisteredClaims
}

// Issue creates a signed token for the subject.
func (tm *TokenManager) Issue(sub rbac.Subject) (string, time.Time, error) {
	now := tm.now()
	expiresAt := now.Add(tm.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(sub.Role),
		UID:  sub.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies a raw token and returns the embedded subject.
func (tm *TokenManager) Parse(raw string) (rbac.Subject, error) {
	var cl claims
	token, err := jwt.ParseWithClaims(raw, &cl, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return rbac.Subject{}, ErrInvalidToken
	}
	role, err := rbac.ParseRole(cl.Role)
	if err != nil {
		return rbac.Subject{}, ErrInvalidToken
	}
	return rbac.Subject{UserID: cl.UID, Username: cl.Subject, Role: role}, nil
}
