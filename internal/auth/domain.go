package auth

import (
	"time"

	"github.com/catalogd/catalogd/internal/rbac"
)

// User is an account able to obtain API tokens.
type User struct {
	ID           int64
	Username     string
	Email        string
	FullName     string
	PasswordHash string
	Role         rbac.Role
	IsActive     bool
	CreatedAt    time.Time
}
