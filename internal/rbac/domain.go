package rbac

import (
	"context"
	"fmt"
)

// Role is one of the fixed roles a subject can hold.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSupplier Role = "supplier"
	RoleGeneral  Role = "general_user"
)

// ParseRole validates a raw role string.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin, RoleSupplier, RoleGeneral:
		return Role(raw), nil
	default:
		return "", fmt.Errorf("rbac: unknown role %q", raw)
	}
}

// Subject describes the authenticated actor.
type Subject struct {
	UserID   int64
	Username string
	Role     Role
}

type contextKey struct{}

// ContextWithSubject stores the subject in the context.
func ContextWithSubject(ctx context.Context, sub Subject) context.Context {
	return context.WithValue(ctx, contextKey{}, sub)
}

// SubjectFromContext retrieves the subject, if any.
func SubjectFromContext(ctx context.Context) (Subject, bool) {
	sub, ok := ctx.Value(contextKey{}).(Subject)
	return sub, ok
}
