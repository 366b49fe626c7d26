package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/catalogd/catalogd/internal/platform/httpx"
	"github.com/catalogd/catalogd/internal/rbac"
)

type memoryRepo struct {
	users  map[string]*User
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[string]*User)}
}

func (r *memoryRepo) FindByUsername(ctx context.Context, username string) (*User, error) {
	if u, ok := r.users[username]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, httpx.ErrNotFound
}

func (r *memoryRepo) Create(ctx context.Context, user User) (*User, error) {
	if _, ok := r.users[user.Username]; ok {
		return nil, httpx.ErrConflict
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.Username] = &user
	return &user, nil
}

func TestRegisterAndAuthenticate(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
		FullName: "Alice Doe",
	})
	require.NoError(t, err)
	require.Equal(t, rbac.RoleGeneral, user.Role)
	require.True(t, user.IsActive)
	require.NotEqual(t, "s3cret-pass", user.PasswordHash)

	got, err := svc.Authenticate(ctx, "alice", "s3cret-pass")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "s3cret-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateInactiveUser(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "s3cret-pass",
		FullName: "Bob Doe",
	})
	require.NoError(t, err)

	repo.users[user.Username].IsActive = false

	_, err = svc.Authenticate(ctx, "bob", "s3cret-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	in := RegisterInput{Username: "carol", Email: "c@example.com", Password: "s3cret-pass", FullName: "Carol"}
	_, err := svc.Register(ctx, in)
	require.NoError(t, err)

	_, err = svc.Register(ctx, in)
	require.ErrorIs(t, err, httpx.ErrConflict)
}
