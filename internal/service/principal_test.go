package service

import (
	"context"
	"testing"

	"github.com/tallybook/tallybook/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestPrincipalResolve(t *testing.T) {
	ctx := context.Background()

	st := newTestStore(t)
	sessions := newSessionService(t, st)
	principals := &PrincipalService{Store: st}

	_, err := sessions.Signup(ctx, "Alice Example", "alice@example.com", "secret1", "user")
	require.NoError(t, err)

	t.Run("maps subject to the live user row", func(t *testing.T) {
		u, err := principals.Resolve(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", u.Email)
		require.Equal(t, domain.RoleUser, u.Role)
	})

	t.Run("unknown subject is rejected", func(t *testing.T) {
		_, err := principals.Resolve(ctx, "ghost@example.com")
		require.ErrorIs(t, err, ErrPrincipalNotFound)
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	principals := &PrincipalService{}

	require.NoError(t, principals.RequireAdmin(domain.User{Role: domain.RoleAdmin}))
	require.ErrorIs(t, principals.RequireAdmin(domain.User{Role: domain.RoleUser}), ErrForbidden)
}

func TestTargetUserID(t *testing.T) {
	t.Parallel()

	principals := &PrincipalService{}
	user := domain.User{ID: "user-1", Role: domain.RoleUser}
	admin := domain.User{ID: "admin-1", Role: domain.RoleAdmin}

	t.Run("empty target means self", func(t *testing.T) {
		got, err := principals.TargetUserID(user, "")
		require.NoError(t, err)
		require.Equal(t, "user-1", got)
	})

	t.Run("self target is always allowed", func(t *testing.T) {
		got, err := principals.TargetUserID(user, "user-1")
		require.NoError(t, err)
		require.Equal(t, "user-1", got)
	})

	t.Run("non-admin cannot name someone else", func(t *testing.T) {
		_, err := principals.TargetUserID(user, "user-2")
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin may name any target", func(t *testing.T) {
		got, err := principals.TargetUserID(admin, "user-2")
		require.NoError(t, err)
		require.Equal(t, "user-2", got)
	})
}
