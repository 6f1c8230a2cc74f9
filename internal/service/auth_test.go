package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tallybook/tallybook/internal/domain"
	"github.com/tallybook/tallybook/internal/store"
	"github.com/tallybook/tallybook/internal/store/drivers/sqlite"
	"github.com/tallybook/tallybook/pkg/cryptox"
	"github.com/tallybook/tallybook/pkg/idx"
	"github.com/tallybook/tallybook/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Password hashing needs a pepper file; point it at a throwaway one.
	pepperPath := filepath.Join(os.TempDir(), "tallybook-service-test-pepper")
	cryptox.SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newSessionService(t *testing.T, st store.Store) *SessionService {
	t.Helper()

	signer, err := jwtx.NewHS256([]byte("test-secret-at-least-32-bytes-long!!"), "tallybook-test")
	require.NoError(t, err)

	return &SessionService{
		Store:      st,
		Signer:     signer,
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}
}

func TestSignup(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a usable token pair", func(t *testing.T) {
		st := newTestStore(t)
		svc := newSessionService(t, st)

		pair, err := svc.Signup(ctx, "Alice Example", "alice@example.com", "secret1", "user")
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		require.Equal(t, "Bearer", pair.TokenType)
		require.Equal(t, svc.AccessTTL, pair.ExpiresIn)

		claims, err := svc.Signer.Verify(pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", claims.Subject)

		// The stored refresh row holds only the fingerprint of the opaque value.
		rt, err := st.RefreshTokens().GetRefreshTokenByHash(ctx, cryptox.FingerprintToken(pair.RefreshToken))
		require.NoError(t, err)
		require.NotEqual(t, pair.RefreshToken, rt.TokenHash)
		require.True(t, rt.Usable(time.Now()))
	})

	t.Run("stores the parsed role", func(t *testing.T) {
		st := newTestStore(t)
		svc := newSessionService(t, st)

		_, err := svc.Signup(ctx, "Ada Admin", "ada@example.com", "secret1", "admin")
		require.NoError(t, err)

		u, err := st.Users().GetUserByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, u.Role)
		require.True(t, u.IsAdmin())
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		st := newTestStore(t)
		svc := newSessionService(t, st)

		_, err := svc.Signup(ctx, "Alice Example", "alice@example.com", "secret1", "user")
		require.NoError(t, err)

		_, err = svc.Signup(ctx, "Other Person", "alice@example.com", "different", "user")
		require.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		st := newTestStore(t)
		svc := newSessionService(t, st)

		cases := []struct {
			name     string
			fullName string
			email    string
			password string
			role     string
		}{
			{"blank name", "", "a@example.com", "secret1", "user"},
			{"blank email", "Alice", "", "secret1", "user"},
			{"blank password", "Alice", "a@example.com", "", "user"},
			{"malformed email", "Alice", "not-an-email", "secret1", "user"},
			{"short password", "Alice", "a@example.com", "nope", "user"},
			{"unknown role", "Alice", "a@example.com", "secret1", "superuser"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.Signup(ctx, tc.fullName, tc.email, tc.password, tc.role)
				require.ErrorIs(t, err, ErrInvalidInput)
			})
		}
	})

	t.Run("accepts case-insensitive role names", func(t *testing.T) {
		st := newTestStore(t)
		svc := newSessionService(t, st)

		_, err := svc.Signup(ctx, "Alice Example", "alice@example.com", "secret1", "User")
		require.NoError(t, err)

		u, err := st.Users().GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, domain.RoleUser, u.Role)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	st := newTestStore(t)
	svc := newSessionService(t, st)

	_, err := svc.Signup(ctx, "Alice Example", "alice@example.com", "secret1", "user")
	require.NoError(t, err)

	t.Run("valid credentials issue a fresh pair", func(t *testing.T) {
		pair, err := svc.Login(ctx, "alice@example.com", "secret1")
		require.NoError(t, err)
		require.True(t, svc.Signer.IsValidFor(pair.AccessToken, "alice@example.com"))
		require.NotEmpty(t, pair.RefreshToken)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice@example.com", "wrong-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = svc.Login(ctx, "nobody@example.com", "secret1")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("each login gets its own refresh token", func(t *testing.T) {
		first, err := svc.Login(ctx, "alice@example.com", "secret1")
		require.NoError(t, err)
		second, err := svc.Login(ctx, "alice@example.com", "secret1")
		require.NoError(t, err)

		require.NotEqual(t, first.RefreshToken, second.RefreshToken)

		// Both stay usable; logging in again does not kill earlier sessions.
		_, err = svc.Refresh(ctx, first.RefreshToken)
		require.NoError(t, err)
		_, err = svc.Refresh(ctx, second.RefreshToken)
		require.NoError(t, err)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("returns a new access token and keeps the refresh token", func(t *testing.T) {
		st := newTestStore(t)
		svc := newSessionService(t, st)

		pair, err := svc.Signup(ctx, "Alice Example", "alice@example.com", "secret1", "user")
		require.NoError(t, err)

		refreshed, err := svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.True(t, svc.Signer.IsValidFor(refreshed.AccessToken, "alice@example.com"))
		require.Equal(t, pair.RefreshToken, refreshed.RefreshToken)
	})

	t.Run("unknown token is rejected", func(t *testing.T) {
		st := newTestStore(t)
		svc := newSessionService(t, st)

		_, err := svc.Refresh(ctx, "never-issued")
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("revoked token is rejected", func(t *testing.T) {
		st := newTestStore(t)
		svc := newSessionService(t, st)

		pair, err := svc.Signup(ctx, "Alice Example", "alice@example.com", "secret1", "user")
		require.NoError(t, err)

		svc.Logout(ctx, pair.RefreshToken)

		_, err = svc.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		st := newTestStore(t)
		svc := newSessionService(t, st)

		pair, err := svc.Signup(ctx, "Alice Example", "alice@example.com", "secret1", "user")
		require.NoError(t, err)
		u, err := st.Users().GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)

		// Plant an already-expired token directly.
		opaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
		require.NoError(t, err)
		require.NoError(t, st.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
			ID:        idx.New().String(),
			UserID:    u.ID,
			TokenHash: cryptox.FingerprintToken(opaque),
			ExpiresAt: time.Now().Add(-time.Minute),
		}))

		_, err = svc.Refresh(ctx, opaque)
		require.ErrorIs(t, err, ErrInvalidRefresh)

		// Still usable? The valid token from signup must be unaffected.
		_, err = svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("rotation replaces the stored token", func(t *testing.T) {
		st := newTestStore(t)
		svc := newSessionService(t, st)
		svc.RotateRefresh = true

		pair, err := svc.Signup(ctx, "Alice Example", "alice@example.com", "secret1", "user")
		require.NoError(t, err)

		refreshed, err := svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.NotEqual(t, pair.RefreshToken, refreshed.RefreshToken)

		// The old opaque value is dead, the new one works.
		_, err = svc.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)

		_, err = svc.Refresh(ctx, refreshed.RefreshToken)
		require.NoError(t, err)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	st := newTestStore(t)
	svc := newSessionService(t, st)

	pair, err := svc.Signup(ctx, "Alice Example", "alice@example.com", "secret1", "user")
	require.NoError(t, err)

	t.Run("revokes the refresh token", func(t *testing.T) {
		svc.Logout(ctx, pair.RefreshToken)

		rt, err := st.RefreshTokens().GetRefreshTokenByHash(ctx, cryptox.FingerprintToken(pair.RefreshToken))
		require.NoError(t, err)
		require.True(t, rt.Revoked)
	})

	t.Run("is idempotent", func(t *testing.T) {
		// Repeats and unknown values are all fine.
		svc.Logout(ctx, pair.RefreshToken)
		svc.Logout(ctx, "never-issued")
	})
}
