package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/tallybook/tallybook/internal/domain"
	"github.com/tallybook/tallybook/internal/store"
	"github.com/tallybook/tallybook/pkg/cryptox"
	"github.com/tallybook/tallybook/pkg/idx"
	"github.com/tallybook/tallybook/pkg/jwtx"
	"github.com/tallybook/tallybook/pkg/slogx"
)

const (
	// MinPasswordLength is the minimum accepted password length at signup.
	MinPasswordLength = 6

	// maxRefreshCreateAttempts bounds the regenerate-on-collision loop when
	// storing a refresh token fingerprint.
	maxRefreshCreateAttempts = 3
)

var (
	ErrInvalidInput       = errors.New("invalid_input")
	ErrDuplicateEmail     = errors.New("duplicate_email")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
)

// SessionService owns the signup/login/refresh/logout flows. Access tokens
// are HS256 JWTs whose subject is the user's email; refresh tokens are opaque
// random values stored only by fingerprint.
type SessionService struct {
	Store      store.Store
	Signer     *jwtx.HS256
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// RotateRefresh replaces the stored refresh token on every successful
	// Refresh call (revoke old + create new, atomically). When off, the
	// caller keeps reusing the same opaque value until it expires.
	RotateRefresh bool
}

// Signup registers a new account and immediately issues a token pair, so the
// caller is signed in without a follow-up login.
//
// The user row and the refresh token row are created as two independent
// writes. If token issuance fails after the user row landed, the account
// still exists and the caller can recover with a normal login.
func (s *SessionService) Signup(
	ctx context.Context,
	fullName, email, password, role string,
) (*domain.TokenPair, error) {
	now := time.Now()
	l := slogx.FromContext(ctx)

	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)

	if fullName == "" || email == "" || password == "" {
		return nil, ErrInvalidInput
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidInput
	}
	if len(password) < MinPasswordLength {
		return nil, ErrInvalidInput
	}
	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		return nil, ErrInvalidInput
	}

	passHash, err := cryptox.HashPassword(password)
	if err != nil {
		l.Error("failed to hash password", slog.Any("error", err))
		return nil, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: passHash,
		Role:         parsedRole,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, ErrDuplicateEmail
		}
		l.Error("failed to create user", slog.Any("error", err))
		return nil, err
	}

	pair, err := s.issueTokens(ctx, u, now)
	if err != nil {
		l.Error("signup token issuance failed",
			slog.String("user_id", u.ID),
			slog.Any("error", err),
		)
		return nil, err
	}
	return pair, nil
}

// Login authenticates an email/password pair. Unknown email and wrong
// password collapse into the same ErrInvalidCredentials so the response does
// not leak which accounts exist.
func (s *SessionService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	now := time.Now()
	l := slogx.FromContext(ctx)

	email = strings.TrimSpace(email)

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		l.Info("password verification failed", slog.String("user_id", u.ID))
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, u, now)
}

// Refresh exchanges a stored, still-usable refresh token for a fresh access
// token. Absent, revoked, and expired tokens all collapse into
// ErrInvalidRefresh.
func (s *SessionService) Refresh(ctx context.Context, refreshOpaque string) (*domain.TokenPair, error) {
	now := time.Now()

	fp := cryptox.FingerprintToken(refreshOpaque)
	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}
	if !rt.Usable(now) {
		return nil, ErrInvalidRefresh
	}

	u, err := s.Store.Users().GetUserByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// The account behind this token is gone; the token is dead too.
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	accessToken, err := s.signAccess(u, now)
	if err != nil {
		return nil, err
	}

	if !s.RotateRefresh {
		return &domain.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshOpaque,
			TokenType:    "Bearer",
			ExpiresIn:    s.AccessTTL,
		}, nil
	}

	newOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}
	newRT := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken(newOpaque),
		ExpiresAt: now.Add(s.RefreshTTL),
		Revoked:   false,
	}

	// Revoke old and create new atomically so a crash between the two
	// writes cannot leave the session without any valid refresh token.
	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp); err != nil {
			return err
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, newRT)
	}); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newOpaque,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// Logout revokes the refresh token behind the given opaque value. It is
// idempotent: unknown and already-revoked tokens succeed silently, so a
// client can always log out without caring about prior state.
func (s *SessionService) Logout(ctx context.Context, refreshOpaque string) {
	l := slogx.FromContext(ctx)

	fp := cryptox.FingerprintToken(refreshOpaque)
	if err := s.Store.RefreshTokens().RevokeRefreshToken(ctx, fp); err != nil {
		// Surfacing a store hiccup here would only make the client retry a
		// logout; log it and move on.
		l.Error("failed to revoke refresh token", slog.Any("error", err))
	}
}

// issueTokens signs an access token and persists a fresh refresh token for
// the user, retrying a bounded number of times if the random opaque value
// collides with a stored fingerprint.
func (s *SessionService) issueTokens(ctx context.Context, u domain.User, now time.Time) (*domain.TokenPair, error) {
	accessToken, err := s.signAccess(u, now)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < maxRefreshCreateAttempts; attempt++ {
		opaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return nil, err
		}

		rt := domain.RefreshToken{
			ID:        idx.New().String(),
			UserID:    u.ID,
			TokenHash: cryptox.FingerprintToken(opaque),
			ExpiresAt: now.Add(s.RefreshTTL),
			Revoked:   false,
		}

		if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				lastErr = err
				continue
			}
			return nil, err
		}

		return &domain.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: opaque,
			TokenType:    "Bearer",
			ExpiresIn:    s.AccessTTL,
		}, nil
	}

	return nil, lastErr
}

func (s *SessionService) signAccess(u domain.User, now time.Time) (string, error) {
	claims := jwtx.NewAccessClaims(u.Email, s.Signer.Issuer(), s.AccessTTL, now)
	return s.Signer.Sign(claims)
}
