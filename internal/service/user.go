package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/tallybook/tallybook/internal/domain"
	"github.com/tallybook/tallybook/internal/store"
	"github.com/tallybook/tallybook/pkg/cryptox"
	"github.com/tallybook/tallybook/pkg/idx"
	"github.com/tallybook/tallybook/pkg/slogx"
)

// UserService covers the admin-side account operations: provisioning users
// with a generated password and listing accounts. Self-service registration
// lives in SessionService.Signup.
type UserService struct {
	Store store.Store
}

// CreateUser provisions an account on someone's behalf. A random password is
// generated, hashed for storage, and returned in clear exactly once so the
// admin can hand it over; it is never persisted or logged.
func (s *UserService) CreateUser(
	ctx context.Context,
	fullName, email, role string,
) (domain.User, string, error) {
	l := slogx.FromContext(ctx)

	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)

	if fullName == "" || email == "" {
		return domain.User{}, "", ErrInvalidInput
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, "", ErrInvalidInput
	}
	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		return domain.User{}, "", ErrInvalidInput
	}

	password, err := cryptox.GeneratePassword()
	if err != nil {
		return domain.User{}, "", err
	}
	passHash, err := cryptox.HashPassword(password)
	if err != nil {
		l.Error("failed to hash generated password", slog.Any("error", err))
		return domain.User{}, "", err
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
			return domain.User{}, "", ErrDuplicateEmail
		}
		return domain.User{}, "", err
	}

	return u, password, nil
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

// ListUsers returns every account, oldest first.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}
