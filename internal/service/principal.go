package service

import (
	"context"
	"errors"

	"github.com/tallybook/tallybook/internal/domain"
	"github.com/tallybook/tallybook/internal/store"
)

var (
	ErrPrincipalNotFound = errors.New("principal_not_found")
	ErrForbidden         = errors.New("forbidden")
)

// PrincipalService turns a verified access-token subject into the live user
// record it belongs to, and answers role questions about it.
//
// Resolution goes back to the store on every call rather than trusting
// anything embedded in the token: a deleted account stops working the moment
// the row is gone, not when its access token expires.
type PrincipalService struct {
	Store store.Store
}

// Resolve maps a token subject (the user's email) to the current user row.
// Returns ErrPrincipalNotFound when the subject no longer matches a user.
func (s *PrincipalService) Resolve(ctx context.Context, subject string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrPrincipalNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

// RequireAdmin gates admin-only operations. A non-admin principal gets
// ErrForbidden, which is distinct from an authentication failure.
func (s *PrincipalService) RequireAdmin(p domain.User) error {
	if !p.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// TargetUserID decides whose data a read operates on. Non-admins are always
// self-scoped regardless of what they asked for; admins may name any target.
// An empty requested id means "myself" for everyone.
func (s *PrincipalService) TargetUserID(p domain.User, requested string) (string, error) {
	if requested == "" || requested == p.ID {
		return p.ID, nil
	}
	if !p.IsAdmin() {
		return "", ErrForbidden
	}
	return requested, nil
}
