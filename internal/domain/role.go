package domain

import (
	"errors"
	"strings"
)

// Role is the closed set of access levels a user can hold. Anything that is
// not exactly one of these values is rejected at the boundary, never coerced.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ErrUnknownRole reports a role string outside the closed set.
var ErrUnknownRole = errors.New("domain: unknown role")

// ParseRole maps free-form input to a Role. Input is upper-cased before
// matching so "user" and "USER" are equivalent.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", ErrUnknownRole
	}
}

// String returns the canonical role name.
func (r Role) String() string { return string(r) }
