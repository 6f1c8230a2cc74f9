package store

import (
	"context"
	"errors"

	"github.com/tallybook/tallybook/internal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and leaves transaction scoping to the caller so multi-step
// operations stay explicit.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens
	Categories() Categories
	Expenses() Expenses

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. Use this for
	// multi-step operations that must be atomic (e.g. refresh rotation).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login and principal resolution.
	// The match is case-sensitive exact, as stored.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// ExistsByEmail reports whether any user holds the given email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email UNIQUE constraint fires, so
	// concurrent signups with the same email cannot both win.
	CreateUser(ctx context.Context, u domain.User) error

	// ListUsers returns all users ordered by creation date (oldest first).
	ListUsers(ctx context.Context) ([]domain.User, error)
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record. Returns
	// ErrAlreadyExists on a token_hash collision.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the token by its fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked=1, sets updated_at. Revoking a hash
	// with no matching row is a no-op.
	RevokeRefreshToken(ctx context.Context, hash string) error

	// DeleteExpiredRefreshTokens is housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}

type Categories interface {
	// CreateCategory inserts a new category. Returns ErrAlreadyExists when
	// the name UNIQUE constraint fires.
	CreateCategory(ctx context.Context, c domain.Category) error

	// GetCategoryByID fetches a category by id.
	GetCategoryByID(ctx context.Context, id string) (domain.Category, error)

	// ExistsByName reports whether a category with the given name exists.
	ExistsByName(ctx context.Context, name string) (bool, error)

	// ListCategories returns all categories ordered by name.
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

type Expenses interface {
	// CreateExpense inserts a new expense row.
	CreateExpense(ctx context.Context, e domain.Expense) error

	// ListExpensesByUser returns a user's expenses, newest date first.
	ListExpensesByUser(ctx context.Context, userID string) ([]domain.Expense, error)

	// TotalByUser returns the summed amount across a user's expenses.
	// A user with no expenses totals zero.
	TotalByUser(ctx context.Context, userID string) (float64, error)

	// TotalsByCategory returns per-category spend sums for a user.
	TotalsByCategory(ctx context.Context, userID string) ([]domain.CategoryStat, error)

	// MonthlyTotals returns per-month ("YYYY-MM") spend sums for a user,
	// ordered by month ascending.
	MonthlyTotals(ctx context.Context, userID string) ([]domain.MonthlyStat, error)

	// AnnualTotals returns per-year spend sums for a user, ordered by year
	// ascending.
	AnnualTotals(ctx context.Context, userID string) ([]domain.AnnualStat, error)
}
