package service

import (
	"context"
	"testing"
	"time"

	"github.com/tallybook/tallybook/internal/domain"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// seedExpenseFixtures creates a user, two categories, and a spread of
// expenses across months and years for stats assertions.
func seedExpenseFixtures(t *testing.T) (*ExpenseService, *CategoryService, domain.User) {
	t.Helper()
	ctx := context.Background()

	st := newTestStore(t)
	sessions := newSessionService(t, st)
	expenses := &ExpenseService{Store: st}
	categories := &CategoryService{Store: st}

	_, err := sessions.Signup(ctx, "Alice Example", "alice@example.com", "secret1", "user")
	require.NoError(t, err)
	u, err := st.Users().GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)

	groceries, err := categories.CreateCategory(ctx, "Groceries")
	require.NoError(t, err)
	travel, err := categories.CreateCategory(ctx, "Travel")
	require.NoError(t, err)

	fixtures := []struct {
		category string
		amount   float64
		day      time.Time
	}{
		{groceries.ID, 42.50, date(2025, time.January, 10)},
		{groceries.ID, 17.25, date(2025, time.January, 28)},
		{travel.ID, 120.00, date(2025, time.February, 3)},
		{groceries.ID, 60.00, date(2024, time.December, 24)},
	}
	for _, f := range fixtures {
		_, err := expenses.CreateExpense(ctx, u.ID, f.category, "entry", "", f.amount, f.day)
		require.NoError(t, err)
	}

	return expenses, categories, u
}

func TestCreateExpense(t *testing.T) {
	ctx := context.Background()

	st := newTestStore(t)
	sessions := newSessionService(t, st)
	expenses := &ExpenseService{Store: st}
	categories := &CategoryService{Store: st}

	_, err := sessions.Signup(ctx, "Alice Example", "alice@example.com", "secret1", "user")
	require.NoError(t, err)
	u, err := st.Users().GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)

	cat, err := categories.CreateCategory(ctx, "Groceries")
	require.NoError(t, err)

	t.Run("records the expense", func(t *testing.T) {
		e, err := expenses.CreateExpense(ctx, u.ID, cat.ID, "weekly shop", "veg and bread", 42.50, date(2025, time.March, 1))
		require.NoError(t, err)
		require.NotEmpty(t, e.ID)

		list, err := expenses.ListExpenses(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, "weekly shop", list[0].Title)
		require.Equal(t, 42.50, list[0].Amount)
	})

	t.Run("rejects a missing category", func(t *testing.T) {
		_, err := expenses.CreateExpense(ctx, u.ID, "no-such-category", "x", "", 5, date(2025, time.March, 1))
		require.ErrorIs(t, err, ErrCategoryNotFound)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := expenses.CreateExpense(ctx, u.ID, cat.ID, "", "", 5, date(2025, time.March, 1))
		require.ErrorIs(t, err, ErrInvalidInput)

		_, err = expenses.CreateExpense(ctx, u.ID, cat.ID, "x", "", 0, date(2025, time.March, 1))
		require.ErrorIs(t, err, ErrInvalidInput)

		_, err = expenses.CreateExpense(ctx, u.ID, cat.ID, "x", "", -3, date(2025, time.March, 1))
		require.ErrorIs(t, err, ErrInvalidInput)

		_, err = expenses.CreateExpense(ctx, u.ID, cat.ID, "x", "", 5, time.Time{})
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestExpenseStats(t *testing.T) {
	ctx := context.Background()

	expenses, _, u := seedExpenseFixtures(t)

	t.Run("total sums everything", func(t *testing.T) {
		total, err := expenses.Total(ctx, u.ID)
		require.NoError(t, err)
		require.InDelta(t, 239.75, total, 0.001)
	})

	t.Run("total is zero for a user with no expenses", func(t *testing.T) {
		total, err := expenses.Total(ctx, "no-such-user")
		require.NoError(t, err)
		require.Zero(t, total)
	})

	t.Run("groups by category", func(t *testing.T) {
		rows, err := expenses.TotalsByCategory(ctx, u.ID, 0, 0)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		byName := map[string]float64{}
		for _, r := range rows {
			byName[r.Category] = r.Total
		}
		require.InDelta(t, 119.75, byName["Groceries"], 0.001)
		require.InDelta(t, 120.00, byName["Travel"], 0.001)
	})

	t.Run("groups by month ascending", func(t *testing.T) {
		rows, err := expenses.MonthlyTotals(ctx, u.ID, 0, 0)
		require.NoError(t, err)
		require.Len(t, rows, 3)

		require.Equal(t, "2024-12", rows[0].Month)
		require.InDelta(t, 60.00, rows[0].Total, 0.001)
		require.Equal(t, "2025-01", rows[1].Month)
		require.InDelta(t, 59.75, rows[1].Total, 0.001)
		require.Equal(t, "2025-02", rows[2].Month)
		require.InDelta(t, 120.00, rows[2].Total, 0.001)
	})

	t.Run("groups by year ascending", func(t *testing.T) {
		rows, err := expenses.AnnualTotals(ctx, u.ID, 0, 0)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		require.Equal(t, "2024", rows[0].Year)
		require.InDelta(t, 60.00, rows[0].Total, 0.001)
		require.Equal(t, "2025", rows[1].Year)
		require.InDelta(t, 179.75, rows[1].Total, 0.001)
	})

	t.Run("pages the month rows", func(t *testing.T) {
		first, err := expenses.MonthlyTotals(ctx, u.ID, 0, 2)
		require.NoError(t, err)
		require.Len(t, first, 2)
		require.Equal(t, "2024-12", first[0].Month)

		second, err := expenses.MonthlyTotals(ctx, u.ID, 1, 2)
		require.NoError(t, err)
		require.Len(t, second, 1)
		require.Equal(t, "2025-02", second[0].Month)

		third, err := expenses.MonthlyTotals(ctx, u.ID, 2, 2)
		require.NoError(t, err)
		require.Empty(t, third)
	})
}

func TestPageOf(t *testing.T) {
	t.Parallel()

	rows := []int{1, 2, 3, 4, 5}

	require.Equal(t, []int{1, 2}, pageOf(rows, 0, 2))
	require.Equal(t, []int{3, 4}, pageOf(rows, 1, 2))
	require.Equal(t, []int{5}, pageOf(rows, 2, 2))
	require.Empty(t, pageOf(rows, 3, 2))

	// Non-positive size falls back to the default, negative page to the first.
	require.Equal(t, rows, pageOf(rows, 0, 0))
	require.Equal(t, []int{1, 2}, pageOf(rows, -1, 2))
}

func TestCategoryService(t *testing.T) {
	ctx := context.Background()

	st := newTestStore(t)
	categories := &CategoryService{Store: st}

	t.Run("create and fetch", func(t *testing.T) {
		c, err := categories.CreateCategory(ctx, "  Groceries  ")
		require.NoError(t, err)
		require.Equal(t, "Groceries", c.Name)
		require.False(t, c.CreatedAt.IsZero())

		got, err := categories.GetCategoryByID(ctx, c.ID)
		require.NoError(t, err)
		require.Equal(t, c.ID, got.ID)
	})

	t.Run("duplicate names rejected", func(t *testing.T) {
		_, err := categories.CreateCategory(ctx, "Groceries")
		require.ErrorIs(t, err, ErrDuplicateCategory)
	})

	t.Run("blank name rejected", func(t *testing.T) {
		_, err := categories.CreateCategory(ctx, "   ")
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := categories.GetCategoryByID(ctx, "missing")
		require.ErrorIs(t, err, ErrCategoryNotFound)
	})

	t.Run("list ordered by name", func(t *testing.T) {
		_, err := categories.CreateCategory(ctx, "Travel")
		require.NoError(t, err)
		_, err = categories.CreateCategory(ctx, "Bills")
		require.NoError(t, err)

		list, err := categories.ListCategories(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		require.Equal(t, "Bills", list[0].Name)
		require.Equal(t, "Groceries", list[1].Name)
		require.Equal(t, "Travel", list[2].Name)
	})
}

func TestUserService(t *testing.T) {
	ctx := context.Background()

	st := newTestStore(t)
	users := &UserService{Store: st}

	t.Run("admin-created account can log in with the generated password", func(t *testing.T) {
		u, password, err := users.CreateUser(ctx, "Bob Example", "bob@example.com", "user")
		require.NoError(t, err)
		require.NotEmpty(t, password)
		require.NotEqual(t, password, u.PasswordHash)

		sessions := newSessionService(t, st)
		pair, err := sessions.Login(ctx, "bob@example.com", password)
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, _, err := users.CreateUser(ctx, "Other Bob", "bob@example.com", "user")
		require.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("invalid input rejected", func(t *testing.T) {
		_, _, err := users.CreateUser(ctx, "", "x@example.com", "user")
		require.ErrorIs(t, err, ErrInvalidInput)

		_, _, err = users.CreateUser(ctx, "X", "not-an-email", "user")
		require.ErrorIs(t, err, ErrInvalidInput)

		_, _, err = users.CreateUser(ctx, "X", "x@example.com", "root")
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("list returns oldest first", func(t *testing.T) {
		_, _, err := users.CreateUser(ctx, "Carol Example", "carol@example.com", "admin")
		require.NoError(t, err)

		list, err := users.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, "bob@example.com", list[0].Email)
		require.Equal(t, "carol@example.com", list[1].Email)
	})
}
