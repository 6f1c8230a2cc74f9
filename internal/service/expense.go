package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tallybook/tallybook/internal/domain"
	"github.com/tallybook/tallybook/internal/store"
	"github.com/tallybook/tallybook/pkg/idx"
)

// DefaultPageSize is used when a paginated accessor is called with a
// non-positive size.
const DefaultPageSize = 20

// ExpenseService records spend entries and computes the aggregate views over
// them. All methods take an explicit owner user id; whose id that may be is
// decided upstream by PrincipalService.
type ExpenseService struct {
	Store store.Store
}

// CreateExpense records a new expense for userID. The category must already
// exist; ErrCategoryNotFound otherwise.
func (s *ExpenseService) CreateExpense(
	ctx context.Context,
	userID, categoryID, title, description string,
	amount float64,
	date time.Time,
) (domain.Expense, error) {
	title = strings.TrimSpace(title)
	if title == "" || amount <= 0 || date.IsZero() {
		return domain.Expense{}, ErrInvalidInput
	}

	if _, err := s.Store.Categories().GetCategoryByID(ctx, categoryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Expense{}, ErrCategoryNotFound
		}
		return domain.Expense{}, err
	}

	e := domain.Expense{
		ID:          idx.New().String(),
		UserID:      userID,
		CategoryID:  categoryID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Amount:      amount,
		Date:        date,
	}
	if err := s.Store.Expenses().CreateExpense(ctx, e); err != nil {
		return domain.Expense{}, err
	}
	return e, nil
}

// ListExpenses returns a user's expenses, newest date first.
func (s *ExpenseService) ListExpenses(ctx context.Context, userID string) ([]domain.Expense, error) {
	return s.Store.Expenses().ListExpensesByUser(ctx, userID)
}

// Total returns the summed spend across all of a user's expenses. A user
// with no expenses totals zero.
func (s *ExpenseService) Total(ctx context.Context, userID string) (float64, error) {
	return s.Store.Expenses().TotalByUser(ctx, userID)
}

// TotalsByCategory returns one page of per-category spend sums.
func (s *ExpenseService) TotalsByCategory(ctx context.Context, userID string, page, size int) ([]domain.CategoryStat, error) {
	rows, err := s.Store.Expenses().TotalsByCategory(ctx, userID)
	if err != nil {
		return nil, err
	}
	return pageOf(rows, page, size), nil
}

// MonthlyTotals returns one page of per-month ("YYYY-MM") spend sums,
// ordered by month ascending.
func (s *ExpenseService) MonthlyTotals(ctx context.Context, userID string, page, size int) ([]domain.MonthlyStat, error) {
	rows, err := s.Store.Expenses().MonthlyTotals(ctx, userID)
	if err != nil {
		return nil, err
	}
	return pageOf(rows, page, size), nil
}

// AnnualTotals returns one page of per-year spend sums, ordered by year
// ascending.
func (s *ExpenseService) AnnualTotals(ctx context.Context, userID string, page, size int) ([]domain.AnnualStat, error) {
	rows, err := s.Store.Expenses().AnnualTotals(ctx, userID)
	if err != nil {
		return nil, err
	}
	return pageOf(rows, page, size), nil
}

// AllAnnualTotals returns the full, unpaged annual view, used by the CSV
// export which always covers every year on record.
func (s *ExpenseService) AllAnnualTotals(ctx context.Context, userID string) ([]domain.AnnualStat, error) {
	return s.Store.Expenses().AnnualTotals(ctx, userID)
}

// pageOf slices one zero-indexed page out of rows. The aggregate row counts
// are small (bounded by categories/months/years, not expenses), so slicing
// after the query is fine.
func pageOf[T any](rows []T, page, size int) []T {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 0 {
		page = 0
	}

	start := page * size
	if start >= len(rows) {
		return []T{}
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
