package sqlite

import (
	"context"
	"time"

	"github.com/tallybook/tallybook/internal/domain"
)

type expensesRepo struct {
	db dbtx
}

// Expense dates are stored as TEXT in ISO form so sqlite's strftime can group
// on them directly.
const expenseDateLayout = "2006-01-02"

func (r *expensesRepo) CreateExpense(ctx context.Context, e domain.Expense) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, category_id, title, description, amount, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.CategoryID, e.Title, e.Description, e.Amount,
		e.Date.Format(expenseDateLayout), time.Now().UTC())
	return mapConstraint(err)
}

func (r *expensesRepo) ListExpensesByUser(ctx context.Context, userID string) ([]domain.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category_id, title, description, amount, date, created_at
		 FROM expenses WHERE user_id = ? ORDER BY date DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Expense
	for rows.Next() {
		var e domain.Expense
		var date string
		if err := rows.Scan(&e.ID, &e.UserID, &e.CategoryID, &e.Title, &e.Description,
			&e.Amount, &date, &e.CreatedAt); err != nil {
			return nil, err
		}
		if e.Date, err = time.Parse(expenseDateLayout, date); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *expensesRepo) TotalByUser(ctx context.Context, userID string) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE user_id = ?`, userID).
		Scan(&total)
	return total, err
}

func (r *expensesRepo) TotalsByCategory(ctx context.Context, userID string) ([]domain.CategoryStat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.name, SUM(e.amount)
		 FROM expenses e JOIN categories c ON c.id = e.category_id
		 WHERE e.user_id = ?
		 GROUP BY c.name ORDER BY c.name ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CategoryStat
	for rows.Next() {
		var s domain.CategoryStat
		if err := rows.Scan(&s.Category, &s.Total); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *expensesRepo) MonthlyTotals(ctx context.Context, userID string) ([]domain.MonthlyStat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT strftime('%Y-%m', date) AS month, SUM(amount)
		 FROM expenses WHERE user_id = ?
		 GROUP BY month ORDER BY month ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MonthlyStat
	for rows.Next() {
		var s domain.MonthlyStat
		if err := rows.Scan(&s.Month, &s.Total); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *expensesRepo) AnnualTotals(ctx context.Context, userID string) ([]domain.AnnualStat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT strftime('%Y', date) AS year, SUM(amount)
		 FROM expenses WHERE user_id = ?
		 GROUP BY year ORDER BY year ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AnnualStat
	for rows.Next() {
		var s domain.AnnualStat
		if err := rows.Scan(&s.Year, &s.Total); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
