package domain

import "time"

type Expense struct {
	ID          string
	UserID      string
	CategoryID  string
	Title       string
	Description string
	Amount      float64
	Date        time.Time // calendar date of the expense
	CreatedAt   time.Time
}

// CategoryStat is a per-category spend sum for one user.
type CategoryStat struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// MonthlyStat is a per-month ("YYYY-MM") spend sum for one user.
type MonthlyStat struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// AnnualStat is a per-year spend sum for one user.
type AnnualStat struct {
	Year  string  `json:"year"`
	Total float64 `json:"total"`
}
