package domain

import "time"

type Category struct {
	ID        string
	Name      string // unique
	CreatedAt time.Time
}
