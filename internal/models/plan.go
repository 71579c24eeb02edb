package models

import "time"

// Plan is a purchasable membership template: a duration in months and the
// monthly price.
type Plan struct {
	ID        int64     `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Duration  int       `db:"duration" json:"duration"`
	Price     float64   `db:"price" json:"price"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// PlanFilter encapsulates search parameters for listing plans.
type PlanFilter struct {
	Query string
	Page  int
	Limit int
}
