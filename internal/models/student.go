package models

import "time"

// Student represents a gym member profile.
type Student struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Age       int       `db:"age" json:"age"`
	Height    float64   `db:"height" json:"height"`
	Weight    float64   `db:"weight" json:"weight"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates search parameters for listing students.
type StudentFilter struct {
	Query string
	Page  int
	Limit int
}
