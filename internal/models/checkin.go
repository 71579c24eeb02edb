package models

import "time"

// CheckIn is a timestamped gym-visit record.
type CheckIn struct {
	ID        int64     `db:"id" json:"id"`
	StudentID int64     `db:"student_id" json:"student_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
