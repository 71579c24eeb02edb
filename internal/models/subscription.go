package models

import "time"

// Subscription binds a student to a plan for a concrete date range with a
// pre-computed total price.
type Subscription struct {
	ID        int64     `db:"id" json:"id"`
	StudentID int64     `db:"student_id" json:"student_id"`
	PlanID    int64     `db:"plan_id" json:"plan_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	Price     float64   `db:"price" json:"price"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SubscriptionDetail is the listing projection with the related student,
// plan and staff-user names denormalized, plus the derived active flag.
type SubscriptionDetail struct {
	ID           int64     `db:"id" json:"id"`
	StartDate    time.Time `db:"start_date" json:"start_date"`
	EndDate      time.Time `db:"end_date" json:"end_date"`
	Price        float64   `db:"price" json:"price"`
	Active       bool      `db:"active" json:"active"`
	StudentID    int64     `db:"student_id" json:"-"`
	StudentName  string    `db:"student_name" json:"-"`
	StudentEmail string    `db:"student_email" json:"-"`
	PlanID       int64     `db:"plan_id" json:"-"`
	PlanTitle    string    `db:"plan_title" json:"-"`
	UserID       int64     `db:"user_id" json:"-"`
	UserName     string    `db:"user_name" json:"-"`
}

// SubscriptionStudent is the nested student projection on the wire.
type SubscriptionStudent struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SubscriptionPlan is the nested plan projection on the wire.
type SubscriptionPlan struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// SubscriptionUser is the nested staff-user projection on the wire.
type SubscriptionUser struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SubscriptionView is the wire shape for list/show responses.
type SubscriptionView struct {
	ID        int64               `json:"id"`
	StartDate time.Time           `json:"start_date"`
	EndDate   time.Time           `json:"end_date"`
	Price     float64             `json:"price"`
	Active    bool                `json:"active"`
	Student   SubscriptionStudent `json:"student"`
	Plan      SubscriptionPlan    `json:"plan"`
	User      SubscriptionUser    `json:"user"`
}

// View converts the flat projection into the nested wire shape.
func (d SubscriptionDetail) View() SubscriptionView {
	return SubscriptionView{
		ID:        d.ID,
		StartDate: d.StartDate,
		EndDate:   d.EndDate,
		Price:     d.Price,
		Active:    d.Active,
		Student:   SubscriptionStudent{ID: d.StudentID, Name: d.StudentName, Email: d.StudentEmail},
		Plan:      SubscriptionPlan{ID: d.PlanID, Title: d.PlanTitle},
		User:      SubscriptionUser{ID: d.UserID, Name: d.UserName},
	}
}
