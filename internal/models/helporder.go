package models

import "time"

// HelpOrder is a member question awaiting a staff answer. Answer and
// AnswerAt are set together, exactly once.
type HelpOrder struct {
	ID        int64      `db:"id" json:"id"`
	StudentID int64      `db:"student_id" json:"student_id"`
	Question  string     `db:"question" json:"question"`
	Answer    *string    `db:"answer" json:"answer"`
	AnswerAt  *time.Time `db:"answer_at" json:"answer_at"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// HelpOrderDetail joins the asking student's contact onto the order for the
// unanswered listing and the answer notification.
type HelpOrderDetail struct {
	HelpOrder
	StudentName  string `db:"student_name" json:"-"`
	StudentEmail string `db:"student_email" json:"-"`
}

// HelpOrderView is the wire shape including the nested student projection.
type HelpOrderView struct {
	ID        int64      `json:"id"`
	Question  string     `json:"question"`
	Answer    *string    `json:"answer"`
	AnswerAt  *time.Time `json:"answer_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	Student   struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"student"`
}

// View converts the joined row into the nested wire shape.
func (d HelpOrderDetail) View() HelpOrderView {
	var v HelpOrderView
	v.ID = d.ID
	v.Question = d.Question
	v.Answer = d.Answer
	v.AnswerAt = d.AnswerAt
	v.CreatedAt = d.CreatedAt
	v.Student.ID = d.StudentID
	v.Student.Name = d.StudentName
	v.Student.Email = d.StudentEmail
	return v
}
