package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gympoint/gympoint-api/internal/models"
)

const helpOrderProjection = `SELECT h.id, h.student_id, h.question, h.answer, h.answer_at, h.created_at, h.updated_at,
        s.name AS student_name, s.email AS student_email
        FROM help_orders h
        JOIN students s ON s.id = h.student_id`

// HelpOrderRepository manages persistence for member questions.
type HelpOrderRepository struct {
	db *sqlx.DB
}

// NewHelpOrderRepository constructs a HelpOrderRepository.
func NewHelpOrderRepository(db *sqlx.DB) *HelpOrderRepository {
	return &HelpOrderRepository{db: db}
}

// Create inserts a new unanswered help order.
func (r *HelpOrderRepository) Create(ctx context.Context, order *models.HelpOrder) error {
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	const query = `INSERT INTO help_orders (student_id, question, created_at, updated_at)
        VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		order.StudentID, order.Question, order.CreatedAt, order.UpdatedAt,
	).Scan(&order.ID); err != nil {
		return fmt.Errorf("create help order: %w", err)
	}
	return nil
}

// FindByID fetches a bare help order.
func (r *HelpOrderRepository) FindByID(ctx context.Context, id int64) (*models.HelpOrder, error) {
	const query = `SELECT id, student_id, question, answer, answer_at, created_at, updated_at FROM help_orders WHERE id = $1`
	var order models.HelpOrder
	if err := r.db.GetContext(ctx, &order, query, id); err != nil {
		return nil, err
	}
	return &order, nil
}

// FindDetailByID fetches a help order joined with the student's contact.
func (r *HelpOrderRepository) FindDetailByID(ctx context.Context, id int64) (*models.HelpOrderDetail, error) {
	query := helpOrderProjection + " WHERE h.id = $1"
	var detail models.HelpOrderDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListUnanswered returns orders without an answer in insertion order.
func (r *HelpOrderRepository) ListUnanswered(ctx context.Context, page, limit int) ([]models.HelpOrderDetail, error) {
	query := fmt.Sprintf("%s WHERE h.answer IS NULL ORDER BY h.id LIMIT %d OFFSET %d",
		helpOrderProjection, pageLimit(limit), pageOffset(page, limit))

	orders := []models.HelpOrderDetail{}
	if err := r.db.SelectContext(ctx, &orders, query); err != nil {
		return nil, fmt.Errorf("list unanswered help orders: %w", err)
	}
	return orders, nil
}

// ListByStudent returns a student's help orders newest-first.
func (r *HelpOrderRepository) ListByStudent(ctx context.Context, studentID int64, page, limit int) ([]models.HelpOrder, error) {
	query := fmt.Sprintf(`SELECT id, student_id, question, answer, answer_at, created_at, updated_at
        FROM help_orders WHERE student_id = $1 ORDER BY id DESC LIMIT %d OFFSET %d`,
		pageLimit(limit), pageOffset(page, limit))

	orders := []models.HelpOrder{}
	if err := r.db.SelectContext(ctx, &orders, query, studentID); err != nil {
		return nil, fmt.Errorf("list help orders: %w", err)
	}
	return orders, nil
}

// Answer stores the answer text and timestamp on an order.
func (r *HelpOrderRepository) Answer(ctx context.Context, id int64, answer string, answerAt time.Time) error {
	const query = `UPDATE help_orders SET answer = $2, answer_at = $3, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, answer, answerAt); err != nil {
		return fmt.Errorf("answer help order: %w", err)
	}
	return nil
}
