package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gympoint/gympoint-api/internal/models"
)

// subscriptionProjection selects the listing fields with the related names
// joined in and the active flag derived from the period bounds.
const subscriptionProjection = `SELECT sub.id, sub.start_date, sub.end_date, sub.price,
        (sub.start_date <= NOW() AND sub.end_date >= NOW()) AS active,
        s.id AS student_id, s.name AS student_name, s.email AS student_email,
        p.id AS plan_id, p.title AS plan_title,
        u.id AS user_id, u.name AS user_name
        FROM subscriptions sub
        JOIN students s ON s.id = sub.student_id
        JOIN plans p ON p.id = sub.plan_id
        JOIN users u ON u.id = sub.user_id`

// SubscriptionRepository manages persistence for subscriptions.
type SubscriptionRepository struct {
	db *sqlx.DB
}

// NewSubscriptionRepository constructs a SubscriptionRepository.
func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// List returns subscription projections ordered by start date.
func (r *SubscriptionRepository) List(ctx context.Context, page, limit int) ([]models.SubscriptionDetail, error) {
	query := fmt.Sprintf("%s ORDER BY sub.start_date LIMIT %d OFFSET %d",
		subscriptionProjection, pageLimit(limit), pageOffset(page, limit))

	details := []models.SubscriptionDetail{}
	if err := r.db.SelectContext(ctx, &details, query); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return details, nil
}

// ListAll returns every subscription projection for report exports.
func (r *SubscriptionRepository) ListAll(ctx context.Context) ([]models.SubscriptionDetail, error) {
	query := subscriptionProjection + " ORDER BY sub.start_date"

	details := []models.SubscriptionDetail{}
	if err := r.db.SelectContext(ctx, &details, query); err != nil {
		return nil, fmt.Errorf("list all subscriptions: %w", err)
	}
	return details, nil
}

// FindByID fetches a bare subscription row.
func (r *SubscriptionRepository) FindByID(ctx context.Context, id int64) (*models.Subscription, error) {
	const query = `SELECT id, student_id, plan_id, user_id, start_date, end_date, price, created_at, updated_at
        FROM subscriptions WHERE id = $1`
	var sub models.Subscription
	if err := r.db.GetContext(ctx, &sub, query, id); err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindDetailByID fetches the subscription projection with associations.
func (r *SubscriptionRepository) FindDetailByID(ctx context.Context, id int64) (*models.SubscriptionDetail, error) {
	query := subscriptionProjection + " WHERE sub.id = $1"
	var detail models.SubscriptionDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Create inserts a new subscription.
func (r *SubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	const query = `INSERT INTO subscriptions (student_id, plan_id, user_id, start_date, end_date, price, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		sub.StudentID, sub.PlanID, sub.UserID, sub.StartDate, sub.EndDate, sub.Price,
		sub.CreatedAt, sub.UpdatedAt,
	).Scan(&sub.ID); err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}

// Update modifies an existing subscription.
func (r *SubscriptionRepository) Update(ctx context.Context, sub *models.Subscription) error {
	sub.UpdatedAt = time.Now().UTC()
	const query = `UPDATE subscriptions SET student_id = :student_id, plan_id = :plan_id, start_date = :start_date, end_date = :end_date, price = :price, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	return nil
}

// Delete removes a subscription.
func (r *SubscriptionRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM subscriptions WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}
