package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/gympoint/gympoint-api/internal/models"
)

// ErrReferenced marks a delete blocked by a foreign-key constraint. The
// service layer translates it into the domain conflict.
var ErrReferenced = errors.New("repository: row referenced by dependent records")

const pqForeignKeyViolation = "23503"

// PlanRepository manages persistence for membership plans.
type PlanRepository struct {
	db *sqlx.DB
}

// NewPlanRepository constructs a PlanRepository.
func NewPlanRepository(db *sqlx.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// List returns plans matching the optional title filter, ordered by title.
func (r *PlanRepository) List(ctx context.Context, filter models.PlanFilter) ([]models.Plan, error) {
	query := "SELECT id, title, duration, price, created_at, updated_at FROM plans"
	args := []interface{}{}

	if filter.Query != "" {
		query += " WHERE LOWER(title) LIKE $1"
		args = append(args, "%"+strings.ToLower(filter.Query)+"%")
	}

	query += fmt.Sprintf(" ORDER BY title LIMIT %d OFFSET %d", pageLimit(filter.Limit), pageOffset(filter.Page, filter.Limit))

	plans := []models.Plan{}
	if err := r.db.SelectContext(ctx, &plans, query, args...); err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// FindByID fetches a plan by ID.
func (r *PlanRepository) FindByID(ctx context.Context, id int64) (*models.Plan, error) {
	const query = `SELECT id, title, duration, price, created_at, updated_at FROM plans WHERE id = $1`
	var plan models.Plan
	if err := r.db.GetContext(ctx, &plan, query, id); err != nil {
		return nil, err
	}
	return &plan, nil
}

// ExistsByTitle checks whether a plan with the title exists, optionally
// excluding an ID.
func (r *PlanRepository) ExistsByTitle(ctx context.Context, title string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM plans WHERE title = $1"
	args := []interface{}{title}
	if excludeID > 0 {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check plan title: %w", err)
	}
	return true, nil
}

// Create inserts a new plan.
func (r *PlanRepository) Create(ctx context.Context, plan *models.Plan) error {
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	const query = `INSERT INTO plans (title, duration, price, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		plan.Title, plan.Duration, plan.Price, plan.CreatedAt, plan.UpdatedAt,
	).Scan(&plan.ID); err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	return nil
}

// Update modifies an existing plan.
func (r *PlanRepository) Update(ctx context.Context, plan *models.Plan) error {
	plan.UpdatedAt = time.Now().UTC()
	const query = `UPDATE plans SET title = :title, duration = :duration, price = :price, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, plan); err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	return nil
}

// Delete removes a plan. A foreign-key violation from subscriptions still
// referencing the plan surfaces as ErrReferenced, never as a raw pq error.
func (r *PlanRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM plans WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqForeignKeyViolation {
			return ErrReferenced
		}
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}
