package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gympoint/gympoint-api/internal/models"
)

// CheckInRepository manages persistence for gym-visit records.
type CheckInRepository struct {
	db *sqlx.DB
}

// NewCheckInRepository constructs a CheckInRepository.
func NewCheckInRepository(db *sqlx.DB) *CheckInRepository {
	return &CheckInRepository{db: db}
}

// CountInWindow counts a student's check-ins with created_at inside
// [from, to] inclusive.
func (r *CheckInRepository) CountInWindow(ctx context.Context, studentID int64, from, to time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM checkins WHERE student_id = $1 AND created_at BETWEEN $2 AND $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID, from, to); err != nil {
		return 0, fmt.Errorf("count checkins: %w", err)
	}
	return count, nil
}

// Create inserts a new check-in stamped with the current instant.
func (r *CheckInRepository) Create(ctx context.Context, checkIn *models.CheckIn) error {
	if checkIn.CreatedAt.IsZero() {
		checkIn.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO checkins (student_id, created_at) VALUES ($1, $2) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, checkIn.StudentID, checkIn.CreatedAt).Scan(&checkIn.ID); err != nil {
		return fmt.Errorf("create checkin: %w", err)
	}
	return nil
}

// ListByStudent returns a student's check-ins newest-first.
func (r *CheckInRepository) ListByStudent(ctx context.Context, studentID int64, page, limit int) ([]models.CheckIn, error) {
	query := fmt.Sprintf(`SELECT id, student_id, created_at FROM checkins WHERE student_id = $1 ORDER BY id DESC LIMIT %d OFFSET %d`,
		pageLimit(limit), pageOffset(page, limit))

	checkIns := []models.CheckIn{}
	if err := r.db.SelectContext(ctx, &checkIns, query, studentID); err != nil {
		return nil, fmt.Errorf("list checkins: %w", err)
	}
	return checkIns, nil
}
