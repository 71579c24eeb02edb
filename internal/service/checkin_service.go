package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/gympoint/gympoint-api/internal/models"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
)

type checkInRepository interface {
	CountInWindow(ctx context.Context, studentID int64, from, to time.Time) (int, error)
	Create(ctx context.Context, checkIn *models.CheckIn) error
	ListByStudent(ctx context.Context, studentID int64, page, limit int) ([]models.CheckIn, error)
}

const (
	checkInWindow = 7 * 24 * time.Hour
	checkInQuota  = 5
)

// CheckInService enforces the rolling weekly visit quota.
type CheckInService struct {
	repo     checkInRepository
	students studentRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewCheckInService constructs the check-in service.
func NewCheckInService(repo checkInRepository, students studentRepository, logger *zap.Logger) *CheckInService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckInService{repo: repo, students: students, logger: logger, now: time.Now}
}

// CheckIn records a visit unless the student already has five inside the
// trailing seven days. The window slides with the current instant, it is
// not a calendar week.
func (s *CheckInService) CheckIn(ctx context.Context, studentID int64) (*models.CheckIn, error) {
	if err := s.ensureStudent(ctx, studentID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	count, err := s.repo.CountInWindow(ctx, studentID, now.Add(-checkInWindow), now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count check-ins")
	}
	if count >= checkInQuota {
		return nil, appErrors.ErrRateLimited
	}

	checkIn := &models.CheckIn{StudentID: studentID, CreatedAt: now}
	if err := s.repo.Create(ctx, checkIn); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create check-in")
	}
	return checkIn, nil
}

// List returns a student's check-ins newest-first.
func (s *CheckInService) List(ctx context.Context, studentID int64, page, limit int) ([]models.CheckIn, error) {
	if err := s.ensureStudent(ctx, studentID); err != nil {
		return nil, err
	}
	checkIns, err := s.repo.ListByStudent(ctx, studentID, page, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list check-ins")
	}
	return checkIns, nil
}

func (s *CheckInService) ensureStudent(ctx context.Context, studentID int64) error {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Student does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return nil
}
