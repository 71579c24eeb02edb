package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gympoint/gympoint-api/internal/models"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
	"github.com/gympoint/gympoint-api/pkg/jobs"
)

type subscriptionRepository interface {
	List(ctx context.Context, page, limit int) ([]models.SubscriptionDetail, error)
	FindByID(ctx context.Context, id int64) (*models.Subscription, error)
	FindDetailByID(ctx context.Context, id int64) (*models.SubscriptionDetail, error)
	Create(ctx context.Context, sub *models.Subscription) error
	Update(ctx context.Context, sub *models.Subscription) error
	Delete(ctx context.Context, id int64) error
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// SubscriptionRequest holds payload for creating and updating subscriptions.
type SubscriptionRequest struct {
	StudentID int64     `json:"student_id" validate:"required"`
	PlanID    int64     `json:"plan_id" validate:"required"`
	StartDate time.Time `json:"start_date" validate:"required"`
}

// SubscriptionService handles subscription use-cases: period and price are
// always derived from the plan, never taken from the request.
type SubscriptionService struct {
	repo      subscriptionRepository
	students  studentRepository
	plans     planRepository
	queue     jobDispatcher
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewSubscriptionService constructs the subscription service. queue may be
// nil, in which case no welcome mail is produced.
func NewSubscriptionService(repo subscriptionRepository, students studentRepository, plans planRepository, queue jobDispatcher, validate *validator.Validate, logger *zap.Logger) *SubscriptionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriptionService{
		repo:      repo,
		students:  students,
		plans:     plans,
		queue:     queue,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns subscription projections ordered by start date.
func (s *SubscriptionService) List(ctx context.Context, page, limit int) ([]models.SubscriptionView, error) {
	details, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subscriptions")
	}
	views := make([]models.SubscriptionView, 0, len(details))
	for _, d := range details {
		views = append(views, d.View())
	}
	return views, nil
}

// Get returns a single subscription projection.
func (s *SubscriptionService) Get(ctx context.Context, id int64) (*models.SubscriptionView, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Subscription does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subscription")
	}
	view := detail.View()
	return &view, nil
}

// Create enrolls a student on a plan and produces the welcome mail job.
func (s *SubscriptionService) Create(ctx context.Context, req SubscriptionRequest, userID int64) (*models.SubscriptionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	plan, err := s.resolvePlan(ctx, req.StudentID, req.PlanID)
	if err != nil {
		return nil, err
	}

	if err := s.checkStartDate(req.StartDate); err != nil {
		return nil, err
	}

	sub := &models.Subscription{
		StudentID: req.StudentID,
		PlanID:    req.PlanID,
		UserID:    userID,
		StartDate: req.StartDate,
		EndDate:   req.StartDate.AddDate(0, plan.Duration, 0),
		Price:     plan.Price * float64(plan.Duration),
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subscription")
	}

	detail, err := s.repo.FindDetailByID(ctx, sub.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subscription")
	}

	s.enqueueWelcome(*detail)

	view := detail.View()
	return &view, nil
}

// Update moves a subscription to another student, plan or start date and
// re-derives the period and price.
func (s *SubscriptionService) Update(ctx context.Context, id int64, req SubscriptionRequest) (*models.SubscriptionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Subscription does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subscription")
	}

	plan, err := s.resolvePlan(ctx, req.StudentID, req.PlanID)
	if err != nil {
		return nil, err
	}

	if err := s.checkStartDate(req.StartDate); err != nil {
		return nil, err
	}

	sub.StudentID = req.StudentID
	sub.PlanID = req.PlanID
	sub.StartDate = req.StartDate
	sub.EndDate = req.StartDate.AddDate(0, plan.Duration, 0)
	sub.Price = plan.Price * float64(plan.Duration)

	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subscription")
	}

	detail, err := s.repo.FindDetailByID(ctx, sub.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subscription")
	}
	view := detail.View()
	return &view, nil
}

// Delete removes a subscription.
func (s *SubscriptionService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Subscription does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subscription")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subscription")
	}
	return nil
}

// resolvePlan verifies both associations exist and returns the plan the
// period and price derive from.
func (s *SubscriptionService) resolvePlan(ctx context.Context, studentID, planID int64) (*models.Plan, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Plan does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}
	return plan, nil
}

// checkStartDate rejects start dates on a calendar day before today. Both
// sides are truncated to the start of their day so an early-morning request
// with a same-day afternoon start never false-positives.
func (s *SubscriptionService) checkStartDate(start time.Time) error {
	if startOfDay(start).Before(startOfDay(s.now())) {
		return appErrors.ErrPastDate
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func (s *SubscriptionService) enqueueWelcome(detail models.SubscriptionDetail) {
	if s.queue == nil {
		return
	}
	err := s.queue.Enqueue(jobs.Job{Kind: JobKindSubscriptionCreated, Payload: detail})
	if err != nil {
		s.logger.Warn("failed to enqueue subscription mail",
			zap.Int64("subscription_id", detail.ID), zap.Error(err))
	}
}
