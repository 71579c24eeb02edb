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

type helpOrderRepository interface {
	Create(ctx context.Context, order *models.HelpOrder) error
	FindByID(ctx context.Context, id int64) (*models.HelpOrder, error)
	FindDetailByID(ctx context.Context, id int64) (*models.HelpOrderDetail, error)
	ListUnanswered(ctx context.Context, page, limit int) ([]models.HelpOrderDetail, error)
	ListByStudent(ctx context.Context, studentID int64, page, limit int) ([]models.HelpOrder, error)
	Answer(ctx context.Context, id int64, answer string, answerAt time.Time) error
}

// AskRequest holds a member's question.
type AskRequest struct {
	Question string `json:"question" validate:"required,min=3"`
}

// AnswerRequest holds the staff answer text.
type AnswerRequest struct {
	Answer string `json:"answer" validate:"required"`
}

// HelpOrderService handles the question/answer workflow.
type HelpOrderService struct {
	repo      helpOrderRepository
	students  studentRepository
	queue     jobDispatcher
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewHelpOrderService constructs the help-order service. queue may be nil,
// in which case no answer notification is produced.
func NewHelpOrderService(repo helpOrderRepository, students studentRepository, queue jobDispatcher, validate *validator.Validate, logger *zap.Logger) *HelpOrderService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HelpOrderService{
		repo:      repo,
		students:  students,
		queue:     queue,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Ask files a new unanswered question for the student.
func (s *HelpOrderService) Ask(ctx context.Context, studentID int64, req AskRequest) (*models.HelpOrder, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	order := &models.HelpOrder{StudentID: studentID, Question: req.Question}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create help order")
	}
	return order, nil
}

// Answer stores the staff answer exactly once and produces the notification
// mail job. Re-answering an already-answered order is a conflict.
func (s *HelpOrderService) Answer(ctx context.Context, id int64, req AnswerRequest) (*models.HelpOrderView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Help order does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load help order")
	}
	if order.Answer != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Help order already answered")
	}

	if err := s.repo.Answer(ctx, id, req.Answer, s.now().UTC()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to answer help order")
	}

	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load help order")
	}

	if s.queue != nil {
		if err := s.queue.Enqueue(jobs.Job{Kind: JobKindHelpOrderAnswered, Payload: *detail}); err != nil {
			s.logger.Warn("failed to enqueue help order mail",
				zap.Int64("help_order_id", id), zap.Error(err))
		}
	}

	view := detail.View()
	return &view, nil
}

// ListUnanswered returns pending questions in insertion order.
func (s *HelpOrderService) ListUnanswered(ctx context.Context, page, limit int) ([]models.HelpOrderView, error) {
	details, err := s.repo.ListUnanswered(ctx, page, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list help orders")
	}
	views := make([]models.HelpOrderView, 0, len(details))
	for _, d := range details {
		views = append(views, d.View())
	}
	return views, nil
}

// ListForStudent returns a student's own questions newest-first.
func (s *HelpOrderService) ListForStudent(ctx context.Context, studentID int64, page, limit int) ([]models.HelpOrder, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	orders, err := s.repo.ListByStudent(ctx, studentID, page, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list help orders")
	}
	return orders, nil
}
