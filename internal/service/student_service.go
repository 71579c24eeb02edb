package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gympoint/gympoint-api/internal/models"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) error
}

// CreateStudentRequest holds payload for registering members.
type CreateStudentRequest struct {
	Name   string  `json:"name" validate:"required,min=5"`
	Email  string  `json:"email" validate:"required,email"`
	Age    int     `json:"age" validate:"required,gte=10"`
	Height float64 `json:"height" validate:"required,gt=0"`
	Weight float64 `json:"weight" validate:"required,gt=0"`
}

// UpdateStudentRequest holds a partial member update; absent fields keep
// their stored values.
type UpdateStudentRequest struct {
	Name   *string  `json:"name" validate:"omitempty,min=5"`
	Email  *string  `json:"email" validate:"omitempty,email"`
	Age    *int     `json:"age" validate:"omitempty,gte=10"`
	Height *float64 `json:"height" validate:"omitempty,gt=0"`
	Weight *float64 `json:"weight" validate:"omitempty,gt=0"`
}

// StudentService handles member-registry use-cases.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns members matching the optional name filter.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	students, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// Get returns a single member profile.
func (s *StudentService) Get(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new member.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	exists, err := s.repo.ExistsByEmail(ctx, req.Email, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Student already exists")
	}
	student := &models.Student{
		Name:   req.Name,
		Email:  req.Email,
		Age:    req.Age,
		Height: req.Height,
		Weight: req.Weight,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// Update applies a partial update; an email change re-checks uniqueness.
func (s *StudentService) Update(ctx context.Context, id int64, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if req.Email != nil && *req.Email != student.Email {
		exists, err := s.repo.ExistsByEmail(ctx, *req.Email, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "Student already exists")
		}
		student.Email = *req.Email
	}
	if req.Name != nil {
		student.Name = *req.Name
	}
	if req.Age != nil {
		student.Age = *req.Age
	}
	if req.Height != nil {
		student.Height = *req.Height
	}
	if req.Weight != nil {
		student.Weight = *req.Weight
	}
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Delete removes a member profile.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Student does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}
