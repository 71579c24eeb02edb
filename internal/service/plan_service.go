package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gympoint/gympoint-api/internal/models"
	"github.com/gympoint/gympoint-api/internal/repository"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
)

type planRepository interface {
	List(ctx context.Context, filter models.PlanFilter) ([]models.Plan, error)
	FindByID(ctx context.Context, id int64) (*models.Plan, error)
	ExistsByTitle(ctx context.Context, title string, excludeID int64) (bool, error)
	Create(ctx context.Context, plan *models.Plan) error
	Update(ctx context.Context, plan *models.Plan) error
	Delete(ctx context.Context, id int64) error
}

// PlanCache is the read-through cache the plan service consults. Exported so
// main can pass a true nil interface when redis is disabled.
type PlanCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

const planCachePrefix = "plans:"

// CreatePlanRequest holds payload for creating membership plans.
type CreatePlanRequest struct {
	Title    string   `json:"title" validate:"required,min=3"`
	Duration int      `json:"duration" validate:"required,gte=1"`
	Price    *float64 `json:"price" validate:"omitempty,gte=1"`
}

// UpdatePlanRequest holds a partial plan update.
type UpdatePlanRequest struct {
	Title    *string  `json:"title" validate:"omitempty,min=3"`
	Duration *int     `json:"duration" validate:"omitempty,gte=1"`
	Price    *float64 `json:"price" validate:"omitempty,gte=1"`
}

// PlanService handles plan-catalog use-cases. Reads go through the redis
// cache when one is configured; cache failures degrade to database reads.
type PlanService struct {
	repo      planRepository
	cache     PlanCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPlanService constructs the plan service. cache may be nil.
func NewPlanService(repo planRepository, cache PlanCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *PlanService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// List returns plans matching the optional title filter, ordered by title.
func (s *PlanService) List(ctx context.Context, filter models.PlanFilter) ([]models.Plan, error) {
	cacheKey := fmt.Sprintf("%slist:%s:%d:%d", planCachePrefix, filter.Query, filter.Page, filter.Limit)
	if s.cache != nil {
		var cached []models.Plan
		if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, repository.ErrCacheMiss) {
			s.logger.Warn("plan cache read failed", zap.Error(err))
		}
	}

	plans, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list plans")
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, plans, s.cacheTTL); err != nil {
			s.logger.Warn("plan cache write failed", zap.Error(err))
		}
	}
	return plans, nil
}

// Get returns a single plan.
func (s *PlanService) Get(ctx context.Context, id int64) (*models.Plan, error) {
	cacheKey := fmt.Sprintf("%sid:%d", planCachePrefix, id)
	if s.cache != nil {
		var cached models.Plan
		if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, repository.ErrCacheMiss) {
			s.logger.Warn("plan cache read failed", zap.Error(err))
		}
	}

	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Plan does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, plan, s.cacheTTL); err != nil {
			s.logger.Warn("plan cache write failed", zap.Error(err))
		}
	}
	return plan, nil
}

// Create adds a plan to the catalog.
func (s *PlanService) Create(ctx context.Context, req CreatePlanRequest) (*models.Plan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	exists, err := s.repo.ExistsByTitle(ctx, req.Title, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate title")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Plan already exists")
	}
	plan := &models.Plan{Title: req.Title, Duration: req.Duration}
	if req.Price != nil {
		plan.Price = *req.Price
	}
	if err := s.repo.Create(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create plan")
	}
	s.invalidate(ctx)
	return plan, nil
}

// Update modifies a plan; a title change re-checks uniqueness.
func (s *PlanService) Update(ctx context.Context, id int64, req UpdatePlanRequest) (*models.Plan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Plan does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}
	if req.Title != nil && *req.Title != plan.Title {
		exists, err := s.repo.ExistsByTitle(ctx, *req.Title, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate title")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "Plan already exists")
		}
		plan.Title = *req.Title
	}
	if req.Duration != nil {
		plan.Duration = *req.Duration
	}
	if req.Price != nil {
		plan.Price = *req.Price
	}
	if err := s.repo.Update(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update plan")
	}
	s.invalidate(ctx)
	return plan, nil
}

// Delete removes a plan unless subscriptions still reference it.
func (s *PlanService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Plan does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return appErrors.ErrPlanInUse
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete plan")
	}
	s.invalidate(ctx)
	return nil
}

func (s *PlanService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPrefix(ctx, planCachePrefix); err != nil {
		s.logger.Warn("plan cache invalidation failed", zap.Error(err))
	}
}
