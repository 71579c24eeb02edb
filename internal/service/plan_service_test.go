package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gympoint/gympoint-api/internal/models"
	"github.com/gympoint/gympoint-api/internal/repository"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
)

type mockPlanRepo struct {
	plans      map[int64]models.Plan
	nextID     int64
	referenced map[int64]bool
	listCalls  int
}

func (m *mockPlanRepo) List(ctx context.Context, filter models.PlanFilter) ([]models.Plan, error) {
	m.listCalls++
	plans := make([]models.Plan, 0, len(m.plans))
	for _, p := range m.plans {
		plans = append(plans, p)
	}
	return plans, nil
}

func (m *mockPlanRepo) FindByID(ctx context.Context, id int64) (*models.Plan, error) {
	if p, ok := m.plans[id]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPlanRepo) ExistsByTitle(ctx context.Context, title string, excludeID int64) (bool, error) {
	for id, p := range m.plans {
		if p.Title == title && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockPlanRepo) Create(ctx context.Context, plan *models.Plan) error {
	if m.plans == nil {
		m.plans = make(map[int64]models.Plan)
	}
	m.nextID++
	plan.ID = m.nextID
	m.plans[plan.ID] = *plan
	return nil
}

func (m *mockPlanRepo) Update(ctx context.Context, plan *models.Plan) error {
	m.plans[plan.ID] = *plan
	return nil
}

func (m *mockPlanRepo) Delete(ctx context.Context, id int64) error {
	if m.referenced[id] {
		return repository.ErrReferenced
	}
	delete(m.plans, id)
	return nil
}

type mockPlanCache struct {
	invalidated int
	setCalls    int
}

func (m *mockPlanCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	return repository.ErrCacheMiss
}

func (m *mockPlanCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.setCalls++
	return nil
}

func (m *mockPlanCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	m.invalidated++
	return nil
}

func TestPlanServiceCreate(t *testing.T) {
	repo := &mockPlanRepo{}
	svc := NewPlanService(repo, nil, 0, validator.New(), zap.NewNop())

	price := 129.0
	plan, err := svc.Create(context.Background(), CreatePlanRequest{Title: "Gold", Duration: 3, Price: &price})
	require.NoError(t, err)
	assert.NotZero(t, plan.ID)
	assert.Equal(t, 129.0, plan.Price)
}

func TestPlanServiceCreateDuplicateTitle(t *testing.T) {
	repo := &mockPlanRepo{plans: map[int64]models.Plan{1: {ID: 1, Title: "Gold"}}}
	svc := NewPlanService(repo, nil, 0, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreatePlanRequest{Title: "Gold", Duration: 3})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "Plan already exists", appErr.Message)
}

func TestPlanServiceDeleteInUse(t *testing.T) {
	repo := &mockPlanRepo{
		plans:      map[int64]models.Plan{1: {ID: 1, Title: "Gold"}},
		referenced: map[int64]bool{1: true},
	}
	svc := NewPlanService(repo, nil, 0, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), 1)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPlanInUse.Code, appErr.Code)
	assert.Equal(t, 403, appErr.Status)
	assert.Equal(t, "This plan has students", appErr.Message)
}

func TestPlanServiceWritesInvalidateCache(t *testing.T) {
	repo := &mockPlanRepo{plans: map[int64]models.Plan{1: {ID: 1, Title: "Gold", Duration: 1, Price: 50}}}
	cache := &mockPlanCache{}
	svc := NewPlanService(repo, cache, time.Minute, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreatePlanRequest{Title: "Diamond", Duration: 6})
	require.NoError(t, err)

	title := "Platinum"
	_, err = svc.Update(context.Background(), 1, UpdatePlanRequest{Title: &title})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), 1))
	assert.Equal(t, 3, cache.invalidated)
}

func TestPlanServiceListPopulatesCache(t *testing.T) {
	repo := &mockPlanRepo{plans: map[int64]models.Plan{1: {ID: 1, Title: "Gold"}}}
	cache := &mockPlanCache{}
	svc := NewPlanService(repo, cache, time.Minute, validator.New(), zap.NewNop())

	plans, err := svc.List(context.Background(), models.PlanFilter{})
	require.NoError(t, err)
	assert.Len(t, plans, 1)
	assert.Equal(t, 1, repo.listCalls)
	assert.Equal(t, 1, cache.setCalls)
}

func TestPlanServiceWorksWithoutCache(t *testing.T) {
	repo := &mockPlanRepo{plans: map[int64]models.Plan{1: {ID: 1, Title: "Gold"}}}
	svc := NewPlanService(repo, nil, 0, validator.New(), zap.NewNop())

	plans, err := svc.List(context.Background(), models.PlanFilter{})
	require.NoError(t, err)
	assert.Len(t, plans, 1)

	plan, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Gold", plan.Title)
}
