package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gympoint/gympoint-api/internal/models"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
)

type mockCheckInRepo struct {
	checkIns []models.CheckIn
	nextID   int64
	lastFrom time.Time
	lastTo   time.Time
}

func (m *mockCheckInRepo) CountInWindow(ctx context.Context, studentID int64, from, to time.Time) (int, error) {
	m.lastFrom, m.lastTo = from, to
	count := 0
	for _, c := range m.checkIns {
		if c.StudentID == studentID && !c.CreatedAt.Before(from) && !c.CreatedAt.After(to) {
			count++
		}
	}
	return count, nil
}

func (m *mockCheckInRepo) Create(ctx context.Context, checkIn *models.CheckIn) error {
	m.nextID++
	checkIn.ID = m.nextID
	m.checkIns = append(m.checkIns, *checkIn)
	return nil
}

func (m *mockCheckInRepo) ListByStudent(ctx context.Context, studentID int64, page, limit int) ([]models.CheckIn, error) {
	result := []models.CheckIn{}
	for _, c := range m.checkIns {
		if c.StudentID == studentID {
			result = append(result, c)
		}
	}
	return result, nil
}

func visitsWithin(studentID int64, now time.Time, offsets ...time.Duration) []models.CheckIn {
	checkIns := make([]models.CheckIn, 0, len(offsets))
	for i, offset := range offsets {
		checkIns = append(checkIns, models.CheckIn{
			ID:        int64(i + 1),
			StudentID: studentID,
			CreatedAt: now.Add(-offset),
		})
	}
	return checkIns
}

func newCheckInService(repo *mockCheckInRepo, students studentRepository, now time.Time) *CheckInService {
	svc := NewCheckInService(repo, students, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestCheckInServiceUnderQuota(t *testing.T) {
	now := time.Date(2020, 3, 10, 8, 0, 0, 0, time.UTC)
	students := &mockStudentRepo{students: map[int64]models.Student{1: {ID: 1}}}
	repo := &mockCheckInRepo{checkIns: visitsWithin(1, now,
		24*time.Hour, 48*time.Hour, 72*time.Hour, 96*time.Hour)}
	repo.nextID = int64(len(repo.checkIns))
	svc := newCheckInService(repo, students, now)

	checkIn, err := svc.CheckIn(context.Background(), 1)
	require.NoError(t, err)
	assert.NotZero(t, checkIn.ID)
	assert.Len(t, repo.checkIns, 5)
}

func TestCheckInServiceQuotaReached(t *testing.T) {
	now := time.Date(2020, 3, 10, 8, 0, 0, 0, time.UTC)
	students := &mockStudentRepo{students: map[int64]models.Student{1: {ID: 1}}}
	repo := &mockCheckInRepo{checkIns: visitsWithin(1, now,
		12*time.Hour, 24*time.Hour, 48*time.Hour, 72*time.Hour, 144*time.Hour)}
	svc := newCheckInService(repo, students, now)

	_, err := svc.CheckIn(context.Background(), 1)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrRateLimited.Code, appErr.Code)
	assert.Equal(t, "Maximum number of check ins in last 7 days reached", appErr.Message)
}

func TestCheckInServiceOldVisitsExpire(t *testing.T) {
	now := time.Date(2020, 3, 10, 8, 0, 0, 0, time.UTC)
	students := &mockStudentRepo{students: map[int64]models.Student{1: {ID: 1}}}
	// Five visits but one fell out of the trailing seven days.
	repo := &mockCheckInRepo{checkIns: visitsWithin(1, now,
		12*time.Hour, 24*time.Hour, 48*time.Hour, 72*time.Hour, 8*24*time.Hour)}
	repo.nextID = int64(len(repo.checkIns))
	svc := newCheckInService(repo, students, now)

	_, err := svc.CheckIn(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-7*24*time.Hour), repo.lastFrom)
	assert.Equal(t, now, repo.lastTo)
}

func TestCheckInServiceUnknownStudent(t *testing.T) {
	now := time.Now().UTC()
	svc := newCheckInService(&mockCheckInRepo{}, &mockStudentRepo{}, now)

	_, err := svc.CheckIn(context.Background(), 42)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "Student does not exist", appErr.Message)
}

func TestCheckInServiceList(t *testing.T) {
	now := time.Now().UTC()
	students := &mockStudentRepo{students: map[int64]models.Student{1: {ID: 1}}}
	repo := &mockCheckInRepo{checkIns: visitsWithin(1, now, time.Hour, 2*time.Hour)}
	svc := newCheckInService(repo, students, now)

	checkIns, err := svc.List(context.Background(), 1, 1, 20)
	require.NoError(t, err)
	assert.Len(t, checkIns, 2)
}
