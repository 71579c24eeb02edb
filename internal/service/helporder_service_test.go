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
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
)

type mockHelpOrderRepo struct {
	orders  map[int64]models.HelpOrder
	student map[int64]models.Student
	nextID  int64
}

func (m *mockHelpOrderRepo) Create(ctx context.Context, order *models.HelpOrder) error {
	if m.orders == nil {
		m.orders = make(map[int64]models.HelpOrder)
	}
	m.nextID++
	order.ID = m.nextID
	order.CreatedAt = time.Now().UTC()
	m.orders[order.ID] = *order
	return nil
}

func (m *mockHelpOrderRepo) FindByID(ctx context.Context, id int64) (*models.HelpOrder, error) {
	if o, ok := m.orders[id]; ok {
		return &o, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockHelpOrderRepo) FindDetailByID(ctx context.Context, id int64) (*models.HelpOrderDetail, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	detail := models.HelpOrderDetail{HelpOrder: o}
	if s, ok := m.student[o.StudentID]; ok {
		detail.StudentName = s.Name
		detail.StudentEmail = s.Email
	}
	return &detail, nil
}

func (m *mockHelpOrderRepo) ListUnanswered(ctx context.Context, page, limit int) ([]models.HelpOrderDetail, error) {
	details := []models.HelpOrderDetail{}
	for _, o := range m.orders {
		if o.Answer == nil {
			details = append(details, models.HelpOrderDetail{HelpOrder: o})
		}
	}
	return details, nil
}

func (m *mockHelpOrderRepo) ListByStudent(ctx context.Context, studentID int64, page, limit int) ([]models.HelpOrder, error) {
	orders := []models.HelpOrder{}
	for _, o := range m.orders {
		if o.StudentID == studentID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (m *mockHelpOrderRepo) Answer(ctx context.Context, id int64, answer string, answerAt time.Time) error {
	o := m.orders[id]
	o.Answer = &answer
	o.AnswerAt = &answerAt
	m.orders[id] = o
	return nil
}

func newHelpOrderFixture() (*HelpOrderService, *mockHelpOrderRepo, *mockDispatcher) {
	student := models.Student{ID: 1, Name: "John Connor", Email: "john@example.com"}
	repo := &mockHelpOrderRepo{student: map[int64]models.Student{1: student}}
	students := &mockStudentRepo{students: map[int64]models.Student{1: student}}
	queue := &mockDispatcher{}
	svc := NewHelpOrderService(repo, students, queue, validator.New(), zap.NewNop())
	return svc, repo, queue
}

func TestHelpOrderServiceAsk(t *testing.T) {
	svc, repo, _ := newHelpOrderFixture()

	order, err := svc.Ask(context.Background(), 1, AskRequest{Question: "Can I freeze my plan?"})
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
	assert.Nil(t, order.Answer)
	assert.Len(t, repo.orders, 1)
}

func TestHelpOrderServiceAskUnknownStudent(t *testing.T) {
	svc, _, _ := newHelpOrderFixture()

	_, err := svc.Ask(context.Background(), 99, AskRequest{Question: "Anyone there?"})
	require.Error(t, err)
	assert.Equal(t, "Student does not exist", appErrors.FromError(err).Message)
}

func TestHelpOrderServiceAnswer(t *testing.T) {
	svc, repo, queue := newHelpOrderFixture()
	order, err := svc.Ask(context.Background(), 1, AskRequest{Question: "Can I freeze my plan?"})
	require.NoError(t, err)

	view, err := svc.Answer(context.Background(), order.ID, AnswerRequest{Answer: "Yes, up to 30 days."})
	require.NoError(t, err)
	require.NotNil(t, view.Answer)
	assert.Equal(t, "Yes, up to 30 days.", *view.Answer)
	assert.Equal(t, "john@example.com", view.Student.Email)

	stored := repo.orders[order.ID]
	require.NotNil(t, stored.AnswerAt)

	require.Len(t, queue.jobs, 1)
	assert.Equal(t, JobKindHelpOrderAnswered, queue.jobs[0].Kind)
	detail, ok := queue.jobs[0].Payload.(models.HelpOrderDetail)
	require.True(t, ok)
	assert.Equal(t, "john@example.com", detail.StudentEmail)
}

func TestHelpOrderServiceAnswerTwice(t *testing.T) {
	svc, _, queue := newHelpOrderFixture()
	order, err := svc.Ask(context.Background(), 1, AskRequest{Question: "Can I freeze my plan?"})
	require.NoError(t, err)

	_, err = svc.Answer(context.Background(), order.ID, AnswerRequest{Answer: "Yes."})
	require.NoError(t, err)

	_, err = svc.Answer(context.Background(), order.ID, AnswerRequest{Answer: "Still yes."})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "Help order already answered", appErr.Message)
	assert.Len(t, queue.jobs, 1)
}

func TestHelpOrderServiceListUnanswered(t *testing.T) {
	svc, _, _ := newHelpOrderFixture()
	first, err := svc.Ask(context.Background(), 1, AskRequest{Question: "First question"})
	require.NoError(t, err)
	_, err = svc.Ask(context.Background(), 1, AskRequest{Question: "Second question"})
	require.NoError(t, err)

	_, err = svc.Answer(context.Background(), first.ID, AnswerRequest{Answer: "Done."})
	require.NoError(t, err)

	pending, err := svc.ListUnanswered(context.Background(), 1, 20)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Second question", pending[0].Question)
}

func TestHelpOrderServiceListForStudent(t *testing.T) {
	svc, _, _ := newHelpOrderFixture()
	_, err := svc.Ask(context.Background(), 1, AskRequest{Question: "First question"})
	require.NoError(t, err)

	orders, err := svc.ListForStudent(context.Background(), 1, 1, 20)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	_, err = svc.ListForStudent(context.Background(), 99, 1, 20)
	require.Error(t, err)
}
