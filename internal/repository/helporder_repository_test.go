package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/gympoint/gympoint-api/internal/models"
)

func TestHelpOrderRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewHelpOrderRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO help_orders")).
		WithArgs(int64(1), "Can I freeze my plan?", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))

	order := &models.HelpOrder{StudentID: 1, Question: "Can I freeze my plan?"}
	require.NoError(t, repo.Create(context.Background(), order))
	require.Equal(t, int64(4), order.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHelpOrderRepositoryListUnanswered(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewHelpOrderRepository(db)
	rows := sqlmock.NewRows([]string{
		"id", "student_id", "question", "answer", "answer_at", "created_at", "updated_at",
		"student_name", "student_email",
	}).
		AddRow(1, 1, "First question", nil, nil, time.Now(), time.Now(), "John Connor", "john@example.com").
		AddRow(2, 1, "Second question", nil, nil, time.Now(), time.Now(), "John Connor", "john@example.com")
	mock.ExpectQuery("SELECT h.id, h.student_id").
		WillReturnRows(rows)

	orders, err := repo.ListUnanswered(context.Background(), 1, 20)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, int64(1), orders[0].ID)
	require.Equal(t, "john@example.com", orders[0].StudentEmail)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHelpOrderRepositoryAnswer(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewHelpOrderRepository(db)
	answerAt := time.Date(2020, 3, 10, 8, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE help_orders SET answer = $2, answer_at = $3, updated_at = $3 WHERE id = $1")).
		WithArgs(int64(4), "Yes.", answerAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Answer(context.Background(), 4, "Yes.", answerAt))
	require.NoError(t, mock.ExpectationsWereMet())
}
