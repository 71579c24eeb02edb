package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gympoint/gympoint-api/internal/models"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
)

type mockSubscriptionLister struct {
	details []models.SubscriptionDetail
	err     error
}

func (m *mockSubscriptionLister) ListAll(ctx context.Context) ([]models.SubscriptionDetail, error) {
	return m.details, m.err
}

func exportFixtureDetails() []models.SubscriptionDetail {
	return []models.SubscriptionDetail{
		{
			ID:           1,
			StartDate:    time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC),
			EndDate:      time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC),
			Price:        300,
			Active:       true,
			StudentName:  "John Connor",
			StudentEmail: "john@example.com",
			PlanTitle:    "Gold",
		},
		{
			ID:           2,
			StartDate:    time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:      time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC),
			Price:        50,
			StudentName:  "Sarah Connor",
			StudentEmail: "sarah@example.com",
			PlanTitle:    "Start",
		},
	}
}

func TestExportServiceCSV(t *testing.T) {
	svc := NewExportService(&mockSubscriptionLister{details: exportFixtureDetails()}, zap.NewNop())

	result, err := svc.Subscriptions(context.Background(), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "subscriptions.csv", result.Filename)

	lines := strings.Split(strings.TrimSpace(string(result.Content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Student,Email,Plan,Start Date,End Date,Price,Active", lines[0])
	assert.Contains(t, lines[1], "John Connor")
	assert.Contains(t, lines[1], "2020-02-01")
	assert.Contains(t, lines[1], "300.00")
	assert.Contains(t, lines[1], "yes")
	assert.Contains(t, lines[2], "no")
}

func TestExportServicePDF(t *testing.T) {
	svc := NewExportService(&mockSubscriptionLister{details: exportFixtureDetails()}, zap.NewNop())

	result, err := svc.Subscriptions(context.Background(), FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, "subscriptions.pdf", result.Filename)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestExportServiceUnknownFormat(t *testing.T) {
	svc := NewExportService(&mockSubscriptionLister{}, zap.NewNop())

	_, err := svc.Subscriptions(context.Background(), ExportFormat("xml"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
