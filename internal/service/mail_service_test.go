package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gympoint/gympoint-api/internal/models"
	"github.com/gympoint/gympoint-api/pkg/jobs"
	"github.com/gympoint/gympoint-api/pkg/mailer"
)

type fakeSender struct {
	sent []mailer.Message
	err  error
}

func (f *fakeSender) Send(msg mailer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func TestMailServiceWelcomeMail(t *testing.T) {
	sender := &fakeSender{}
	svc := NewMailService(sender, nil, zap.NewNop())

	detail := models.SubscriptionDetail{
		ID:           10,
		StartDate:    time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC),
		Price:        300,
		StudentID:    1,
		StudentName:  "John Connor",
		StudentEmail: "john@example.com",
		PlanTitle:    "Gold",
	}
	err := svc.HandleJob(context.Background(), jobs.Job{Kind: JobKindSubscriptionCreated, Payload: detail})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "john@example.com", msg.To)
	assert.Equal(t, "Welcome to GymPoint", msg.Subject)
	assert.Contains(t, msg.Body, "Gold")
	assert.Contains(t, msg.Body, "February 01, 2020")
	assert.Contains(t, msg.Body, "May 01, 2020")
	assert.Contains(t, msg.Body, "$300.00")
}

func TestMailServiceAnswerMail(t *testing.T) {
	sender := &fakeSender{}
	svc := NewMailService(sender, nil, zap.NewNop())

	answer := "Yes, up to 30 days."
	detail := models.HelpOrderDetail{
		HelpOrder: models.HelpOrder{
			ID:       5,
			Question: "Can I freeze my plan?",
			Answer:   &answer,
		},
		StudentName:  "John Connor",
		StudentEmail: "john@example.com",
	}
	err := svc.HandleJob(context.Background(), jobs.Job{Kind: JobKindHelpOrderAnswered, Payload: detail})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "john@example.com", msg.To)
	assert.Contains(t, msg.Body, "Can I freeze my plan?")
	assert.Contains(t, msg.Body, "Yes, up to 30 days.")
}

func TestMailServiceUnknownKind(t *testing.T) {
	sender := &fakeSender{}
	svc := NewMailService(sender, nil, zap.NewNop())

	err := svc.HandleJob(context.Background(), jobs.Job{Kind: "unknown"})
	require.Error(t, err)
	assert.Empty(t, sender.sent)
}

func TestMailServicePayloadMismatch(t *testing.T) {
	sender := &fakeSender{}
	svc := NewMailService(sender, nil, zap.NewNop())

	err := svc.HandleJob(context.Background(), jobs.Job{Kind: JobKindSubscriptionCreated, Payload: "wrong"})
	require.Error(t, err)
	assert.Empty(t, sender.sent)
}

func TestMailServiceSendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	svc := NewMailService(sender, nil, zap.NewNop())

	err := svc.HandleJob(context.Background(), jobs.Job{
		Kind:    JobKindSubscriptionCreated,
		Payload: models.SubscriptionDetail{StudentEmail: "john@example.com"},
	})
	require.Error(t, err)
}
