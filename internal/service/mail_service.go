package service

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"go.uber.org/zap"

	"github.com/gympoint/gympoint-api/internal/models"
	"github.com/gympoint/gympoint-api/pkg/jobs"
	"github.com/gympoint/gympoint-api/pkg/mailer"
)

// Job kinds produced by the subscription and help-order services.
const (
	JobKindSubscriptionCreated = "subscription-created"
	JobKindHelpOrderAnswered   = "help-order-answered"
)

const mailDateLayout = "January 02, 2006"

var welcomeTemplate = template.Must(template.New("welcome").Parse(`Hello {{.StudentName}},

Welcome to GymPoint! Your enrollment is confirmed.

Plan: {{.PlanTitle}}
Student ID: {{.StudentID}}
Start date: {{.StartDate}}
End date: {{.EndDate}}
Total price: {{.Price}}

See you at the gym!

GymPoint Team`))

var answerTemplate = template.Must(template.New("answer").Parse(`Hello {{.StudentName}},

Your question has been answered.

Question:
{{.Question}}

Answer:
{{.Answer}}

GymPoint Team`))

type mailMetrics interface {
	MailJobProcessed(kind string, success bool)
}

// MailService renders and delivers the notification mails consumed from the
// job queue. It is registered as the queue handler in main.
type MailService struct {
	sender  mailer.Sender
	metrics mailMetrics
	logger  *zap.Logger
}

// NewMailService constructs the mail service. metrics may be nil.
func NewMailService(sender mailer.Sender, metrics mailMetrics, logger *zap.Logger) *MailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MailService{sender: sender, metrics: metrics, logger: logger}
}

// HandleJob dispatches a queue job to the matching renderer. Unknown kinds
// and payload mismatches are errors so the worker logs them.
func (s *MailService) HandleJob(ctx context.Context, job jobs.Job) error {
	var err error
	switch job.Kind {
	case JobKindSubscriptionCreated:
		detail, ok := job.Payload.(models.SubscriptionDetail)
		if !ok {
			err = fmt.Errorf("unexpected payload %T for job kind %q", job.Payload, job.Kind)
			break
		}
		err = s.sendWelcome(detail)
	case JobKindHelpOrderAnswered:
		detail, ok := job.Payload.(models.HelpOrderDetail)
		if !ok {
			err = fmt.Errorf("unexpected payload %T for job kind %q", job.Payload, job.Kind)
			break
		}
		err = s.sendAnswer(detail)
	default:
		err = fmt.Errorf("unknown job kind %q", job.Kind)
	}

	if s.metrics != nil {
		s.metrics.MailJobProcessed(job.Kind, err == nil)
	}
	return err
}

func (s *MailService) sendWelcome(detail models.SubscriptionDetail) error {
	body, err := render(welcomeTemplate, map[string]string{
		"StudentName": detail.StudentName,
		"StudentID":   fmt.Sprintf("%d", detail.StudentID),
		"PlanTitle":   detail.PlanTitle,
		"StartDate":   detail.StartDate.Format(mailDateLayout),
		"EndDate":     detail.EndDate.Format(mailDateLayout),
		"Price":       fmt.Sprintf("$%.2f", detail.Price),
	})
	if err != nil {
		return err
	}
	msg := mailer.Message{
		To:      detail.StudentEmail,
		ToName:  detail.StudentName,
		Subject: "Welcome to GymPoint",
		Body:    body,
	}
	if err := s.sender.Send(msg); err != nil {
		return fmt.Errorf("send welcome mail: %w", err)
	}
	s.logger.Info("welcome mail sent",
		zap.Int64("subscription_id", detail.ID),
		zap.String("to", detail.StudentEmail))
	return nil
}

func (s *MailService) sendAnswer(detail models.HelpOrderDetail) error {
	answer := ""
	if detail.Answer != nil {
		answer = *detail.Answer
	}
	body, err := render(answerTemplate, map[string]string{
		"StudentName": detail.StudentName,
		"Question":    detail.Question,
		"Answer":      answer,
	})
	if err != nil {
		return err
	}
	msg := mailer.Message{
		To:      detail.StudentEmail,
		ToName:  detail.StudentName,
		Subject: "Your question has been answered",
		Body:    body,
	}
	if err := s.sender.Send(msg); err != nil {
		return fmt.Errorf("send answer mail: %w", err)
	}
	s.logger.Info("answer mail sent",
		zap.Int64("help_order_id", detail.ID),
		zap.String("to", detail.StudentEmail))
	return nil
}

func render(tpl *template.Template, data interface{}) (string, error) {
	var b bytes.Buffer
	if err := tpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render mail template %q: %w", tpl.Name(), err)
	}
	return b.String(), nil
}
