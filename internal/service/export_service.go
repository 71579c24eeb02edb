package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gympoint/gympoint-api/internal/models"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
	"github.com/gympoint/gympoint-api/pkg/export"
)

type subscriptionLister interface {
	ListAll(ctx context.Context) ([]models.SubscriptionDetail, error)
}

// ExportFormat selects the report encoding.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

const exportDateLayout = "2006-01-02"

// ExportResult is a rendered report with its HTTP metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders the subscription report in CSV or PDF form.
type ExportService struct {
	subscriptions subscriptionLister
	csv           *export.CSVExporter
	pdf           *export.PDFExporter
	logger        *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(subscriptions subscriptionLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		subscriptions: subscriptions,
		csv:           export.NewCSVExporter(),
		pdf:           export.NewPDFExporter(),
		logger:        logger,
	}
}

// Subscriptions renders the full subscription listing in the requested format.
func (s *ExportService) Subscriptions(ctx context.Context, format ExportFormat) (*ExportResult, error) {
	details, err := s.subscriptions.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subscriptions")
	}

	table := subscriptionTable(details)

	switch format {
	case FormatCSV:
		content, err := s.csv.Render(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "text/csv",
			Filename:    "subscriptions.csv",
		}, nil
	case FormatPDF:
		content, err := s.pdf.Render(table, "Subscriptions Report")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    "subscriptions.pdf",
		}, nil
	default:
		return nil, appErrors.Validation(nil, []string{"format must be csv or pdf"})
	}
}

func subscriptionTable(details []models.SubscriptionDetail) export.Table {
	headers := []string{"ID", "Student", "Email", "Plan", "Start Date", "End Date", "Price", "Active"}
	rows := make([]map[string]string, 0, len(details))
	for _, d := range details {
		active := "no"
		if d.Active {
			active = "yes"
		}
		rows = append(rows, map[string]string{
			"ID":         fmt.Sprintf("%d", d.ID),
			"Student":    d.StudentName,
			"Email":      d.StudentEmail,
			"Plan":       d.PlanTitle,
			"Start Date": d.StartDate.Format(exportDateLayout),
			"End Date":   d.EndDate.Format(exportDateLayout),
			"Price":      fmt.Sprintf("%.2f", d.Price),
			"Active":     active,
		})
	}
	return export.Table{Headers: headers, Rows: rows}
}
