package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"equipviz/internal/analytics"
	"equipviz/internal/metrics"
	"equipviz/internal/models"
	"equipviz/internal/report"
)

// DatasetAnalytics is the analytics payload for one dataset.
type DatasetAnalytics struct {
	DatasetID   int64                     `json:"dataset_id"`
	DatasetName string                    `json:"dataset_name"`
	Summary     analytics.SummaryResponse `json:"summary"`
	Charts      analytics.ChartData       `json:"chart_data"`
}

// Dashboard aggregates analytics across all of an owner's retained
// datasets, flattened into one record set.
type Dashboard struct {
	DatasetsCount  int                        `json:"datasets_count"`
	TotalEquipment int                        `json:"total_equipment"`
	Summary        *analytics.SummaryResponse `json:"summary"`
	Charts         *analytics.ChartData       `json:"chart_data"`
}

// AnalyticsService computes summaries over stored records on demand.
// Results are derived state: nothing here is ever persisted, so a summary
// always reflects the datasets currently retained.
type AnalyticsService struct {
	repo    DatasetRepository
	reports *report.Generator
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewAnalyticsService builds AnalyticsService.
func NewAnalyticsService(repo DatasetRepository, reports *report.Generator, m *metrics.Metrics, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		repo:    repo,
		reports: reports,
		metrics: m,
		logger:  logger,
	}
}

// ForDataset computes the summary and chart projections for one dataset.
func (s *AnalyticsService) ForDataset(ctx context.Context, ownerID, datasetID int64) (*DatasetAnalytics, error) {
	dataset, err := s.repo.GetByID(ctx, ownerID, datasetID)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.RecordsByDataset(ctx, dataset.ID)
	if err != nil {
		return nil, err
	}

	summary := s.summarize(records)
	return &DatasetAnalytics{
		DatasetID:   dataset.ID,
		DatasetName: dataset.Name,
		Summary:     summary.Response(),
		Charts:      summary.Charts(),
	}, nil
}

// ForOwner computes the dashboard aggregation across every dataset the
// owner retains. Records from all datasets are flattened into one set; a
// user with no data gets zero counts and null summary sections.
func (s *AnalyticsService) ForOwner(ctx context.Context, ownerID int64) (*Dashboard, error) {
	datasets, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(datasets) == 0 {
		return &Dashboard{}, nil
	}

	records, err := s.repo.RecordsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Dashboard{DatasetsCount: len(datasets)}, nil
	}

	summary := s.summarize(records)
	resp := summary.Response()
	charts := summary.Charts()
	return &Dashboard{
		DatasetsCount:  len(datasets),
		TotalEquipment: summary.TotalCount,
		Summary:        &resp,
		Charts:         &charts,
	}, nil
}

// Report renders the PDF analysis report for one dataset and returns the
// document bytes with a download file name.
func (s *AnalyticsService) Report(ctx context.Context, ownerID, datasetID int64) ([]byte, string, error) {
	dataset, err := s.repo.GetByID(ctx, ownerID, datasetID)
	if err != nil {
		return nil, "", err
	}
	records, err := s.repo.RecordsByDataset(ctx, dataset.ID)
	if err != nil {
		return nil, "", err
	}

	summary := s.summarize(records)
	pdf, err := s.reports.Generate(report.Input{
		DatasetName: dataset.Name,
		UploadedAt:  dataset.UploadedAt,
		Summary:     summary,
		Records:     records,
	})
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("report generated",
		zap.Int64("owner_id", ownerID),
		zap.Int64("dataset_id", dataset.ID),
		zap.Int("bytes", len(pdf)))

	filename := fmt.Sprintf("equipment_report_%d.pdf", dataset.ID)
	return pdf, filename, nil
}

func (s *AnalyticsService) summarize(records []models.Equipment) analytics.Summary {
	start := time.Now()
	summary := analytics.Summarize(records)
	s.metrics.AnalyticsDuration.Observe(time.Since(start).Seconds())
	return summary
}
