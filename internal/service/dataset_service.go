package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"equipviz/internal/ingest"
	"equipviz/internal/metrics"
	"equipviz/internal/models"
)

// DatasetRepository defines the storage contract for datasets and their
// equipment records.
type DatasetRepository interface {
	CreateWithRecords(ctx context.Context, dataset *models.Dataset, records []models.Equipment, maxRetained int) ([]int64, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Dataset, error)
	GetByID(ctx context.Context, ownerID, datasetID int64) (*models.Dataset, error)
	Delete(ctx context.Context, ownerID, datasetID int64) error
	RecordsByDataset(ctx context.Context, datasetID int64) ([]models.Equipment, error)
	RecordsByOwner(ctx context.Context, ownerID int64) ([]models.Equipment, error)
}

// DatasetService owns the dataset lifecycle: ingest with retention
// trimming, listing, retrieval and deletion.
type DatasetService struct {
	repo        DatasetRepository
	maxRetained int
	metrics     *metrics.Metrics
	logger      *zap.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewDatasetService builds DatasetService.
func NewDatasetService(repo DatasetRepository, maxRetained int, m *metrics.Metrics, logger *zap.Logger) *DatasetService {
	if maxRetained <= 0 {
		maxRetained = 5
	}
	return &DatasetService{
		repo:        repo,
		maxRetained: maxRetained,
		metrics:     m,
		logger:      logger,
		locks:       make(map[int64]*sync.Mutex),
	}
}

// ownerLock returns the mutex serializing ingests for one owner.
func (s *DatasetService) ownerLock(ownerID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[ownerID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[ownerID] = lock
	}
	return lock
}

// MaxRetained reports the retention limit in effect.
func (s *DatasetService) MaxRetained() int {
	return s.maxRetained
}

// Ingest persists a built dataset for the owner, assigns its id and upload
// time, and evicts the owner's oldest datasets beyond the retention limit.
// Ingests for the same owner are serialized; the insert and the trim share
// one transaction, so the retained set never exceeds the limit for readers.
func (s *DatasetService) Ingest(ctx context.Context, ownerID int64, build *ingest.Result) (*models.Dataset, error) {
	if build == nil || len(build.Records) == 0 {
		return nil, ingest.ErrEmptyResult
	}

	name := build.Name
	if name == "" {
		name = "Untitled dataset"
	}

	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	dataset := &models.Dataset{OwnerID: ownerID, Name: name}
	records := make([]models.Equipment, len(build.Records))
	copy(records, build.Records)

	evicted, err := s.repo.CreateWithRecords(ctx, dataset, records, s.maxRetained)
	if err != nil {
		return nil, fmt.Errorf("store dataset: %w", err)
	}

	s.metrics.UploadsTotal.Inc()
	s.metrics.RowsIngested.Add(float64(len(records)))
	if len(evicted) > 0 {
		s.metrics.DatasetsEvicted.Add(float64(len(evicted)))
		s.logger.Info("evicted datasets beyond retention limit",
			zap.Int64("owner_id", ownerID),
			zap.Int64s("dataset_ids", evicted))
	}

	s.logger.Info("dataset stored",
		zap.Int64("owner_id", ownerID),
		zap.Int64("dataset_id", dataset.ID),
		zap.String("name", dataset.Name),
		zap.Int("rows", dataset.RowCount))
	return dataset, nil
}

// List returns the owner's datasets, newest first.
func (s *DatasetService) List(ctx context.Context, ownerID int64) ([]models.Dataset, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Get returns one dataset with its equipment records in source order.
func (s *DatasetService) Get(ctx context.Context, ownerID, datasetID int64) (*models.Dataset, []models.Equipment, error) {
	dataset, err := s.repo.GetByID(ctx, ownerID, datasetID)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.repo.RecordsByDataset(ctx, dataset.ID)
	if err != nil {
		return nil, nil, err
	}
	return dataset, records, nil
}

// Delete removes one of the owner's datasets with its records.
func (s *DatasetService) Delete(ctx context.Context, ownerID, datasetID int64) error {
	if err := s.repo.Delete(ctx, ownerID, datasetID); err != nil {
		return err
	}
	s.logger.Info("dataset deleted", zap.Int64("owner_id", ownerID), zap.Int64("dataset_id", datasetID))
	return nil
}

// ListEquipment returns equipment records across the owner's datasets.
// A non-zero datasetID restricts to that dataset; a non-empty typeFilter
// restricts to one canonical category, matched case-insensitively.
func (s *DatasetService) ListEquipment(ctx context.Context, ownerID, datasetID int64, typeFilter string) ([]models.Equipment, error) {
	var (
		records []models.Equipment
		err     error
	)
	if datasetID != 0 {
		if _, err = s.repo.GetByID(ctx, ownerID, datasetID); err != nil {
			return nil, err
		}
		records, err = s.repo.RecordsByDataset(ctx, datasetID)
	} else {
		records, err = s.repo.RecordsByOwner(ctx, ownerID)
	}
	if err != nil {
		return nil, err
	}

	if typeFilter == "" {
		return records, nil
	}

	want := models.NormalizeEquipmentType(typeFilter)
	filtered := make([]models.Equipment, 0, len(records))
	for _, rec := range records {
		if rec.Type == want {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}
