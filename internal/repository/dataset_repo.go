package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"equipviz/internal/models"
)

// ErrDatasetNotFound covers both missing and foreign-owned datasets, so
// lookups never reveal whether another user's dataset exists.
var ErrDatasetNotFound = errors.New("dataset not found")

// DatasetRepository persists datasets and their equipment records.
type DatasetRepository struct {
	db *sql.DB
}

// NewDatasetRepository returns repository instance.
func NewDatasetRepository(db *sql.DB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

// CreateWithRecords stores a dataset with its equipment rows and trims the
// owner's history down to maxRetained datasets, all in one transaction.
// Concurrent readers observe either the state before or after the whole
// operation. It returns the ids of evicted datasets, oldest first.
func (r *DatasetRepository) CreateWithRecords(ctx context.Context, dataset *models.Dataset, records []models.Equipment, maxRetained int) ([]int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const insertDataset = `
		INSERT INTO datasets (owner_id, name, row_count)
		VALUES ($1, $2, $3)
		RETURNING id, uploaded_at
	`
	if err := tx.QueryRowContext(ctx, insertDataset, dataset.OwnerID, dataset.Name, len(records)).
		Scan(&dataset.ID, &dataset.UploadedAt); err != nil {
		return nil, fmt.Errorf("insert dataset: %w", err)
	}
	dataset.RowCount = len(records)

	const insertEquipment = `
		INSERT INTO equipment (dataset_id, position, name, type, flowrate, pressure, temperature)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	stmt, err := tx.PrepareContext(ctx, insertEquipment)
	if err != nil {
		return nil, fmt.Errorf("prepare equipment insert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		rec := &records[i]
		rec.DatasetID = dataset.ID
		if _, err := stmt.ExecContext(ctx, dataset.ID, rec.Position, rec.Name, string(rec.Type), rec.Flowrate, rec.Pressure, rec.Temperature); err != nil {
			return nil, fmt.Errorf("insert equipment row %d: %w", i, err)
		}
	}

	evicted, err := trimOwner(ctx, tx, dataset.OwnerID, maxRetained)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return evicted, nil
}

// trimOwner deletes datasets beyond the retention limit, keeping the
// maxRetained most recent by upload time with id as tie-break. Equipment
// rows go with their dataset via ON DELETE CASCADE.
func trimOwner(ctx context.Context, tx *sql.Tx, ownerID int64, maxRetained int) ([]int64, error) {
	const query = `
		DELETE FROM datasets
		WHERE owner_id = $1
		  AND id NOT IN (
			SELECT id FROM datasets
			WHERE owner_id = $1
			ORDER BY uploaded_at DESC, id DESC
			LIMIT $2
		  )
		RETURNING id
	`
	rows, err := tx.QueryContext(ctx, query, ownerID, maxRetained)
	if err != nil {
		return nil, fmt.Errorf("trim datasets: %w", err)
	}
	defer rows.Close()

	var evicted []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		evicted = append(evicted, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return evicted, nil
}

// ListByOwner returns the owner's datasets, newest first.
func (r *DatasetRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Dataset, error) {
	const query = `
		SELECT id, owner_id, name, row_count, uploaded_at
		FROM datasets
		WHERE owner_id = $1
		ORDER BY uploaded_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var datasets []models.Dataset
	for rows.Next() {
		var d models.Dataset
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.Name, &d.RowCount, &d.UploadedAt); err != nil {
			return nil, err
		}
		datasets = append(datasets, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return datasets, nil
}

// GetByID returns one of the owner's datasets.
func (r *DatasetRepository) GetByID(ctx context.Context, ownerID, datasetID int64) (*models.Dataset, error) {
	const query = `
		SELECT id, owner_id, name, row_count, uploaded_at
		FROM datasets
		WHERE id = $1 AND owner_id = $2
		LIMIT 1
	`
	var d models.Dataset
	err := r.db.QueryRowContext(ctx, query, datasetID, ownerID).
		Scan(&d.ID, &d.OwnerID, &d.Name, &d.RowCount, &d.UploadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDatasetNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Delete removes one of the owner's datasets.
func (r *DatasetRepository) Delete(ctx context.Context, ownerID, datasetID int64) error {
	const query = `
		DELETE FROM datasets
		WHERE id = $1 AND owner_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, datasetID, ownerID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrDatasetNotFound
	}
	return nil
}

// RecordsByDataset returns a dataset's equipment rows in source order.
func (r *DatasetRepository) RecordsByDataset(ctx context.Context, datasetID int64) ([]models.Equipment, error) {
	const query = `
		SELECT id, dataset_id, position, name, type, flowrate, pressure, temperature
		FROM equipment
		WHERE dataset_id = $1
		ORDER BY position ASC
	`
	return r.queryRecords(ctx, query, datasetID)
}

// RecordsByOwner returns every equipment row across the owner's retained
// datasets, newest dataset first, rows in source order within a dataset.
func (r *DatasetRepository) RecordsByOwner(ctx context.Context, ownerID int64) ([]models.Equipment, error) {
	const query = `
		SELECT e.id, e.dataset_id, e.position, e.name, e.type, e.flowrate, e.pressure, e.temperature
		FROM equipment e
		JOIN datasets d ON d.id = e.dataset_id
		WHERE d.owner_id = $1
		ORDER BY d.uploaded_at DESC, d.id DESC, e.position ASC
	`
	return r.queryRecords(ctx, query, ownerID)
}

func (r *DatasetRepository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]models.Equipment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.Equipment
	for rows.Next() {
		var rec models.Equipment
		var typ string
		if err := rows.Scan(&rec.ID, &rec.DatasetID, &rec.Position, &rec.Name, &typ, &rec.Flowrate, &rec.Pressure, &rec.Temperature); err != nil {
			return nil, err
		}
		rec.Type = models.EquipmentType(typ)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
