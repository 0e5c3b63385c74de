package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"equipviz/internal/models"
)

func TestDatasetRepositoryCreateWithRecords(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewDatasetRepository(db)
	uploaded := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	records := []models.Equipment{
		{Position: 0, Name: "P-1", Type: models.TypePump, Flowrate: 100, Pressure: 5, Temperature: 60},
		{Position: 1, Name: "R-1", Type: models.TypeReactor, Flowrate: 50, Pressure: 10, Temperature: 200},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO datasets (owner_id, name, row_count)")).
		WithArgs(int64(1), "plant a", 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "uploaded_at"}).AddRow(int64(10), uploaded))

	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO equipment (dataset_id, position, name, type, flowrate, pressure, temperature)"))
	prep.ExpectExec().
		WithArgs(int64(10), 0, "P-1", "Pump", 100.0, 5.0, 60.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs(int64(10), 1, "R-1", "Reactor", 50.0, 10.0, 200.0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM datasets")).
		WithArgs(int64(1), 5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(4)))
	mock.ExpectCommit()

	dataset := &models.Dataset{OwnerID: 1, Name: "plant a"}
	evicted, err := repo.CreateWithRecords(context.Background(), dataset, records, 5)
	if err != nil {
		t.Fatalf("create with records: %v", err)
	}

	if dataset.ID != 10 {
		t.Errorf("dataset id = %d, want 10", dataset.ID)
	}
	if dataset.RowCount != 2 {
		t.Errorf("row count = %d, want 2", dataset.RowCount)
	}
	if !dataset.UploadedAt.Equal(uploaded) {
		t.Errorf("uploaded at = %v, want %v", dataset.UploadedAt, uploaded)
	}
	if len(evicted) != 1 || evicted[0] != 4 {
		t.Errorf("evicted = %v, want [4]", evicted)
	}
	if records[0].DatasetID != 10 || records[1].DatasetID != 10 {
		t.Errorf("records not linked to dataset: %d, %d", records[0].DatasetID, records[1].DatasetID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDatasetRepositoryCreateRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewDatasetRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO datasets (owner_id, name, row_count)")).
		WithArgs(int64(1), "plant a", 1).
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	dataset := &models.Dataset{OwnerID: 1, Name: "plant a"}
	records := []models.Equipment{{Name: "P-1", Type: models.TypePump}}

	if _, err := repo.CreateWithRecords(context.Background(), dataset, records, 5); err == nil {
		t.Fatalf("expected error, got none")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDatasetRepositoryListByOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewDatasetRepository(db)
	newer := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	older := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, owner_id, name, row_count, uploaded_at")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "name", "row_count", "uploaded_at"}).
			AddRow(int64(2), int64(1), "second", 5, newer).
			AddRow(int64(1), int64(1), "first", 3, older))

	datasets, err := repo.ListByOwner(context.Background(), 1)
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(datasets) != 2 {
		t.Fatalf("datasets = %d, want 2", len(datasets))
	}
	if datasets[0].Name != "second" || datasets[1].Name != "first" {
		t.Errorf("order = %q, %q", datasets[0].Name, datasets[1].Name)
	}
	if datasets[0].RowCount != 5 {
		t.Errorf("row count = %d, want 5", datasets[0].RowCount)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDatasetRepositoryGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewDatasetRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, owner_id, name, row_count, uploaded_at")).
		WithArgs(int64(7), int64(1)).
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), 1, 7); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("err = %v, want ErrDatasetNotFound", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDatasetRepositoryDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewDatasetRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM datasets")).
		WithArgs(int64(7), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), 1, 7); err != nil {
		t.Fatalf("delete: %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM datasets")).
		WithArgs(int64(8), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), 1, 8); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("missing dataset: err = %v, want ErrDatasetNotFound", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDatasetRepositoryRecordsByDataset(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewDatasetRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, dataset_id, position, name, type, flowrate, pressure, temperature")).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "dataset_id", "position", "name", "type", "flowrate", "pressure", "temperature"}).
			AddRow(int64(101), int64(10), 0, "P-1", "Pump", 100.0, 5.0, 60.0).
			AddRow(int64(102), int64(10), 1, "R-1", "Reactor", 50.0, 10.0, 200.0))

	records, err := repo.RecordsByDataset(context.Background(), 10)
	if err != nil {
		t.Fatalf("records by dataset: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].Type != models.TypePump || records[1].Type != models.TypeReactor {
		t.Errorf("types = %s, %s", records[0].Type, records[1].Type)
	}
	if records[1].Position != 1 {
		t.Errorf("position = %d, want 1", records[1].Position)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDatasetRepositoryRecordsByOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewDatasetRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("JOIN datasets d ON d.id = e.dataset_id")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "dataset_id", "position", "name", "type", "flowrate", "pressure", "temperature"}).
			AddRow(int64(201), int64(11), 0, "V-1", "Valve", 10.0, 2.0, 30.0).
			AddRow(int64(101), int64(10), 0, "P-1", "Pump", 100.0, 5.0, 60.0))

	records, err := repo.RecordsByOwner(context.Background(), 1)
	if err != nil {
		t.Fatalf("records by owner: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].DatasetID != 11 || records[1].DatasetID != 10 {
		t.Errorf("dataset order = %d, %d", records[0].DatasetID, records[1].DatasetID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
