package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"equipviz/internal/http/middleware"
	"equipviz/internal/ingest"
	"equipviz/internal/metrics"
	"equipviz/internal/models"
	"equipviz/internal/repository"
	"equipviz/internal/service"
)

// DatasetHandlers serves the /api/datasets endpoints.
type DatasetHandlers struct {
	datasets       *service.DatasetService
	analytics      *service.AnalyticsService
	builder        *ingest.Builder
	maxUploadBytes int64
	metrics        *metrics.Metrics
	logger         *zap.Logger
}

// NewDatasetHandlers returns handler struct.
func NewDatasetHandlers(
	datasets *service.DatasetService,
	analytics *service.AnalyticsService,
	builder *ingest.Builder,
	maxUploadBytes int64,
	m *metrics.Metrics,
	logger *zap.Logger,
) *DatasetHandlers {
	return &DatasetHandlers{
		datasets:       datasets,
		analytics:      analytics,
		builder:        builder,
		maxUploadBytes: maxUploadBytes,
		metrics:        m,
		logger:         logger,
	}
}

// List handles GET /api/datasets.
func (h *DatasetHandlers) List(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Count   int              `json:"count"`
		Results []models.Dataset `json:"results"`
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	datasets, err := h.datasets.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("dataset list failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list datasets")
		return
	}
	if datasets == nil {
		datasets = []models.Dataset{}
	}

	writeJSON(w, http.StatusOK, response{Count: len(datasets), Results: datasets})
}

// Upload handles POST /api/datasets/upload. Accepts multipart/form-data
// with a required "file" part and an optional "name" field.
func (h *DatasetHandlers) Upload(w http.ResponseWriter, r *http.Request) {
	type rejected struct {
		Success  bool                `json:"success"`
		Errors   []string            `json:"errors"`
		Skipped  []ingest.SkippedRow `json:"skipped_rows"`
		Warnings []string            `json:"warnings"`
		UploadID string              `json:"upload_id"`
	}
	type accepted struct {
		Success   bool                `json:"success"`
		Message   string              `json:"message"`
		DatasetID int64               `json:"dataset_id"`
		Dataset   *models.Dataset     `json:"dataset"`
		Skipped   []ingest.SkippedRow `json:"skipped_rows"`
		Warnings  []string            `json:"warnings"`
		UploadID  string              `json:"upload_id"`
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	uploadID := uuid.NewString()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "uploaded file is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		writeError(w, http.StatusBadRequest, "only .csv files are supported")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = header.Filename
	}

	result, err := h.builder.Build(file, name)
	if err != nil {
		var buildErr *ingest.BuildError
		if !errors.As(err, &buildErr) {
			h.logger.Error("upload processing failed",
				zap.String("upload_id", uploadID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "error processing file")
			return
		}

		h.metrics.UploadsRejected.Inc()
		h.metrics.RowsSkipped.Add(float64(len(buildErr.Skipped)))
		h.logger.Warn("upload rejected",
			zap.String("upload_id", uploadID),
			zap.Int64("user_id", userID),
			zap.String("reason", buildErr.Detail),
			zap.Int("skipped_rows", len(buildErr.Skipped)),
		)
		writeJSON(w, http.StatusBadRequest, rejected{
			Errors:   []string{buildErr.Detail},
			Skipped:  emptyIfNil(buildErr.Skipped),
			Warnings: emptyStringsIfNil(buildErr.Warnings),
			UploadID: uploadID,
		})
		return
	}

	h.metrics.RowsSkipped.Add(float64(len(result.Skipped)))

	dataset, err := h.datasets.Ingest(r.Context(), userID, result)
	if err != nil {
		h.logger.Error("dataset ingest failed",
			zap.String("upload_id", uploadID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to store dataset")
		return
	}

	writeJSON(w, http.StatusCreated, accepted{
		Success:   true,
		Message:   fmt.Sprintf("Successfully uploaded %d equipment records", len(result.Records)),
		DatasetID: dataset.ID,
		Dataset:   dataset,
		Skipped:   emptyIfNil(result.Skipped),
		Warnings:  emptyStringsIfNil(result.Warnings),
		UploadID:  uploadID,
	})
}

// Dashboard handles GET /api/datasets/dashboard, the combined analytics
// across all of the caller's retained datasets.
func (h *DatasetHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Success bool `json:"success"`
		*service.Dashboard
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	dashboard, err := h.analytics.ForOwner(r.Context(), userID)
	if err != nil {
		h.logger.Error("dashboard failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to compute dashboard")
		return
	}

	writeJSON(w, http.StatusOK, response{Success: true, Dashboard: dashboard})
}

// Get handles GET /api/datasets/{id}.
func (h *DatasetHandlers) Get(w http.ResponseWriter, r *http.Request) {
	type response struct {
		*models.Dataset
		Equipment []models.Equipment `json:"equipment"`
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	id, err := datasetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid dataset id")
		return
	}

	dataset, records, err := h.datasets.Get(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrDatasetNotFound) {
			writeError(w, http.StatusNotFound, "dataset not found")
			return
		}
		h.logger.Error("dataset fetch failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load dataset")
		return
	}
	if records == nil {
		records = []models.Equipment{}
	}

	writeJSON(w, http.StatusOK, response{Dataset: dataset, Equipment: records})
}

// Delete handles DELETE /api/datasets/{id}.
func (h *DatasetHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	id, err := datasetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid dataset id")
		return
	}

	if err := h.datasets.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, repository.ErrDatasetNotFound) {
			writeError(w, http.StatusNotFound, "dataset not found")
			return
		}
		h.logger.Error("dataset delete failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete dataset")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Analytics handles GET /api/datasets/{id}/analytics.
func (h *DatasetHandlers) Analytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	id, err := datasetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid dataset id")
		return
	}

	result, err := h.analytics.ForDataset(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrDatasetNotFound) {
			writeError(w, http.StatusNotFound, "dataset not found")
			return
		}
		h.logger.Error("dataset analytics failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to compute analytics")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Equipment handles GET /api/datasets/{id}/equipment.
func (h *DatasetHandlers) Equipment(w http.ResponseWriter, r *http.Request) {
	type response struct {
		DatasetID   int64              `json:"dataset_id"`
		DatasetName string             `json:"dataset_name"`
		Count       int                `json:"count"`
		Equipment   []models.Equipment `json:"equipment"`
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	id, err := datasetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid dataset id")
		return
	}

	dataset, records, err := h.datasets.Get(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrDatasetNotFound) {
			writeError(w, http.StatusNotFound, "dataset not found")
			return
		}
		h.logger.Error("dataset equipment fetch failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load equipment")
		return
	}
	if records == nil {
		records = []models.Equipment{}
	}

	writeJSON(w, http.StatusOK, response{
		DatasetID:   dataset.ID,
		DatasetName: dataset.Name,
		Count:       len(records),
		Equipment:   records,
	})
}

// Report handles GET /api/datasets/{id}/report.pdf.
func (h *DatasetHandlers) Report(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	id, err := datasetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid dataset id")
		return
	}

	pdf, filename, err := h.analytics.Report(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrDatasetNotFound) {
			writeError(w, http.StatusNotFound, "dataset not found")
			return
		}
		h.logger.Error("report generation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to generate report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func datasetID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func emptyIfNil(rows []ingest.SkippedRow) []ingest.SkippedRow {
	if rows == nil {
		return []ingest.SkippedRow{}
	}
	return rows
}

func emptyStringsIfNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
