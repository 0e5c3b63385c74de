package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"equipviz/internal/http/middleware"
	"equipviz/internal/models"
	"equipviz/internal/repository"
	"equipviz/internal/service"
)

// EquipmentHandlers serves the flat /api/equipment listing.
type EquipmentHandlers struct {
	datasets *service.DatasetService
	logger   *zap.Logger
}

// NewEquipmentHandlers returns handler struct.
func NewEquipmentHandlers(datasets *service.DatasetService, logger *zap.Logger) *EquipmentHandlers {
	return &EquipmentHandlers{datasets: datasets, logger: logger}
}

// List handles GET /api/equipment with optional ?dataset= and ?type=
// filters across all of the caller's datasets.
func (h *EquipmentHandlers) List(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Count   int                `json:"count"`
		Results []models.Equipment `json:"results"`
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var datasetID int64
	if raw := r.URL.Query().Get("dataset"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid dataset filter")
			return
		}
		datasetID = id
	}

	records, err := h.datasets.ListEquipment(r.Context(), userID, datasetID, r.URL.Query().Get("type"))
	if err != nil {
		if errors.Is(err, repository.ErrDatasetNotFound) {
			writeError(w, http.StatusNotFound, "dataset not found")
			return
		}
		h.logger.Error("equipment list failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list equipment")
		return
	}
	if records == nil {
		records = []models.Equipment{}
	}

	writeJSON(w, http.StatusOK, response{Count: len(records), Results: records})
}
