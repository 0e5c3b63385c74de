package handlers

import (
	"net/http"
)

// NewHealthHandler returns the GET /health liveness probe.
func NewHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "equipviz"})
	}
}
