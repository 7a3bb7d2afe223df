package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Temirlan472/Learning_Tracker/internal/services"
	"github.com/Temirlan472/Learning_Tracker/pkg/logger"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses:
// validation -> 400, not found -> 404, anything else -> 500 (logged).
func writeServiceError(w http.ResponseWriter, err error) {
	if services.IsValidationError(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err == services.ErrNotFound {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	logger.Log.WithError(err).Error("Request failed")
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// parsePagination reads limit/skip query params with per-endpoint defaults.
func parsePagination(r *http.Request, defaultLimit int64) (limit, skip int64) {
	limit = defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v > 0 {
			limit = v
		}
	}
	if raw := r.URL.Query().Get("skip"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v >= 0 {
			skip = v
		}
	}
	return limit, skip
}
